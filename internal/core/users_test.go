package core_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"groupdump/internal/core"
	"groupdump/internal/domain"
)

func TestRegisterUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	u, err := env.svc.RegisterUser(ctx, core.RegisterUserInput{
		Email:    "  Alice@Example.COM ",
		Name:     "Alice",
		Password: "correct horse battery",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.NotEmpty(t, u.PasswordHash)
	assert.NotEqual(t, "correct horse battery", u.PasswordHash)
}

func TestRegisterUserDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	in := core.RegisterUserInput{Email: "dup@example.com", Name: "First", Password: "longenough"}
	_, err := env.svc.RegisterUser(ctx, in)
	require.NoError(t, err)

	in.Name = "Second"
	_, err = env.svc.RegisterUser(ctx, in)
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))
}

func TestRegisterUserValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	cases := []struct {
		name string
		in   core.RegisterUserInput
	}{
		{"missing email", core.RegisterUserInput{Name: "A", Password: "longenough"}},
		{"bad email", core.RegisterUserInput{Email: "nope", Name: "A", Password: "longenough"}},
		{"missing name", core.RegisterUserInput{Email: "a@b.com", Password: "longenough"}},
		{"short password", core.RegisterUserInput{Email: "a@b.com", Name: "A", Password: "short"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.svc.RegisterUser(ctx, tc.in)
			assert.Equal(t, domain.KindValidation, domain.KindOf(err))
		})
	}
}

func TestAuthenticateUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.RegisterUser(ctx, core.RegisterUserInput{
		Email:    "bob@example.com",
		Name:     "Bob",
		Password: "opensesame",
	})
	require.NoError(t, err)

	u, err := env.svc.AuthenticateUser(ctx, "BOB@example.com", "opensesame")
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", u.Email)

	_, err = env.svc.AuthenticateUser(ctx, "bob@example.com", "wrong")
	assert.Equal(t, domain.KindForbidden, domain.KindOf(err))

	_, err = env.svc.AuthenticateUser(ctx, "nobody@example.com", "opensesame")
	assert.Equal(t, domain.KindForbidden, domain.KindOf(err))
}
