package core_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"groupdump/internal/core"
	"groupdump/internal/domain"
	"groupdump/internal/models"
)

func TestCreateRental(t *testing.T) {
	env := newTestEnv(t)
	creator := env.user(t, "creator")
	g := env.group(t, creator, 3)

	r := env.rental(t, creator, g.ID, 450)
	assert.Equal(t, models.RentalPending, r.Status)
	assert.Equal(t, 450.0, r.TotalCost)
	assert.Equal(t, g.ID, r.GroupID)
}

func TestCreateRentalValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	creator := env.user(t, "creator")
	g := env.group(t, creator, 3)
	v := env.vendor(t)

	base := core.CreateRentalInput{
		GroupID:      g.ID,
		VendorID:     v.ID,
		Size:         "20yd",
		Duration:     7,
		TotalCost:    300,
		DeliveryDate: time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC),
	}

	cases := []struct {
		name   string
		mutate func(*core.CreateRentalInput)
	}{
		{"missing size", func(in *core.CreateRentalInput) { in.Size = "" }},
		{"zero duration", func(in *core.CreateRentalInput) { in.Duration = 0 }},
		{"zero cost", func(in *core.CreateRentalInput) { in.TotalCost = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := base
			tc.mutate(&in)
			_, err := env.svc.CreateRental(ctx, creator.ID, in)
			assert.Equal(t, domain.KindValidation, domain.KindOf(err))
		})
	}
}

func TestCreateRentalMembersOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	creator := env.user(t, "creator")
	outsider := env.user(t, "outsider")
	g := env.group(t, creator, 3)
	v := env.vendor(t)

	_, err := env.svc.CreateRental(ctx, outsider.ID, core.CreateRentalInput{
		GroupID:   g.ID,
		VendorID:  v.ID,
		Size:      "20yd",
		Duration:  7,
		TotalCost: 300,
	})
	assert.Equal(t, domain.KindForbidden, domain.KindOf(err))
}

func TestCreateRentalOneActivePerGroup(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	creator := env.user(t, "creator")
	g := env.group(t, creator, 3)
	env.rental(t, creator, g.ID, 300)

	v := env.vendor(t)
	_, err := env.svc.CreateRental(ctx, creator.ID, core.CreateRentalInput{
		GroupID:   g.ID,
		VendorID:  v.ID,
		Size:      "10yd",
		Duration:  3,
		TotalCost: 150,
	})
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))
}

func TestCreateRentalUnknownVendor(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	creator := env.user(t, "creator")
	g := env.group(t, creator, 3)

	_, err := env.svc.CreateRental(ctx, creator.ID, core.CreateRentalInput{
		GroupID:   g.ID,
		VendorID:  creator.ID,
		Size:      "20yd",
		Duration:  7,
		TotalCost: 300,
	})
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

func TestListRentals(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	creator := env.user(t, "creator")
	other := env.user(t, "other")

	g1 := env.group(t, creator, 3)
	env.rental(t, creator, g1.ID, 300)

	g2 := env.group(t, other, 3)
	env.rental(t, other, g2.ID, 150)

	rentals, err := env.svc.ListRentals(ctx, creator.ID)
	require.NoError(t, err)
	require.Len(t, rentals, 1)
	assert.Equal(t, g1.ID, rentals[0].GroupID)
	assert.NotEmpty(t, rentals[0].Vendor.Name)
}

func TestVendors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.CreateVendor(ctx, core.CreateVendorInput{Email: "x@y.z"})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	v := env.vendor(t)

	got, err := env.svc.GetVendor(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, v.Name, got.Name)
	assert.JSONEq(t, `{"10yd": 300, "20yd": 450}`, string(got.PricingTiers))

	vendors, err := env.svc.ListVendors(ctx, 0, 10)
	require.NoError(t, err)
	assert.Len(t, vendors, 1)
}
