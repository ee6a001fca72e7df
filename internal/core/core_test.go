package core_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"groupdump/internal/core"
	"groupdump/internal/db"
	"groupdump/internal/models"
	"groupdump/internal/payment"
)

// testEnv wires a Service against an in-memory database and the payment
// simulator.
type testEnv struct {
	db  *gorm.DB
	sim *payment.Simulator
	svc *core.Service
	seq int
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// A second pool connection would see its own empty in-memory database.
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.Migrate(context.Background(), gdb))

	sim := payment.NewSimulator()
	return &testEnv{
		db:  gdb,
		sim: sim,
		svc: core.New(gdb, sim, core.Options{CardholderID: "ich_test", InviteBaseURL: "http://localhost/invites"}),
	}
}

func (e *testEnv) user(t *testing.T, name string) *models.User {
	t.Helper()
	e.seq++
	u, err := e.svc.RegisterUser(context.Background(), core.RegisterUserInput{
		Email:    fmt.Sprintf("%s%d@example.com", name, e.seq),
		Name:     name,
		Password: "hunter2hunter2",
	})
	require.NoError(t, err)
	return u
}

func (e *testEnv) vendor(t *testing.T) *models.Vendor {
	t.Helper()
	e.seq++
	v, err := e.svc.CreateVendor(context.Background(), core.CreateVendorInput{
		Name:         fmt.Sprintf("Haulers %d", e.seq),
		Email:        fmt.Sprintf("dispatch%d@haulers.example", e.seq),
		PricingTiers: []byte(`{"10yd": 300, "20yd": 450}`),
	})
	require.NoError(t, err)
	return v
}

// group creates a two-slot group owned by creator.
func (e *testEnv) group(t *testing.T, creator *models.User, maxParticipants int, invitees ...core.InviteeInput) *models.Group {
	t.Helper()
	g, err := e.svc.CreateGroup(context.Background(), creator.ID, core.CreateGroupInput{
		Name:            "Maple Street Cleanup",
		Address:         "12 Maple St",
		MaxParticipants: maxParticipants,
		Slots: []core.SlotInput{
			{StartDate: "2026-10-01", EndDate: "2026-10-03"},
			{StartDate: "2026-10-08", EndDate: "2026-10-10"},
		},
		Invitees: invitees,
	})
	require.NoError(t, err)
	return g
}

func (e *testEnv) rental(t *testing.T, member *models.User, groupID uuid.UUID, totalCost float64) *models.Rental {
	t.Helper()
	v := e.vendor(t)
	r, err := e.svc.CreateRental(context.Background(), member.ID, core.CreateRentalInput{
		GroupID:      groupID,
		VendorID:     v.ID,
		Size:         "20yd",
		Duration:     7,
		TotalCost:    totalCost,
		DeliveryDate: time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return r
}

// completeSetup walks a member through the full payment verification flow.
func (e *testEnv) completeSetup(t *testing.T, userID, groupID uuid.UUID) {
	t.Helper()
	ctx := context.Background()
	_, err := e.svc.BeginPaymentSetup(ctx, userID, groupID)
	require.NoError(t, err)
	member, err := e.svc.ConfirmPaymentSetup(ctx, userID, groupID)
	require.NoError(t, err)
	require.Equal(t, models.PaymentSetupComplete, member.PaymentStatus)
}

func slotIDs(g *models.Group) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(g.TimeSlots))
	for _, s := range g.TimeSlots {
		ids = append(ids, s.ID)
	}
	return ids
}
