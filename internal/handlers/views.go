package handlers

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"groupdump/internal/core"
	"groupdump/internal/models"
)

// Response DTOs. Each core operation gets an explicit view constructed
// here; internal models never serialize directly.

type UserView struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func userView(u *models.User) UserView {
	return UserView{ID: u.ID, Email: u.Email, Name: u.Name, Phone: u.Phone, Address: u.Address, CreatedAt: u.CreatedAt}
}

type TimeSlotView struct {
	ID        uuid.UUID `json:"id"`
	StartDate string    `json:"start_date"`
	EndDate   string    `json:"end_date"`
}

type GroupView struct {
	ID              uuid.UUID      `json:"id"`
	Name            string         `json:"name"`
	Address         string         `json:"address"`
	MaxParticipants int            `json:"max_participants"`
	Status          string         `json:"status"`
	CreatedBy       uuid.UUID      `json:"created_by"`
	VendorID        *uuid.UUID     `json:"vendor_id,omitempty"`
	CardStatus      string         `json:"card_status"`
	HasCard         bool           `json:"has_card"`
	TimeSlots       []TimeSlotView `json:"time_slots"`
	CreatedAt       time.Time      `json:"created_at"`
}

func groupView(g *models.Group) GroupView {
	slots := make([]TimeSlotView, 0, len(g.TimeSlots))
	for _, slot := range g.TimeSlots {
		slots = append(slots, TimeSlotView{ID: slot.ID, StartDate: slot.StartDate, EndDate: slot.EndDate})
	}
	return GroupView{
		ID:              g.ID,
		Name:            g.Name,
		Address:         g.Address,
		MaxParticipants: g.MaxParticipants,
		Status:          g.Status,
		CreatedBy:       g.CreatedBy,
		VendorID:        g.VendorID,
		CardStatus:      g.CardStatus,
		HasCard:         g.VirtualCardID != nil,
		TimeSlots:       slots,
		CreatedAt:       g.CreatedAt,
	}
}

type MemberView struct {
	UserID        uuid.UUID `json:"user_id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	JoinedAt      time.Time `json:"joined_at"`
	PaymentStatus string    `json:"payment_status"`
}

func memberViews(members []models.Member) []MemberView {
	out := make([]MemberView, 0, len(members))
	for _, m := range members {
		out = append(out, MemberView{
			UserID:        m.UserID,
			Name:          m.User.Name,
			Email:         m.User.Email,
			JoinedAt:      m.JoinedAt,
			PaymentStatus: m.PaymentStatus,
		})
	}
	return out
}

type InviteeView struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	JoinToken      string    `json:"join_token"`
	InvitationSent bool      `json:"invitation_sent"`
}

func inviteeViews(invitees []models.Invitee) []InviteeView {
	out := make([]InviteeView, 0, len(invitees))
	for _, inv := range invitees {
		out = append(out, InviteeView{
			ID: inv.ID, Name: inv.Name, Email: inv.Email,
			JoinToken: inv.JoinToken, InvitationSent: inv.InvitationSent,
		})
	}
	return out
}

type SlotTallyView struct {
	SlotID        uuid.UUID `json:"slot_id"`
	StartDate     string    `json:"start_date"`
	EndDate       string    `json:"end_date"`
	SelectedCount int       `json:"selected_count"`
	SelectedBy    []string  `json:"selected_by"`
	IsUniversal   bool      `json:"is_universal"`
}

type SlotAnalysisView struct {
	GroupID      uuid.UUID       `json:"group_id"`
	TotalMembers int             `json:"total_members"`
	Slots        []SlotTallyView `json:"slots"`
}

func slotAnalysisView(a *core.SlotAnalysis) SlotAnalysisView {
	slots := make([]SlotTallyView, 0, len(a.Slots))
	for _, tally := range a.Slots {
		slots = append(slots, SlotTallyView{
			SlotID:        tally.SlotID,
			StartDate:     tally.StartDate,
			EndDate:       tally.EndDate,
			SelectedCount: tally.SelectedCount,
			SelectedBy:    tally.SelectedBy,
			IsUniversal:   tally.IsUniversal,
		})
	}
	return SlotAnalysisView{GroupID: a.GroupID, TotalMembers: a.TotalMembers, Slots: slots}
}

type FundingStatusView struct {
	TotalCost      float64 `json:"total_cost"`
	CostPerMember  float64 `json:"cost_per_member"`
	TotalCollected float64 `json:"total_collected"`
	ServiceFee     float64 `json:"service_fee"`
	NetAmount      float64 `json:"net_amount"`
	MembersPaid    int     `json:"members_paid"`
	TotalMembers   int     `json:"total_members"`
	IsFullyFunded  bool    `json:"is_fully_funded"`
}

func fundingStatusView(s core.FundingStatus) FundingStatusView {
	return FundingStatusView(s)
}

type CardDetailsView struct {
	CardID           string `json:"card_id"`
	Status           string `json:"status"`
	Brand            string `json:"brand,omitempty"`
	Last4            string `json:"last4,omitempty"`
	ExpMonth         int    `json:"exp_month,omitempty"`
	ExpYear          int    `json:"exp_year,omitempty"`
	SpendingLimit    int64  `json:"spending_limit_cents"`
	RemainingBalance int64  `json:"remaining_balance_cents"`
}

func cardDetailsView(c *core.CardDetails) CardDetailsView {
	return CardDetailsView(*c)
}

type TransactionView struct {
	ID                uuid.UUID `json:"id"`
	Amount            int64     `json:"amount_cents"`
	MerchantName      string    `json:"merchant_name"`
	Status            string    `json:"status"`
	AuthorizationCode string    `json:"authorization_code,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

func transactionViews(txns []models.CardTransaction) []TransactionView {
	out := make([]TransactionView, 0, len(txns))
	for _, t := range txns {
		out = append(out, TransactionView{
			ID: t.ID, Amount: t.Amount, MerchantName: t.MerchantName,
			Status: t.Status, AuthorizationCode: t.AuthorizationCode, CreatedAt: t.CreatedAt,
		})
	}
	return out
}

type VendorView struct {
	ID             uuid.UUID       `json:"id"`
	Name           string          `json:"name"`
	Email          string          `json:"email"`
	Phone          string          `json:"phone,omitempty"`
	Address        string          `json:"address,omitempty"`
	ServiceAreas   string          `json:"service_areas,omitempty"`
	PricingTiers   json.RawMessage `json:"pricing_tiers,omitempty"`
	CommissionRate float64         `json:"commission_rate"`
	Rating         float64         `json:"rating"`
}

func vendorView(v *models.Vendor) VendorView {
	return VendorView{
		ID: v.ID, Name: v.Name, Email: v.Email, Phone: v.Phone, Address: v.Address,
		ServiceAreas: v.ServiceAreas, PricingTiers: json.RawMessage(v.PricingTiers),
		CommissionRate: v.CommissionRate, Rating: v.Rating,
	}
}

type RentalView struct {
	ID           uuid.UUID `json:"id"`
	GroupID      uuid.UUID `json:"group_id"`
	VendorID     uuid.UUID `json:"vendor_id"`
	Size         string    `json:"size"`
	Duration     int       `json:"duration_days"`
	TotalCost    float64   `json:"total_cost"`
	DeliveryDate time.Time `json:"delivery_date"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

func rentalView(r *models.Rental) RentalView {
	return RentalView{
		ID: r.ID, GroupID: r.GroupID, VendorID: r.VendorID, Size: r.Size,
		Duration: r.Duration, TotalCost: r.TotalCost, DeliveryDate: r.DeliveryDate,
		Status: r.Status, CreatedAt: r.CreatedAt,
	}
}
