// Package metrics registers the service's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	GroupsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "groupdump_groups_created_total",
		Help: "Groups created.",
	})

	MembersJoined = promauto.NewCounter(prometheus.CounterOpts{
		Name: "groupdump_members_joined_total",
		Help: "Members admitted to groups, direct joins and invite redemptions combined.",
	})

	InvitesRedeemed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "groupdump_invites_redeemed_total",
		Help: "Invitation tokens redeemed.",
	})

	CardsIssued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "groupdump_cards_issued_total",
		Help: "Shared virtual cards issued.",
	})

	Charges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "groupdump_charges_total",
		Help: "Member charges attempted, by outcome.",
	}, []string{"status"})

	WebhookEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "groupdump_webhook_events_total",
		Help: "Processor webhook events received, by outcome.",
	}, []string{"status"})
)
