package model

import (
	"time"

	"creator-subscription-service/internal/domain"
)

type SubscriptionStatus string

const (
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
	SubscriptionStatusExpired   SubscriptionStatus = "expired"
)

// Status labels derived for dashboard rows. These are presentation values
// recomputed at read time, never persisted.
const (
	StatusLabelActive      = "active"
	StatusLabelSoonExpired = "soon_expired"
	StatusLabelExpired     = "expired"
	StatusLabelCancelled   = "cancelled"
)

// SoonExpiredWindowDays is the inclusive window, in days, within which an
// active subscription counts as soon to expire.
const SoonExpiredWindowDays = 7

// Subscription represents a user's time-bounded access to a plan.
// It holds a non-owning reference to its plan via PlanID; the subscription
// never mutates plan state. Status is the single authoritative lifecycle
// field: the legacy "active" boolean is derived at the serialization
// boundary, never stored.
type Subscription struct {
	ID          string
	UserID      string
	PlanID      string
	FirstName   string
	LastName    string
	StartDate   time.Time // UTC midnight
	EndDate     time.Time // UTC midnight
	Status      SubscriptionStatus
	AutoRenewal bool
	CreatedAt   time.Time
}

// DateOnly truncates t to UTC midnight. Subscription dates are day-granular.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// NewSubscription constructs an active subscription starting today.
// The end date is start + plan duration.
func NewSubscription(id, userID string, plan *Plan, firstName, lastName string, autoRenewal bool, now time.Time) (*Subscription, error) {
	if id == "" || userID == "" || plan.IsZero() {
		return nil, domain.ErrInvalidArgument
	}
	start := DateOnly(now)
	return &Subscription{
		ID:          id,
		UserID:      userID,
		PlanID:      plan.ID,
		FirstName:   firstName,
		LastName:    lastName,
		StartDate:   start,
		EndDate:     start.AddDate(0, 0, plan.DurationDays),
		Status:      SubscriptionStatusActive,
		AutoRenewal: autoRenewal,
		CreatedAt:   now,
	}, nil
}

// IsActive reports whether the subscription is in the active state.
// This is the derived view of the legacy active flag.
func (s *Subscription) IsActive() bool { return s.Status == SubscriptionStatusActive }

// Due reports whether the subscription has crossed its end date and needs
// a lifecycle transition. Cancelled and expired subscriptions are terminal
// and never due.
func (s *Subscription) Due(today time.Time) bool {
	return s.Status == SubscriptionStatusActive && !s.EndDate.IsZero() && s.EndDate.Before(DateOnly(today))
}

// Renew re-anchors the subscription at today for another plan period.
// Cycles missed between sweeps are not back-filled; the new period starts
// at the sweep date.
func (s *Subscription) Renew(plan *Plan, today time.Time) {
	start := DateOnly(today)
	s.StartDate = start
	s.EndDate = start.AddDate(0, 0, plan.DurationDays)
}

// Expire marks an active subscription as expired. Terminal.
func (s *Subscription) Expire() {
	if s.Status == SubscriptionStatusActive {
		s.Status = SubscriptionStatusExpired
	}
}

// Cancel marks the subscription as cancelled. Terminal; calling it on an
// already cancelled subscription is a no-op transition.
func (s *Subscription) Cancel() {
	s.Status = SubscriptionStatusCancelled
}

// RemainingDays returns the number of whole days until the end date,
// clamped at zero. A zero end date counts as no days remaining.
func (s *Subscription) RemainingDays(now time.Time) int {
	if s.EndDate.IsZero() {
		return 0
	}
	d := int(s.EndDate.Sub(DateOnly(now)).Hours() / 24)
	if d < 0 {
		return 0
	}
	return d
}

// StatusLabel classifies the subscription for dashboard display relative
// to now: cancelled, expired, soon_expired (within the 7-day window) or
// active. It is a pure function of (status, end date, today).
func (s *Subscription) StatusLabel(now time.Time) string {
	if s.Status == SubscriptionStatusCancelled {
		return StatusLabelCancelled
	}
	if s.EndDate.IsZero() {
		return StatusLabelActive
	}
	today := DateOnly(now)
	if s.EndDate.Before(today) {
		return StatusLabelExpired
	}
	if s.RemainingDays(now) <= SoonExpiredWindowDays {
		return StatusLabelSoonExpired
	}
	return StatusLabelActive
}

// DurationText renders the subscribed date range for UI cells, or a
// placeholder when either date is absent.
func (s *Subscription) DurationText() string {
	if s.StartDate.IsZero() || s.EndDate.IsZero() {
		return "N/A"
	}
	return s.StartDate.Format("2006-01-02") + " - " + s.EndDate.Format("2006-01-02")
}

// FanName joins the subscriber's name parts, falling back to the user id.
func (s *Subscription) FanName() string {
	return DisplayName(s.FirstName, s.LastName, s.UserID)
}
