package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"creator-subscription-service/internal/domain"
)

// Plan represents a creator's purchasable offering with a fixed price and
// duration. Plans are immutable after creation.
type Plan struct {
	ID           string
	Name         string
	Description  string
	Price        decimal.Decimal
	DurationDays int
	CreatorID    string
	FirstName    string
	LastName     string
	CreatedAt    time.Time
}

func (p *Plan) IsZero() bool { return p == nil || p.ID == "" }

// NewPlan validates and constructs a plan.
func NewPlan(id, name, description string, price decimal.Decimal, durationDays int, creatorID, firstName, lastName string) (*Plan, error) {
	if id == "" || name == "" || creatorID == "" || durationDays <= 0 || price.IsNegative() {
		return nil, domain.ErrInvalidArgument
	}
	return &Plan{
		ID:           id,
		Name:         name,
		Description:  description,
		Price:        price,
		DurationDays: durationDays,
		CreatorID:    creatorID,
		FirstName:    firstName,
		LastName:     lastName,
		CreatedAt:    time.Now(),
	}, nil
}

// CreatorName joins the creator's name parts, falling back to the raw
// creator id when both parts are empty.
func (p *Plan) CreatorName() string {
	return DisplayName(p.FirstName, p.LastName, p.CreatorID)
}

// DisplayName joins first and last name with a single space, trimming
// whitespace on each part. When both parts are empty it returns fallback.
func DisplayName(first, last, fallback string) string {
	name := strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
	if name == "" {
		return fallback
	}
	return name
}
