// Package pipeline holds the opportunity stage rules: stage changes,
// health classification and weighted revenue. It performs no I/O.
package pipeline

import (
	"errors"
	"time"

	"github.com/sangkips/cowork-api/internal/domain/enum"
	"github.com/shopspring/decimal"
)

// StaleAfter is how long an open opportunity may go without updates before it is stale
const StaleAfter = 7 * 24 * time.Hour

// ErrInvalidStage is returned when a target stage is not part of the enumeration
var ErrInvalidStage = errors.New("invalid opportunity stage")

// Deal is the slice of an opportunity the stage rules look at
type Deal struct {
	Stage             enum.OpportunityStage
	UpdatedAt         time.Time
	ExpectedCloseDate *time.Time
}

// Health is the single attention classification of a deal
type Health string

const (
	HealthOK      Health = "ok"
	HealthOverdue Health = "overdue"
	HealthStale   Health = "stale"
)

// Message returns the user facing text for a health value
func (h Health) Message() string {
	switch h {
	case HealthOverdue:
		return "Expected close date has passed"
	case HealthStale:
		return "No activity in the last 7 days"
	default:
		return ""
	}
}

// ChangeStage validates a stage move. It reports false when the stage is
// unchanged, in which case nothing should be persisted or published.
// Any stage may move to any other stage.
func ChangeStage(d Deal, next enum.OpportunityStage) (bool, error) {
	if !next.IsValid() {
		return false, ErrInvalidStage
	}
	return d.Stage != next, nil
}

// IsStale reports whether an open deal has not been updated for more than StaleAfter
func IsStale(d Deal, now time.Time) bool {
	if d.Stage.IsTerminal() {
		return false
	}
	return now.Sub(d.UpdatedAt) > StaleAfter
}

// IsOverdue reports whether an open deal's expected close date is strictly before now
func IsOverdue(d Deal, now time.Time) bool {
	if d.Stage.IsTerminal() || d.ExpectedCloseDate == nil {
		return false
	}
	return d.ExpectedCloseDate.Before(now)
}

// NeedsAttention reports whether an open deal is overdue or stale
func NeedsAttention(d Deal, now time.Time) bool {
	return IsOverdue(d, now) || IsStale(d, now)
}

// Classify returns overdue, stale or ok, in that precedence
func Classify(d Deal, now time.Time) Health {
	switch {
	case IsOverdue(d, now):
		return HealthOverdue
	case IsStale(d, now):
		return HealthStale
	default:
		return HealthOK
	}
}

// ExpectedRevenue weights a deal value by its closing probability (0..100)
func ExpectedRevenue(value decimal.Decimal, probability int) decimal.Decimal {
	return value.Mul(decimal.NewFromInt(int64(probability))).Div(decimal.NewFromInt(100))
}
