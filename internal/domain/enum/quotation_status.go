package enum

import (
	"database/sql/driver"
	"fmt"
)

// QuotationStatus represents the lifecycle status of a quotation
type QuotationStatus string

const (
	QuotationStatusDraft     QuotationStatus = "DRAFT"
	QuotationStatusSent      QuotationStatus = "SENT"
	QuotationStatusViewed    QuotationStatus = "VIEWED"
	QuotationStatusAccepted  QuotationStatus = "ACCEPTED"
	QuotationStatusRejected  QuotationStatus = "REJECTED"
	QuotationStatusExpired   QuotationStatus = "EXPIRED"
	QuotationStatusConverted QuotationStatus = "CONVERTED"
)

// quotationTransitions lists the statuses reachable from each status.
var quotationTransitions = map[QuotationStatus][]QuotationStatus{
	QuotationStatusDraft:    {QuotationStatusSent},
	QuotationStatusSent:     {QuotationStatusViewed, QuotationStatusAccepted, QuotationStatusRejected, QuotationStatusExpired},
	QuotationStatusViewed:   {QuotationStatusAccepted, QuotationStatusRejected, QuotationStatusExpired},
	QuotationStatusAccepted: {QuotationStatusConverted},
}

// AllQuotationStatuses returns every status in lifecycle order
func AllQuotationStatuses() []QuotationStatus {
	return []QuotationStatus{
		QuotationStatusDraft,
		QuotationStatusSent,
		QuotationStatusViewed,
		QuotationStatusAccepted,
		QuotationStatusRejected,
		QuotationStatusExpired,
		QuotationStatusConverted,
	}
}

func (s QuotationStatus) String() string {
	return string(s)
}

// IsValid checks if the status is a known value
func (s QuotationStatus) IsValid() bool {
	switch s {
	case QuotationStatusDraft, QuotationStatusSent, QuotationStatusViewed, QuotationStatusAccepted,
		QuotationStatusRejected, QuotationStatusExpired, QuotationStatusConverted:
		return true
	}
	return false
}

// CanTransitionTo reports whether a quotation may move from s to next
func (s QuotationStatus) CanTransitionTo(next QuotationStatus) bool {
	for _, allowed := range quotationTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsExpirable reports whether a quotation in this status expires once valid_until passes
func (s QuotationStatus) IsExpirable() bool {
	return s == QuotationStatusSent || s == QuotationStatusViewed
}

func (s QuotationStatus) Value() (driver.Value, error) {
	return string(s), nil
}

func (s *QuotationStatus) Scan(value interface{}) error {
	if value == nil {
		*s = QuotationStatusDraft
		return nil
	}
	switch v := value.(type) {
	case string:
		*s = QuotationStatus(v)
	case []byte:
		*s = QuotationStatus(v)
	default:
		return fmt.Errorf("cannot scan %T into QuotationStatus", value)
	}
	return nil
}
