package enum

import (
	"database/sql/driver"
	"fmt"
)

// OpportunityStage represents a pipeline stage of an opportunity.
// Declaration order is the board display order; it implies no transition rule.
type OpportunityStage string

const (
	StageInitialContact OpportunityStage = "INITIAL_CONTACT"
	StageNeedsAnalysis  OpportunityStage = "NEEDS_ANALYSIS"
	StageProposalSent   OpportunityStage = "PROPOSAL_SENT"
	StageNegotiation    OpportunityStage = "NEGOTIATION"
	StageContractReview OpportunityStage = "CONTRACT_REVIEW"
	StageClosedWon      OpportunityStage = "CLOSED_WON"
	StageClosedLost     OpportunityStage = "CLOSED_LOST"
	StageOnHold         OpportunityStage = "ON_HOLD"
)

var stageLabels = map[OpportunityStage]string{
	StageInitialContact: "Initial contact",
	StageNeedsAnalysis:  "Needs analysis",
	StageProposalSent:   "Proposal sent",
	StageNegotiation:    "Negotiation",
	StageContractReview: "Contract review",
	StageClosedWon:      "Closed won",
	StageClosedLost:     "Closed lost",
	StageOnHold:         "On hold",
}

// AllOpportunityStages returns every stage in display order
func AllOpportunityStages() []OpportunityStage {
	return []OpportunityStage{
		StageInitialContact,
		StageNeedsAnalysis,
		StageProposalSent,
		StageNegotiation,
		StageContractReview,
		StageClosedWon,
		StageClosedLost,
		StageOnHold,
	}
}

func (s OpportunityStage) String() string {
	return string(s)
}

// Label returns the human readable stage name
func (s OpportunityStage) Label() string {
	if l, ok := stageLabels[s]; ok {
		return l
	}
	return string(s)
}

// IsValid checks if the stage is a member of the enumeration
func (s OpportunityStage) IsValid() bool {
	_, ok := stageLabels[s]
	return ok
}

// IsTerminal reports whether the stage closes the deal
func (s OpportunityStage) IsTerminal() bool {
	return s == StageClosedWon || s == StageClosedLost
}

func (s OpportunityStage) Value() (driver.Value, error) {
	return string(s), nil
}

func (s *OpportunityStage) Scan(value interface{}) error {
	if value == nil {
		*s = StageInitialContact
		return nil
	}
	switch v := value.(type) {
	case string:
		*s = OpportunityStage(v)
	case []byte:
		*s = OpportunityStage(v)
	default:
		return fmt.Errorf("cannot scan %T into OpportunityStage", value)
	}
	return nil
}
