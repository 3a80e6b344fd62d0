package domain

import "time"

type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailed  Outcome = "failed"
)

func OutcomeOf(success bool) Outcome {
	if success {
		return OutcomeSuccess
	}
	return OutcomeFailed
}

// HistoryRecord is one audited operation attempt. Records are append-only:
// once written they are never mutated, only bulk-deleted by explicit action.
type HistoryRecord struct {
	ID        string
	Timestamp time.Time
	Operation string
	Email     string
	TargetID  string
	Result    Outcome
	Env       Environment
	Details   string
}

// HistoryDay groups one calendar day's records, keyed by ISO date.
type HistoryDay struct {
	Date    string
	Records []HistoryRecord
}

// HistoryDateFormat is the day key and file-name format of the ledger.
const HistoryDateFormat = "2006-01-02"
