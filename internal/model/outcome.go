package model

import "time"

// Attributes describe the account an identifier resolved to.
type Attributes struct {
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Handle    string `json:"handle,omitempty"`
	AccountID int64  `json:"account_id,omitempty"`
}

// DisplayName joins first and last name.
func (a Attributes) DisplayName() string {
	switch {
	case a.FirstName == "":
		return a.LastName
	case a.LastName == "":
		return a.FirstName
	}
	return a.FirstName + " " + a.LastName
}

// LookupOutcome is the result of resolving a single identifier.
// Attributes is set only when Found is true.
type LookupOutcome struct {
	Identifier string      `json:"identifier"`
	Found      bool        `json:"found"`
	Attributes *Attributes `json:"attributes,omitempty"`
}

// ReportEntry is a positive outcome tagged with who checked it and when.
type ReportEntry struct {
	LookupOutcome
	CheckedBy string    `json:"checked_by"`
	CheckedAt time.Time `json:"checked_at"`
}

// ReportPayload is handed to the reporting sink after a run. It only ever
// contains outcomes with Found set.
type ReportPayload struct {
	RunID   string        `json:"run_id,omitempty"`
	Target  ReportTarget  `json:"target"`
	Entries []ReportEntry `json:"entries"`
}
