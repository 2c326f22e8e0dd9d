package model

import "strings"

// Credentials authenticate the lookup service against the external resource.
type Credentials struct {
	APIID   string `json:"api_id"`
	APIHash string `json:"api_hash"`
}

// ReportTarget names where positive outcomes are written: a spreadsheet and
// the worksheet label (usually the client name).
type ReportTarget struct {
	SheetID string `json:"sheet_id"`
	Label   string `json:"label"`
}

// BatchRequest is everything an operator supplies for one run. It is built
// once and not modified while the run is active.
type BatchRequest struct {
	Credentials  Credentials  `json:"credentials"`
	Identifiers  []string     `json:"identifiers"`
	ReportTarget ReportTarget `json:"report_target"`
	Operator     string       `json:"operator"`
}

// ParseIdentifiers splits operator input on line boundaries, trims each line
// and drops blank ones. Order and duplicates are preserved.
func ParseIdentifiers(text string) []string {
	var ids []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		ids = append(ids, line)
	}
	return ids
}
