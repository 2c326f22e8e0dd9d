package report

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/alfredjeanlab/phonecheck/internal/model"
)

// Header is the first row of every worksheet the reporter creates.
var Header = []any{"Phone", "Username", "First name", "Last name", "ID", "Checked at", "Checked by"}

// CheckedAtLayout formats the "Checked at" column.
const CheckedAtLayout = "2006-01-02 15:04:05"

// SheetsReporter appends positives to a worksheet named after the report
// label, creating the worksheet with a header row when it does not exist.
type SheetsReporter struct {
	svc *sheets.Service
}

// NewSheetsReporter builds a reporter. Credentials come from the Google
// client library's default discovery unless opts say otherwise.
func NewSheetsReporter(ctx context.Context, opts ...option.ClientOption) (*SheetsReporter, error) {
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating sheets service: %w", err)
	}
	return &SheetsReporter{svc: svc}, nil
}

func (r *SheetsReporter) Submit(ctx context.Context, payload model.ReportPayload) error {
	if len(payload.Entries) == 0 {
		return nil
	}
	target := payload.Target

	created, err := r.ensureWorksheet(ctx, target)
	if err != nil {
		return err
	}

	var rows [][]any
	if created {
		rows = append(rows, Header)
	}
	for _, e := range payload.Entries {
		rows = append(rows, Row(e))
	}

	_, err = r.svc.Spreadsheets.Values.Append(target.SheetID, a1Range(target.Label), &sheets.ValueRange{Values: rows}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("appending %d rows to %q: %w", len(payload.Entries), target.Label, err)
	}
	return nil
}

// ensureWorksheet creates the worksheet if missing and reports whether it did.
func (r *SheetsReporter) ensureWorksheet(ctx context.Context, target model.ReportTarget) (bool, error) {
	ss, err := r.svc.Spreadsheets.Get(target.SheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return false, fmt.Errorf("opening spreadsheet %s: %w", target.SheetID, err)
	}
	for _, sh := range ss.Sheets {
		if sh.Properties != nil && sh.Properties.Title == target.Label {
			return false, nil
		}
	}

	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{
					Title: target.Label,
					GridProperties: &sheets.GridProperties{
						RowCount:    1000,
						ColumnCount: int64(len(Header)),
					},
				},
			},
		}},
	}
	if _, err := r.svc.Spreadsheets.BatchUpdate(target.SheetID, req).Context(ctx).Do(); err != nil {
		return false, fmt.Errorf("adding worksheet %q: %w", target.Label, err)
	}
	return true, nil
}

// Row renders one report entry in Header column order.
func Row(e model.ReportEntry) []any {
	var a model.Attributes
	if e.Attributes != nil {
		a = *e.Attributes
	}
	id := ""
	if a.AccountID != 0 {
		id = strconv.FormatInt(a.AccountID, 10)
	}
	return []any{
		e.Identifier,
		a.Handle,
		a.FirstName,
		a.LastName,
		id,
		e.CheckedAt.Format(CheckedAtLayout),
		e.CheckedBy,
	}
}

// a1Range addresses a whole worksheet, quoting the title.
func a1Range(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}
