// Package importer feeds the bulk-import service from a watched drop
// folder: CSV files placed under <data>/import/<ownerID>/ are parsed,
// imported, and replaced by a JSON result report.
package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/contactdock/contactdock-server/internal/domain"
)

// Row is one parsed CSV row. Tags arrive as names and are resolved to ids
// against the owner's tag set before import.
type Row struct {
	domain.ImportRow
	TagNames []string
}

// ParseCSV reads a contact CSV with a header row.
//
// Recognized columns: name, email, phone, company, notes, tags. Column
// order is free, unknown columns are ignored, and the tags column holds
// pipe-separated tag names.
func ParseCSV(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := columns["name"]; !ok {
		return nil, fmt.Errorf("missing required column %q", "name")
	}
	if _, ok := columns["email"]; !ok {
		return nil, fmt.Errorf("missing required column %q", "email")
	}

	field := func(record []string, name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	var rows []Row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(rows)+1, err)
		}

		row := Row{
			ImportRow: domain.ImportRow{
				Name:    field(record, "name"),
				Email:   field(record, "email"),
				Phone:   field(record, "phone"),
				Company: field(record, "company"),
				Notes:   field(record, "notes"),
			},
		}
		for _, tagName := range strings.Split(field(record, "tags"), "|") {
			tagName = strings.TrimSpace(tagName)
			if tagName != "" {
				row.TagNames = append(row.TagNames, tagName)
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}
