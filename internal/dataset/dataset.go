// Package dataset cross-checks the built-in category tables against a
// training dataset CSV. It is a maintenance tool and never feeds predictions.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spigell/career-recommender/internal/encoder"
)

// Mismatch is a label whose dataset code differs from the table code.
type Mismatch struct {
	Label     string `json:"label"`
	Canonical int    `json:"canonical"`
	Derived   int    `json:"derived"`
}

// FieldReport compares one table against the codes derived from its column.
type FieldReport struct {
	Field  encoder.Field `json:"field"`
	Column string        `json:"column"`
	// Missing labels appear in the dataset but not in the table.
	Missing []string `json:"missing,omitempty"`
	// Unseen labels are in the table but never appear in the dataset.
	Unseen     []string   `json:"unseen,omitempty"`
	Mismatched []Mismatch `json:"mismatched,omitempty"`
}

func (r FieldReport) OK() bool {
	return len(r.Missing) == 0 && len(r.Unseen) == 0 && len(r.Mismatched) == 0
}

type Report struct {
	Rows   int           `json:"rows"`
	Fields []FieldReport `json:"fields"`
}

// OK reports whether every table agrees with the dataset.
func (r *Report) OK() bool {
	for _, f := range r.Fields {
		if !f.OK() {
			return false
		}
	}
	return true
}

// Derived holds the labels of each categorical column, ordered the way
// category codes are assigned: sorted unique values, empty cells skipped.
type Derived struct {
	Rows   int
	Labels map[encoder.Field][]string
}

// Tables builds a table set from the derived labels.
func (d *Derived) Tables() (*encoder.Tables, error) {
	return encoder.NewTables(d.Labels)
}

// Derive reads a CSV with a header row.
func Derive(r io.Reader) (*Derived, error) {
	reader := csv.NewReader(r)
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("dataset is empty")
		}
		return nil, fmt.Errorf("reading dataset header: %w", err)
	}

	columns := make(map[encoder.Field]int, len(encoder.Fields()))
	for _, field := range encoder.Fields() {
		i := columnIndex(header, field.DatasetColumn())
		if i < 0 {
			return nil, fmt.Errorf("dataset has no column %q for %s", field.DatasetColumn(), field)
		}
		columns[field] = i
	}

	seen := make(map[encoder.Field]map[string]struct{}, len(columns))
	for field := range columns {
		seen[field] = map[string]struct{}{}
	}

	rows := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading dataset row %d: %w", rows+1, err)
		}
		rows++

		for field, i := range columns {
			if value := record[i]; value != "" {
				seen[field][value] = struct{}{}
			}
		}
	}

	out := &Derived{Rows: rows, Labels: make(map[encoder.Field][]string, len(seen))}
	for field, values := range seen {
		labels := make([]string, 0, len(values))
		for v := range values {
			labels = append(labels, v)
		}
		sort.Strings(labels)
		out.Labels[field] = labels
	}
	return out, nil
}

// columnIndex prefers an exact header match and falls back to a trimmed one,
// since some exported headers carry trailing spaces and some lose them.
func columnIndex(header []string, name string) int {
	for i, h := range header {
		if strings.TrimPrefix(h, "\ufeff") == name {
			return i
		}
	}
	for i, h := range header {
		if strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")) == strings.TrimSpace(name) {
			return i
		}
	}
	return -1
}

// Compare reports every disagreement between tables and d.
func Compare(tables *encoder.Tables, d *Derived) *Report {
	report := &Report{Rows: d.Rows}

	for _, field := range encoder.Fields() {
		fr := FieldReport{Field: field, Column: field.DatasetColumn()}
		derived := d.Labels[field]

		table := tables.Table(field)
		if table == nil {
			fr.Missing = append([]string(nil), derived...)
			report.Fields = append(report.Fields, fr)
			continue
		}

		inDataset := make(map[string]struct{}, len(derived))
		for code, label := range derived {
			inDataset[label] = struct{}{}

			canonical, err := table.Code(label)
			if err != nil {
				fr.Missing = append(fr.Missing, label)
				continue
			}
			if canonical != code {
				fr.Mismatched = append(fr.Mismatched, Mismatch{Label: label, Canonical: canonical, Derived: code})
			}
		}

		for _, label := range table.Labels() {
			if _, ok := inDataset[label]; !ok {
				fr.Unseen = append(fr.Unseen, label)
			}
		}

		report.Fields = append(report.Fields, fr)
	}

	return report
}

// Verify derives codes from r and compares them with tables.
func Verify(r io.Reader, tables *encoder.Tables) (*Report, error) {
	if tables == nil {
		tables = encoder.Canonical()
	}
	d, err := Derive(r)
	if err != nil {
		return nil, err
	}
	return Compare(tables, d), nil
}

func VerifyFile(path string, tables *encoder.Tables) (*Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dataset: %w", err)
	}
	defer f.Close()

	return Verify(f, tables)
}
