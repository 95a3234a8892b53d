package dataset

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/career-recommender/internal/encoder"
)

// writeDataset renders one column per field, cycling through labels so every
// label appears at least once. Rows are shuffled relative to sort order.
func writeDataset(t *testing.T, labels map[encoder.Field][]string) string {
	t.Helper()

	var b strings.Builder
	w := csv.NewWriter(&b)

	header := []string{"Logical quotient rating"}
	rows := 0
	for _, field := range encoder.Fields() {
		header = append(header, field.DatasetColumn())
		if n := len(labels[field]); n > rows {
			rows = n
		}
	}
	header = append(header, "Suggested Job Role")
	require.NoError(t, w.Write(header))

	for i := 0; i < rows; i++ {
		record := []string{"5"}
		for _, field := range encoder.Fields() {
			l := labels[field]
			record = append(record, l[(len(l)-1-i%len(l))])
		}
		record = append(record, "Web Developer")
		require.NoError(t, w.Write(record))
	}
	w.Flush()
	require.NoError(t, w.Error())

	return b.String()
}

func canonicalLabels() map[encoder.Field][]string {
	tables := encoder.Canonical()
	out := map[encoder.Field][]string{}
	for _, field := range encoder.Fields() {
		out[field] = tables.Table(field).Labels()
	}
	return out
}

func TestCanonicalDatasetAgrees(t *testing.T) {
	data := writeDataset(t, canonicalLabels())

	report, err := Verify(strings.NewReader(data), nil)
	require.NoError(t, err)

	assert.True(t, report.OK(), "%+v", report)
	assert.Equal(t, 31, report.Rows)
	assert.Len(t, report.Fields, len(encoder.Fields()))
}

func TestDerivedTablesMatchCanonical(t *testing.T) {
	d, err := Derive(strings.NewReader(writeDataset(t, canonicalLabels())))
	require.NoError(t, err)

	derived, err := d.Tables()
	require.NoError(t, err)

	canonical := encoder.Canonical()
	for _, field := range encoder.Fields() {
		if diff := cmp.Diff(canonical.Table(field).Labels(), derived.Table(field).Labels()); diff != "" {
			t.Fatalf("%s mismatch (-canonical +derived):\n%s", field, diff)
		}
	}
}

func TestInjectedDisagreementsAreReported(t *testing.T) {
	labels := canonicalLabels()
	labels[encoder.FieldCertificate] = append(labels[encoder.FieldCertificate], "quantum computing")
	labels[encoder.FieldWorkshop] = []string{
		"cloud computing",
		"data science",
		"database security",
		"game development",
		"hacking",
		"system designing",
		"web technologies",
	}

	report, err := Verify(strings.NewReader(writeDataset(t, labels)), encoder.Canonical())
	require.NoError(t, err)
	require.False(t, report.OK())

	byField := map[encoder.Field]FieldReport{}
	for _, f := range report.Fields {
		byField[f.Field] = f
	}

	cert := byField[encoder.FieldCertificate]
	assert.Equal(t, []string{"quantum computing"}, cert.Missing)
	assert.Empty(t, cert.Unseen)
	assert.Equal(t, []Mismatch{
		{Label: "r programming", Canonical: 7, Derived: 8},
		{Label: "shell programming", Canonical: 8, Derived: 9},
	}, cert.Mismatched)

	ws := byField[encoder.FieldWorkshop]
	assert.Empty(t, ws.Missing)
	assert.Equal(t, []string{"testing"}, ws.Unseen)
	assert.Equal(t, []Mismatch{{Label: "web technologies", Canonical: 7, Derived: 6}}, ws.Mismatched)

	assert.True(t, byField[encoder.FieldBookGenre].OK())
}

func TestTrailingSpaceHeaderAndEmptyCells(t *testing.T) {
	labels := canonicalLabels()
	data := writeDataset(t, labels)
	// Export without the trailing space on the career area header.
	data = strings.Replace(data, "interested career area ,", "interested career area,", 1)
	// A blank cell is skipped rather than treated as a label.
	data += "5,app development,,Management,developer,BPA,Guide,Web Developer\n"

	d, err := Derive(strings.NewReader(data))
	require.NoError(t, err)

	assert.Equal(t, 32, d.Rows)
	assert.Equal(t, labels[encoder.FieldWorkshop], d.Labels[encoder.FieldWorkshop])
	assert.Equal(t, labels[encoder.FieldCareerArea], d.Labels[encoder.FieldCareerArea])
}

func TestDeriveErrors(t *testing.T) {
	_, err := Derive(strings.NewReader(""))
	assert.Error(t, err)

	_, err = Derive(strings.NewReader("certifications,workshops\npython,hacking\n"))
	assert.ErrorContains(t, err, "Interested subjects")

	path := filepath.Join(t.TempDir(), "mldata.csv")
	require.NoError(t, os.WriteFile(path, []byte(writeDataset(t, canonicalLabels())), 0o600))
	report, err := VerifyFile(path, nil)
	require.NoError(t, err)
	assert.True(t, report.OK())

	_, err = VerifyFile(filepath.Join(t.TempDir(), "missing.csv"), nil)
	assert.Error(t, err)
}
