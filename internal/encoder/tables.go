package encoder

import (
	"fmt"
	"sort"
)

// Field identifies a categorical question that is encoded through a table.
type Field string

const (
	FieldCertificate Field = "certificate"
	FieldWorkshop    Field = "workshop"
	FieldSubject     Field = "subject-interest"
	FieldCareerArea  Field = "career-interest"
	FieldCompanyType Field = "company-type"
	FieldBookGenre   Field = "book-genre"
)

// Fields returns the table-backed fields in form order.
func Fields() []Field {
	return []Field{
		FieldCertificate,
		FieldWorkshop,
		FieldSubject,
		FieldCareerArea,
		FieldCompanyType,
		FieldBookGenre,
	}
}

// DatasetColumn is the column name the field had in the training dataset.
func (f Field) DatasetColumn() string {
	switch f {
	case FieldCertificate:
		return "certifications"
	case FieldWorkshop:
		return "workshops"
	case FieldSubject:
		return "Interested subjects"
	case FieldCareerArea:
		return "interested career area "
	case FieldCompanyType:
		return "Type of company want to settle in?"
	case FieldBookGenre:
		return "Interested Type of Books"
	default:
		return ""
	}
}

// Canonical labels per field. The code of a label is its index. Labels are
// kept in byte order, which is the order category codes were assigned in
// when the classifier was trained.
var (
	certificates = []string{
		"app development",
		"distro making",
		"full stack",
		"hadoop",
		"information security",
		"machine learning",
		"python",
		"r programming",
		"shell programming",
	}

	workshops = []string{
		"cloud computing",
		"data science",
		"database security",
		"game development",
		"hacking",
		"system designing",
		"testing",
		"web technologies",
	}

	subjects = []string{
		"Computer Architecture",
		"IOT",
		"Management",
		"Software Engineering",
		"cloud computing",
		"data engineering",
		"hacking",
		"networks",
		"parallel computing",
		"programming",
	}

	careerAreas = []string{
		"Business process analyst",
		"cloud computing",
		"developer",
		"security",
		"system developer",
		"testing",
	}

	companyTypes = []string{
		"BPA",
		"Cloud Services",
		"Finance",
		"Product based",
		"SAaS services",
		"Sales and Marketing",
		"Service Based",
		"Testing and Maintainance Services",
		"Web Services",
		"product development",
	}

	bookGenres = []string{
		"Action and Adventure",
		"Anthology",
		"Art",
		"Autobiographies",
		"Biographies",
		"Childrens",
		"Comics",
		"Cookbooks",
		"Diaries",
		"Dictionaries",
		"Drama",
		"Encyclopedias",
		"Fantasy",
		"Guide",
		"Health",
		"History",
		"Horror",
		"Journals",
		"Math",
		"Mystery",
		"Poetry",
		"Prayer books",
		"Religion-Spirituality",
		"Romance",
		"Satire",
		"Science",
		"Science fiction",
		"Self help",
		"Series",
		"Travel",
		"Trilogy",
	}
)

// Table is an immutable label to code mapping for one field.
type Table struct {
	field  Field
	labels []string
	codes  map[string]int
}

// NewTable builds a table where each label's code is its position.
func NewTable(field Field, labels []string) (*Table, error) {
	t := &Table{
		field:  field,
		labels: make([]string, len(labels)),
		codes:  make(map[string]int, len(labels)),
	}
	copy(t.labels, labels)

	for i, label := range labels {
		if _, dup := t.codes[label]; dup {
			return nil, fmt.Errorf("table %s: duplicate label %q", field, label)
		}
		t.codes[label] = i
	}

	return t, nil
}

func (t *Table) Field() Field { return t.field }

// Labels returns the labels ordered by code.
func (t *Table) Labels() []string {
	out := make([]string, len(t.labels))
	copy(out, t.labels)
	return out
}

func (t *Table) Len() int { return len(t.labels) }

// Code returns the code for label or a LookupError.
func (t *Table) Code(label string) (int, error) {
	code, ok := t.codes[label]
	if !ok {
		return 0, &LookupError{Field: string(t.field), Label: label}
	}
	return code, nil
}

// Label returns the label for code.
func (t *Table) Label(code int) (string, bool) {
	if code < 0 || code >= len(t.labels) {
		return "", false
	}
	return t.labels[code], true
}

// Tables is the full set of category tables, built once at startup and shared
// read-only between requests.
type Tables struct {
	byField map[Field]*Table
}

// Canonical returns the built-in tables.
func Canonical() *Tables {
	tables, err := NewTables(map[Field][]string{
		FieldCertificate: certificates,
		FieldWorkshop:    workshops,
		FieldSubject:     subjects,
		FieldCareerArea:  careerAreas,
		FieldCompanyType: companyTypes,
		FieldBookGenre:   bookGenres,
	})
	if err != nil {
		// The literal tables above are known to be valid.
		panic(err)
	}
	return tables
}

// NewTables builds a table set. Every field returned by Fields must be present.
func NewTables(labels map[Field][]string) (*Tables, error) {
	ts := &Tables{byField: make(map[Field]*Table, len(labels))}

	for _, field := range Fields() {
		l, ok := labels[field]
		if !ok {
			return nil, fmt.Errorf("missing table for field %s", field)
		}
		if !sort.StringsAreSorted(l) {
			return nil, fmt.Errorf("table %s: labels must be sorted", field)
		}
		t, err := NewTable(field, l)
		if err != nil {
			return nil, err
		}
		ts.byField[field] = t
	}

	return ts, nil
}

// Table returns the table for field, or nil if there is none.
func (ts *Tables) Table(field Field) *Table {
	return ts.byField[field]
}

// Encode maps label to its code in the field's table.
func (ts *Tables) Encode(field Field, label string) (int, error) {
	t := ts.byField[field]
	if t == nil {
		return 0, fmt.Errorf("no table for field %q", field)
	}
	return t.Code(label)
}
