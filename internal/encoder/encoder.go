// Package encoder maps the human readable answers of the career form to the
// integer codes the classifier was trained on.
package encoder

import (
	"errors"
	"fmt"

	"github.com/spigell/career-recommender/internal/answers"
)

// ErrLookup is matched by every LookupError.
var ErrLookup = errors.New("label not found")

// LookupError is returned when a label has no code. It is never recovered
// with a default code.
type LookupError struct {
	Field string
	Label string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("%s: %q: %s", e.Field, e.Label, ErrLookup)
}

func (e *LookupError) Is(target error) bool {
	return target == ErrLookup
}

// Ordinal encodes the poor/medium/excellent scale as 0/1/2.
func Ordinal(field, label string) (int, error) {
	switch label {
	case answers.Poor:
		return 0, nil
	case answers.Medium:
		return 1, nil
	case answers.Excellent:
		return 2, nil
	default:
		return 0, &LookupError{Field: field, Label: label}
	}
}

// YesNo encodes Yes as 1 and No as 0. Anything else is rejected.
func YesNo(field, label string) (int, error) {
	switch label {
	case answers.Yes:
		return 1, nil
	case answers.No:
		return 0, nil
	default:
		return 0, &LookupError{Field: field, Label: label}
	}
}

// ManagementTechnical is 1 for Management and 0 otherwise.
func ManagementTechnical(label string) int {
	if label == answers.Management {
		return 1
	}
	return 0
}

// WorkStyle is 1 for a smart worker and 0 otherwise.
func WorkStyle(label string) int {
	if label == answers.SmartWorker {
		return 1
	}
	return 0
}

// Encoded is a fully encoded submission. Slider values are copied as is.
type Encoded struct {
	LogicalThinking     int
	Hackathons          int
	CodingSkills        int
	PublicSpeaking      int
	SelfLearning        int
	ExtraCourse         int
	Certificate         int
	Workshop            int
	ReadWritingSkill    int
	MemoryCapability    int
	SubjectInterest     int
	CareerInterest      int
	CompanyType         int
	SeniorAdvice        int
	BookGenre           int
	Introvert           int
	TeamPlayer          int
	ManagementTechnical int
	WorkStyle           int
}

// Encoder encodes whole submissions against a fixed set of tables.
type Encoder struct {
	tables *Tables
}

func New(tables *Tables) *Encoder {
	if tables == nil {
		tables = Canonical()
	}
	return &Encoder{tables: tables}
}

func (e *Encoder) Tables() *Tables { return e.tables }

// Encode returns the encoded form of a. The first failing lookup aborts.
func (e *Encoder) Encode(a *answers.Answers) (Encoded, error) {
	if a == nil {
		return Encoded{}, errors.New("answers are required")
	}

	out := Encoded{
		LogicalThinking:     a.LogicalThinking,
		Hackathons:          a.Hackathons,
		CodingSkills:        a.CodingSkills,
		PublicSpeaking:      a.PublicSpeaking,
		ManagementTechnical: ManagementTechnical(a.ManagementTechnical),
		WorkStyle:           WorkStyle(a.WorkStyle),
	}

	steps := []struct {
		dst    *int
		encode func() (int, error)
	}{
		{&out.SelfLearning, func() (int, error) { return YesNo("self-learning", a.SelfLearning) }},
		{&out.ExtraCourse, func() (int, error) { return YesNo("extra-course", a.ExtraCourse) }},
		{&out.Certificate, func() (int, error) { return e.tables.Encode(FieldCertificate, a.Certificate) }},
		{&out.Workshop, func() (int, error) { return e.tables.Encode(FieldWorkshop, a.Workshop) }},
		{&out.ReadWritingSkill, func() (int, error) { return Ordinal("read-writing-skill", a.ReadWritingSkill) }},
		{&out.MemoryCapability, func() (int, error) { return Ordinal("memory-capability", a.MemoryCapability) }},
		{&out.SubjectInterest, func() (int, error) { return e.tables.Encode(FieldSubject, a.SubjectInterest) }},
		{&out.CareerInterest, func() (int, error) { return e.tables.Encode(FieldCareerArea, a.CareerInterest) }},
		{&out.CompanyType, func() (int, error) { return e.tables.Encode(FieldCompanyType, a.CompanyType) }},
		{&out.SeniorAdvice, func() (int, error) { return YesNo("senior-advice", a.SeniorAdvice) }},
		{&out.BookGenre, func() (int, error) { return e.tables.Encode(FieldBookGenre, a.BookGenre) }},
		{&out.Introvert, func() (int, error) { return YesNo("introvert", a.Introvert) }},
		{&out.TeamPlayer, func() (int, error) { return YesNo("team-player", a.TeamPlayer) }},
	}

	for _, step := range steps {
		code, err := step.encode()
		if err != nil {
			return Encoded{}, err
		}
		*step.dst = code
	}

	return out, nil
}
