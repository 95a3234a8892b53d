// Package form asks the career questionnaire on the terminal.
package form

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"

	"github.com/spigell/career-recommender/internal/answers"
	"github.com/spigell/career-recommender/internal/encoder"
)

// ErrAborted is returned when the user interrupts the questionnaire.
var ErrAborted = errors.New("questionnaire aborted")

// Asker is the terminal. Prompter implements it with promptui.
type Asker interface {
	Input(label string, validate func(string) error) (string, error)
	Choose(label string, items []string) (string, error)
}

type kind int

const (
	kindInput kind = iota
	kindChoice
)

type question struct {
	key   string
	label string
	kind  kind
	items []string
}

// Form holds the ordered questions. Choice items for categorical questions
// come from the tables, so every offered label is encodable.
type Form struct {
	asker     Asker
	questions []question
}

func New(asker Asker, tables *encoder.Tables) *Form {
	if tables == nil {
		tables = encoder.Canonical()
	}
	return &Form{asker: asker, questions: questions(tables)}
}

func questions(tables *encoder.Tables) []question {
	yesNo := []string{answers.Yes, answers.No}
	levels := []string{answers.Poor, answers.Medium, answers.Excellent}
	labels := func(f encoder.Field) []string { return tables.Table(f).Labels() }

	return []question{
		{key: "name", label: "Your name", kind: kindInput},
		{key: "logical-thinking", label: "Logical quotient rating", kind: kindChoice, items: scale(1, 9)},
		{key: "hackathons", label: "Hackathons attended", kind: kindChoice, items: scale(0, 6)},
		{key: "coding-skills", label: "Coding skills rating", kind: kindChoice, items: scale(1, 9)},
		{key: "public-speaking", label: "Public speaking points", kind: kindChoice, items: scale(1, 9)},
		{key: "self-learning", label: "Self-learning capability?", kind: kindChoice, items: yesNo},
		{key: "extra-course", label: "Extra courses did?", kind: kindChoice, items: yesNo},
		{key: "certificate", label: "Certifications", kind: kindChoice, items: labels(encoder.FieldCertificate)},
		{key: "workshop", label: "Workshops", kind: kindChoice, items: labels(encoder.FieldWorkshop)},
		{key: "read-writing-skill", label: "Reading and writing skills", kind: kindChoice, items: levels},
		{key: "memory-capability", label: "Memory capability score", kind: kindChoice, items: levels},
		{key: "subject-interest", label: "Interested subjects", kind: kindChoice, items: labels(encoder.FieldSubject)},
		{key: "career-interest", label: "Interested career area", kind: kindChoice, items: labels(encoder.FieldCareerArea)},
		{key: "company-type", label: "Type of company you want to settle in", kind: kindChoice, items: labels(encoder.FieldCompanyType)},
		{key: "senior-advice", label: "Taken inputs from seniors or elders?", kind: kindChoice, items: yesNo},
		{key: "book-genre", label: "Interested type of books", kind: kindChoice, items: labels(encoder.FieldBookGenre)},
		{key: "introvert", label: "Are you an introvert?", kind: kindChoice, items: yesNo},
		{key: "team-player", label: "Worked in teams ever?", kind: kindChoice, items: yesNo},
		{key: "management-technical", label: "Management or Technical", kind: kindChoice, items: []string{answers.Management, answers.Technical}},
		{key: "work-style", label: "Hard or smart worker", kind: kindChoice, items: []string{answers.HardWorker, answers.SmartWorker}},
	}
}

func scale(from, to int) []string {
	out := make([]string, 0, to-from+1)
	for i := from; i <= to; i++ {
		out = append(out, strconv.Itoa(i))
	}
	return out
}

// Run asks every question in order and decodes the replies.
func (f *Form) Run() (*answers.Answers, error) {
	if f == nil || f.asker == nil {
		return nil, errors.New("form has no terminal")
	}

	values := make(map[string]any, len(f.questions))
	for _, q := range f.questions {
		var (
			reply string
			err   error
		)

		switch q.kind {
		case kindInput:
			reply, err = f.asker.Input(q.label, notBlank)
		default:
			reply, err = f.asker.Choose(q.label, q.items)
		}
		if err != nil {
			if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
				return nil, ErrAborted
			}
			return nil, fmt.Errorf("asking %s: %w", q.key, err)
		}

		values[q.key] = strings.TrimSpace(reply)
	}

	return answers.FromMap(values)
}

// Keys returns the answer keys in the order they are asked.
func (f *Form) Keys() []string {
	keys := make([]string, 0, len(f.questions))
	for _, q := range f.questions {
		keys = append(keys, q.key)
	}
	return keys
}

func notBlank(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("must not be empty")
	}
	return nil
}

// Prompter asks questions with promptui.
type Prompter struct {
	// Size is the number of visible select items.
	Size int
}

func (p Prompter) Input(label string, validate func(string) error) (string, error) {
	prompt := promptui.Prompt{
		Label:    label,
		Validate: validate,
	}
	return prompt.Run()
}

func (p Prompter) Choose(label string, items []string) (string, error) {
	size := p.Size
	if size <= 0 {
		size = 10
	}

	prompt := promptui.Select{
		Label: label,
		Items: items,
		Size:  size,
	}

	_, selected, err := prompt.Run()
	return selected, err
}
