// Package gemini implements the career classifier on top of a Gemini model.
// It is an alternative to the forest artifact and satisfies the same
// model.Classifier contract; its output is not deterministic.
package gemini

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spigell/career-recommender/internal/encoder"
	"github.com/spigell/career-recommender/internal/model"
	"github.com/spigell/career-recommender/internal/schema"
	"github.com/spigell/career-recommender/internal/utils"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, system, prompt string) (string, error)
}

//go:embed prompt.md
var promptTemplate string

const (
	defaultMaxLogLength = 200
	systemInstruction   = "You are a careful career counsellor. Answer with JSON only."
)

// Classifier asks Gemini for a probability per career label.
type Classifier struct {
	generator contentGenerator
	tables    *encoder.Tables
	labels    []string
	logger    *zap.Logger
	maxLogLen int
}

var _ model.Classifier = (*Classifier)(nil)

// NewClassifier builds a classifier. tables are used to describe coded
// columns by their labels in the prompt.
func NewClassifier(generator contentGenerator, tables *encoder.Tables, logger *zap.Logger, maxLogLength int) *Classifier {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if tables == nil {
		tables = encoder.Canonical()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Classifier{
		generator: generator,
		tables:    tables,
		labels:    schema.Labels(),
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

func (c *Classifier) NumFeatures() int { return schema.NumFeatures }

func (c *Classifier) Classes() []string { return append([]string(nil), c.labels...) }

func (c *Classifier) FeatureNames() []string { return schema.FeatureNames() }

// PredictProba sends the described row to Gemini and normalizes the answer.
func (c *Classifier) PredictProba(ctx context.Context, row []float64) ([]float64, error) {
	if len(row) != schema.NumFeatures {
		return nil, fmt.Errorf("%w: got %d features, expected %d", model.ErrSchemaMismatch, len(row), schema.NumFeatures)
	}

	prompt := buildPrompt(describe(c.tables, row), c.labels)

	c.logger.Debug("gemini generate content request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, c.maxLogLen)),
	)

	raw, err := c.generator.GenerateContent(ctx, systemInstruction, prompt)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("gemini generate content response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, c.maxLogLen)),
	)

	return parseResponse(raw, c.labels)
}

func buildPrompt(profile string, labels []string) string {
	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Profile:\n{{PROFILE}}\n\nCareers:\n{{LABELS}}\n\nJSON Response:"
	}

	var list strings.Builder
	for i, label := range labels {
		if i > 0 {
			list.WriteString("\n")
		}
		list.WriteString("- ")
		list.WriteString(label)
	}

	prompt := strings.ReplaceAll(template, "{{PROFILE}}", profile)
	return strings.ReplaceAll(prompt, "{{LABELS}}", list.String())
}

// describe renders the row with coded columns turned back into labels.
func describe(tables *encoder.Tables, row []float64) string {
	tableColumns := map[string]encoder.Field{
		schema.Certificate:     encoder.FieldCertificate,
		schema.Workshop:        encoder.FieldWorkshop,
		schema.SubjectInterest: encoder.FieldSubject,
		schema.CareerInterest:  encoder.FieldCareerArea,
		schema.CompanyIntend:   encoder.FieldCompanyType,
		schema.BookInterest:    encoder.FieldBookGenre,
	}
	yesNo := map[string]bool{
		schema.SelfLearning:      true,
		schema.ExtraCourse:       true,
		schema.SeniorElderAdvise: true,
		schema.IntrovertExtro:    true,
		schema.TeamPlayer:        true,
	}
	ordinal := []string{"poor", "medium", "excellent"}

	var b strings.Builder
	for i, name := range schema.FeatureNames() {
		value := row[i]
		code := int(value)
		text := strconv.FormatFloat(value, 'f', -1, 64)

		switch {
		case tableColumns[name] != "":
			if t := tables.Table(tableColumns[name]); t != nil {
				if label, ok := t.Label(code); ok {
					text = label
				}
			}
		case yesNo[name]:
			text = pick(code, "no", "yes", text)
		case name == schema.ReadWritingSkills || name == schema.MemoryCapability:
			if code >= 0 && code < len(ordinal) {
				text = ordinal[code]
			}
		case name == schema.ManagementTechnical:
			text = pick(code, "technical", "management", text)
		case name == schema.SmartHardworker:
			text = pick(code, "hard worker", "smart worker", text)
		}

		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "- %s: %s", name, text)
	}
	return b.String()
}

func pick(code int, zero, one, fallback string) string {
	switch code {
	case 0:
		return zero
	case 1:
		return one
	default:
		return fallback
	}
}

func parseResponse(raw string, labels []string) ([]float64, error) {
	cleaned := extractJSON(raw)

	var data struct {
		Probabilities map[string]any `json:"probabilities"`
	}
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}
	if len(data.Probabilities) == 0 {
		return nil, errors.New("gemini response has no probabilities")
	}

	index := make(map[string]int, len(labels))
	for i, label := range labels {
		index[strings.ToLower(label)] = i
	}

	out := make([]float64, len(labels))
	total := 0.0
	for key, value := range data.Probabilities {
		i, ok := index[strings.ToLower(strings.TrimSpace(key))]
		if !ok {
			continue
		}
		p := coerceFloat(value)
		if math.IsNaN(p) || p < 0 {
			p = 0
		}
		out[i] = p
		total += p
	}

	if total == 0 {
		return nil, errors.New("gemini response assigns no probability to known careers")
	}

	for i := range out {
		out[i] /= total
	}
	return out, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func coerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case string:
		trimmed := strings.TrimSuffix(strings.TrimSpace(val), "%")
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return math.NaN()
		}
		if strings.HasSuffix(strings.TrimSpace(val), "%") {
			return f / 100
		}
		return f
	default:
		return math.NaN()
	}
}
