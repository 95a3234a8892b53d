// Package answers describes a single form submission and how it is decoded
// and validated before encoding.
package answers

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Choices offered for the two-value and three-level questions.
const (
	Yes = "Yes"
	No  = "No"

	Poor      = "poor"
	Medium    = "medium"
	Excellent = "excellent"

	Management = "Management"
	Technical  = "Technical"

	HardWorker  = "hard worker"
	SmartWorker = "smart worker"
)

// Answers is one raw submission. Categorical values are kept as the labels
// the user picked; they are turned into codes by the encoder.
type Answers struct {
	Name string `mapstructure:"name" json:"name,omitempty"`

	LogicalThinking int `mapstructure:"logical-thinking" json:"logical-thinking" validate:"min=1,max=9"`
	Hackathons      int `mapstructure:"hackathons" json:"hackathons" validate:"min=0,max=6"`
	CodingSkills    int `mapstructure:"coding-skills" json:"coding-skills" validate:"min=1,max=9"`
	PublicSpeaking  int `mapstructure:"public-speaking" json:"public-speaking" validate:"min=1,max=9"`

	SelfLearning string `mapstructure:"self-learning" json:"self-learning" validate:"required,oneof=Yes No"`
	ExtraCourse  string `mapstructure:"extra-course" json:"extra-course" validate:"required,oneof=Yes No"`

	Certificate string `mapstructure:"certificate" json:"certificate" validate:"required"`
	Workshop    string `mapstructure:"workshop" json:"workshop" validate:"required"`

	ReadWritingSkill string `mapstructure:"read-writing-skill" json:"read-writing-skill" validate:"required,oneof=poor medium excellent"`
	MemoryCapability string `mapstructure:"memory-capability" json:"memory-capability" validate:"required,oneof=poor medium excellent"`

	SubjectInterest string `mapstructure:"subject-interest" json:"subject-interest" validate:"required"`
	CareerInterest  string `mapstructure:"career-interest" json:"career-interest" validate:"required"`
	CompanyType     string `mapstructure:"company-type" json:"company-type" validate:"required"`

	SeniorAdvice string `mapstructure:"senior-advice" json:"senior-advice" validate:"required,oneof=Yes No"`
	BookGenre    string `mapstructure:"book-genre" json:"book-genre" validate:"required"`
	Introvert    string `mapstructure:"introvert" json:"introvert" validate:"required,oneof=Yes No"`
	TeamPlayer   string `mapstructure:"team-player" json:"team-player" validate:"required,oneof=Yes No"`

	ManagementTechnical string `mapstructure:"management-technical" json:"management-technical" validate:"required,oneof=Management Technical"`
	WorkStyle           string `mapstructure:"work-style" json:"work-style" validate:"required,oneof='hard worker' 'smart worker'"`
}

// ValidationError lists every field that failed range or presence checks.
type ValidationError struct {
	Fields []FieldError
}

// FieldError is a single failed check.
type FieldError struct {
	Field string
	Rule  string
	Param string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		if f.Param != "" {
			parts = append(parts, fmt.Sprintf("%s: %s=%s", f.Field, f.Rule, f.Param))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Rule))
	}
	return "invalid answers: " + strings.Join(parts, "; ")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report the kebab-case key the user actually typed.
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	return v
}

// Validate checks slider ranges and that every choice was answered. Closed
// choices must be one of their fixed values; membership in the category
// tables is left to the encoder.
func (a *Answers) Validate() error {
	if a == nil {
		return errors.New("answers are required")
	}

	err := validate.Struct(a)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validating answers: %w", err)
	}

	out := &ValidationError{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{
			Field: fe.Field(),
			Rule:  fe.Tag(),
			Param: fe.Param(),
		})
	}
	return out
}

// FromMap decodes loosely typed values, e.g. slider values given as strings.
// Unknown keys are rejected so typos do not silently drop an answer, and a
// missing slider is a ValidationError rather than a zero.
func FromMap(values map[string]any) (*Answers, error) {
	if missing := missingKeys(values); len(missing) > 0 {
		out := &ValidationError{Fields: make([]FieldError, 0, len(missing))}
		for _, key := range missing {
			out.Fields = append(out.Fields, FieldError{Field: key, Rule: "required"})
		}
		return nil, out
	}

	var a Answers

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &a,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook:       wholeNumberHook,
	})
	if err != nil {
		return nil, fmt.Errorf("creating answers decoder: %w", err)
	}

	if err := decoder.Decode(values); err != nil {
		return nil, fmt.Errorf("decoding answers: %w", err)
	}

	return &a, nil
}

// missingKeys lists the slider keys absent from values. Choices are caught
// by the required rule in Validate since their zero value is empty.
func missingKeys(values map[string]any) []string {
	present := make(map[string]struct{}, len(values))
	for key := range values {
		present[strings.ToLower(key)] = struct{}{}
	}

	var missing []string
	t := reflect.TypeOf(Answers{})
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Type.Kind() != reflect.Int {
			continue
		}
		key := strings.SplitN(field.Tag.Get("mapstructure"), ",", 2)[0]
		if _, ok := present[key]; !ok {
			missing = append(missing, key)
		}
	}
	return missing
}

// wholeNumberHook refuses to truncate fractional numbers into int fields.
func wholeNumberHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to.Kind() != reflect.Int {
		return data, nil
	}

	var f float64
	switch from.Kind() {
	case reflect.Float32, reflect.Float64:
		f = reflect.ValueOf(data).Float()
	default:
		return data, nil
	}

	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return nil, fmt.Errorf("expected a whole number, got %v", data)
	}
	return int(f), nil
}

// Load reads answers from a YAML or JSON file.
func Load(path string) (*Answers, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("answers file path is empty")
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading answers file %q: %w", path, err)
	}

	return FromMap(v.AllSettings())
}
