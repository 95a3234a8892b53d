// Package features assembles the fixed-width vector consumed by the career
// classifier.
package features

import (
	"github.com/spigell/career-recommender/internal/answers"
	"github.com/spigell/career-recommender/internal/encoder"
	"github.com/spigell/career-recommender/internal/schema"
)

// Vector is one row of features in schema.FeatureNames order.
type Vector [schema.NumFeatures]float64

// Names returns the column names matching the vector positions.
func (v Vector) Names() []string {
	return schema.FeatureNames()
}

// Slice returns a copy of the values.
func (v Vector) Slice() []float64 {
	out := make([]float64, len(v))
	copy(out, v[:])
	return out
}

// Map returns the vector keyed by column name.
func (v Vector) Map() map[string]float64 {
	names := schema.FeatureNames()
	out := make(map[string]float64, len(names))
	for i, name := range names {
		out[name] = v[i]
	}
	return out
}

// Get returns the value of the named column.
func (v Vector) Get(name string) (float64, bool) {
	i, ok := schema.FeatureIndex(name)
	if !ok {
		return 0, false
	}
	return v[i], true
}

// Assemble lays out an encoded submission in training column order.
func Assemble(e encoder.Encoded) Vector {
	return Vector{
		float64(e.LogicalThinking),
		float64(e.Hackathons),
		float64(e.CodingSkills),
		float64(e.PublicSpeaking),
		float64(e.SelfLearning),
		float64(e.ExtraCourse),
		float64(e.Certificate),
		float64(e.Workshop),
		float64(e.ReadWritingSkill),
		float64(e.MemoryCapability),
		float64(e.SubjectInterest),
		float64(e.CareerInterest),
		float64(e.CompanyType),
		float64(e.SeniorAdvice),
		float64(e.BookGenre),
		float64(e.Introvert),
		float64(e.TeamPlayer),
		float64(e.ManagementTechnical),
		float64(e.WorkStyle),
	}
}

// Build encodes a and assembles the result.
func Build(enc *encoder.Encoder, a *answers.Answers) (Vector, error) {
	encoded, err := enc.Encode(a)
	if err != nil {
		return Vector{}, err
	}
	return Assemble(encoded), nil
}
