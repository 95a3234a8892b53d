// Package model wraps an opaque career classifier behind a small scoring
// interface and checks that it matches the fixed feature and label schema.
package model

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/spigell/career-recommender/internal/features"
	"github.com/spigell/career-recommender/internal/schema"
)

var (
	// ErrSchemaMismatch means the classifier shape disagrees with the schema.
	ErrSchemaMismatch = errors.New("classifier schema mismatch")
	// ErrArtifactLoad means the model artifact is missing or corrupt.
	ErrArtifactLoad = errors.New("model artifact load failed")
)

// probabilityTolerance bounds the drift allowed when probabilities are summed.
const probabilityTolerance = 1e-6

// Classifier is implemented by concrete models.
type Classifier interface {
	// NumFeatures is the input width the model was trained on.
	NumFeatures() int
	// Classes are the output labels in PredictProba order.
	Classes() []string
	// PredictProba returns one probability per class for a single row.
	PredictProba(ctx context.Context, row []float64) ([]float64, error)
}

// Scorer turns a feature vector into a label distribution.
type Scorer interface {
	Score(ctx context.Context, v features.Vector) (*Distribution, error)
}

// Prediction is a single label with its probability.
type Prediction struct {
	Label       string  `json:"label"`
	Probability float64 `json:"probability"`
}

// Distribution is the probability of every career label, in schema order.
type Distribution struct {
	labels []string
	probs  []float64
}

// NewDistribution pairs labels with probabilities positionally.
func NewDistribution(labels []string, probs []float64) (*Distribution, error) {
	if len(labels) != len(probs) {
		return nil, fmt.Errorf("%w: %d labels, %d probabilities", ErrSchemaMismatch, len(labels), len(probs))
	}

	sum := 0.0
	for i, p := range probs {
		if math.IsNaN(p) || p < 0 || p > 1 {
			return nil, fmt.Errorf("%w: probability %v for %q out of range", ErrSchemaMismatch, p, labels[i])
		}
		sum += p
	}
	if math.Abs(sum-1) > probabilityTolerance {
		return nil, fmt.Errorf("%w: probabilities sum to %v", ErrSchemaMismatch, sum)
	}

	d := &Distribution{
		labels: make([]string, len(labels)),
		probs:  make([]float64, len(probs)),
	}
	copy(d.labels, labels)
	copy(d.probs, probs)
	return d, nil
}

func (d *Distribution) Len() int { return len(d.labels) }

// Labels returns labels in classifier output order.
func (d *Distribution) Labels() []string {
	out := make([]string, len(d.labels))
	copy(out, d.labels)
	return out
}

// Probabilities returns probabilities in classifier output order.
func (d *Distribution) Probabilities() []float64 {
	out := make([]float64, len(d.probs))
	copy(out, d.probs)
	return out
}

// Probability returns the probability of label.
func (d *Distribution) Probability(label string) (float64, bool) {
	for i, l := range d.labels {
		if l == label {
			return d.probs[i], true
		}
	}
	return 0, false
}

// Map returns the distribution keyed by label.
func (d *Distribution) Map() map[string]float64 {
	out := make(map[string]float64, len(d.labels))
	for i, l := range d.labels {
		out[l] = d.probs[i]
	}
	return out
}

// Ranked returns predictions by descending probability. Ties keep label order.
func (d *Distribution) Ranked() []Prediction {
	out := make([]Prediction, len(d.labels))
	for i, l := range d.labels {
		out[i] = Prediction{Label: l, Probability: d.probs[i]}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Probability > out[j].Probability
	})
	return out
}

// Top returns the n most likely predictions. n <= 0 returns all of them.
func (d *Distribution) Top(n int) []Prediction {
	ranked := d.Ranked()
	if n <= 0 || n >= len(ranked) {
		return ranked
	}
	return ranked[:n]
}

// Best returns the most likely label; the first one wins on ties.
func (d *Distribution) Best() Prediction {
	best := 0
	for i, p := range d.probs {
		if p > d.probs[best] {
			best = i
		}
	}
	return Prediction{Label: d.labels[best], Probability: d.probs[best]}
}

// CheckSchema verifies c accepts the schema's feature width and emits the
// schema's labels in the schema's order.
func CheckSchema(c Classifier) error {
	if c == nil {
		return fmt.Errorf("%w: classifier is nil", ErrSchemaMismatch)
	}

	if n := c.NumFeatures(); n != schema.NumFeatures {
		return fmt.Errorf("%w: classifier expects %d features, schema has %d", ErrSchemaMismatch, n, schema.NumFeatures)
	}

	classes := c.Classes()
	labels := schema.Labels()
	if len(classes) != len(labels) {
		return fmt.Errorf("%w: classifier has %d classes, schema has %d", ErrSchemaMismatch, len(classes), len(labels))
	}
	for i := range labels {
		if classes[i] != labels[i] {
			return fmt.Errorf("%w: class %d is %q, expected %q", ErrSchemaMismatch, i, classes[i], labels[i])
		}
	}

	// Column names are optional in artifacts but must match when present.
	named, ok := c.(interface{ FeatureNames() []string })
	if !ok {
		return nil
	}
	names := named.FeatureNames()
	if len(names) == 0 {
		return nil
	}
	expected := schema.FeatureNames()
	if len(names) != len(expected) {
		return fmt.Errorf("%w: classifier names %d features, schema has %d", ErrSchemaMismatch, len(names), len(expected))
	}
	for i := range expected {
		if names[i] != expected[i] {
			return fmt.Errorf("%w: feature %d is %q, expected %q", ErrSchemaMismatch, i, names[i], expected[i])
		}
	}

	return nil
}

// Predictor calls a schema-checked classifier.
type Predictor struct {
	classifier Classifier
	labels     []string
}

// NewPredictor fails fast when c does not match the schema.
func NewPredictor(c Classifier) (*Predictor, error) {
	if err := CheckSchema(c); err != nil {
		return nil, err
	}
	return &Predictor{classifier: c, labels: schema.Labels()}, nil
}

// Predict returns the most likely label and the full distribution.
func (p *Predictor) Predict(ctx context.Context, v features.Vector) (string, *Distribution, error) {
	probs, err := p.classifier.PredictProba(ctx, v.Slice())
	if err != nil {
		return "", nil, fmt.Errorf("predict proba: %w", err)
	}

	dist, err := NewDistribution(p.labels, probs)
	if err != nil {
		return "", nil, err
	}

	return dist.Best().Label, dist, nil
}

// Score implements Scorer.
func (p *Predictor) Score(ctx context.Context, v features.Vector) (*Distribution, error) {
	_, dist, err := p.Predict(ctx, v)
	return dist, err
}
