package model

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/career-recommender/internal/features"
	"github.com/spigell/career-recommender/internal/schema"
)

type stubClassifier struct {
	nFeatures int
	classes   []string
	names     []string
	proba     []float64
	err       error
	lastRow   []float64
}

func (s *stubClassifier) NumFeatures() int       { return s.nFeatures }
func (s *stubClassifier) Classes() []string      { return s.classes }
func (s *stubClassifier) FeatureNames() []string { return s.names }

func (s *stubClassifier) PredictProba(_ context.Context, row []float64) ([]float64, error) {
	s.lastRow = row
	return s.proba, s.err
}

func validStub() *stubClassifier {
	proba := make([]float64, schema.NumClasses)
	proba[3] = 0.5
	proba[7] = 0.3
	proba[0] = 0.2
	return &stubClassifier{
		nFeatures: schema.NumFeatures,
		classes:   schema.Labels(),
		proba:     proba,
	}
}

func TestCheckSchema(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *stubClassifier)
	}{
		{name: "feature count", mutate: func(s *stubClassifier) { s.nFeatures = 18 }},
		{name: "class count", mutate: func(s *stubClassifier) { s.classes = s.classes[:11] }},
		{name: "class order", mutate: func(s *stubClassifier) { s.classes[0], s.classes[1] = s.classes[1], s.classes[0] }},
		{name: "feature names", mutate: func(s *stubClassifier) {
			s.names = schema.FeatureNames()
			s.names[6], s.names[7] = s.names[7], s.names[6]
		}},
		{name: "feature name count", mutate: func(s *stubClassifier) { s.names = schema.FeatureNames()[:5] }},
	}

	require.NoError(t, CheckSchema(validStub()))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := validStub()
			tt.mutate(stub)

			err := CheckSchema(stub)
			assert.ErrorIs(t, err, ErrSchemaMismatch)

			_, err = NewPredictor(stub)
			assert.ErrorIs(t, err, ErrSchemaMismatch)
		})
	}

	assert.ErrorIs(t, CheckSchema(nil), ErrSchemaMismatch)
}

func TestPredictorPredict(t *testing.T) {
	stub := validStub()
	p, err := NewPredictor(stub)
	require.NoError(t, err)

	var v features.Vector
	v[2] = 8

	label, dist, err := p.Predict(context.Background(), v)
	require.NoError(t, err)

	assert.Equal(t, "Mobile Applications Developer", label)
	assert.Equal(t, 8.0, stub.lastRow[2])
	assert.Equal(t, schema.NumClasses, dist.Len())

	prob, ok := dist.Probability("Software QA/Testing")
	require.True(t, ok)
	assert.Equal(t, 0.3, prob)

	top := dist.Top(3)
	require.Len(t, top, 3)
	assert.Equal(t, []Prediction{
		{Label: "Mobile Applications Developer", Probability: 0.5},
		{Label: "Software QA/Testing", Probability: 0.3},
		{Label: "Applications Developer", Probability: 0.2},
	}, top)

	assert.Len(t, dist.Top(0), schema.NumClasses)
	assert.Len(t, dist.Top(100), schema.NumClasses)
}

func TestPredictorPropagatesFailures(t *testing.T) {
	boom := errors.New("boom")

	stub := validStub()
	p, err := NewPredictor(stub)
	require.NoError(t, err)

	stub.err = boom
	_, _, err = p.Predict(context.Background(), features.Vector{})
	assert.ErrorIs(t, err, boom)

	stub.err = nil
	stub.proba = stub.proba[:5]
	_, err = p.Score(context.Background(), features.Vector{})
	assert.ErrorIs(t, err, ErrSchemaMismatch)
}

func TestNewDistributionRejectsBadProbabilities(t *testing.T) {
	labels := []string{"a", "b"}

	_, err := NewDistribution(labels, []float64{0.5, 0.4})
	assert.ErrorIs(t, err, ErrSchemaMismatch)

	_, err = NewDistribution(labels, []float64{1.5, -0.5})
	assert.ErrorIs(t, err, ErrSchemaMismatch)

	_, err = NewDistribution(labels, []float64{1})
	assert.ErrorIs(t, err, ErrSchemaMismatch)

	d, err := NewDistribution(labels, []float64{0.5, 0.5})
	require.NoError(t, err)
	assert.Equal(t, Prediction{Label: "a", Probability: 0.5}, d.Best())
	assert.Equal(t, map[string]float64{"a": 0.5, "b": 0.5}, d.Map())
	assert.Equal(t, []Prediction{{"a", 0.5}, {"b", 0.5}}, d.Ranked())
}
