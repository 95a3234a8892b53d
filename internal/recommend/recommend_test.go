package recommend

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/career-recommender/internal/answers"
	"github.com/spigell/career-recommender/internal/encoder"
	"github.com/spigell/career-recommender/internal/logger"
	"github.com/spigell/career-recommender/internal/model"
	"github.com/spigell/career-recommender/internal/model/forest"
	"github.com/spigell/career-recommender/internal/schema"
)

func fixturePredictor(t *testing.T) *model.Predictor {
	t.Helper()

	f, err := forest.Load(filepath.Join("..", "model", "forest", "testdata", "forest.json"))
	require.NoError(t, err)

	p, err := model.NewPredictor(f)
	require.NoError(t, err)
	return p
}

func sample() *answers.Answers {
	return &answers.Answers{
		Name:                "Margaret",
		LogicalThinking:     8,
		Hackathons:          1,
		CodingSkills:        7,
		PublicSpeaking:      5,
		SelfLearning:        answers.Yes,
		ExtraCourse:         answers.Yes,
		Certificate:         "distro making",
		Workshop:            "system designing",
		ReadWritingSkill:    answers.Excellent,
		MemoryCapability:    answers.Medium,
		SubjectInterest:     "Software Engineering",
		CareerInterest:      "developer",
		CompanyType:         "Product based",
		SeniorAdvice:        answers.No,
		BookGenre:           "Guide",
		Introvert:           answers.No,
		TeamPlayer:          answers.Yes,
		ManagementTechnical: answers.Technical,
		WorkStyle:           answers.SmartWorker,
	}
}

func newService(t *testing.T, log *zap.Logger) *Service {
	t.Helper()

	svc, err := New(&Config{Timeout: time.Second}, &Deps{
		Encoder:   encoder.New(encoder.Canonical()),
		Predictor: fixturePredictor(t),
		Logger:    log,
	})
	require.NoError(t, err)
	return svc
}

func TestRecommendProducesDistribution(t *testing.T) {
	svc := newService(t, zap.NewNop())

	res, err := svc.Recommend(context.Background(), sample())
	require.NoError(t, err)

	assert.NotEmpty(t, res.RequestID)
	assert.Equal(t, "Margaret", res.Name)
	require.Len(t, res.Ranked, schema.NumClasses)

	sum := 0.0
	for _, p := range res.Ranked {
		assert.GreaterOrEqual(t, p.Probability, 0.0)
		assert.LessOrEqual(t, p.Probability, 1.0)
		sum += p.Probability
	}
	assert.InDelta(t, 1.0, sum, 1e-9)

	assert.Equal(t, res.Ranked[0], res.Best)
	assert.Len(t, res.Top(5), 5)
	assert.Equal(t, 1.0, res.Features[schema.Certificate])
	assert.Equal(t, 5.0, res.Features[schema.Workshop])
}

func TestRecommendIsRepeatable(t *testing.T) {
	svc := newService(t, zap.NewNop())

	first, err := svc.Recommend(context.Background(), sample())
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		again, err := svc.Recommend(context.Background(), sample())
		require.NoError(t, err)
		assert.Equal(t, first.Features, again.Features)
		assert.Equal(t, first.Distribution.Probabilities(), again.Distribution.Probabilities())
		assert.NotEqual(t, first.RequestID, again.RequestID)
	}
}

func TestSwappingCategoricalCodesChangesOutput(t *testing.T) {
	svc := newService(t, zap.NewNop())

	original := sample()
	base, err := svc.Recommend(context.Background(), original)
	require.NoError(t, err)

	// Same numeric codes, swapped between columns: certificate 1 <-> workshop 5.
	swapped := sample()
	swapped.Certificate = "machine learning"
	swapped.Workshop = "data science"

	other, err := svc.Recommend(context.Background(), swapped)
	require.NoError(t, err)

	assert.Equal(t, base.Features[schema.Certificate], other.Features[schema.Workshop])
	assert.Equal(t, base.Features[schema.Workshop], other.Features[schema.Certificate])
	assert.NotEqual(t, base.Distribution.Probabilities(), other.Distribution.Probabilities())
}

func TestRecommendFailures(t *testing.T) {
	svc := newService(t, zap.NewNop())

	unknown := sample()
	unknown.Certificate = "quantum computing"
	_, err := svc.Recommend(context.Background(), unknown)
	assert.ErrorIs(t, err, encoder.ErrLookup)

	invalid := sample()
	invalid.CodingSkills = 12
	_, err = svc.Recommend(context.Background(), invalid)
	var verr *answers.ValidationError
	assert.ErrorAs(t, err, &verr)
}

type blockingClassifier struct{}

func (blockingClassifier) NumFeatures() int  { return schema.NumFeatures }
func (blockingClassifier) Classes() []string { return schema.Labels() }

func (blockingClassifier) PredictProba(ctx context.Context, _ []float64) ([]float64, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestRecommendTimesOut(t *testing.T) {
	p, err := model.NewPredictor(blockingClassifier{})
	require.NoError(t, err)

	svc, err := New(&Config{Timeout: 10 * time.Millisecond}, &Deps{Predictor: p})
	require.NoError(t, err)

	_, err = svc.Recommend(context.Background(), sample())
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestRecommendLogsRequestID(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	svc := newService(t, zap.New(core))
	svc.newID = func() string { return "fixed-id" }

	_, err := svc.Recommend(context.Background(), sample())
	require.NoError(t, err)

	entries := observed.FilterMessage("career predicted").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "fixed-id", entries[0].ContextMap()[logger.FieldRequestID])
}

func TestNewRequiresPredictor(t *testing.T) {
	_, err := New(nil, nil)
	assert.Error(t, err)

	_, err = New(nil, &Deps{})
	assert.Error(t, err)
}
