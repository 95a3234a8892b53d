package features

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/spigell/career-recommender/internal/answers"
	"github.com/spigell/career-recommender/internal/encoder"
	"github.com/spigell/career-recommender/internal/schema"
)

func sample() *answers.Answers {
	return &answers.Answers{
		LogicalThinking:     9,
		Hackathons:          6,
		CodingSkills:        1,
		PublicSpeaking:      4,
		SelfLearning:        answers.No,
		ExtraCourse:         answers.Yes,
		Certificate:         "hadoop",
		Workshop:            "hacking",
		ReadWritingSkill:    answers.Poor,
		MemoryCapability:    answers.Medium,
		SubjectInterest:     "IOT",
		CareerInterest:      "developer",
		CompanyType:         "Finance",
		SeniorAdvice:        answers.No,
		BookGenre:           "Anthology",
		Introvert:           answers.Yes,
		TeamPlayer:          answers.No,
		ManagementTechnical: answers.Management,
		WorkStyle:           answers.HardWorker,
	}
}

func TestBuildLaysOutColumnsInTrainingOrder(t *testing.T) {
	v, err := Build(encoder.New(encoder.Canonical()), sample())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := map[string]float64{
		schema.LogicalThinking:     9,
		schema.HackathonAttend:     6,
		schema.CodingSkills:        1,
		schema.PublicSpeaking:      4,
		schema.SelfLearning:        0,
		schema.ExtraCourse:         1,
		schema.Certificate:         3,
		schema.Workshop:            4,
		schema.ReadWritingSkills:   0,
		schema.MemoryCapability:    1,
		schema.SubjectInterest:     1,
		schema.CareerInterest:      2,
		schema.CompanyIntend:       2,
		schema.SeniorElderAdvise:   0,
		schema.BookInterest:        1,
		schema.IntrovertExtro:      1,
		schema.TeamPlayer:          0,
		schema.ManagementTechnical: 1,
		schema.SmartHardworker:     0,
	}

	if diff := cmp.Diff(want, v.Map()); diff != "" {
		t.Fatalf("unexpected vector (-want +got):\n%s", diff)
	}

	got, ok := v.Get(schema.Certificate)
	if !ok || got != 3 {
		t.Fatalf("expected certificate column 3, got %v (%v)", got, ok)
	}

	if _, ok := v.Get("salary"); ok {
		t.Fatalf("expected unknown column lookup to fail")
	}
}

func TestAssembleMatchesSchemaPositions(t *testing.T) {
	e := encoder.Encoded{
		LogicalThinking:     1,
		Hackathons:          2,
		CodingSkills:        3,
		PublicSpeaking:      4,
		SelfLearning:        5,
		ExtraCourse:         6,
		Certificate:         7,
		Workshop:            8,
		ReadWritingSkill:    9,
		MemoryCapability:    10,
		SubjectInterest:     11,
		CareerInterest:      12,
		CompanyType:         13,
		SeniorAdvice:        14,
		BookGenre:           15,
		Introvert:           16,
		TeamPlayer:          17,
		ManagementTechnical: 18,
		WorkStyle:           19,
	}

	v := Assemble(e)
	for i := range v {
		if v[i] != float64(i+1) {
			t.Fatalf("column %d (%s) = %v, expected %d", i, v.Names()[i], v[i], i+1)
		}
	}
}

func TestBuildIsRepeatable(t *testing.T) {
	enc := encoder.New(nil)

	first, err := Build(enc, sample())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := 0; i < 10; i++ {
		again, err := Build(enc, sample())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if again != first {
			t.Fatalf("vector changed between runs: %v != %v", again, first)
		}
	}
}

func TestBuildStopsOnLookupFailure(t *testing.T) {
	a := sample()
	a.BookGenre = "Cookbook"

	if _, err := Build(encoder.New(nil), a); err == nil {
		t.Fatal("expected lookup failure")
	}
}
