// Package schema holds the fixed feature and label layout the career
// classifier was trained on. Order matters everywhere: classifiers are
// column-position sensitive.
package schema

const (
	LogicalThinking     = "logical_thinking"
	HackathonAttend     = "hackathon_attend"
	CodingSkills        = "coding_skills"
	PublicSpeaking      = "public_speaking_skills"
	SelfLearning        = "self_learning"
	ExtraCourse         = "extra_course"
	Certificate         = "certificate"
	Workshop            = "workshop"
	ReadWritingSkills   = "read_writing_skills"
	MemoryCapability    = "memory_capability"
	SubjectInterest     = "subject_interest"
	CareerInterest      = "career_interest"
	CompanyIntend       = "company_intend"
	SeniorElderAdvise   = "senior_elder_advise"
	BookInterest        = "book_interest"
	IntrovertExtro      = "introvert_extro"
	TeamPlayer          = "team_player"
	ManagementTechnical = "management_technical"
	SmartHardworker     = "smart_hardworker"
)

// NumFeatures is the width of the feature vector.
const NumFeatures = 19

// NumClasses is the number of career labels the classifier scores.
const NumClasses = 12

var featureNames = [NumFeatures]string{
	LogicalThinking,
	HackathonAttend,
	CodingSkills,
	PublicSpeaking,
	SelfLearning,
	ExtraCourse,
	Certificate,
	Workshop,
	ReadWritingSkills,
	MemoryCapability,
	SubjectInterest,
	CareerInterest,
	CompanyIntend,
	SeniorElderAdvise,
	BookInterest,
	IntrovertExtro,
	TeamPlayer,
	ManagementTechnical,
	SmartHardworker,
}

var labels = [NumClasses]string{
	"Applications Developer",
	"CRM Technical Developer",
	"Database Developer",
	"Mobile Applications Developer",
	"Network Security Engineer",
	"Software Developer",
	"Software Engineer",
	"Software QA/Testing",
	"Systems Security Administrator",
	"Technical Support",
	"UX Designer",
	"Web Developer",
}

// FeatureNames returns a copy of the feature column names in training order.
func FeatureNames() []string {
	out := make([]string, NumFeatures)
	copy(out, featureNames[:])
	return out
}

// Labels returns a copy of the career labels in classifier output order.
func Labels() []string {
	out := make([]string, NumClasses)
	copy(out, labels[:])
	return out
}

// FeatureIndex returns the column position of the named feature.
func FeatureIndex(name string) (int, bool) {
	for i, n := range featureNames {
		if n == name {
			return i, true
		}
	}
	return -1, false
}
