package llm

// CandidateProfile is the normalized shape produced from a parsed resume.
// Every field is always present after normalization: scalar fields default to
// "" and list fields to empty slices, regardless of what the model returned.
type CandidateProfile struct {
	FullName            string                   `json:"full_name"`
	Email               string                   `json:"email"`
	PhoneNumber         string                   `json:"phone_number"`
	LinkedinURL         string                   `json:"linkedin_url"`
	Location            string                   `json:"location"`
	ProfessionalSummary string                   `json:"professional_summary"`
	WorkExperience      []map[string]interface{} `json:"work_experience"`
	Education           []map[string]interface{} `json:"education"`
	Skills              []string                 `json:"skills"`
	Projects            []map[string]interface{} `json:"projects"`
}

// DefaultProfile returns the canonical all-defaults profile.
func DefaultProfile() CandidateProfile {
	return CandidateProfile{
		WorkExperience: []map[string]interface{}{},
		Education:      []map[string]interface{}{},
		Skills:         []string{},
		Projects:       []map[string]interface{}{},
	}
}

// ProfileDoc pairs a stored profile with the upload record it came from.
// The search prompt enumerates these so the model can reference uploads by ID.
type ProfileDoc struct {
	UploadID string           `json:"upload_id"`
	Profile  CandidateProfile `json:"profile"`
}

// RankedMatch is one entry of the model's search response.
type RankedMatch struct {
	UploadID       string  `json:"upload_id"`
	RelevanceScore float64 `json:"relevance_score"`
	Justification  string  `json:"justification"`
}

// ScreeningQuestion is one entry of the model's screening-questions response.
type ScreeningQuestion struct {
	Category string `json:"category"`
	Question string `json:"question"`
	Purpose  string `json:"purpose"`
}

// Message is a single chat-completion message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Outcome tags whether normalization produced a trustworthy parse or fell
// back to defaults. Callers that care about data quality can tell the two
// apart; callers that don't can ignore it.
type Outcome int

const (
	OutcomeParsed Outcome = iota
	OutcomeDefaulted
)

func (o Outcome) String() string {
	if o == OutcomeDefaulted {
		return "defaulted"
	}
	return "parsed"
}
