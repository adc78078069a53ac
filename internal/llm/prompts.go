package llm

import (
	"fmt"
	"strings"
)

// BuildParsePrompt renders the resume-parse instruction for one excerpt.
// The prompt pins an exact ten-field schema and forbids prose so the
// normalizer has a fighting chance; compliance is attempted, not guaranteed.
func BuildParsePrompt(excerpt string) string {
	return fmt.Sprintf(`You are an expert resume parser. Extract structured candidate information from this resume text.

Resume Text:
"""
%s
"""

Return ONLY a single valid JSON object (no markdown, no explanation) with this exact structure:
{
  "full_name": "Candidate full name",
  "email": "email@example.com",
  "phone_number": "+1 555 000 0000",
  "linkedin_url": "https://linkedin.com/in/...",
  "location": "City, Country",
  "professional_summary": "2-3 sentence summary",
  "work_experience": [
    {"company": "Company name", "title": "Job title", "duration": "2019-2023", "description": "What they did"}
  ],
  "education": [
    {"institution": "University name", "degree": "Degree", "field": "Field of study", "year": "2019"}
  ],
  "skills": ["Skill name"],
  "projects": [
    {"name": "Project name", "description": "What it is", "technologies": "Stack used"}
  ]
}

Important:
- Use "" for any string field not found in the text
- Use [] for any list with no data
- skills must be a flat array of strings
- Do not invent information that is not in the text
- Do not include any text outside the JSON object`, excerpt)
}

// BuildSearchPrompt renders the relevance-scoring instruction for a query
// over the caller's stored profiles.
func BuildSearchPrompt(query string, docs []ProfileDoc) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`You are an expert technical recruiter. Score each candidate below for relevance to this search query.

Search Query: %s

Candidates:
`, query))

	for i, d := range docs {
		sb.WriteString(fmt.Sprintf(`
---
Candidate %d:
- Upload ID: %s
- Name: %s
- Location: %s
- Summary: %s
- Skills: %s
`, i+1, d.UploadID, d.Profile.FullName, d.Profile.Location,
			d.Profile.ProfessionalSummary, strings.Join(d.Profile.Skills, ", ")))
	}

	sb.WriteString(`
Return ONLY a valid JSON array (no markdown, no explanation) with one entry per relevant candidate:
[
  {
    "upload_id": "the candidate's upload ID exactly as given",
    "relevance_score": 0.85,
    "justification": "One short sentence explaining the match"
  }
]

Important:
- relevance_score is a number between 0 and 1
- Include every candidate, even weak matches; score weak matches low
- Do not include any text outside the JSON array`)

	return sb.String()
}

// BuildOutreachPrompt renders the outreach-message instruction. The output
// is free text, not JSON.
func BuildOutreachPrompt(profile CandidateProfile, role, company, tone string) string {
	if tone == "" {
		tone = "professional"
	}
	return fmt.Sprintf(`You are a recruiting assistant. Write a short outreach message to this candidate.

Candidate:
- Name: %s
- Location: %s
- Summary: %s
- Skills: %s

Role: %s
Company: %s
Tone: %s

Write 3-4 sentences addressed to the candidate by first name. Reference one or
two of their specific skills or experiences. End with an invitation to talk.
Return only the message text, no subject line, no commentary.`,
		profile.FullName, profile.Location, profile.ProfessionalSummary,
		strings.Join(profile.Skills, ", "), role, company, tone)
}

// BuildScreeningPrompt renders the screening-questions instruction.
func BuildScreeningPrompt(profile CandidateProfile, role string) string {
	return fmt.Sprintf(`You are an expert technical interviewer. Generate screening questions for this candidate.

Candidate:
- Name: %s
- Summary: %s
- Skills: %s

Role being screened for: %s

Return ONLY a valid JSON array (no markdown, no explanation) of exactly 5 questions:
[
  {
    "category": "Technical|Experience|Behavioral|Motivation",
    "question": "The question to ask",
    "purpose": "What the answer reveals"
  }
]

Do not include any text outside the JSON array.`,
		profile.FullName, profile.ProfessionalSummary,
		strings.Join(profile.Skills, ", "), role)
}
