package llm

import (
	"encoding/json"
	"strings"
)

// Normalization coerces raw completion text into the fixed shapes the rest of
// the pipeline expects. The parse path never fails: a response the model
// mangled degrades to the all-defaults profile instead of blocking an upload
// from reaching a terminal state.

// stripFences removes markdown code fences from model output.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// objectSpan returns the outermost { ... } span, tolerating leading and
// trailing prose the model was told not to produce.
func objectSpan(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end < start {
		return "", false
	}
	return s[start : end+1], true
}

// arraySpan returns the outermost [ ... ] span.
func arraySpan(s string) (string, bool) {
	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start == -1 || end == -1 || end < start {
		return "", false
	}
	return s[start : end+1], true
}

// NormalizeProfile extracts a CandidateProfile from raw completion text.
// All ten fields are present and correctly typed in the result; anything
// missing or wrong-typed becomes the type-appropriate default. The returned
// Outcome says whether a JSON object was actually parsed or the whole
// response was unusable.
func NormalizeProfile(raw string) (CandidateProfile, Outcome) {
	span, ok := objectSpan(stripFences(raw))
	if !ok {
		return DefaultProfile(), OutcomeDefaulted
	}

	var fields map[string]interface{}
	if err := json.Unmarshal([]byte(span), &fields); err != nil {
		return DefaultProfile(), OutcomeDefaulted
	}

	p := CandidateProfile{
		FullName:            asString(fields["full_name"]),
		Email:               asString(fields["email"]),
		PhoneNumber:         asString(fields["phone_number"]),
		LinkedinURL:         asString(fields["linkedin_url"]),
		Location:            asString(fields["location"]),
		ProfessionalSummary: asString(fields["professional_summary"]),
		WorkExperience:      asRecordList(fields["work_experience"]),
		Education:           asRecordList(fields["education"]),
		Skills:              asStringList(fields["skills"]),
		Projects:            asRecordList(fields["projects"]),
	}
	return p, OutcomeParsed
}

// NormalizeMatchList extracts ranked search matches from raw completion text.
// Anything that is not a usable JSON array degrades to an empty list: an
// unusable list is simply no results.
func NormalizeMatchList(raw string) []RankedMatch {
	span, ok := arraySpan(stripFences(raw))
	if !ok {
		return []RankedMatch{}
	}

	var entries []map[string]interface{}
	if err := json.Unmarshal([]byte(span), &entries); err != nil {
		return []RankedMatch{}
	}

	matches := make([]RankedMatch, 0, len(entries))
	for _, e := range entries {
		m := RankedMatch{
			UploadID:      asString(e["upload_id"]),
			Justification: asString(e["justification"]),
		}
		if score, ok := e["relevance_score"].(float64); ok {
			m.RelevanceScore = score
		}
		if m.UploadID == "" {
			continue
		}
		matches = append(matches, m)
	}
	return matches
}

// genericScreeningQuestions is the fallback set used when the model's output
// is unusable. A screening page must never show zero content.
var genericScreeningQuestions = []ScreeningQuestion{
	{Category: "Experience", Question: "Walk me through your most recent role and your main responsibilities.", Purpose: "Establishes the candidate's actual day-to-day scope"},
	{Category: "Technical", Question: "Which technology from your resume do you know best, and what have you built with it?", Purpose: "Tests depth behind the listed skills"},
	{Category: "Experience", Question: "Describe a challenging problem you solved recently and how you approached it.", Purpose: "Reveals problem-solving process"},
	{Category: "Behavioral", Question: "Tell me about a time you disagreed with a teammate and how it was resolved.", Purpose: "Probes collaboration and conflict handling"},
	{Category: "Motivation", Question: "What are you looking for in your next role?", Purpose: "Checks alignment with the position"},
}

// NormalizeQuestionList extracts screening questions from raw completion
// text, falling back to the generic set when nothing usable comes back.
func NormalizeQuestionList(raw string) []ScreeningQuestion {
	span, ok := arraySpan(stripFences(raw))
	if !ok {
		return genericQuestions()
	}

	var entries []map[string]interface{}
	if err := json.Unmarshal([]byte(span), &entries); err != nil {
		return genericQuestions()
	}

	questions := make([]ScreeningQuestion, 0, len(entries))
	for _, e := range entries {
		q := ScreeningQuestion{
			Category: asString(e["category"]),
			Question: asString(e["question"]),
			Purpose:  asString(e["purpose"]),
		}
		if q.Question == "" {
			continue
		}
		questions = append(questions, q)
	}
	if len(questions) == 0 {
		return genericQuestions()
	}
	return questions
}

func genericQuestions() []ScreeningQuestion {
	out := make([]ScreeningQuestion, len(genericScreeningQuestions))
	copy(out, genericScreeningQuestions)
	return out
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

// asStringList keeps non-empty string elements and drops everything else.
func asStringList(v interface{}) []string {
	out := []string{}
	items, ok := v.([]interface{})
	if !ok {
		return out
	}
	for _, item := range items {
		if s := asString(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// asRecordList keeps object elements and drops everything else. Element
// contents are unconstrained by design: the model decides the keys.
func asRecordList(v interface{}) []map[string]interface{} {
	out := []map[string]interface{}{}
	items, ok := v.([]interface{})
	if !ok {
		return out
	}
	for _, item := range items {
		if rec, ok := item.(map[string]interface{}); ok {
			out = append(out, rec)
		}
	}
	return out
}
