/*
Package domain defines the data model shared by the interview core and its
storage and transport collaborators.

Questions and archetypes are read-only inputs. Sessions are mutated only by
the interview service. Responses and match reports are append-only.
*/
package domain

import "time"

// Dimensions is the length of every preference vector.
const Dimensions = 10

// QuestionType tags how a question is presented and answered.
type QuestionType string

const (
	QuestionMultipleChoice QuestionType = "multiple_choice"
	QuestionLikert         QuestionType = "likert"
	QuestionSlider         QuestionType = "slider"
	QuestionFreeText       QuestionType = "free_text"
)

// Valid reports whether t is one of the known question types.
func (t QuestionType) Valid() bool {
	switch t {
	case QuestionMultipleChoice, QuestionLikert, QuestionSlider, QuestionFreeText:
		return true
	}
	return false
}

// Question is a single catalog entry.
type Question struct {
	// ID is globally unique and carries the ordering key (first run of digits).
	ID string `json:"id"`

	// Text is the prompt shown to the user.
	Text string `json:"text"`

	// Type is the presentation tag.
	Type QuestionType `json:"type"`

	// Options lists selectable values; nil for free-form questions.
	// Entries are strings or numbers, kept as decoded JSON values.
	Options []any `json:"options,omitempty"`

	// Targets are the preference-dimension indices this question informs.
	Targets []int `json:"targets,omitempty"`

	// InfoWeight is the per-target information weight.
	InfoWeight []float64 `json:"info_weight,omitempty"`

	// Difficulty defaults to 1.0.
	Difficulty float64 `json:"difficulty,omitempty"`

	// Locale defaults to "en".
	Locale string `json:"locale,omitempty"`
}

// SessionStatus is the state of an interview session.
type SessionStatus string

const (
	StatusActive    SessionStatus = "active"
	StatusCompleted SessionStatus = "completed"
)

// CompletionReason records why a session reached the completed state.
type CompletionReason string

const (
	ReasonTimeLimit       CompletionReason = "time_limit"
	ReasonQuestionLimit   CompletionReason = "question_limit"
	ReasonNoMoreQuestions CompletionReason = "no_more_questions"
)

// Session is one run of the interview.
type Session struct {
	ID          string
	UserID      string
	AnsweredIDs []string
	Status      SessionStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time
	Reason      CompletionReason
}

// HasAnswered reports whether questionID is already in the answered set.
func (s *Session) HasAnswered(questionID string) bool {
	for _, id := range s.AnsweredIDs {
		if id == questionID {
			return true
		}
	}
	return false
}

// Complete moves the session to its terminal state.
func (s *Session) Complete(reason CompletionReason, at time.Time) {
	s.Status = StatusCompleted
	s.Reason = reason
	s.UpdatedAt = at
	s.CompletedAt = &at
}

// Response is one recorded answer.
type Response struct {
	ID         string
	SessionID  string
	QuestionID string
	Answer     Answer
	LatencyMS  *int64
	Timestamp  time.Time
}

// Archetype is a named reference profile in preference space.
type Archetype struct {
	ID     string    `json:"id"`
	Name   string    `json:"name"`
	Vector []float64 `json:"vector"`

	// MinRequirements maps a dimension index to a minimum value.
	MinRequirements map[int]float64 `json:"min_requirements,omitempty"`

	// Contraindications maps a dimension index to a disallowed threshold.
	Contraindications map[int]float64 `json:"contraindications,omitempty"`

	// Resources is free-form descriptive metadata (description, links).
	Resources map[string]any `json:"resources,omitempty"`
}

// Recommendation is one ranked entry of a match report.
type Recommendation struct {
	Rank        int     `json:"rank"`
	ArchetypeID string  `json:"archetype_id"`
	Name        string  `json:"name"`
	FitScore    float64 `json:"fit_score"`
	Explanation string  `json:"explanation"`
}

// MatchReport is the cached ranking for a completed session. At most one
// exists per session and it never changes after creation.
type MatchReport struct {
	ID                 string
	SessionID          string
	Recommendations    []Recommendation
	Confidence         *float64
	AverageUncertainty *float64
	CreatedAt          time.Time
}
