package httpapi

import (
	"github.com/khanglvm/orbit/internal/domain"
	"github.com/khanglvm/orbit/internal/interview"
)

// QuestionResponse is a question as shown to the client.
type QuestionResponse struct {
	ID      string              `json:"id"`
	Text    string              `json:"text"`
	Type    domain.QuestionType `json:"type"`
	Options []any               `json:"options"`
}

// SessionStartResponse is returned by POST /session/start.
type SessionStartResponse struct {
	SessionID string           `json:"session_id"`
	Question  QuestionResponse `json:"question"`
}

// ResponseRequest is the body of POST /response.
type ResponseRequest struct {
	SessionID  string         `json:"session_id" binding:"required"`
	QuestionID string         `json:"question_id" binding:"required"`
	Answer     *domain.Answer `json:"answer" binding:"required"`
	LatencyMS  *int64         `json:"latency_ms,omitempty" binding:"omitempty,min=0"`
}

// ResponseResponse is returned by POST /response: either the next
// question, or done with the completion reason.
type ResponseResponse struct {
	Question  *QuestionResponse `json:"question,omitempty"`
	Done      bool              `json:"done,omitempty"`
	SessionID string            `json:"session_id,omitempty"`
	Reason    string            `json:"reason,omitempty"`
}

// ResultResponse is returned by GET /session/:id/result.
type ResultResponse struct {
	SessionID          string                  `json:"session_id"`
	Recommendations    []domain.Recommendation `json:"recommendations"`
	Confidence         *float64                `json:"confidence"`
	AverageUncertainty *float64                `json:"average_uncertainty"`
	QuestionsAnswered  int                     `json:"questions_answered"`
}

// ErrorResponse carries a failure message.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// RootResponse is returned by GET /.
type RootResponse struct {
	Message string `json:"message"`
	Version string `json:"version"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

func questionResponse(q domain.Question) QuestionResponse {
	return QuestionResponse{
		ID:      q.ID,
		Text:    q.Text,
		Type:    q.Type,
		Options: q.Options,
	}
}

func submitResponse(res interview.SubmitResult) ResponseResponse {
	if !res.Done {
		q := questionResponse(*res.Question)
		return ResponseResponse{Question: &q}
	}
	return ResponseResponse{
		Done:      true,
		SessionID: res.SessionID,
		Reason:    string(res.Reason),
	}
}

func resultResponse(v interview.ResultView) ResultResponse {
	recs := v.Recommendations
	if recs == nil {
		recs = []domain.Recommendation{}
	}
	return ResultResponse{
		SessionID:          v.SessionID,
		Recommendations:    recs,
		Confidence:         v.Confidence,
		AverageUncertainty: v.AverageUncertainty,
		QuestionsAnswered:  v.QuestionsAnswered,
	}
}
