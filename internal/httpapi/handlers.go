package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/khanglvm/orbit/internal/interview"
	"github.com/khanglvm/orbit/internal/version"
)

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, RootResponse{Message: "ORBIT API", Version: version.APIVersion})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "healthy"})
}

func (s *Server) handleStartSession(c *gin.Context) {
	res, err := s.svc.Start(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, SessionStartResponse{
		SessionID: res.SessionID,
		Question:  questionResponse(res.Question),
	})
}

func (s *Server) handleSubmitResponse(c *gin.Context) {
	var req ResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Detail: "invalid request: " + err.Error()})
		return
	}

	res, err := s.svc.SubmitAnswer(c.Request.Context(), interview.SubmitRequest{
		SessionID:  req.SessionID,
		QuestionID: req.QuestionID,
		Answer:     *req.Answer,
		LatencyMS:  req.LatencyMS,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, submitResponse(res))
}

func (s *Server) handleResult(c *gin.Context) {
	view, err := s.svc.Result(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, resultResponse(view))
}
