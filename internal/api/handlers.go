package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"readiness-workers/internal/assessment"
	apperrors "readiness-workers/internal/common/errors"
	"readiness-workers/internal/report"
)

type answerRequest struct {
	Answer string `json:"answer"`
}

type scoresRequest struct {
	Answers []string `json:"answers"`
}

type questionsResponse struct {
	SessionID string                          `json:"sessionId"`
	Questions []assessment.AssessmentQuestion `json:"questions"`
	Dropped   []assessment.DroppedEntry       `json:"dropped"`
}

type reportResponse struct {
	SessionID string                      `json:"sessionId"`
	Report    *assessment.ReadinessReport `json:"report"`
	View      report.ReportView           `json:"view"`
}

func (s *Server) createSession(c *gin.Context) {
	var profile assessment.CompanyProfile
	if err := c.ShouldBindJSON(&profile); err != nil {
		s.writeError(c, apperrors.NewInvalidInputError("request body: "+err.Error()))
		return
	}
	if err := profile.ValidateStrict(); err != nil {
		s.writeError(c, err)
		return
	}

	sess, err := s.sessions.Create(c.Request.Context(), profile)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sess)
}

func (s *Server) getSession(c *gin.Context) {
	sess, err := s.sessions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

func (s *Server) deleteSession(c *gin.Context) {
	if err := s.sessions.Delete(c.Request.Context(), c.Param("id")); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) generateQuestions(c *gin.Context) {
	ctx := c.Request.Context()
	sess, err := s.sessions.Get(ctx, c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}

	batch, err := s.pipeline.RequestQuestions(ctx, sess.Profile.Industry, sess.Profile.Size, sess.Profile.Country)
	if err != nil {
		s.writeError(c, err)
		return
	}

	sess.SetQuestions(batch.Questions)
	if err := s.sessions.Save(ctx, sess); err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, questionsResponse{
		SessionID: sess.ID,
		Questions: batch.Questions,
		Dropped:   batch.Dropped,
	})
}

func (s *Server) recordAnswer(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		s.writeError(c, apperrors.NewInvalidInputError(fmt.Sprintf("answer index %q is not a number", c.Param("index"))))
		return
	}
	var req answerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, apperrors.NewInvalidInputError("request body: "+err.Error()))
		return
	}

	ctx := c.Request.Context()
	sess, err := s.sessions.Get(ctx, c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	if err := sess.RecordAnswer(index, req.Answer); err != nil {
		s.writeError(c, err)
		return
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sessionId": sess.ID,
		"answered":  sess.Answered(),
		"total":     len(sess.Questions),
	})
}

func (s *Server) generateRecommendations(c *gin.Context) {
	ctx := c.Request.Context()
	sess, err := s.sessions.Get(ctx, c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}

	items, err := s.pipeline.RequestRecommendations(ctx, sess.AnswersText(), sess.Profile)
	if err != nil {
		s.writeError(c, err)
		return
	}

	sess.Recommendations = items
	if err := s.sessions.Save(ctx, sess); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessionId": sess.ID, "recommendations": items})
}

func (s *Server) generateReport(c *gin.Context) {
	ctx := c.Request.Context()
	sess, err := s.sessions.Get(ctx, c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}

	rep, err := s.pipeline.RequestReadinessReport(ctx, sess.AnswersText(), sess.Profile)
	if err != nil {
		s.writeError(c, err)
		return
	}

	sess.Report = rep
	if err := s.sessions.Save(ctx, sess); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, reportResponse{SessionID: sess.ID, Report: rep, View: report.BuildView(rep)})
}

func (s *Server) calculateScores(c *gin.Context) {
	var req scoresRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, apperrors.NewInvalidInputError("request body: "+err.Error()))
		return
	}

	scores, err := assessment.CalculateScores(req.Answers)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"overall":        scores.Overall,
		"categories":     scores.Categories,
		"categoryScores": scores.ByCategory(),
	})
}

func (s *Server) scoreSession(c *gin.Context) {
	ctx := c.Request.Context()
	sess, err := s.sessions.Get(ctx, c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}

	scores, err := assessment.CalculateScores(sess.AnswerList())
	if err != nil {
		s.writeError(c, err)
		return
	}

	sess.Scores = scores
	if err := s.sessions.Save(ctx, sess); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"sessionId":      sess.ID,
		"overall":        scores.Overall,
		"categories":     scores.Categories,
		"categoryScores": scores.ByCategory(),
	})
}

// exportReport streams the stored report as a workbook. Category scores are
// included when the session has them.
func (s *Server) exportReport(c *gin.Context) {
	sess, err := s.sessions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	if sess.Report == nil {
		s.writeError(c, apperrors.NewInvalidInputError("session has no readiness report yet"))
		return
	}

	var buf bytes.Buffer
	if err := report.ExportXLSX(&buf, report.BuildView(sess.Report), sess.Scores, sess.Recommendations); err != nil {
		s.writeError(c, apperrors.NewInternalError(err))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="readiness-%s.xlsx"`, sess.ID))
	c.Data(http.StatusOK, report.ContentTypeXLSX, buf.Bytes())
}
