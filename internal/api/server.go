// Package api exposes the assessment pipeline and session store over HTTP.
package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"readiness-workers/internal/assessment"
	"readiness-workers/internal/common/config"
	"readiness-workers/internal/common/logger"
	"readiness-workers/internal/session"
)

// Pipeline is the set of generation operations the API serves.
type Pipeline interface {
	RequestQuestions(ctx context.Context, industry, companySize, country string) (*assessment.QuestionBatch, error)
	RequestRecommendations(ctx context.Context, answers string, profile assessment.CompanyProfile) ([]assessment.RecommendationItem, error)
	RequestReadinessReport(ctx context.Context, answers string, profile assessment.CompanyProfile) (*assessment.ReadinessReport, error)
}

type Server struct {
	pipeline Pipeline
	sessions session.Store
	config   config.HTTPConfig
	logger   logger.Logger
}

func NewServer(cfg config.HTTPConfig, pipeline Pipeline, sessions session.Store, log logger.Logger) *Server {
	return &Server{
		pipeline: pipeline,
		sessions: sessions,
		config:   cfg,
		logger:   log.With(map[string]interface{}{"component": "assessment-api"}),
	}
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(s.logger))
	r.Use(corsMiddleware(s.config.AllowedOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	v1 := r.Group("/api/v1")
	v1.Use(apiKeyAuth(s.config.APIKey))
	v1.Use(requestTimeout(config.GetDuration(s.config.RequestTimeout)))
	{
		v1.POST("/scores", s.calculateScores)

		sessions := v1.Group("/sessions")
		sessions.POST("", s.createSession)
		sessions.GET("/:id", s.getSession)
		sessions.DELETE("/:id", s.deleteSession)
		sessions.POST("/:id/questions", s.generateQuestions)
		sessions.PUT("/:id/answers/:index", s.recordAnswer)
		sessions.POST("/:id/recommendations", s.generateRecommendations)
		sessions.POST("/:id/report", s.generateReport)
		sessions.POST("/:id/scores", s.scoreSession)
		sessions.GET("/:id/report.xlsx", s.exportReport)
	}
	return r
}
