// internal/workers/assessment/generate-readiness-report/handler.go
package generatereadinessreport

import (
	"context"
	"encoding/json"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"readiness-workers/internal/assessment"
	"readiness-workers/internal/common/camunda"
	apperrors "readiness-workers/internal/common/errors"
	"readiness-workers/internal/common/logger"
	"readiness-workers/internal/common/metrics"
	"readiness-workers/internal/common/validation"
	"readiness-workers/internal/report"
	"readiness-workers/internal/session"
)

const TaskType = "generate-readiness-report"

type ReportGenerator interface {
	RequestReadinessReport(ctx context.Context, answers string, profile assessment.CompanyProfile) (*assessment.ReadinessReport, error)
}

type Handler struct {
	config   *Config
	pipeline ReportGenerator
	sessions session.Store
	errors   *apperrors.ErrorHandler
	logger   logger.Logger
}

func NewHandler(cfg *Config, pipeline ReportGenerator, sessions session.Store, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:   cfg,
		pipeline: pipeline,
		sessions: sessions,
		errors:   apperrors.NewErrorHandler(scoped),
		logger:   scoped,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	input, err := h.parseInput(job)
	if err != nil {
		h.failJob(client, job, err)
		return
	}

	output, err := h.Execute(ctx, input)
	if err != nil {
		h.failJob(client, job, err)
		return
	}

	h.completeJob(client, job, output)
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
}

func (h *Handler) parseInput(job entities.Job) (*Input, error) {
	variables, err := job.GetVariablesAsMap()
	if err != nil {
		return nil, apperrors.NewInvalidInputError("job variables: " + err.Error())
	}
	if result := validation.ValidateInput(variables, InputSchema); !result.Valid {
		return nil, apperrors.NewInvalidInputError(validation.FormatValidationErrors(result))
	}

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		return nil, apperrors.NewInvalidInputError("job variables: " + err.Error())
	}
	return &input, nil
}

// Execute scores the answers. Session handling matches the recommendations
// worker: the session fills empty inputs and keeps the report.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	sess, err := h.loadSession(ctx, input)
	if err != nil {
		return nil, err
	}

	rep, err := h.pipeline.RequestReadinessReport(ctx, input.Answers, input.profile())
	if err != nil {
		return nil, err
	}

	if sess != nil {
		sess.Report = rep
		if err := h.sessions.Save(ctx, sess); err != nil {
			return nil, err
		}
	}

	view := report.BuildView(rep)
	h.logger.Info("readiness report generated", map[string]interface{}{
		"sessionId":    input.SessionID,
		"overallScore": view.OverallScore,
		"areas":        len(view.AreaScores),
	})

	return &Output{
		SessionID:  input.SessionID,
		Report:     rep,
		ReportView: view,
	}, nil
}

func (h *Handler) loadSession(ctx context.Context, input *Input) (*session.Session, error) {
	if input.SessionID == "" {
		return nil, nil
	}
	if h.sessions == nil {
		return nil, apperrors.NewInvalidInputError("sessionId given but no session store is configured")
	}

	sess, err := h.sessions.Get(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}
	if input.Answers == "" {
		input.Answers = sess.AnswersText()
	}
	if input.Industry == "" {
		input.Industry = sess.Profile.Industry
	}
	if input.CompanySize == "" {
		input.CompanySize = sess.Profile.Size
	}
	if input.Country == "" {
		input.Country = sess.Profile.Country
	}
	return sess, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	ctx, cancel := camunda.CommandContext()
	defer cancel()

	cmd, err := client.NewCompleteJobCommand().JobKey(job.Key).VariablesFromObject(output)
	if err != nil {
		h.failJob(client, job, apperrors.NewInternalError(err))
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to complete job", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}

	h.logger.Info("job completed", map[string]interface{}{
		"jobKey":       job.Key,
		"overallScore": output.ReportView.OverallScore,
	})
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, err error) {
	ctx, cancel := camunda.CommandContext()
	defer cancel()

	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(apperrors.CodeOf(err))).Inc()
	h.errors.HandleJobError(ctx, client, job, err)
}
