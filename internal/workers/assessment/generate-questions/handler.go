// internal/workers/assessment/generate-questions/handler.go
package generatequestions

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
	"readiness-workers/internal/session"
)

const TaskType = "generate-assessment-questions"

// QuestionGenerator is the part of the pipeline this worker needs.
type QuestionGenerator interface {
	RequestQuestions(ctx context.Context, industry, companySize, country string) (*assessment.QuestionBatch, error)
}

type Handler struct {
	config   *Config
	pipeline QuestionGenerator
	sessions session.Store
	errors   *apperrors.ErrorHandler
	logger   logger.Logger
}

// NewHandler builds the worker. sessions may be nil, in which case jobs
// that carry a sessionId are rejected.
func NewHandler(cfg *Config, pipeline QuestionGenerator, sessions session.Store, log logger.Logger) *Handler {
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

// Execute generates the questionnaire. With a sessionId, missing profile
// fields come from the session and the questions are stored back on it.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	var sess *session.Session
	if input.SessionID != "" {
		if h.sessions == nil {
			return nil, apperrors.NewInvalidInputError("sessionId given but no session store is configured")
		}
		var err error
		if sess, err = h.sessions.Get(ctx, input.SessionID); err != nil {
			return nil, err
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
	}

	batch, err := h.pipeline.RequestQuestions(ctx, input.Industry, input.CompanySize, input.Country)
	if err != nil {
		return nil, err
	}

	if sess != nil {
		sess.SetQuestions(batch.Questions)
		if err := h.sessions.Save(ctx, sess); err != nil {
			return nil, err
		}
	}

	dropped := batch.Dropped
	if dropped == nil {
		dropped = []assessment.DroppedEntry{}
	}

	h.logger.Info("questions generated", map[string]interface{}{
		"sessionId": input.SessionID,
		"questions": len(batch.Questions),
		"dropped":   len(dropped),
	})

	return &Output{
		SessionID:        input.SessionID,
		Questions:        batch.Questions,
		DroppedQuestions: dropped,
		QuestionCount:    len(batch.Questions),
	}, nil
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
		"jobKey":        job.Key,
		"questionCount": output.QuestionCount,
	})
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, err error) {
	ctx, cancel := camunda.CommandContext()
	defer cancel()

	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(apperrors.CodeOf(err))).Inc()
	h.errors.HandleJobError(ctx, client, job, err)
}
