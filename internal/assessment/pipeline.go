// Package assessment is the response ingestion pipeline: it builds prompts
// from questionnaire inputs, calls the text-generation service once per
// operation and turns the free-form reply into typed results or exactly one
// classified error.
package assessment

import (
	"context"
	"strings"
	"time"

	"readiness-workers/internal/common/config"
	apperrors "readiness-workers/internal/common/errors"
	"readiness-workers/internal/common/logger"
	"readiness-workers/internal/common/metrics"
	"readiness-workers/internal/common/observability"
	"readiness-workers/internal/llm"
)

// Settings tunes the pipeline. Zero budgets fall back to the prompt
// catalog's max_tokens.
type Settings struct {
	Model                    string
	QuestionCount            int
	QuestionsMaxTokens       int
	RecommendationsMaxTokens int
	ReadinessReportMaxTokens int
}

// SettingsFromConfig maps the application config onto Settings.
func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		Model:                    cfg.APIs.LLM.Model,
		QuestionCount:            cfg.Assessment.QuestionCount,
		QuestionsMaxTokens:       cfg.Assessment.MaxTokens.Questions,
		RecommendationsMaxTokens: cfg.Assessment.MaxTokens.Recommendations,
		ReadinessReportMaxTokens: cfg.Assessment.MaxTokens.ReadinessReport,
	}
}

// Pipeline is safe for concurrent use; it keeps no per-call state.
type Pipeline struct {
	generator llm.Generator
	prompts   *PromptCatalog
	settings  Settings
	logger    logger.Logger
	obs       *observability.Observability
}

// NewPipeline wires a pipeline. obs may be nil.
func NewPipeline(gen llm.Generator, prompts *PromptCatalog, settings Settings, log logger.Logger, obs *observability.Observability) *Pipeline {
	if settings.Model == "" {
		settings.Model = config.DefaultModel
	}
	if settings.QuestionCount <= 0 {
		settings.QuestionCount = config.DefaultQuestionCount
	}
	return &Pipeline{
		generator: gen,
		prompts:   prompts,
		settings:  settings,
		logger:    log.With(map[string]interface{}{"component": "assessment-pipeline"}),
		obs:       obs,
	}
}

// RequestQuestions generates the questionnaire for a company profile.
func (p *Pipeline) RequestQuestions(ctx context.Context, industry, companySize, country string) (batch *QuestionBatch, err error) {
	start := time.Now()
	defer func() { p.observe(ctx, opQuestions, start, err) }()

	profile := CompanyProfile{Industry: industry, Size: companySize, Country: country}
	if err := profile.Validate(); err != nil {
		return nil, err
	}

	raw, err := p.generate(ctx, opQuestions, PromptQuestions, PromptData{
		Industry:      industry,
		Size:          companySize,
		Country:       country,
		QuestionCount: p.settings.QuestionCount,
	}, p.settings.QuestionsMaxTokens)
	if err != nil {
		return nil, err
	}

	batch, err = ParseQuestions(raw)
	if err != nil {
		return nil, err
	}

	for _, d := range batch.Dropped {
		p.logger.Warn("Dropped malformed question", map[string]interface{}{
			"index":  d.Index,
			"reason": d.Reason,
		})
	}
	metrics.QuestionsDropped.Add(float64(len(batch.Dropped)))

	p.logger.Info("Questions generated", map[string]interface{}{
		"requested": p.settings.QuestionCount,
		"accepted":  len(batch.Questions),
		"dropped":   len(batch.Dropped),
	})
	return batch, nil
}

// RequestRecommendations asks for improvement recommendations. answers is
// the pre-joined answer text.
func (p *Pipeline) RequestRecommendations(ctx context.Context, answers string, profile CompanyProfile) (items []RecommendationItem, err error) {
	start := time.Now()
	defer func() { p.observe(ctx, opRecommendations, start, err) }()

	if err := validateAnswerInput(answers, profile); err != nil {
		return nil, err
	}

	raw, err := p.generate(ctx, opRecommendations, PromptRecommendations, promptData(answers, profile), p.settings.RecommendationsMaxTokens)
	if err != nil {
		return nil, err
	}

	items, dropped, err := ParseRecommendations(raw)
	if err != nil {
		return nil, err
	}
	for _, d := range dropped {
		p.logger.Warn("Dropped malformed recommendation", map[string]interface{}{
			"index":  d.Index,
			"reason": d.Reason,
		})
	}
	return items, nil
}

// RequestReadinessReport asks for the scored readiness report.
func (p *Pipeline) RequestReadinessReport(ctx context.Context, answers string, profile CompanyProfile) (report *ReadinessReport, err error) {
	start := time.Now()
	defer func() { p.observe(ctx, opReadinessReport, start, err) }()

	if err := validateAnswerInput(answers, profile); err != nil {
		return nil, err
	}

	raw, err := p.generate(ctx, opReadinessReport, PromptReadinessReport, promptData(answers, profile), p.settings.ReadinessReportMaxTokens)
	if err != nil {
		return nil, err
	}

	report, issues, err := ParseReport(raw)
	if err != nil {
		return nil, err
	}
	for _, issue := range issues {
		p.logger.Warn("Report field replaced by default", map[string]interface{}{
			"field":  issue.Field,
			"reason": issue.Reason,
		})
	}
	metrics.ReportFieldIssues.Add(float64(len(issues)))
	return report, nil
}

// generate renders a prompt and performs the single generation call.
func (p *Pipeline) generate(ctx context.Context, op, promptName string, data PromptData, budget int) (string, error) {
	prompt, err := p.prompts.Render(promptName, data)
	if err != nil {
		return "", apperrors.NewInternalError(err)
	}
	if budget <= 0 {
		budget = p.prompts.MaxTokens(promptName)
	}

	p.logger.Debug("Calling text generation", map[string]interface{}{
		"operation": op,
		"model":     p.settings.Model,
		"maxTokens": budget,
	})

	raw, err := p.generator.Generate(ctx, llm.Request{
		Model:     p.settings.Model,
		Prompt:    prompt,
		MaxTokens: budget,
	})
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded && apperrors.CodeOf(err) == apperrors.ErrCodeInternal {
			return "", apperrors.NewLLMTimeoutError(err)
		}
		return "", apperrors.AsStandard(err)
	}
	return raw, nil
}

func (p *Pipeline) observe(ctx context.Context, op string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = string(apperrors.CodeOf(err))
		p.logger.Error("Pipeline call failed", map[string]interface{}{
			"operation": op,
			"errorCode": outcome,
			"error":     err.Error(),
		})
	}
	metrics.LLMRequests.WithLabelValues(op, outcome).Inc()
	p.obs.RecordPipelineCall(context.WithoutCancel(ctx), op, outcome, time.Since(start))
}

func validateAnswerInput(answers string, profile CompanyProfile) error {
	if err := profile.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(answers) == "" {
		return apperrors.NewInvalidInputError("answers must not be empty")
	}
	return nil
}

func promptData(answers string, profile CompanyProfile) PromptData {
	return PromptData{
		Industry: profile.Industry,
		Size:     profile.Size,
		Country:  profile.Country,
		Answers:  answers,
	}
}
