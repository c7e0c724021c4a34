// Package session holds the per-assessment state that ties the pipeline
// operations together: the company profile, the generated questions, the
// collected answers and the results derived from them.
package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"readiness-workers/internal/assessment"
	apperrors "readiness-workers/internal/common/errors"
)

// Session is one assessment run. Answers is index-aligned with Questions;
// an empty string means the question is unanswered.
type Session struct {
	ID              string                          `json:"id"`
	Profile         assessment.CompanyProfile       `json:"profile"`
	Questions       []assessment.AssessmentQuestion `json:"questions"`
	Answers         []string                        `json:"answers"`
	Recommendations []assessment.RecommendationItem `json:"recommendations,omitempty"`
	Report          *assessment.ReadinessReport     `json:"report,omitempty"`
	Scores          *assessment.CategoryScores      `json:"scores,omitempty"`
	CreatedAt       time.Time                       `json:"createdAt"`
	UpdatedAt       time.Time                       `json:"updatedAt"`
}

// Store persists sessions. Get, Save and Delete report SESSION_NOT_FOUND
// for unknown ids.
type Store interface {
	Create(ctx context.Context, profile assessment.CompanyProfile) (*Session, error)
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
}

func newSession(profile assessment.CompanyProfile, now time.Time) *Session {
	return &Session{
		ID:        uuid.NewString(),
		Profile:   profile,
		Questions: []assessment.AssessmentQuestion{},
		Answers:   []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SetQuestions replaces the questionnaire. Answers and everything derived
// from them are reset.
func (s *Session) SetQuestions(questions []assessment.AssessmentQuestion) {
	s.Questions = questions
	s.Answers = make([]string, len(questions))
	s.Recommendations = nil
	s.Report = nil
	s.Scores = nil
}

// RecordAnswer stores the answer for the zero-based question index.
func (s *Session) RecordAnswer(index int, value string) error {
	if index < 0 || index >= len(s.Questions) {
		return apperrors.NewInvalidInputError(
			fmt.Sprintf("answer index %d outside question range 0-%d", index, len(s.Questions)-1),
		).WithMetadata("index", index)
	}
	if len(s.Answers) != len(s.Questions) {
		answers := make([]string, len(s.Questions))
		copy(answers, s.Answers)
		s.Answers = answers
	}
	s.Answers[index] = value
	return nil
}

// AnswersText renders the answered questions as "Q<n>: <answer>" lines in
// question order. Unanswered questions are skipped.
func (s *Session) AnswersText() string {
	lines := make([]string, 0, len(s.Answers))
	for i, a := range s.Answers {
		if strings.TrimSpace(a) == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf("Q%d: %s", i+1, a))
	}
	return strings.Join(lines, "\n")
}

// Answered reports how many questions have a non-blank answer.
func (s *Session) Answered() int {
	n := 0
	for _, a := range s.Answers {
		if strings.TrimSpace(a) != "" {
			n++
		}
	}
	return n
}

// AnswerList returns a copy of the answers in question order, suitable for
// assessment.CalculateScores.
func (s *Session) AnswerList() []string {
	out := make([]string, len(s.Answers))
	copy(out, s.Answers)
	return out
}
