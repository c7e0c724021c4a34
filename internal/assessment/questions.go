package assessment

import (
	"fmt"
	"strings"

	apperrors "readiness-workers/internal/common/errors"
)

const opQuestions = "questions"

// ParseQuestions turns a raw model response into a QuestionBatch. Elements
// without question text are dropped and reported in the batch rather than
// failing the whole response.
func ParseQuestions(raw string) (*QuestionBatch, error) {
	doc, err := decodeResponse(opQuestions, raw)
	if err != nil {
		return nil, err
	}

	payload := classifyList(doc, "questions")
	switch payload.Shape {
	case ShapeBareArray, ShapeWrappedArray:
		questions, dropped := normalizeQuestions(payload.Items)
		return &QuestionBatch{Questions: questions, Dropped: dropped}, nil
	case ShapeInvalid:
		return nil, apperrors.NewUnexpectedShapeError(opQuestions, payload.Reason)
	default:
		return nil, apperrors.NewUnexpectedShapeError(opQuestions, "unhandled shape "+payload.Shape.String())
	}
}

func normalizeQuestions(items []interface{}) ([]AssessmentQuestion, []DroppedEntry) {
	questions := make([]AssessmentQuestion, 0, len(items))
	dropped := []DroppedEntry{}

	for i, item := range items {
		q, reason := normalizeQuestion(item)
		if reason != "" {
			dropped = append(dropped, DroppedEntry{Index: i, Reason: reason})
			continue
		}
		questions = append(questions, q)
	}
	return questions, dropped
}

func normalizeQuestion(item interface{}) (AssessmentQuestion, string) {
	m, ok := item.(map[string]interface{})
	if !ok {
		return AssessmentQuestion{}, fmt.Sprintf("element is %s, not an object", jsonKind(item))
	}

	text := stringField(m, "question_text")
	if strings.TrimSpace(text) == "" {
		text = stringField(m, "question")
	}
	if strings.TrimSpace(text) == "" {
		return AssessmentQuestion{}, "missing question_text and question"
	}

	explanation := stringField(m, "explanation")
	if explanation == "" {
		explanation = stringField(m, "importance")
	}

	kind := ParseQuestionKind(stringField(m, "type"))
	options := []string{}
	if kind == KindMultipleChoice {
		options = stringList(m["options"])
	}

	return AssessmentQuestion{
		Text:        text,
		Explanation: explanation,
		Kind:        kind,
		ImpactLevel: stringField(m, "impact_level"),
		Options:     options,
	}, ""
}

// stringList keeps the non-empty scalar entries of a JSON array.
func stringList(v interface{}) []string {
	arr, ok := v.([]interface{})
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(arr))
	for _, item := range arr {
		if s, ok := scalarString(item); ok && strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}
