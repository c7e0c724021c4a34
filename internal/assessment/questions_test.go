package assessment

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "readiness-workers/internal/common/errors"
)

const threeQuestions = `[
  {"question_text": "Do you have an AI strategy?", "explanation": "Direction matters", "type": "scale", "impact_level": "high"},
  {"question_text": "How mature is your data platform?", "explanation": "Data first", "type": "multiple-choice", "impact_level": "medium", "options": ["None", "Basic", "Advanced", "Leading"]},
  {"question_text": "Describe your AI ethics policy", "explanation": "Trust", "type": "open-ended", "impact_level": "low", "options": ["ignored"]}
]`

func TestParseQuestions_WellFormedArray(t *testing.T) {
	batch, err := ParseQuestions(threeQuestions)
	require.NoError(t, err)

	require.Len(t, batch.Questions, 3)
	assert.Empty(t, batch.Dropped)

	q := batch.Questions[0]
	assert.Equal(t, "Do you have an AI strategy?", q.Text)
	assert.Equal(t, "Direction matters", q.Explanation)
	assert.Equal(t, KindScale, q.Kind)
	assert.Equal(t, "high", q.ImpactLevel)
	assert.NotNil(t, q.Options)
	assert.Empty(t, q.Options)

	assert.Equal(t, KindMultipleChoice, batch.Questions[1].Kind)
	assert.Equal(t, []string{"None", "Basic", "Advanced", "Leading"}, batch.Questions[1].Options)

	assert.Equal(t, KindOpenEnded, batch.Questions[2].Kind)
	assert.Empty(t, batch.Questions[2].Options, "options only survive on multiple-choice")
}

func TestParseQuestions_FifteenQuestionsKeepCount(t *testing.T) {
	items := make([]string, 15)
	for i := range items {
		items[i] = fmt.Sprintf(`{"question_text":"Q%d","explanation":"e","type":"scale","impact_level":"low"}`, i+1)
	}
	batch, err := ParseQuestions("[" + strings.Join(items, ",") + "]")
	require.NoError(t, err)
	require.Len(t, batch.Questions, 15)
	assert.Equal(t, "Q15", batch.Questions[14].Text)
}

func TestParseQuestions_WrappedObject(t *testing.T) {
	batch, err := ParseQuestions(`{"questions": ` + threeQuestions + `}`)
	require.NoError(t, err)
	assert.Len(t, batch.Questions, 3)
}

func TestParseQuestions_FencedMatchesUnfenced(t *testing.T) {
	plain, err := ParseQuestions(threeQuestions)
	require.NoError(t, err)

	variants := map[string]string{
		"json fence":        "```json\n" + threeQuestions + "\n```",
		"bare fence":        "```\n" + threeQuestions + "\n```",
		"prose around":      "Here are your questions:\n```json\n" + threeQuestions + "\n```\nGood luck!",
		"unterminated json": "```json\n" + threeQuestions,
	}
	for name, raw := range variants {
		t.Run(name, func(t *testing.T) {
			fenced, err := ParseQuestions(raw)
			require.NoError(t, err)
			assert.Equal(t, plain, fenced)
		})
	}
}

func TestParseQuestions_TypeNormalization(t *testing.T) {
	tests := []struct {
		name        string
		element     string
		wantKind    QuestionKind
		wantOptions []string
	}{
		{
			name:        "unknown type becomes open-ended",
			element:     `{"question_text":"Q","type":"Essay","options":["a","b"]}`,
			wantKind:    KindOpenEnded,
			wantOptions: []string{},
		},
		{
			name:        "type is case-insensitive",
			element:     `{"question_text":"Q","type":"Multiple-Choice","options":["a","b"]}`,
			wantKind:    KindMultipleChoice,
			wantOptions: []string{"a", "b"},
		},
		{
			name:        "missing type",
			element:     `{"question_text":"Q"}`,
			wantKind:    KindOpenEnded,
			wantOptions: []string{},
		},
		{
			name:        "scale with padding",
			element:     `{"question_text":"Q","type":"  SCALE "}`,
			wantKind:    KindScale,
			wantOptions: []string{},
		},
		{
			name:        "non-scalar options are filtered",
			element:     `{"question_text":"Q","type":"multiple-choice","options":["a",{"x":1},null,3,""]}`,
			wantKind:    KindMultipleChoice,
			wantOptions: []string{"a", "3"},
		},
		{
			name:        "multiple-choice without options keeps its kind",
			element:     `{"question_text":"Q","type":"Multiple-Choice"}`,
			wantKind:    KindMultipleChoice,
			wantOptions: []string{},
		},
		{
			name:        "multiple-choice with empty options keeps its kind",
			element:     `{"question_text":"Q","type":"multiple-choice","options":[]}`,
			wantKind:    KindMultipleChoice,
			wantOptions: []string{},
		},
		{
			name:        "multiple-choice with only unusable options keeps its kind",
			element:     `{"question_text":"Q","type":"multiple-choice","options":[{"x":1}," "]}`,
			wantKind:    KindMultipleChoice,
			wantOptions: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batch, err := ParseQuestions("[" + tt.element + "]")
			require.NoError(t, err)
			require.Len(t, batch.Questions, 1)
			assert.Equal(t, tt.wantKind, batch.Questions[0].Kind)
			assert.Equal(t, tt.wantOptions, batch.Questions[0].Options)
		})
	}
}

func TestParseQuestions_FieldFallbacks(t *testing.T) {
	batch, err := ParseQuestions(`[{"question":"Legacy key","importance":"Why it matters"}]`)
	require.NoError(t, err)
	require.Len(t, batch.Questions, 1)

	q := batch.Questions[0]
	assert.Equal(t, "Legacy key", q.Text)
	assert.Equal(t, "Why it matters", q.Explanation)
	assert.Equal(t, "", q.ImpactLevel)
	assert.Equal(t, KindOpenEnded, q.Kind)
	assert.NotNil(t, q.Options)
}

func TestParseQuestions_QuestionTextWinsOverQuestion(t *testing.T) {
	batch, err := ParseQuestions(`[{"question_text":"Primary","question":"Secondary"}]`)
	require.NoError(t, err)
	assert.Equal(t, "Primary", batch.Questions[0].Text)
}

func TestParseQuestions_DropsEntriesWithoutText(t *testing.T) {
	raw := `[
	  {"question_text":"Keep 1"},
	  {"explanation":"no text at all"},
	  {"question_text":"   ","question":""},
	  "just a string",
	  {"question":"Keep 2"}
	]`

	batch, err := ParseQuestions(raw)
	require.NoError(t, err)

	require.Len(t, batch.Questions, 2)
	assert.Equal(t, "Keep 1", batch.Questions[0].Text)
	assert.Equal(t, "Keep 2", batch.Questions[1].Text)

	require.Len(t, batch.Dropped, 3)
	assert.Equal(t, 1, batch.Dropped[0].Index)
	assert.Equal(t, "missing question_text and question", batch.Dropped[0].Reason)
	assert.Equal(t, 2, batch.Dropped[1].Index)
	assert.Equal(t, 3, batch.Dropped[2].Index)
	assert.Contains(t, batch.Dropped[2].Reason, "a string")
}

func TestParseQuestions_EachDropRemovesExactlyOne(t *testing.T) {
	good := `{"question_text":"Q"}`
	bad := `{"explanation":"x"}`
	for drops := 0; drops <= 3; drops++ {
		elements := []string{good, good, good}
		for i := 0; i < drops; i++ {
			elements = append(elements, bad)
		}
		batch, err := ParseQuestions("[" + strings.Join(elements, ",") + "]")
		require.NoError(t, err)
		assert.Len(t, batch.Questions, 3)
		assert.Len(t, batch.Dropped, drops)
	}
}

func TestParseQuestions_Errors(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    error
		wantMsg string
	}{
		{name: "empty string", raw: "", want: apperrors.ErrEmptyResponse},
		{name: "whitespace only", raw: "  \n\t ", want: apperrors.ErrEmptyResponse},
		{name: "empty fence", raw: "```json\n```", want: apperrors.ErrEmptyResponse},
		{name: "prose", raw: "I'm sorry, I cannot help with that.", want: apperrors.ErrMalformedJSON},
		{name: "truncated json", raw: `[{"question_text": "Q1"`, want: apperrors.ErrMalformedJSON},
		{name: "object without questions", raw: `{"foo": 1}`, want: apperrors.ErrUnexpectedShape, wantMsg: `no "questions" key`},
		{name: "questions not an array", raw: `{"questions": "none"}`, want: apperrors.ErrUnexpectedShape, wantMsg: "not an array"},
		{name: "top-level number", raw: `42`, want: apperrors.ErrUnexpectedShape, wantMsg: "a number"},
		{name: "top-level null", raw: `null`, want: apperrors.ErrUnexpectedShape, wantMsg: "null"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batch, err := ParseQuestions(tt.raw)
			require.Error(t, err)
			assert.Nil(t, batch)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestParseQuestions_EmptyArrayIsValid(t *testing.T) {
	batch, err := ParseQuestions(`[]`)
	require.NoError(t, err)
	assert.Empty(t, batch.Questions)
	assert.NotNil(t, batch.Questions)
	assert.NotNil(t, batch.Dropped)
}

func TestClassifyList(t *testing.T) {
	tests := []struct {
		name string
		doc  interface{}
		want Shape
	}{
		{"bare array", []interface{}{}, ShapeBareArray},
		{"wrapped array", map[string]interface{}{"questions": []interface{}{}}, ShapeWrappedArray},
		{"object", map[string]interface{}{"foo": 1.0}, ShapeInvalid},
		{"string", "x", ShapeInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyList(tt.doc, "questions")
			assert.Equal(t, tt.want, got.Shape)
			if tt.want == ShapeInvalid {
				assert.NotEmpty(t, got.Reason)
			}
		})
	}
}

func TestStripCodeFences(t *testing.T) {
	tests := map[string]string{
		"[1]":                           "[1]",
		"  [1]  ":                       "[1]",
		"```json\n[1]\n```":             "[1]",
		"```JSON\n[1]\n```":             "[1]",
		"```\n{\"a\":1}\n```":           `{"a":1}`,
		"```json [1]```":                "[1]",
		"text\n```json\n[1]\n```\nmore": "[1]",
		"[1]\n```":                      "[1]",
	}
	for in, want := range tests {
		assert.Equal(t, want, StripCodeFences(in), "input %q", in)
	}
}
