package assessment

import (
	"fmt"
	"strconv"
	"strings"

	apperrors "readiness-workers/internal/common/errors"
)

// AnswersPerCategory is the number of consecutive answers averaged into
// one category score.
const AnswersPerCategory = 2

// MinScoredAnswers is the shortest answer list CalculateScores accepts.
var MinScoredAnswers = AnswersPerCategory * len(Categories)

// CalculateScores parses every answer as an integer and returns the overall
// mean plus one mean per category, taken from non-overlapping pairs in
// Categories order. The list must have an even length of at least
// MinScoredAnswers; answers past the category pairs count toward the
// overall mean only.
func CalculateScores(answers []string) (*CategoryScores, error) {
	values := make([]int, len(answers))
	for i, a := range answers {
		n, err := strconv.Atoi(strings.TrimSpace(a))
		if err != nil {
			return nil, apperrors.NewInvalidAnswerFormatError(
				fmt.Sprintf("answer %d is not an integer: %q", i, a),
			).WithMetadata("index", i)
		}
		values[i] = n
	}

	if len(values) < MinScoredAnswers || len(values)%AnswersPerCategory != 0 {
		return nil, apperrors.NewInvalidAnswerFormatError(fmt.Sprintf(
			"expected an even number of at least %d answers, got %d", MinScoredAnswers, len(values)))
	}

	total := 0
	for _, v := range values {
		total += v
	}

	scores := &CategoryScores{
		Overall:    float64(total) / float64(len(values)),
		Categories: make([]CategoryScore, 0, len(Categories)),
	}
	for i, name := range Categories {
		pair := values[i*AnswersPerCategory : (i+1)*AnswersPerCategory]
		sum := 0
		for _, v := range pair {
			sum += v
		}
		scores.Categories = append(scores.Categories, CategoryScore{
			Category: name,
			Score:    float64(sum) / float64(AnswersPerCategory),
		})
	}
	return scores, nil
}
