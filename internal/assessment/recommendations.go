package assessment

import (
	apperrors "readiness-workers/internal/common/errors"
)

const opRecommendations = "recommendations"

// ParseRecommendations returns the recommendation objects verbatim.
// Elements that are not objects are dropped and reported.
func ParseRecommendations(raw string) ([]RecommendationItem, []DroppedEntry, error) {
	doc, err := decodeResponse(opRecommendations, raw)
	if err != nil {
		return nil, nil, err
	}

	payload := classifyList(doc, "recommendations")
	switch payload.Shape {
	case ShapeBareArray, ShapeWrappedArray:
		items := make([]RecommendationItem, 0, len(payload.Items))
		dropped := []DroppedEntry{}
		for i, item := range payload.Items {
			m, ok := item.(map[string]interface{})
			if !ok {
				dropped = append(dropped, DroppedEntry{Index: i, Reason: "element is " + jsonKind(item) + ", not an object"})
				continue
			}
			items = append(items, RecommendationItem(m))
		}
		return items, dropped, nil
	default:
		return nil, nil, apperrors.NewUnexpectedShapeError(opRecommendations, payload.Reason)
	}
}
