package assessment

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	apperrors "readiness-workers/internal/common/errors"
)

var fencedBlock = regexp.MustCompile("(?s)```[A-Za-z]*[ \t]*\r?\n?(.*?)```")

// StripCodeFences removes markdown code fences from a model response. When
// the text contains a fenced block, the first block's body is returned;
// otherwise stray fence markers are removed. The result is trimmed.
func StripCodeFences(raw string) string {
	text := strings.TrimSpace(raw)
	if m := fencedBlock.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	return strings.TrimSpace(text)
}

// decodeResponse runs the shared cleanup and parse steps. Empty output is
// EMPTY_RESPONSE and anything that is not one JSON document is
// MALFORMED_JSON.
func decodeResponse(operation, raw string) (interface{}, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, apperrors.NewEmptyResponseError(operation)
	}

	text := StripCodeFences(raw)
	if text == "" {
		return nil, apperrors.NewEmptyResponseError(operation)
	}

	var doc interface{}
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		return nil, apperrors.NewMalformedJSONError(operation, err)
	}
	return doc, nil
}

// Shape tags the top-level structure of a list response.
type Shape int

const (
	ShapeInvalid Shape = iota
	ShapeBareArray
	ShapeWrappedArray
)

func (s Shape) String() string {
	switch s {
	case ShapeBareArray:
		return "bare_array"
	case ShapeWrappedArray:
		return "wrapped_array"
	default:
		return "invalid"
	}
}

// listPayload is the tagged variant produced by classifyList. Items is set
// for the two array shapes and Reason for ShapeInvalid.
type listPayload struct {
	Shape  Shape
	Items  []interface{}
	Reason string
}

// classifyList accepts a bare array or an object holding an array under
// wrapperKey.
func classifyList(doc interface{}, wrapperKey string) listPayload {
	switch v := doc.(type) {
	case []interface{}:
		return listPayload{Shape: ShapeBareArray, Items: v}
	case map[string]interface{}:
		inner, ok := v[wrapperKey]
		if !ok {
			return listPayload{Shape: ShapeInvalid, Reason: fmt.Sprintf("object has no %q key", wrapperKey)}
		}
		items, ok := inner.([]interface{})
		if !ok {
			return listPayload{Shape: ShapeInvalid, Reason: fmt.Sprintf("%q is %s, not an array", wrapperKey, jsonKind(inner))}
		}
		return listPayload{Shape: ShapeWrappedArray, Items: items}
	default:
		return listPayload{Shape: ShapeInvalid, Reason: fmt.Sprintf("top-level value is %s", jsonKind(doc))}
	}
}

func jsonKind(v interface{}) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "a string"
	case float64:
		return "a number"
	case bool:
		return "a boolean"
	case []interface{}:
		return "an array"
	case map[string]interface{}:
		return "an object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// scalarString returns strings as-is and formats numbers and booleans.
// Objects, arrays and null report false.
func scalarString(v interface{}) (string, bool) {
	switch v.(type) {
	case string, float64, bool:
		return displayValue(v), true
	default:
		return "", false
	}
}

func stringField(m map[string]interface{}, key string) string {
	s, _ := scalarString(m[key])
	return s
}
