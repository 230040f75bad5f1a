// Package chat owns the assistant conversation: interpreting the backend's
// loosely shaped replies into renderable messages and driving the transcript
// lifecycle.
package chat

import (
	"encoding/json"
	"sort"
	"strings"
)

// forecastMarker is the literal prefix the backend emits when an answer is a
// structured forecast serialized as text rather than a natural-language
// summary.
const forecastMarker = `{"type":"forecast"`

// fallbackText is the guaranteed non-empty reply when the backend returned
// nothing renderable.
const fallbackText = "No summary was returned for this question."

// ReplyKind is the closed set of renderable reply shapes.
type ReplyKind int

const (
	ReplyPlainText ReplyKind = iota
	ReplyForecast
)

// Reply is the interpreter's uniform intermediate representation of one raw
// assistant answer. For forecasts, Raw keeps the original marker-prefixed
// JSON string so the render stage can re-run interpretation from stored
// message content.
type Reply struct {
	Kind     ReplyKind
	Text     string
	Rows     []map[string]any
	Summary  string
	Question string
	Raw      string
}

type forecastPayload struct {
	Type     string           `json:"type"`
	Rows     []map[string]any `json:"rows"`
	Summary  string           `json:"summary"`
	Question string           `json:"question"`
}

type objectAnswer struct {
	Summary *string `json:"summary"`
	Text    *string `json:"text"`
}

// Interpret classifies one raw answer payload from the assistant endpoint.
// The backend's reply shape is not contractually fixed, so this is a
// priority-ordered defensive decision, first match wins:
//
//  1. a string starting with the forecast marker parses as a forecast;
//  2. an object with a string summary renders that summary, ignoring any
//     tabular debris in other fields;
//  3. a plain string, or an object with a string text field, renders as is;
//  4. anything else renders the fixed fallback sentence.
//
// Interpret never fails; every input produces a renderable reply.
func Interpret(raw json.RawMessage) Reply {
	if len(raw) == 0 {
		return Reply{Kind: ReplyPlainText, Text: fallbackText}
	}

	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return InterpretContent(str)
	}

	var obj objectAnswer
	if err := json.Unmarshal(raw, &obj); err == nil {
		if obj.Summary != nil && strings.TrimSpace(*obj.Summary) != "" {
			return Reply{Kind: ReplyPlainText, Text: *obj.Summary}
		}
		if obj.Text != nil && strings.TrimSpace(*obj.Text) != "" {
			return Reply{Kind: ReplyPlainText, Text: *obj.Text}
		}
	}

	return Reply{Kind: ReplyPlainText, Text: fallbackText}
}

// InterpretContent classifies a reply already carried as a string, which is
// also the form stored in transcript messages. Broken forecast JSON falls
// back to plain text rather than erroring.
func InterpretContent(content string) Reply {
	if strings.HasPrefix(content, forecastMarker) {
		var payload forecastPayload
		if err := json.Unmarshal([]byte(content), &payload); err == nil {
			rows := payload.Rows
			if rows == nil {
				rows = []map[string]any{}
			}
			return Reply{
				Kind:     ReplyForecast,
				Rows:     rows,
				Summary:  payload.Summary,
				Question: payload.Question,
				Raw:      content,
			}
		}
	}
	if strings.TrimSpace(content) == "" {
		return Reply{Kind: ReplyPlainText, Text: fallbackText}
	}
	return Reply{Kind: ReplyPlainText, Text: content}
}

// Content serializes a reply back to transcript message content: forecasts
// keep their marker-prefixed JSON string, plain text is carried verbatim.
func (r Reply) Content() string {
	if r.Kind == ReplyForecast {
		return r.Raw
	}
	return r.Text
}

// AxisKeys infers which forecast row field is the time axis and which is
// the metric: a field containing "month" (case-insensitive) wins the axis,
// a field containing "retention" wins the value, with first/last field in
// sorted key order as fallbacks. Substring matching on column names is a
// fragile compromise for heterogeneous row shapes; it holds only until the
// backend tags axis fields explicitly.
func AxisKeys(rows []map[string]any) (axisKey, valueKey string) {
	if len(rows) == 0 {
		return "", ""
	}
	columns := make([]string, 0, len(rows[0]))
	for k := range rows[0] {
		columns = append(columns, k)
	}
	if len(columns) == 0 {
		return "", ""
	}
	sort.Strings(columns)

	axisKey = columns[0]
	for _, col := range columns {
		if strings.Contains(strings.ToLower(col), "month") {
			axisKey = col
			break
		}
	}
	valueKey = columns[len(columns)-1]
	for _, col := range columns {
		if strings.Contains(strings.ToLower(col), "retention") {
			valueKey = col
			break
		}
	}
	return axisKey, valueKey
}
