package model

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// QuestionType defines the type of question
type QuestionType string

const (
	QuestionSingle   QuestionType = "single"
	QuestionMultiple QuestionType = "multiple"
	QuestionBoolean  QuestionType = "boolean"
)

// AnswerOption is one selectable answer. Plain string options are accepted
// and written back as strings.
type AnswerOption struct {
	Text    string                     `json:"text"`
	Correct bool                       `json:"correct,omitempty"`
	Extra   map[string]json.RawMessage `json:"-"`

	plain bool
}

type answerOptionFields AnswerOption

func (o AnswerOption) MarshalJSON() ([]byte, error) {
	if o.plain {
		return json.Marshal(o.Text)
	}
	return marshalWithExtra(answerOptionFields(o), o.Extra)
}

func (o *AnswerOption) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*o = AnswerOption{Text: s, plain: true}
		return nil
	}
	var f answerOptionFields
	extra, err := unmarshalWithExtra(data, &f, "text", "correct")
	if err != nil {
		return err
	}
	*o = AnswerOption(f)
	o.Extra = extra
	return nil
}

// Question is a timed question. Fields the engine does not interpret
// (media, thumbnails, ...) round-trip through Extra.
type Question struct {
	Text           string                     `json:"text"`
	Type           QuestionType               `json:"type"`
	Duration       json.RawMessage            `json:"duration,omitempty"`
	Points         json.RawMessage            `json:"points,omitempty"`
	Answers        []AnswerOption             `json:"answers"`
	CorrectAnswers []any                      `json:"correctAnswers,omitempty"`
	Extra          map[string]json.RawMessage `json:"-"`
}

type questionFields Question

func (q Question) MarshalJSON() ([]byte, error) {
	return marshalWithExtra(questionFields(q), q.Extra)
}

func (q *Question) UnmarshalJSON(data []byte) error {
	var f questionFields
	extra, err := unmarshalWithExtra(data, &f, "text", "type", "duration", "points", "answers", "correctAnswers")
	if err != nil {
		return err
	}
	*q = Question(f)
	q.Extra = extra
	return nil
}

// DurationSeconds resolves the duration as a number of seconds.
// Numeric strings are accepted.
func (q *Question) DurationSeconds() (float64, bool) {
	v, ok := parseNumber(q.Duration)
	if !ok || v < 0 {
		return 0, false
	}
	return v, true
}

// PointsValue resolves points, treating anything unparsable as zero
func (q *Question) PointsValue() float64 {
	v, _ := parseNumber(q.Points)
	return v
}

// Public returns a copy safe to show players before the reveal
func (q Question) Public() Question {
	out := q.Clone()
	out.CorrectAnswers = nil
	for i := range out.Answers {
		out.Answers[i].Correct = false
	}
	return out
}

// Clone returns a deep copy
func (q Question) Clone() Question {
	out := q
	out.Duration = append(json.RawMessage(nil), q.Duration...)
	out.Points = append(json.RawMessage(nil), q.Points...)
	if q.Answers != nil {
		out.Answers = make([]AnswerOption, len(q.Answers))
		for i, a := range q.Answers {
			a.Extra = cloneExtra(a.Extra)
			out.Answers[i] = a
		}
	}
	if q.CorrectAnswers != nil {
		out.CorrectAnswers = cloneValues(q.CorrectAnswers)
	}
	out.Extra = cloneExtra(q.Extra)
	return out
}

// CloneQuestions deep-copies a question list
func CloneQuestions(qs []Question) []Question {
	if qs == nil {
		return []Question{}
	}
	out := make([]Question, len(qs))
	for i, q := range qs {
		out[i] = q.Clone()
	}
	return out
}

func parseNumber(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, !math.IsNaN(f) && !math.IsInf(f, 0)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func cloneValues(vs []any) []any {
	b, err := json.Marshal(vs)
	if err != nil {
		return append([]any(nil), vs...)
	}
	var out []any
	if err := json.Unmarshal(b, &out); err != nil {
		return append([]any(nil), vs...)
	}
	return out
}
