// internal/models/question.go
package models

import "encoding/json"

// TestType distinguishes the two independent question sets and entitlement
// tracks.
type TestType string

const (
	TestTypeFree TestType = "free"
	TestTypePaid TestType = "paid"
)

func (t TestType) Valid() bool {
	return t == TestTypeFree || t == TestTypePaid
}

// QuestionType enumerates the prompt styles served by the catalog.
type QuestionType string

const (
	QuestionMultipleChoice QuestionType = "multiple_choice"
	QuestionYesNo          QuestionType = "yes_no"
	QuestionRating         QuestionType = "rating"
	QuestionText           QuestionType = "text"
)

// Question is a catalog entry. The set is fetched once before a session
// starts and is immutable for the session's lifetime.
type Question struct {
	ID         string       `json:"id"`
	Text       string       `json:"text"`
	Type       QuestionType `json:"type"`
	Category   string       `json:"category"`
	Options    []Option     `json:"options,omitempty"`
	IsRequired bool         `json:"isRequired"`
}

// Option is one selectable answer. Its text doubles as the stored answer
// value. The catalog encodes the contribution either as a flat "score" number
// or as a per-element "scores" object; these are alternative encodings, never
// cumulative.
type Option struct {
	Text  string
	Score OptionScore
}

type optionWire struct {
	Text   string             `json:"text"`
	Score  *float64           `json:"score,omitempty"`
	Scores map[string]float64 `json:"scores,omitempty"`
}

func (o *Option) UnmarshalJSON(data []byte) error {
	// The catalog payload is loosely typed; tolerate non-numeric values in
	// either field rather than failing the whole fetch.
	var raw struct {
		Text   string                     `json:"text"`
		Score  json.RawMessage            `json:"score"`
		Scores map[string]json.RawMessage `json:"scores"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	o.Text = raw.Text
	o.Score = OptionScore{}

	if len(raw.Score) > 0 {
		var fixed float64
		if err := json.Unmarshal(raw.Score, &fixed); err == nil {
			o.Score = FixedScore(fixed)
			return nil
		}
	}

	if raw.Scores != nil {
		elements := make(map[string]float64, len(raw.Scores))
		for name, val := range raw.Scores {
			var num float64
			if err := json.Unmarshal(val, &num); err == nil {
				elements[name] = num
			}
		}
		o.Score = ElementScores(elements)
	}
	return nil
}

func (o Option) MarshalJSON() ([]byte, error) {
	wire := optionWire{Text: o.Text}
	switch o.Score.kind {
	case scoreFixed:
		fixed := o.Score.fixed
		wire.Score = &fixed
	case scoreElements:
		wire.Scores = o.Score.elements
	}
	return json.Marshal(wire)
}

type scoreKind int

const (
	scoreNone scoreKind = iota
	scoreFixed
	scoreElements
)

// OptionScore is a tagged union: FixedScore(number) | ElementScores(map).
// The zero value scores nothing.
type OptionScore struct {
	kind     scoreKind
	fixed    float64
	elements map[string]float64
}

func FixedScore(value float64) OptionScore {
	return OptionScore{kind: scoreFixed, fixed: value}
}

func ElementScores(elements map[string]float64) OptionScore {
	return OptionScore{kind: scoreElements, elements: elements}
}

// Value resolves the effective numeric contribution: the fixed score when
// that encoding is authoritative, otherwise the sum of the element scores.
func (s OptionScore) Value() float64 {
	switch s.kind {
	case scoreFixed:
		return s.fixed
	case scoreElements:
		var sum float64
		for _, v := range s.elements {
			sum += v
		}
		return sum
	default:
		return 0
	}
}

// Elements returns the per-element contributions for the ElementScores
// encoding, nil otherwise.
func (s OptionScore) Elements() map[string]float64 {
	if s.kind != scoreElements {
		return nil
	}
	return s.elements
}

// Answers maps question IDs to the single chosen value. A question counts as
// answered when its ID is present, regardless of whether the value is empty;
// the submission guard only checks presence.
type Answers map[string]string
