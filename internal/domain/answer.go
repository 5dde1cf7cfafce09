package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// AnswerKind tags the dynamic type of an answer value.
type AnswerKind string

const (
	AnswerString AnswerKind = "string"
	AnswerInt    AnswerKind = "int"
	AnswerFloat  AnswerKind = "float"
)

// ErrInvalidAnswer is returned when a payload is not a string or number.
var ErrInvalidAnswer = errors.New("answer must be a string or a number")

// Answer is a raw answer payload that keeps the kind it arrived with.
// The zero value is an empty string answer.
type Answer struct {
	kind AnswerKind
	str  string
	i    int64
	f    float64
}

// StringAnswer wraps a text answer, such as a choice label or free text.
func StringAnswer(s string) Answer { return Answer{kind: AnswerString, str: s} }

// IntAnswer wraps an integral answer, such as a likert point.
func IntAnswer(i int64) Answer { return Answer{kind: AnswerInt, i: i} }

// FloatAnswer wraps a fractional answer, such as a slider position.
func FloatAnswer(f float64) Answer { return Answer{kind: AnswerFloat, f: f} }

// Kind returns the answer's tag.
func (a Answer) Kind() AnswerKind {
	if a.kind == "" {
		return AnswerString
	}
	return a.kind
}

// String returns the string value, or the formatted number.
func (a Answer) String() string {
	switch a.Kind() {
	case AnswerInt:
		return strconv.FormatInt(a.i, 10)
	case AnswerFloat:
		return strconv.FormatFloat(a.f, 'g', -1, 64)
	default:
		return a.str
	}
}

// Int returns the integer value and whether the answer is an int.
func (a Answer) Int() (int64, bool) { return a.i, a.Kind() == AnswerInt }

// Float returns the float value and whether the answer is a float.
func (a Answer) Float() (float64, bool) { return a.f, a.Kind() == AnswerFloat }

// MarshalJSON renders the answer as its native JSON type.
func (a Answer) MarshalJSON() ([]byte, error) {
	switch a.Kind() {
	case AnswerInt:
		return json.Marshal(a.i)
	case AnswerFloat:
		return json.Marshal(a.f)
	default:
		return json.Marshal(a.str)
	}
}

// UnmarshalJSON accepts a JSON string or number. Numbers written without a
// fraction or exponent decode as ints, everything else as floats.
func (a *Answer) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return err
	}

	switch val := v.(type) {
	case string:
		*a = StringAnswer(val)
	case json.Number:
		parsed, err := ParseNumber(string(val))
		if err != nil {
			return err
		}
		*a = parsed
	default:
		return ErrInvalidAnswer
	}
	return nil
}

// ParseNumber converts a JSON number literal into an int or float answer.
func ParseNumber(lit string) (Answer, error) {
	if !strings.ContainsAny(lit, ".eE") {
		if i, err := strconv.ParseInt(lit, 10, 64); err == nil {
			return IntAnswer(i), nil
		}
	}
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return Answer{}, fmt.Errorf("invalid numeric answer %q: %w", lit, err)
	}
	return FloatAnswer(f), nil
}

// DecodeAnswer rebuilds an answer from a stored kind tag and raw JSON value.
func DecodeAnswer(kind AnswerKind, raw json.RawMessage) (Answer, error) {
	switch kind {
	case AnswerString:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return Answer{}, err
		}
		return StringAnswer(s), nil
	case AnswerInt:
		var i int64
		if err := json.Unmarshal(raw, &i); err != nil {
			return Answer{}, err
		}
		return IntAnswer(i), nil
	case AnswerFloat:
		var f float64
		if err := json.Unmarshal(raw, &f); err != nil {
			return Answer{}, err
		}
		return FloatAnswer(f), nil
	}
	return Answer{}, fmt.Errorf("unknown answer kind %q", kind)
}
