/*
Package storage provides row-level encodings for values kept in JSON columns.
*/
package storage

import (
	"encoding/json"
	"fmt"

	"github.com/khanglvm/orbit/internal/domain"
)

// responsePayload is the JSON stored in responses.payload.
type responsePayload struct {
	// Answer is the raw value in its native JSON type.
	Answer json.RawMessage `json:"answer"`

	// Kind preserves the answer's type across the JSON round trip.
	Kind domain.AnswerKind `json:"kind"`

	// NormalizedValue is reserved for a response-driven estimator.
	NormalizedValue *float64 `json:"normalized_value"`
}

func encodePayload(a domain.Answer) (string, error) {
	raw, err := json.Marshal(a)
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(responsePayload{Answer: raw, Kind: a.Kind()})
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodePayload(s string) (domain.Answer, error) {
	var p responsePayload
	if err := json.Unmarshal([]byte(s), &p); err != nil {
		return domain.Answer{}, fmt.Errorf("invalid response payload: %w", err)
	}
	if p.Kind == "" {
		// untagged payloads fall back to JSON type inference
		var a domain.Answer
		if err := json.Unmarshal(p.Answer, &a); err != nil {
			return domain.Answer{}, err
		}
		return a, nil
	}
	return domain.DecodeAnswer(p.Kind, p.Answer)
}
