// Package envelope extracts entries from remote responses whose wrapping
// differs between endpoints and backend versions.
//
// Accepted shapes, tried in order:
//
//	<target>                              bare entity or array
//	{"data": <target>}
//	{"data": {"data": <target>}}
//	{"data": {"success": true, "data": <target>}}
//
// Anything else is a *DecodeError. There is no fallback guess.
package envelope

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Tiliavir/standup/internal/model"
)

// ErrInvalidResponseFormat is matched by every *DecodeError.
var ErrInvalidResponseFormat = errors.New("invalid response format")

// Shape names the envelope variant a payload matched.
type Shape int

const (
	ShapeUnknown Shape = iota
	ShapeBare
	ShapeData
	ShapeNestedData
	ShapeSuccessData
)

func (s Shape) String() string {
	switch s {
	case ShapeBare:
		return "bare"
	case ShapeData:
		return "data"
	case ShapeNestedData:
		return "data.data"
	case ShapeSuccessData:
		return "data.success+data"
	default:
		return "unknown"
	}
}

// Decoded is the result of a successful decode.
type Decoded[T any] struct {
	Value T
	Shape Shape
}

// DecodeError carries the payload that could not be decoded.
type DecodeError struct {
	Reason  string
	Payload []byte
}

func (e *DecodeError) Error() string {
	const max = 120
	snippet := e.Payload
	if len(snippet) > max {
		snippet = append(append([]byte{}, snippet[:max]...), "..."...)
	}
	return fmt.Sprintf("%s: %s (payload: %s)", ErrInvalidResponseFormat, e.Reason, snippet)
}

func (e *DecodeError) Unwrap() error { return ErrInvalidResponseFormat }

// matcher reports whether raw is already the target shape. A non-nil error
// means raw looks like the target but is unusable (e.g. missing identity).
type matcher[T any] func(raw json.RawMessage) (T, bool, error)

// Entry decodes a single entry.
func Entry(raw []byte) (Decoded[model.Entry], error) {
	return decode(raw, "entry", matchEntry)
}

// Entries decodes a list of entries.
func Entries(raw []byte) (Decoded[[]model.Entry], error) {
	return decode(raw, "entry list", matchEntries)
}

// Stats decodes the aggregate stats object.
func Stats(raw []byte) (Decoded[model.Stats], error) {
	return decode(raw, "stats object", matchStats)
}

func decode[T any](raw []byte, what string, match matcher[T]) (Decoded[T], error) {
	var zero Decoded[T]
	payload := bytes.TrimSpace(raw)
	fail := func(reason string) (Decoded[T], error) {
		return zero, &DecodeError{Reason: reason, Payload: append([]byte{}, payload...)}
	}
	if len(payload) == 0 || bytes.Equal(payload, []byte("null")) {
		return fail("empty payload")
	}

	v, ok, err := match(payload)
	if err != nil {
		return fail(err.Error())
	}
	if ok {
		return Decoded[T]{Value: v, Shape: ShapeBare}, nil
	}

	outer, ok := object(payload)
	if !ok {
		return fail("not a " + what + " and not an envelope")
	}
	if !successful(outer) {
		return fail("envelope reports success=false")
	}
	data, ok := outer["data"]
	if !ok {
		return fail("not a " + what + " and no data field")
	}

	v, ok, err = match(data)
	if err != nil {
		return fail(err.Error())
	}
	if ok {
		return Decoded[T]{Value: v, Shape: ShapeData}, nil
	}

	inner, ok := object(data)
	if !ok {
		return fail("data is not a " + what)
	}
	shape := ShapeNestedData
	if _, has := inner["success"]; has {
		if !successful(inner) {
			return fail("envelope reports data.success=false")
		}
		shape = ShapeSuccessData
	}
	innerData, ok := inner["data"]
	if !ok {
		return fail("data is not a " + what + " and has no data field")
	}
	v, ok, err = match(innerData)
	if err != nil {
		return fail(err.Error())
	}
	if !ok {
		return fail("data.data is not a " + what)
	}
	return Decoded[T]{Value: v, Shape: shape}, nil
}

// object decodes raw as a JSON object, keeping member values raw.
func object(raw json.RawMessage) (map[string]json.RawMessage, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil, false
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, false
	}
	return m, true
}

// successful is false only when a success member exists and is not true.
func successful(m map[string]json.RawMessage) bool {
	s, has := m["success"]
	if !has {
		return true
	}
	var ok bool
	if err := json.Unmarshal(s, &ok); err != nil {
		return false
	}
	return ok
}

func matchEntry(raw json.RawMessage) (model.Entry, bool, error) {
	m, ok := object(raw)
	if !ok {
		return model.Entry{}, false, nil
	}
	if _, has := m["date"]; !has {
		return model.Entry{}, false, nil
	}
	var e model.Entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return model.Entry{}, false, fmt.Errorf("entry does not decode: %v", err)
	}
	if e.Date == "" {
		return model.Entry{}, false, errors.New("entry lacks its date")
	}
	return e, true, nil
}

func matchEntries(raw json.RawMessage) ([]model.Entry, bool, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, false, nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false, fmt.Errorf("entry list does not decode: %v", err)
	}
	out := make([]model.Entry, 0, len(items))
	for i, item := range items {
		e, ok, err := matchEntry(item)
		if err != nil {
			return nil, false, fmt.Errorf("element %d: %v", i, err)
		}
		if !ok {
			return nil, false, fmt.Errorf("element %d is not an entry", i)
		}
		out = append(out, e)
	}
	return out, true, nil
}

func matchStats(raw json.RawMessage) (model.Stats, bool, error) {
	m, ok := object(raw)
	if !ok {
		return model.Stats{}, false, nil
	}
	if _, has := m["totalEntries"]; !has {
		return model.Stats{}, false, nil
	}
	var s model.Stats
	if err := json.Unmarshal(raw, &s); err != nil {
		return model.Stats{}, false, fmt.Errorf("stats do not decode: %v", err)
	}
	return s, true, nil
}
