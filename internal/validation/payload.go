// Package validation turns raw request payloads into typed, sanitized input.
package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
)

// Payload is a request body flattened to field name -> raw value. Values come
// either from a multipart/urlencoded form (strings) or from a decoded JSON object.
type Payload struct {
	fields map[string]any
}

// NewPayload wraps already-decoded fields.
func NewPayload(fields map[string]any) *Payload {
	if fields == nil {
		fields = map[string]any{}
	}
	return &Payload{fields: fields}
}

// FromJSON decodes a JSON object body. An empty body is an empty payload.
func FromJSON(body []byte) (*Payload, error) {
	fields := map[string]any{}
	if len(bytes.TrimSpace(body)) == 0 {
		return NewPayload(fields), nil
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&fields); err != nil {
		return nil, errors.New("request body must be a JSON object")
	}
	return NewPayload(fields), nil
}

// FromForm converts form values; repeated keys keep every value.
func FromForm(values map[string][]string) *Payload {
	fields := make(map[string]any, len(values))
	for key, vals := range values {
		switch len(vals) {
		case 0:
			fields[key] = ""
		case 1:
			fields[key] = vals[0]
		default:
			list := make([]any, len(vals))
			for i, v := range vals {
				list[i] = v
			}
			fields[key] = list
		}
	}
	return NewPayload(fields)
}

// Set overrides a field, e.g. with the URL of an uploaded file.
func (p *Payload) Set(key string, value any) {
	p.fields[key] = value
}

// Has reports whether the field was supplied at all.
func (p *Payload) Has(key string) bool {
	_, ok := p.fields[key]
	return ok
}

// Raw returns the undecoded value of a field.
func (p *Payload) Raw(key string) (any, bool) {
	v, ok := p.fields[key]
	return v, ok
}

// ErrNotScalar is returned for an array or object where a single value is expected.
var ErrNotScalar = errors.New("must be a single value")

// String returns the field as text and whether it was present. JSON null is
// present-but-empty; numbers and booleans are rendered in their JSON form.
// Arrays, objects and repeated form fields yield ErrNotScalar.
func (p *Payload) String(key string) (string, bool, error) {
	v, ok := p.fields[key]
	if !ok {
		return "", false, nil
	}
	s, scalar := stringify(v)
	if !scalar {
		return "", true, ErrNotScalar
	}
	return s, true, nil
}

func stringify(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", true
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case bool:
		return strconv.FormatBool(t), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case uint:
		return strconv.FormatUint(uint64(t), 10), true
	case uint64:
		return strconv.FormatUint(t, 10), true
	default:
		return "", false
	}
}
