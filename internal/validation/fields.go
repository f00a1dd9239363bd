package validation

import (
	"fmt"
	"time"
	"unicode/utf8"

	"melodia/internal/models"
)

// Changes maps column names to new values for a partial update. A nil value
// clears a nullable column; columns that were not supplied are absent.
type Changes map[string]any

// Has reports whether column is part of the update.
func (c Changes) Has(column string) bool {
	_, ok := c[column]
	return ok
}

// Empty reports whether the update touches nothing.
func (c Changes) Empty() bool {
	return len(c) == 0
}

// fields reads typed values out of a payload and keeps the first failure.
type fields struct {
	p   *Payload
	err error
}

func newFields(p *Payload) *fields {
	if p == nil {
		p = NewPayload(nil)
	}
	return &fields{p: p}
}

func (f *fields) fail(format string, args ...any) {
	if f.err == nil {
		f.err = models.NewValidationError(fmt.Sprintf(format, args...))
	}
}

// scalar reads key as text. An array or object fails validation and reads as
// absent.
func (f *fields) scalar(key string) (string, bool) {
	raw, ok, err := f.p.String(key)
	if err != nil {
		f.fail("%s %s", key, err.Error())
		return "", false
	}
	return raw, ok
}

func (f *fields) checkLen(key, value string, max int) {
	if max > 0 && utf8.RuneCountInString(value) > max {
		f.fail("%s must not exceed %d characters", key, max)
	}
}

// requiredString fails when the field is absent or cleans to empty.
func (f *fields) requiredString(key string, max int) string {
	raw, ok := f.scalar(key)
	v := Clean(raw)
	if !ok || v == "" {
		f.fail("%s is required", key)
		return ""
	}
	f.checkLen(key, v, max)
	return v
}

// optionalString returns nil when the field is absent or empty.
func (f *fields) optionalString(key string, max int) *string {
	raw, ok := f.scalar(key)
	v := Clean(raw)
	if !ok || v == "" {
		return nil
	}
	f.checkLen(key, v, max)
	return &v
}

func (f *fields) requiredID(key string) uint {
	raw, ok := f.scalar(key)
	if !ok || Clean(raw) == "" {
		f.fail("%s is required", key)
		return 0
	}
	id, err := ParseID(raw)
	if err != nil {
		f.fail("%s %s", key, err.Error())
	}
	return id
}

func (f *fields) optionalID(key string) *uint {
	raw, ok := f.scalar(key)
	if !ok || Clean(raw) == "" {
		return nil
	}
	id, err := ParseID(raw)
	if err != nil {
		f.fail("%s %s", key, err.Error())
		return nil
	}
	return &id
}

func (f *fields) requiredPositiveInt(key string) int {
	raw, ok := f.scalar(key)
	if !ok || Clean(raw) == "" {
		f.fail("%s is required", key)
		return 0
	}
	n, err := ParsePositiveInt(raw)
	if err != nil {
		f.fail("%s %s", key, err.Error())
	}
	return n
}

// boolOr returns def when the field is absent or empty.
func (f *fields) boolOr(key string, def bool) bool {
	raw, ok := f.scalar(key)
	if !ok || Clean(raw) == "" {
		return def
	}
	b, err := ParseBool(raw)
	if err != nil {
		f.fail("%s %s", key, err.Error())
		return def
	}
	return b
}

func (f *fields) optionalDate(key string) *time.Time {
	raw, ok := f.scalar(key)
	if !ok || Clean(raw) == "" {
		return nil
	}
	t, err := ParseDate(raw)
	if err != nil {
		f.fail("%s %s", key, err.Error())
		return nil
	}
	return &t
}

// The change* helpers implement partial-update semantics: an absent field is
// skipped, an empty value clears a nullable column and is rejected for a
// required one.

func (f *fields) changeRequiredString(c Changes, key, column string, max int) {
	raw, ok := f.scalar(key)
	if !ok {
		return
	}
	v := Clean(raw)
	if v == "" {
		f.fail("%s cannot be empty", key)
		return
	}
	f.checkLen(key, v, max)
	c[column] = v
}

func (f *fields) changeNullableString(c Changes, key, column string, max int) {
	raw, ok := f.scalar(key)
	if !ok {
		return
	}
	v := Clean(raw)
	if v == "" {
		c[column] = nil
		return
	}
	f.checkLen(key, v, max)
	c[column] = v
}

func (f *fields) changeRequiredID(c Changes, key, column string) {
	raw, ok := f.scalar(key)
	if !ok {
		return
	}
	if Clean(raw) == "" {
		f.fail("%s cannot be empty", key)
		return
	}
	id, err := ParseID(raw)
	if err != nil {
		f.fail("%s %s", key, err.Error())
		return
	}
	c[column] = id
}

func (f *fields) changeNullableID(c Changes, key, column string) {
	raw, ok := f.scalar(key)
	if !ok {
		return
	}
	if Clean(raw) == "" {
		c[column] = nil
		return
	}
	id, err := ParseID(raw)
	if err != nil {
		f.fail("%s %s", key, err.Error())
		return
	}
	c[column] = id
}

func (f *fields) changePositiveInt(c Changes, key, column string) {
	raw, ok := f.scalar(key)
	if !ok {
		return
	}
	if Clean(raw) == "" {
		f.fail("%s cannot be empty", key)
		return
	}
	n, err := ParsePositiveInt(raw)
	if err != nil {
		f.fail("%s %s", key, err.Error())
		return
	}
	c[column] = n
}

// changeBool treats an empty value as absent since the column is not nullable.
func (f *fields) changeBool(c Changes, key, column string) {
	raw, ok := f.scalar(key)
	if !ok || Clean(raw) == "" {
		return
	}
	b, err := ParseBool(raw)
	if err != nil {
		f.fail("%s %s", key, err.Error())
		return
	}
	c[column] = b
}

func (f *fields) changeNullableDate(c Changes, key, column string) {
	raw, ok := f.scalar(key)
	if !ok {
		return
	}
	if Clean(raw) == "" {
		c[column] = nil
		return
	}
	t, err := ParseDate(raw)
	if err != nil {
		f.fail("%s %s", key, err.Error())
		return
	}
	c[column] = t
}
