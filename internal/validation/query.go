package validation

import (
	"encoding/json"
	"strings"

	"melodia/internal/models"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// ListQuery holds list filters and pagination parsed from the query string.
type ListQuery struct {
	Search   string
	Genre    string
	ArtistID *uint
	Verified *bool
	Limit    int
	Page     int
}

// Offset returns the row offset for the current page.
func (q ListQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// ParseListQuery reads filters through get (usually fiber's c.Query). Invalid
// optional values fall back to their defaults instead of failing the request.
func ParseListQuery(get func(key string) string) ListQuery {
	q := ListQuery{
		Search: Clean(get("search")),
		Genre:  Clean(get("genre")),
		Limit:  ParseLimit(get("limit")),
		Page:   1,
	}
	if page, err := ParsePositiveInt(get("page")); err == nil {
		q.Page = page
	}
	if id, err := ParseID(get("artistId")); err == nil {
		q.ArtistID = &id
	}
	if raw := Clean(get("verified")); raw != "" {
		if b, err := ParseBool(raw); err == nil {
			q.Verified = &b
		}
	}
	return q
}

// ParseLimit returns DefaultLimit for missing, invalid or non-positive values
// and caps everything else at MaxLimit.
func ParseLimit(raw string) int {
	n, err := ParsePositiveInt(raw)
	if err != nil {
		return DefaultLimit
	}
	if n > MaxLimit {
		return MaxLimit
	}
	return n
}

// ValidateIDList reads a non-empty list of positive ids from key. It accepts a
// JSON array, repeated form fields, a JSON-encoded array string or a
// comma-separated string. Duplicates are dropped, order is kept.
func ValidateIDList(p *Payload, key string) ([]uint, error) {
	raw, ok := p.Raw(key)
	if !ok {
		return nil, models.NewValidationError(key + " is required")
	}

	var items []string
	switch v := raw.(type) {
	case []any:
		for _, item := range v {
			s, _ := stringify(item)
			items = append(items, s)
		}
	case string:
		s := strings.TrimSpace(v)
		if strings.HasPrefix(s, "[") {
			var list []json.Number
			if err := json.Unmarshal([]byte(s), &list); err != nil {
				return nil, models.NewValidationError(key + " must be an array of ids")
			}
			for _, n := range list {
				items = append(items, n.String())
			}
		} else if s != "" {
			items = strings.Split(s, ",")
		}
	default:
		s, _ := stringify(v)
		items = []string{s}
	}

	if len(items) == 0 {
		return nil, models.NewValidationError(key + " must be a non-empty array")
	}

	seen := make(map[uint]struct{}, len(items))
	ids := make([]uint, 0, len(items))
	for _, item := range items {
		id, err := ParseID(item)
		if err != nil {
			return nil, models.NewValidationError(key + " must contain only positive integer ids")
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}

// ValidateID reads a single required positive id from key.
func ValidateID(p *Payload, key string) (uint, error) {
	f := newFields(p)
	id := f.requiredID(key)
	return id, f.err
}
