package archive

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// Item represents one archived asset entry. Items are immutable once loaded
// into a search session; AvatarID is the stable identity used as the cache key.
type Item struct {
	AvatarID    string `json:"avatarId"`
	UserID      string `json:"userId"`
	Title       string `json:"title"`
	Author      string `json:"author"`
	Description string `json:"description"`
	Image       string `json:"image"`
	DateTime    string `json:"dateTime"`
	Version     string `json:"version"`
	Size        string `json:"size"`
}

// Field names a searchable item attribute.
type Field string

const (
	FieldAvatarID    Field = "avatarId"
	FieldUserID      Field = "userId"
	FieldTitle       Field = "title"
	FieldAuthor      Field = "author"
	FieldDescription Field = "description"
	FieldDateTime    Field = "dateTime"
	FieldSize        Field = "size"
)

// EmbeddingFields returns the free-text fields that are eligible for
// embedding. Identifier fields are never embedded.
func EmbeddingFields() []Field {
	return []Field{FieldTitle, FieldAuthor, FieldDescription}
}

// IsIdentifier reports whether the field is an identifier field, which is
// searched only by exact match.
func IsIdentifier(f Field) bool {
	return f == FieldAvatarID || f == FieldUserID
}

// FieldValue returns the value of the named field. Missing or unknown fields
// read as the empty string so that malformed items are never fatal.
func (it Item) FieldValue(f Field) string {
	switch f {
	case FieldAvatarID:
		return it.AvatarID
	case FieldUserID:
		return it.UserID
	case FieldTitle:
		return it.Title
	case FieldAuthor:
		return it.Author
	case FieldDescription:
		return it.Description
	case FieldDateTime:
		return it.DateTime
	case FieldSize:
		return it.Size
	default:
		return ""
	}
}

var sizeUnits = map[string]float64{
	"B":  1,
	"KB": 1 << 10,
	"MB": 1 << 20,
	"GB": 1 << 30,
}

// SizeToBytes converts a display size string such as "12.4 MB" into a byte
// count. Unknown units count as bytes; unparseable input yields 0.
func SizeToBytes(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	parts := strings.Fields(s)
	val, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0
	}
	mult := 1.0
	if len(parts) > 1 {
		if m, ok := sizeUnits[strings.ToUpper(parts[1])]; ok {
			mult = m
		}
	}
	return val * mult
}

var dateTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseDateTime parses a display date string, tolerating the "|" separator
// the UI embeds in the value.
func ParseDateTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(s, "|", " "))
	s = strings.Join(strings.Fields(s), " ")
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// SortItems orders items in place by the given field. Date fields sort
// chronologically, size fields by byte count, and all other text fields
// case-insensitively. Identifier fields are left in their current order.
func SortItems(items []Item, field Field, asc bool) {
	if IsIdentifier(field) {
		return
	}
	sort.SliceStable(items, func(i, j int) bool {
		if !asc {
			i, j = j, i
		}
		switch field {
		case FieldDateTime:
			ti, _ := ParseDateTime(items[i].DateTime)
			tj, _ := ParseDateTime(items[j].DateTime)
			return ti.Before(tj)
		case FieldSize:
			return SizeToBytes(items[i].Size) < SizeToBytes(items[j].Size)
		default:
			return strings.ToLower(items[i].FieldValue(field)) < strings.ToLower(items[j].FieldValue(field))
		}
	})
}

// Anonymize returns a copy of items where every entry whose AvatarID is in
// ids has its personal fields scrubbed.
func Anonymize(items []Item, ids map[string]bool) []Item {
	out := make([]Item, len(items))
	for i, it := range items {
		if ids[it.AvatarID] {
			it.Author = "Anonymous"
			it.UserID = "usr_anonymous"
			it.Description = "Anonymized data"
		}
		out[i] = it
	}
	return out
}

// Remove returns a copy of items without the entries whose AvatarID is in ids.
func Remove(items []Item, ids map[string]bool) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if !ids[it.AvatarID] {
			out = append(out, it)
		}
	}
	return out
}
