package archive

import (
	"math"
	"testing"
)

func TestFieldValueMissingIsEmpty(t *testing.T) {
	it := Item{Title: "Cyber Punk Suit"}
	if got := it.FieldValue(FieldDescription); got != "" {
		t.Fatalf("missing description = %q, want empty", got)
	}
	if got := it.FieldValue(Field("bogus")); got != "" {
		t.Fatalf("unknown field = %q, want empty", got)
	}
	if got := it.FieldValue(FieldTitle); got != "Cyber Punk Suit" {
		t.Fatalf("title = %q", got)
	}
}

func TestIsIdentifier(t *testing.T) {
	if !IsIdentifier(FieldAvatarID) || !IsIdentifier(FieldUserID) {
		t.Fatal("avatarId and userId must be identifier fields")
	}
	for _, f := range EmbeddingFields() {
		if IsIdentifier(f) {
			t.Fatalf("embeddable field %s must not be an identifier", f)
		}
	}
}

func TestSizeToBytes(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"12.4 MB", 12.4 * (1 << 20)},
		{"8 KB", 8 * 1024},
		{"3 GB", 3 * (1 << 30)},
		{"100 B", 100},
		{"", 0},
		{"garbage", 0},
	}
	for _, tc := range cases {
		if got := SizeToBytes(tc.in); math.Abs(got-tc.want) > 1e-6 {
			t.Fatalf("SizeToBytes(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestParseDateTime(t *testing.T) {
	got, ok := ParseDateTime("2024-03-11 | 18:42")
	if !ok {
		t.Fatal("failed to parse display date")
	}
	if got.Year() != 2024 || got.Month() != 3 || got.Hour() != 18 {
		t.Fatalf("parsed %v", got)
	}
	if _, ok := ParseDateTime("not a date"); ok {
		t.Fatal("parsed nonsense date")
	}
}

func TestSortItemsBySize(t *testing.T) {
	items := []Item{
		{AvatarID: "a", Size: "2 MB"},
		{AvatarID: "b", Size: "512 KB"},
		{AvatarID: "c", Size: "1 GB"},
	}
	SortItems(items, FieldSize, true)
	if items[0].AvatarID != "b" || items[2].AvatarID != "c" {
		t.Fatalf("ascending size order wrong: %v %v %v", items[0].AvatarID, items[1].AvatarID, items[2].AvatarID)
	}
	SortItems(items, FieldSize, false)
	if items[0].AvatarID != "c" || items[2].AvatarID != "b" {
		t.Fatalf("descending size order wrong: %v %v %v", items[0].AvatarID, items[1].AvatarID, items[2].AvatarID)
	}
}

func TestSortItemsByDateTime(t *testing.T) {
	items := []Item{
		{AvatarID: "new", DateTime: "2024-03-11 | 18:42"},
		{AvatarID: "old", DateTime: "2023-11-02 | 09:15"},
	}
	SortItems(items, FieldDateTime, true)
	if items[0].AvatarID != "old" {
		t.Fatalf("oldest first, got %s", items[0].AvatarID)
	}
}

func TestSortItemsIdentifierFieldUntouched(t *testing.T) {
	items := []Item{{AvatarID: "z"}, {AvatarID: "a"}}
	SortItems(items, FieldAvatarID, true)
	if items[0].AvatarID != "z" {
		t.Fatal("identifier sort must leave order unchanged")
	}
}

func TestAnonymize(t *testing.T) {
	items := []Item{
		{AvatarID: "avtr_1", UserID: "usr_real", Author: "Someone", Description: "secret"},
		{AvatarID: "avtr_2", UserID: "usr_keep", Author: "Other", Description: "public"},
	}
	out := Anonymize(items, map[string]bool{"avtr_1": true})
	if out[0].Author != "Anonymous" || out[0].UserID != "usr_anonymous" || out[0].Description != "Anonymized data" {
		t.Fatalf("item not anonymized: %+v", out[0])
	}
	if out[1].Author != "Other" {
		t.Fatal("untargeted item was modified")
	}
	if items[0].Author != "Someone" {
		t.Fatal("input slice was mutated")
	}
}

func TestRemove(t *testing.T) {
	items := []Item{{AvatarID: "a"}, {AvatarID: "b"}, {AvatarID: "c"}}
	out := Remove(items, map[string]bool{"b": true})
	if len(out) != 2 || out[0].AvatarID != "a" || out[1].AvatarID != "c" {
		t.Fatalf("Remove result: %+v", out)
	}
}
