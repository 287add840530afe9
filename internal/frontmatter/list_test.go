package frontmatter

import (
	"errors"
	"testing"
)

func TestSerializeList_MixedScalars(t *testing.T) {
	got, err := SerializeList("tags", []interface{}{"a", "b c", "true"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// "true" stays a bare boolean word per the scalar pass-through rule.
	want := `["a", "b c", true]`
	if got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestSerializeList_NumbersUnquoted(t *testing.T) {
	got, err := SerializeList("weights", []interface{}{1, int64(2), 3.5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "[1, 2, 3.5]" {
		t.Errorf("got %s", got)
	}
}

func TestSerializeList_Atoms(t *testing.T) {
	got, err := SerializeList("flags", []interface{}{Atom("draft"), Atom("pinned")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != `["draft", "pinned"]` {
		t.Errorf("got %s", got)
	}
}

func TestSerializeList_Empty(t *testing.T) {
	got, err := SerializeList("tags", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "[]" {
		t.Errorf("got %s", got)
	}
}

func TestSerializeList_RejectsEmptyString(t *testing.T) {
	_, err := SerializeList("tags", []interface{}{"ok", ""})
	var lerr *InvalidListElementError
	if !errors.As(err, &lerr) {
		t.Fatalf("expected InvalidListElementError, got %v", err)
	}
	if lerr.Field != "tags" {
		t.Errorf("field = %q, want tags", lerr.Field)
	}
}

func TestSerializeList_RejectsUnsupportedType(t *testing.T) {
	_, err := SerializeList("tags", []interface{}{"ok", map[string]int{}})
	var lerr *InvalidListElementError
	if !errors.As(err, &lerr) {
		t.Fatalf("expected InvalidListElementError, got %v", err)
	}
	if lerr.Field != "tags" {
		t.Errorf("field = %q, want tags", lerr.Field)
	}
}
