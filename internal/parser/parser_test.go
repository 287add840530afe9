package parser

import (
	"testing"
	"time"
)

func TestParse_FrontmatterAndBody(t *testing.T) {
	input := []byte("---\ntitle: Hello\ntags:\n  - go\n  - raido\n---\n# Hello\nBody text.\n")
	r, err := Parse("20240104T120000--hello.md", input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Title != "Hello" {
		t.Errorf("title = %q, want %q", r.Title, "Hello")
	}
	if len(r.Tags) != 2 || r.Tags[0] != "go" || r.Tags[1] != "raido" {
		t.Errorf("tags = %v, want [go raido]", r.Tags)
	}
	if r.Body != "# Hello\nBody text.\n" {
		t.Errorf("body = %q", r.Body)
	}
}

func TestParse_IdentifierFromFileName(t *testing.T) {
	r, err := Parse("topics/20240104T120000--my-note__emacs_orgmode.md", []byte("body"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Identifier != "20240104T120000" {
		t.Errorf("identifier = %q", r.Identifier)
	}
	want := time.Date(2024, 1, 4, 12, 0, 0, 0, time.UTC)
	if !r.CreatedAt.Equal(want) {
		t.Errorf("created = %v, want %v", r.CreatedAt, want)
	}
}

func TestParse_KeywordsFallback(t *testing.T) {
	r, err := Parse("20240104T120000--my-note__emacs_org-mode.md", []byte("body"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(r.Tags) != 2 || r.Tags[0] != "emacs" || r.Tags[1] != "org-mode" {
		t.Errorf("tags = %v, want [emacs org-mode]", r.Tags)
	}
}

func TestParse_FrontmatterTagsWinOverKeywords(t *testing.T) {
	input := []byte("---\ntags: [alpha]\n---\nbody\n")
	r, err := Parse("20240104T120000--n__beta.md", input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(r.Tags) != 1 || r.Tags[0] != "alpha" {
		t.Errorf("tags = %v, want [alpha]", r.Tags)
	}
}

func TestParse_DateFieldWinsOverIdentifier(t *testing.T) {
	input := []byte("---\ndate: 2023-05-01\n---\nbody\n")
	r, err := Parse("20240104T120000--n.md", input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.CreatedAt.Format("2006-01-02") != "2023-05-01" {
		t.Errorf("created = %v", r.CreatedAt)
	}
}

func TestParse_AliasesAndCategory(t *testing.T) {
	input := []byte("---\naliases: one two\ncategory: tech\n---\nbody\n")
	r, err := Parse("20240104T120000--n.md", input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Aliases != "one two" {
		t.Errorf("aliases = %q", r.Aliases)
	}
	if r.Category != "tech" {
		t.Errorf("category = %q", r.Category)
	}
}

func TestParse_NoCategoryDerivation(t *testing.T) {
	// The category must come from an explicit annotation only, never from
	// the file path.
	r, err := Parse("tech/20240104T120000--n.md", []byte("body"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Category != "" {
		t.Errorf("category = %q, want empty", r.Category)
	}
}

func TestParse_InvalidYAMLFallback(t *testing.T) {
	input := []byte("---\n: invalid: yaml: {{{\n---\nBody\n")
	r, err := Parse("20240104T120000--n.md", input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Frontmatter != nil {
		t.Errorf("expected nil frontmatter on invalid YAML")
	}
}

func TestExtractReferences(t *testing.T) {
	body := "See [intro](denote:20230101T090000) and [](denote:20230202T100000::#setup).\n" +
		"Plain [web link](https://example.com) is ignored."
	refs := extractReferences(body)
	if len(refs) != 2 {
		t.Fatalf("len(refs) = %d, want 2", len(refs))
	}
	if refs[0].Target != "20230101T090000" || refs[0].Label != "intro" || refs[0].Query != "" {
		t.Errorf("refs[0] = %+v", refs[0])
	}
	if refs[1].Target != "20230202T100000" || refs[1].Query != "#setup" || refs[1].Label != "" {
		t.Errorf("refs[1] = %+v", refs[1])
	}
}

func TestDeriveTitle_H1Fallback(t *testing.T) {
	title := deriveTitle(nil, "some text\n# My Heading\nmore")
	if title != "My Heading" {
		t.Errorf("title = %q, want %q", title, "My Heading")
	}
}
