package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/raido/internal/frontmatter"
	"github.com/starford/raido/internal/links"
	"github.com/starford/raido/internal/publisher"
	"github.com/starford/raido/internal/testutil"
)

// testEnv sets up a temp vault, output dir, SQLite index, publisher, and
// router for testing. authToken="" means disabled mode.
func testEnv(t *testing.T, authToken string) (http.Handler, string, string) {
	t.Helper()

	vaultDir, src := testutil.TestVault(t)
	siteDir, dst := testutil.TestSite(t)
	db := testutil.TestDB(t)

	synth := frontmatter.New([]string{"title", "date", "tags"})
	renderer := &links.Renderer{Class: "internal-link", Resolver: db}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	pub := publisher.New(src, dst, db, synth, renderer, "notes", logger)

	svc := NewService(src, db, pub)
	router := NewRouter(svc, authToken != "", authToken, nil, siteDir)
	return router, vaultDir, siteDir
}

func writeNote(t *testing.T, vaultDir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(vaultDir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func do(router http.Handler, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestPublishAndListPages(t *testing.T) {
	router, vaultDir, _ := testEnv(t, "")

	writeNote(t, vaultDir, "20240101T120000--first-note__go.md", "# First Note\n\nBody text.\n")
	writeNote(t, vaultDir, "20240102T090000--second-note__go_web.md", "# Second Note\n\nMore text.\n")

	w := do(router, http.MethodPost, "/publish")
	if w.Code != http.StatusOK {
		t.Fatalf("publish status = %d, body = %s", w.Code, w.Body.String())
	}
	var pr PublishResponse
	_ = json.Unmarshal(w.Body.Bytes(), &pr)
	if pr.Published != 2 {
		t.Errorf("published = %d, want 2", pr.Published)
	}

	w = do(router, http.MethodGet, "/pages")
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	var lr PageListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &lr)
	if lr.Total != 2 {
		t.Errorf("total = %d, want 2", lr.Total)
	}
	if len(lr.Pages) != 2 {
		t.Fatalf("pages = %d, want 2", len(lr.Pages))
	}
}

func TestListPagesTagFilter(t *testing.T) {
	router, vaultDir, _ := testEnv(t, "")

	writeNote(t, vaultDir, "20240101T120000--first-note__go.md", "# First\n")
	writeNote(t, vaultDir, "20240102T090000--second-note__web.md", "# Second\n")

	if w := do(router, http.MethodPost, "/publish"); w.Code != http.StatusOK {
		t.Fatalf("publish status = %d", w.Code)
	}

	w := do(router, http.MethodGet, "/pages?tag=web")
	var lr PageListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &lr)
	if lr.Total != 1 {
		t.Fatalf("total = %d, want 1", lr.Total)
	}
	if lr.Pages[0].Identifier != "20240102T090000" {
		t.Errorf("identifier = %q", lr.Pages[0].Identifier)
	}
}

func TestGetNote(t *testing.T) {
	router, vaultDir, _ := testEnv(t, "")

	writeNote(t, vaultDir, "20240101T120000--first-note__go.md", "# First Note\n\nBody.\n")
	if w := do(router, http.MethodPost, "/publish"); w.Code != http.StatusOK {
		t.Fatalf("publish status = %d", w.Code)
	}

	w := do(router, http.MethodGet, "/notes/20240101T120000--first-note__go.md")
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d, body = %s", w.Code, w.Body.String())
	}
	var note NoteDetail
	_ = json.Unmarshal(w.Body.Bytes(), &note)
	if note.Identifier != "20240101T120000" {
		t.Errorf("identifier = %q", note.Identifier)
	}
	if note.Title != "First Note" {
		t.Errorf("title = %q", note.Title)
	}
	if len(note.Tags) != 1 || note.Tags[0] != "go" {
		t.Errorf("tags = %v", note.Tags)
	}
}

func TestGetNoteNotFound(t *testing.T) {
	router, _, _ := testEnv(t, "")

	w := do(router, http.MethodGet, "/notes/missing.md")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestSearch(t *testing.T) {
	router, vaultDir, _ := testEnv(t, "")

	writeNote(t, vaultDir, "20240101T120000--first-note__go.md", "# First Note\n\nunique grapefruit text\n")
	if w := do(router, http.MethodPost, "/publish"); w.Code != http.StatusOK {
		t.Fatalf("publish status = %d", w.Code)
	}

	w := do(router, http.MethodGet, "/search?q=grapefruit")
	if w.Code != http.StatusOK {
		t.Fatalf("search status = %d", w.Code)
	}
	var sr SearchResponse
	_ = json.Unmarshal(w.Body.Bytes(), &sr)
	if len(sr.Results) != 1 {
		t.Fatalf("results = %d, want 1", len(sr.Results))
	}
	if sr.Results[0].ID != "20240101T120000" {
		t.Errorf("result id = %q", sr.Results[0].ID)
	}

	// Missing query parameter.
	if w := do(router, http.MethodGet, "/search"); w.Code != http.StatusBadRequest {
		t.Errorf("empty query status = %d, want 400", w.Code)
	}
}

func TestBacklinks(t *testing.T) {
	router, vaultDir, _ := testEnv(t, "")

	writeNote(t, vaultDir, "20240101T120000--target__go.md", "# Target\n")
	writeNote(t, vaultDir, "20240102T090000--source__go.md",
		"# Source\n\nSee [Target](denote:20240101T120000).\n")
	if w := do(router, http.MethodPost, "/publish"); w.Code != http.StatusOK {
		t.Fatalf("publish status = %d", w.Code)
	}

	w := do(router, http.MethodGet, "/backlinks/20240101T120000")
	if w.Code != http.StatusOK {
		t.Fatalf("backlinks status = %d", w.Code)
	}
	var br BacklinksResponse
	_ = json.Unmarshal(w.Body.Bytes(), &br)
	if len(br.Backlinks) != 1 {
		t.Fatalf("backlinks = %v, want one entry", br.Backlinks)
	}
	if !strings.Contains(br.Backlinks[0], "source") {
		t.Errorf("backlink = %q", br.Backlinks[0])
	}
}

func TestServeSiteFile(t *testing.T) {
	router, vaultDir, siteDir := testEnv(t, "")

	writeNote(t, vaultDir, "20240101T120000--first-note__go.md", "# First Note\n\nBody.\n")
	if w := do(router, http.MethodPost, "/publish"); w.Code != http.StatusOK {
		t.Fatalf("publish status = %d", w.Code)
	}

	page := filepath.Join(siteDir, "notes", "20240101T120000.md")
	if _, err := os.Stat(page); err != nil {
		t.Fatalf("page not written: %v", err)
	}

	w := do(router, http.MethodGet, "/site/notes/20240101T120000.md")
	if w.Code != http.StatusOK {
		t.Fatalf("site status = %d", w.Code)
	}
	if !strings.HasPrefix(w.Body.String(), "---\n") {
		t.Errorf("page body missing front matter block: %q", w.Body.String()[:20])
	}

	// Traversal attempts are rejected.
	req := httptest.NewRequest(http.MethodGet, "/site/x", nil)
	req.URL.Path = "/site/../secret"
	w2 := httptest.NewRecorder()
	router.ServeHTTP(w2, req)
	if w2.Code == http.StatusOK {
		t.Errorf("traversal status = %d, want error", w2.Code)
	}
}

func TestAuthModes(t *testing.T) {
	router, _, _ := testEnv(t, "sekrit")

	// No token.
	if w := do(router, http.MethodGet, "/pages"); w.Code != http.StatusUnauthorized {
		t.Errorf("no token status = %d, want 401", w.Code)
	}

	// Wrong token.
	req := httptest.NewRequest(http.MethodGet, "/pages", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token status = %d, want 401", w.Code)
	}

	// Correct token.
	req = httptest.NewRequest(http.MethodGet, "/pages", nil)
	req.Header.Set("Authorization", "Bearer sekrit")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("valid token status = %d, want 200", w.Code)
	}
}
