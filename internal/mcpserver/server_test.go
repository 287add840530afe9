package mcpserver

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/raido/internal/frontmatter"
	"github.com/starford/raido/internal/links"
	"github.com/starford/raido/internal/publisher"
	"github.com/starford/raido/internal/storage"
	"github.com/starford/raido/internal/testutil"
)

func testServer(t *testing.T) (*Server, string, storage.Provider) {
	t.Helper()

	vaultDir, store := testutil.TestVault(t)
	_, site := testutil.TestSite(t)
	db := testutil.TestDB(t)

	synth := frontmatter.New([]string{"title", "date", "tags"})
	renderer := &links.Renderer{Class: "internal-link", Resolver: db}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	pub := publisher.New(store, site, db, synth, renderer, "notes", logger)

	srv := New(store, db, pub)
	return srv, vaultDir, store
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go doesn't expose a direct "call tool" test helper, so we call
	// the handler functions directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "search_notes":
		result, err = srv.searchNotes(ctx, req)
	case "read_note":
		result, err = srv.readNote(ctx, req)
	case "list_notes":
		result, err = srv.listNotes(ctx, req)
	case "get_backlinks":
		result, err = srv.getBacklinks(ctx, req)
	case "publish_note":
		result, err = srv.publishNote(ctx, req)
	case "publish_all":
		result, err = srv.publishAll(ctx, req)
	case "get_page_contract":
		result, err = srv.getPageContract(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestReadNote(t *testing.T) {
	srv, vaultDir, _ := testServer(t)
	path := "20240101T120000--hello__go.md"
	content := "# Hello\nWorld"
	if err := os.WriteFile(filepath.Join(vaultDir, path), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	r := callTool(t, srv, "read_note", map[string]interface{}{"path": path})
	if text := resultText(r); text != content {
		t.Errorf("read result = %q", text)
	}
}

func TestReadNoteMissing(t *testing.T) {
	srv, _, _ := testServer(t)
	r := callTool(t, srv, "read_note", map[string]interface{}{"path": "nope.md"})
	if !r.IsError {
		t.Error("expected error for missing note")
	}
}

func TestListNotes(t *testing.T) {
	srv, _, store := testServer(t)
	_ = store.Write("20240101T120000--a.md", []byte("a"))
	_ = store.Write("20240102T120000--b.md", []byte("b"))

	r := callTool(t, srv, "list_notes", map[string]interface{}{})
	text := resultText(r)
	if !strings.Contains(text, "20240101T120000--a.md") || !strings.Contains(text, "20240102T120000--b.md") {
		t.Errorf("list result = %q", text)
	}
}

func TestPublishNoteAndBacklinks(t *testing.T) {
	srv, _, store := testServer(t)
	_ = store.Write("20240101T120000--target__go.md", []byte("# Target\n"))
	_ = store.Write("20240102T090000--source__go.md",
		[]byte("# Source\n\nSee [Target](denote:20240101T120000).\n"))

	r := callTool(t, srv, "publish_all", map[string]interface{}{})
	if text := resultText(r); text != "published 2 pages" {
		t.Errorf("publish_all result = %q", text)
	}

	r = callTool(t, srv, "get_backlinks", map[string]interface{}{"identifier": "20240101T120000"})
	text := resultText(r)
	if !strings.Contains(text, "source") {
		t.Errorf("backlinks result = %q", text)
	}

	// No backlinks for the source note itself.
	r = callTool(t, srv, "get_backlinks", map[string]interface{}{"identifier": "20240102T090000"})
	if text := resultText(r); text != "no backlinks found" {
		t.Errorf("backlinks result = %q", text)
	}
}

func TestPublishSingleNote(t *testing.T) {
	srv, _, store := testServer(t)
	path := "20240101T120000--solo__go.md"
	_ = store.Write(path, []byte("# Solo\n"))

	r := callTool(t, srv, "publish_note", map[string]interface{}{"path": path})
	if text := resultText(r); text != "published: "+path {
		t.Errorf("publish result = %q", text)
	}

	// Missing note is a tool error, not a Go error.
	r = callTool(t, srv, "publish_note", map[string]interface{}{"path": "missing.md"})
	if !r.IsError {
		t.Error("expected error for missing note")
	}
}

func TestSearchNotes(t *testing.T) {
	srv, _, store := testServer(t)
	_ = store.Write("20240101T120000--fruit__food.md", []byte("# Fruit\n\npineapple facts\n"))

	if r := callTool(t, srv, "publish_all", map[string]interface{}{}); r.IsError {
		t.Fatalf("publish_all failed: %s", resultText(r))
	}

	r := callTool(t, srv, "search_notes", map[string]interface{}{"query": "pineapple"})
	if text := resultText(r); !strings.Contains(text, "20240101T120000") {
		t.Errorf("search result = %q", text)
	}
}

func TestGetPageContract(t *testing.T) {
	srv, _, _ := testServer(t)
	r := callTool(t, srv, "get_page_contract", map[string]interface{}{})
	if text := resultText(r); !strings.Contains(text, "front matter") {
		t.Errorf("contract result = %q", text)
	}
}
