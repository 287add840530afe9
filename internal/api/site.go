package api

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
)

// SiteHandler serves rendered pages straight from the output directory.
type SiteHandler struct {
	siteRoot string
}

// NewSiteHandler creates a handler rooted at the published site directory.
func NewSiteHandler(siteRoot string) *SiteHandler {
	return &SiteHandler{siteRoot: siteRoot}
}

// safePath validates the request path (no traversal, no absolute segments)
// and returns the absolute path under the site root.
func (h *SiteHandler) safePath(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("path is required")
	}
	cleaned := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(cleaned) || strings.Contains(cleaned, "..") {
		return "", fmt.Errorf("invalid path: %s", name)
	}
	abs := filepath.Join(h.siteRoot, cleaned)
	if !strings.HasPrefix(abs, h.siteRoot+string(os.PathSeparator)) && abs != h.siteRoot {
		return "", fmt.Errorf("path escapes site directory")
	}
	return abs, nil
}

// ServeFile handles GET /site/*.
func (h *SiteHandler) ServeFile(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	abs, err := h.safePath(name)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	info, statErr := os.Stat(abs)
	if os.IsNotExist(statErr) || (statErr == nil && info.IsDir()) {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, abs)
}
