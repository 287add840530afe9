package api

import "github.com/starford/raido/internal/index"

// PageListResponse is the response body for GET /pages.
type PageListResponse struct {
	Pages []PageListItem `json:"pages"`
	Total int            `json:"total"`
}

// SearchResponse is the response body for GET /search.
type SearchResponse struct {
	Results []index.SearchResult `json:"results"`
}

// BacklinksResponse is the response body for GET /backlinks/{id}.
type BacklinksResponse struct {
	Identifier string   `json:"identifier"`
	Backlinks  []string `json:"backlinks"`
}

// PublishResponse is the response body for POST /publish.
type PublishResponse struct {
	Published int `json:"published"`
}
