package service

import (
	"context"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/damoang/angple-wiki/internal/common"
	"github.com/damoang/angple-wiki/internal/domain"
	"github.com/damoang/angple-wiki/internal/repository"
	"github.com/microcosm-cc/bluemonday"
)

const (
	maxQueryLength = 200
	excerptRadius  = 80
)

// SearchService page search
type SearchService struct {
	repo  repository.SearchRepository
	strip *bluemonday.Policy
}

// NewSearchService creates a new SearchService
func NewSearchService(repo repository.SearchRepository) *SearchService {
	return &SearchService{repo: repo, strip: bluemonday.StrictPolicy()}
}

// Search returns published pages matching query. Anonymous callers only see public pages.
func (s *SearchService) Search(ctx context.Context, query string, req domain.Requester) ([]*domain.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, common.ErrQueryRequired
	}
	if utf8.RuneCountInString(query) > maxQueryLength {
		return nil, common.NewValidationError("search query is too long")
	}

	results, err := s.repo.Search(query, searchPublicOnly(req))
	if err != nil {
		return nil, fmt.Errorf("search pages: %w", err)
	}
	for _, r := range results {
		body := r.Content
		if r.ContentType == domain.ContentHTML {
			body = s.strip.Sanitize(body)
		}
		r.Excerpt = excerpt(body, query)
	}
	if results == nil {
		results = []*domain.SearchResult{}
	}
	return results, nil
}

// excerpt returns the text around the first case-insensitive match of query,
// or the opening of text when there is none
func excerpt(text, query string) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	lower := lowerRunes([]rune(text))
	needle := lowerRunes([]rune(query))

	at := indexRunes(lower, needle)
	if at < 0 {
		if len(runes) <= 2*excerptRadius {
			return text
		}
		return string(runes[:2*excerptRadius]) + "…"
	}

	start := at - excerptRadius
	if start < 0 {
		start = 0
	}
	end := at + len(needle) + excerptRadius
	if end > len(runes) {
		end = len(runes)
	}

	out := string(runes[start:end])
	if start > 0 {
		out = "…" + out
	}
	if end < len(runes) {
		out += "…"
	}
	return out
}

// lowerRunes lowercases rune by rune so indexes stay aligned with the original text
func lowerRunes(rs []rune) []rune {
	out := make([]rune, len(rs))
	for i, r := range rs {
		out[i] = unicode.ToLower(r)
	}
	return out
}

func indexRunes(haystack, needle []rune) int {
	if len(needle) == 0 || len(needle) > len(haystack) {
		return -1
	}
outer:
	for i := 0; i+len(needle) <= len(haystack); i++ {
		for j := range needle {
			if haystack[i+j] != needle[j] {
				continue outer
			}
		}
		return i
	}
	return -1
}
