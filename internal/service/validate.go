package service

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	apperrors "github.com/arllen133/blogcms/internal/errors"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

const (
	maxTitleLength        = 100
	maxContentLength      = 5000
	maxCategoryNameLength = 100
)

// PostInput carries the writable fields of a post. CategoryIDs is the
// complete category set; an empty slice clears it.
type PostInput struct {
	Title         string
	Content       string
	CoverImageURL string
	CategoryIDs   []string
}

// normalizePost validates in and returns the values to persist. Title and
// URL are trimmed and the title is NFC-normalized; content is kept verbatim.
func normalizePost(in PostInput) (PostInput, error) {
	title := norm.NFC.String(strings.TrimSpace(in.Title))
	if title == "" {
		return PostInput{}, apperrors.Validation("title", "title is required")
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return PostInput{}, apperrors.Validation("title",
			fmt.Sprintf("title must be at most %d characters", maxTitleLength))
	}

	if strings.TrimSpace(in.Content) == "" {
		return PostInput{}, apperrors.Validation("content", "content is required")
	}
	if utf8.RuneCountInString(in.Content) > maxContentLength {
		return PostInput{}, apperrors.Validation("content",
			fmt.Sprintf("content must be at most %d characters", maxContentLength))
	}

	coverImageURL := strings.TrimSpace(in.CoverImageURL)
	if coverImageURL == "" {
		return PostInput{}, apperrors.Validation("coverImageURL", "coverImageURL is required")
	}
	if !isAbsoluteHTTPURL(coverImageURL) {
		return PostInput{}, apperrors.Validation("coverImageURL",
			"coverImageURL must be an absolute http or https URL")
	}

	categoryIDs, err := normalizeIDs(in.CategoryIDs)
	if err != nil {
		return PostInput{}, err
	}

	return PostInput{
		Title:         title,
		Content:       in.Content,
		CoverImageURL: coverImageURL,
		CategoryIDs:   categoryIDs,
	}, nil
}

func isAbsoluteHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// normalizeIDs trims and de-duplicates ids, keeping first-seen order.
// The result is never nil.
func normalizeIDs(ids []string) ([]string, error) {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			return nil, apperrors.Validation("categoryIds", "categoryIds must not contain empty ids")
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out, nil
}

func normalizeCategoryName(name string) (string, error) {
	name = norm.NFC.String(strings.TrimSpace(name))
	if name == "" {
		return "", apperrors.Validation("name", "name is required")
	}
	if utf8.RuneCountInString(name) > maxCategoryNameLength {
		return "", apperrors.Validation("name",
			fmt.Sprintf("name must be at most %d characters", maxCategoryNameLength))
	}
	return name, nil
}

// foldName is the comparison key for category name uniqueness.
func foldName(name string) string {
	return cases.Fold().String(name)
}
