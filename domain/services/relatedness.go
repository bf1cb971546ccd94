package services

import (
	"strings"
	"unicode/utf8"

	"brainbrowser/domain/core/entities"
	"brainbrowser/domain/core/valueobjects"
)

// minTitleWordLength is the shortest title word that counts toward
// relatedness. Shorter words ("the", "our") are ignored.
const minTitleWordLength = 4

// PageLookup resolves page ids to catalog entries
type PageLookup interface {
	Lookup(id valueobjects.PageID) (entities.Page, bool)
}

// RelatednessChecker decides whether two catalog pages belong together.
// Two pages are related when their titles share a word of at least four
// letters (case-insensitive) or when either links to the other. Pages
// missing from the catalog are never related.
type RelatednessChecker struct {
	pages PageLookup
}

// NewRelatednessChecker creates a checker over a catalog
func NewRelatednessChecker(pages PageLookup) *RelatednessChecker {
	return &RelatednessChecker{pages: pages}
}

// Related reports whether the pages a and b are related
func (c *RelatednessChecker) Related(a, b valueobjects.PageID) bool {
	if c.pages == nil || a == b {
		return false
	}
	pageA, ok := c.pages.Lookup(a)
	if !ok {
		return false
	}
	pageB, ok := c.pages.Lookup(b)
	if !ok {
		return false
	}
	return SharesTitleWord(pageA.Title, pageB.Title) || pageA.LinksTo(b) || pageB.LinksTo(a)
}

// SharesTitleWord reports whether two titles have a common long word
func SharesTitleWord(a, b string) bool {
	words := titleWords(a)
	if len(words) == 0 {
		return false
	}
	for _, w := range strings.Fields(strings.ToLower(b)) {
		if utf8.RuneCountInString(w) < minTitleWordLength {
			continue
		}
		if _, ok := words[w]; ok {
			return true
		}
	}
	return false
}

func titleWords(title string) map[string]struct{} {
	words := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(title)) {
		if utf8.RuneCountInString(w) >= minTitleWordLength {
			words[w] = struct{}{}
		}
	}
	return words
}
