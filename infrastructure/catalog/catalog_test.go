package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brainbrowser/domain/core/valueobjects"
)

func TestDefaultCatalog(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	assert.Equal(t, 17, c.Len())

	pages := c.Pages()
	require.NotEmpty(t, pages)
	assert.Equal(t, valueobjects.HomePage, pages[0].ID, "home comes first in match order")
	assert.Equal(t, valueobjects.PageID("learning"), pages[len(pages)-1].ID)

	home, ok := c.Lookup(valueobjects.HomePage)
	require.True(t, ok)
	assert.Equal(t, "Home Page", home.Title)
	assert.ElementsMatch(t, []valueobjects.PageID{"about", "features", "science"}, home.Links)

	url, ok := c.URLFor("about")
	require.True(t, ok)
	assert.Equal(t, "https://brainbrowser.example/about", url)
}

func TestCatalog_UnknownPage(t *testing.T) {
	c := MustDefault()

	_, ok := c.Lookup("nowhere")
	assert.False(t, ok)

	_, ok = c.URLFor("nowhere")
	assert.False(t, ok)
}

func TestCatalog_FindByURL(t *testing.T) {
	c := MustDefault()

	tests := []struct {
		name  string
		input string
		want  valueobjects.PageID
		found bool
	}{
		{"exact", "https://brainbrowser.example/team", "team", true},
		{"trailing slash and case", "HTTPS://BrainBrowser.example/Team/", "team", true},
		{"unknown", "https://brainbrowser.example/nope", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := c.FindByURL(tt.input)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCatalog_PagesReturnsCopy(t *testing.T) {
	c := MustDefault()

	pages := c.Pages()
	pages[0].Title = "changed"

	home, _ := c.Lookup(valueobjects.HomePage)
	assert.Equal(t, "Home Page", home.Title)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"invalid yaml", "pages: [:"},
		{"missing id", "pages:\n  - title: x\n"},
		{"duplicate id", "pages:\n  - id: a\n  - id: a\n"},
		{"dangling link", "pages:\n  - id: a\n    links: [b]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}
