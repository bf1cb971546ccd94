package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brainbrowser/domain/core/valueobjects"
)

func TestURLClassifier_Classify(t *testing.T) {
	c := NewURLClassifier(testCatalog())

	tests := []struct {
		name     string
		input    string
		wantKind URLKind
		wantPage valueobjects.PageID
		wantURL  string
	}{
		{"canonical url", "https://brainbrowser.example/team", URLKindPage, "team", "https://brainbrowser.example/team"},
		{"contains page id", "  tell me about it ", URLKindPage, "about", "https://brainbrowser.example/about"},
		{"first match in catalog order", "home-team", URLKindPage, "home", "https://brainbrowser.example/home"},
		{"external host", "example.com/path", URLKindExternal, "", "https://example.com/path"},
		{"external with scheme", "http://go.dev", URLKindExternal, "", "http://go.dev"},
		{"garbage falls back home", "not a url", URLKindHome, valueobjects.HomePage, ""},
		{"empty falls back home", "   ", URLKindHome, valueobjects.HomePage, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.input)
			assert.Equal(t, tt.wantKind, got.Kind)
			assert.Equal(t, tt.wantPage, got.PageID)
			assert.Equal(t, tt.wantURL, got.URL)
		})
	}
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		input    string
		wantURL  string
		wantHost string
		wantErr  bool
	}{
		{"example.com", "https://example.com", "example.com", false},
		{"  WWW.Example.com/a?b=c ", "https://WWW.Example.com/a?b=c", "www.example.com", false},
		{"ftp://files.example.net", "ftp://files.example.net", "files.example.net", false},
		{"https://", "", "", true},
		{"two words", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			url, host, err := NormalizeURL(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidURL)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantURL, url)
			assert.Equal(t, tt.wantHost, host)
		})
	}
}

func TestEmbeddable(t *testing.T) {
	assert.True(t, Embeddable("example.com"))
	assert.False(t, Embeddable("notgithub.com"))
	assert.False(t, Embeddable("github.com"))
	assert.False(t, Embeddable("mail.Google.com"))
	assert.False(t, Embeddable("www.paypal.com"))
}
