package render

import (
	"testing"

	"github.com/notifyhub/flagnotify/internal/domain"
)

func TestTokenRenderer(t *testing.T) {
	item := &domain.ContentItem{ID: 42, Kind: "article", Title: "Release notes", Published: true}
	recipient := &domain.Account{ID: 7, Email: "a@example.com", Active: true, PreferredLocale: "en"}
	rc := Context{Item: item, Recipient: recipient, SiteName: "Example"}

	r := NewTokenRenderer()

	tests := []struct {
		name     string
		template string
		want     string
	}{
		{"item title", "Update: [item:title]", "Update: Release notes"},
		{"item id and kind", "[item:kind] #[item:id]", "article #42"},
		{"recipient tokens", "[recipient:email] ([recipient:id], [recipient:locale])", "a@example.com (7, en)"},
		{"site name", "[site:name] Notification", "Example Notification"},
		{"unknown token cleared", "Hello [item:nonsense]!", "Hello !"},
		{"no tokens", "plain text", "plain text"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := r.Render(tc.template, rc, "en"); got != tc.want {
				t.Fatalf("Render(%q) = %q, want %q", tc.template, got, tc.want)
			}
		})
	}
}

func TestTokenRenderer_NilReferences(t *testing.T) {
	r := NewTokenRenderer()
	got := r.Render("[item:title][recipient:email][site:name]", Context{SiteName: "Example"}, "en")
	if got != "Example" {
		t.Fatalf("expected item/recipient tokens cleared, got %q", got)
	}
}
