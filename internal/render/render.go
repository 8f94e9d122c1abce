// Package render substitutes bracket tokens like [item:title] in subject
// and body templates. Rendering is a pure function of the template and the
// run context; unknown tokens are cleared rather than left in the output
// so a typo in a template never leaks raw token text to a recipient.
package render

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/notifyhub/flagnotify/internal/domain"
)

// Context carries the reference data available to templates for one
// (item, recipient) pair.
type Context struct {
	Item      *domain.ContentItem
	Recipient *domain.Account
	SiteName  string
}

// Renderer resolves a template against a context and locale.
type Renderer interface {
	Render(template string, rc Context, locale string) string
}

var tokenPattern = regexp.MustCompile(`\[[a-z]+:[a-z_]+\]`)

// TokenRenderer is the built-in Renderer.
type TokenRenderer struct{}

func NewTokenRenderer() *TokenRenderer {
	return &TokenRenderer{}
}

func (r *TokenRenderer) Render(template string, rc Context, locale string) string {
	pairs := []string{
		"[site:name]", rc.SiteName,
	}
	if rc.Item != nil {
		pairs = append(pairs,
			"[item:id]", strconv.FormatInt(rc.Item.ID, 10),
			"[item:title]", rc.Item.Title,
			"[item:kind]", rc.Item.Kind,
		)
	}
	if rc.Recipient != nil {
		pairs = append(pairs,
			"[recipient:id]", strconv.FormatInt(rc.Recipient.ID, 10),
			"[recipient:email]", rc.Recipient.Email,
			"[recipient:locale]", locale,
		)
	}

	out := strings.NewReplacer(pairs...).Replace(template)

	// Clear any token that had no replacement.
	return tokenPattern.ReplaceAllString(out, "")
}

var _ Renderer = (*TokenRenderer)(nil)
