package domain

import "slices"

// ContentItem is a piece of content owned by the external content store.
// Read-only to this service; loaded once per dispatch run.
type ContentItem struct {
	ID        int64
	Kind      string
	Title     string
	Published bool
}

// Channel is a named subscription mechanism through which users opt into
// update notifications for content. The channel set is configuration data,
// loaded once per dispatch run in a stable order.
type Channel struct {
	ID      string
	Enabled bool
	// Kinds lists the content-item kinds this channel applies to.
	// An empty list means the channel applies to every kind.
	Kinds []string
	// Subject and Body are base-configuration template overrides.
	// Empty string means "no override": the channel follows the
	// global defaults (and their locale overrides) instead.
	Subject string
	Body    string
}

// AppliesTo reports whether the channel participates in a dispatch run
// for a content item of the given kind.
func (c Channel) AppliesTo(kind string) bool {
	if len(c.Kinds) == 0 {
		return true
	}
	return slices.Contains(c.Kinds, kind)
}

// Account is a user account as exposed by the external account store.
type Account struct {
	ID              int64
	Email           string
	Active          bool
	PreferredLocale string
}

// Usable reports whether an account can receive notifications at all.
// Accounts without an email address are silently excluded.
func (a Account) Usable() bool {
	return a.Active && a.Email != ""
}
