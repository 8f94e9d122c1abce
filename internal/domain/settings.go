package domain

// Built-in fallback templates used when the global defaults are missing
// from the settings store. Substituting them keeps a dispatch run alive;
// the degradation is logged as a warning.
const (
	FallbackSubject = "[site:name] Notification"
	FallbackBody    = "Content updated."
)

// RunSettings is the run-scoped configuration snapshot taken at the start
// of a dispatch run. It is never persisted and never refreshed mid-run, so
// a run sees one consistent view of the configuration.
type RunSettings struct {
	DefaultSubject    string
	DefaultBody       string
	DebugMode         bool
	RetryOnFailure    bool
	PreventDuplicates bool
	// Channels is the ordered list of configured channels. Order is the
	// store's position order and is deterministic: when duplicate
	// suppression is on, the earliest channel wins the dedup race.
	Channels []Channel
}

// Locale-override store keys. A key is looked up per (locale, key) pair;
// absence means "no override at this level".
const (
	KeyDefaultSubject = "default_subject"
	KeyDefaultBody    = "default_body"
)

// ChannelSubjectKey returns the locale-override key for a channel's
// subject template.
func ChannelSubjectKey(channelID string) string {
	return "channel." + channelID + ".subject"
}

// ChannelBodyKey returns the locale-override key for a channel's
// body template.
func ChannelBodyKey(channelID string) string {
	return "channel." + channelID + ".body"
}
