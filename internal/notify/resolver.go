package notify

// TemplateSource gathers every level of the precedence chain for one
// (channel, locale) pair. The engine fills it from the run settings and
// the locale-override store; Resolve itself touches no state.
type TemplateSource struct {
	// Base-configuration channel overrides. Empty string means the
	// channel has no override and follows the global defaults.
	ChannelSubject string
	ChannelBody    string

	// Locale-level channel overrides. Nil means no override exists for
	// this (locale, channel) pair.
	LocaleChannelSubject *string
	LocaleChannelBody    *string

	// Locale-level overrides of the global defaults.
	LocaleDefaultSubject *string
	LocaleDefaultBody    *string

	// Global defaults (after fallback substitution, so never empty).
	DefaultSubject string
	DefaultBody    string
}

// Resolve returns the effective subject and body templates.
//
// Precedence, highest first: locale channel override, base channel
// override, locale default override, global default — with one deliberate
// asymmetry: the locale channel override only applies when a BASE channel
// override exists. A channel without a base override falls through to the
// locale default / global default chain even if a locale-level channel
// override is present. Subject and body resolve independently, so a
// channel may override only one of the two.
func Resolve(src TemplateSource) (subject, body string) {
	if src.ChannelSubject != "" {
		subject = src.ChannelSubject
		if src.LocaleChannelSubject != nil {
			subject = *src.LocaleChannelSubject
		}
	} else {
		subject = src.DefaultSubject
		if src.LocaleDefaultSubject != nil {
			subject = *src.LocaleDefaultSubject
		}
	}

	if src.ChannelBody != "" {
		body = src.ChannelBody
		if src.LocaleChannelBody != nil {
			body = *src.LocaleChannelBody
		}
	} else {
		body = src.DefaultBody
		if src.LocaleDefaultBody != nil {
			body = *src.LocaleDefaultBody
		}
	}

	return subject, body
}
