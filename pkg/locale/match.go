package locale

import (
	"strings"

	"golang.org/x/text/language"
)

// Match picks the best available language for the given preferences, tried in order.
// Each preference may be a plain tag ("nl") or an Accept-Language header value.
// The fallback language wins when nothing matches.
func (b *Bundle) Match(preferences ...string) string {
	langs := b.Languages()
	supported := []language.Tag{language.Make(b.fallback)}
	names := []string{b.fallback}
	for _, l := range langs {
		if l == b.fallback {
			continue
		}
		supported = append(supported, language.Make(l))
		names = append(names, l)
	}
	matcher := language.NewMatcher(supported)

	for _, pref := range preferences {
		pref = strings.TrimSpace(pref)
		if pref == "" {
			continue
		}
		tags, _, err := language.ParseAcceptLanguage(pref)
		if err != nil || len(tags) == 0 {
			continue
		}
		_, idx, conf := matcher.Match(tags...)
		if conf != language.No {
			return names[idx]
		}
	}
	return b.fallback
}
