package service

import "golang.org/x/text/language"

// LocaleResolver picks a session locale from an Accept-Language header,
// falling back to the configured default when nothing usable is offered.
type LocaleResolver struct {
	fallback  language.Tag
	supported []language.Tag
	matcher   language.Matcher
}

// NewLocaleResolver builds a resolver over the supported locale tags. The
// fallback must parse; supported tags that do not parse are skipped.
func NewLocaleResolver(fallback string, supported []string) (*LocaleResolver, error) {
	fb, err := language.Parse(fallback)
	if err != nil {
		return nil, err
	}
	tags := []language.Tag{fb}
	for _, s := range supported {
		if t, err := language.Parse(s); err == nil && t != fb {
			tags = append(tags, t)
		}
	}
	return &LocaleResolver{fallback: fb, supported: tags, matcher: language.NewMatcher(tags)}, nil
}

// Resolve returns the best supported locale for the header value. An empty
// or malformed header yields the fallback.
func (lr *LocaleResolver) Resolve(acceptLanguage string) string {
	if acceptLanguage == "" {
		return lr.fallback.String()
	}
	prefs, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(prefs) == 0 {
		return lr.fallback.String()
	}
	_, idx, _ := lr.matcher.Match(prefs...)
	return lr.supported[idx].String()
}
