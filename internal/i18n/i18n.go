// Package i18n negotiates the buyer's locale and holds the user-facing
// message catalog for the three supported storefront languages.
package i18n

import (
	"fmt"

	"golang.org/x/text/language"

	"bazaar/internal/domain"
)

var (
	supported = []language.Tag{language.Arabic, language.English, language.French}
	locales   = []domain.Locale{domain.LocaleArabic, domain.LocaleEnglish, domain.LocaleFrench}
	matcher   = language.NewMatcher(supported)
)

// Match picks a supported locale from an Accept-Language header value.
func Match(acceptLanguage string) domain.Locale {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return domain.DefaultLocale
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No || idx < 0 || idx >= len(locales) {
		return domain.DefaultLocale
	}
	return locales[idx]
}

// Parse accepts "fr", "fr-FR", "en_US" and similar; ok is false when the
// input names no supported language.
func Parse(s string) (domain.Locale, bool) {
	tag, err := language.Parse(s)
	if err != nil {
		return domain.DefaultLocale, false
	}
	base, _ := tag.Base()
	loc := domain.Locale(base.String())
	if !loc.Valid() {
		return domain.DefaultLocale, false
	}
	return loc, true
}

// T renders key in loc, falling back to English and then to the key itself.
func T(loc domain.Locale, key Key, args ...any) string {
	entry, ok := catalog[key]
	if !ok {
		return string(key)
	}
	msg, ok := entry[loc]
	if !ok {
		msg = entry[domain.LocaleEnglish]
	}
	if len(args) > 0 {
		return fmt.Sprintf(msg, args...)
	}
	return msg
}
