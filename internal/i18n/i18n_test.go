package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"bazaar/internal/domain"
)

func TestMatch(t *testing.T) {
	assert.Equal(t, domain.LocaleFrench, Match("fr-CA,fr;q=0.9,en;q=0.5"))
	assert.Equal(t, domain.LocaleEnglish, Match("en-US"))
	assert.Equal(t, domain.LocaleArabic, Match("ar-DZ"))
	assert.Equal(t, domain.DefaultLocale, Match(""))
	assert.Equal(t, domain.DefaultLocale, Match("!!"))
}

func TestParse(t *testing.T) {
	loc, ok := Parse("fr-FR")
	assert.True(t, ok)
	assert.Equal(t, domain.LocaleFrench, loc)

	loc, ok = Parse("en")
	assert.True(t, ok)
	assert.Equal(t, domain.LocaleEnglish, loc)

	_, ok = Parse("de")
	assert.False(t, ok)
	_, ok = Parse("")
	assert.False(t, ok)
}

func TestT(t *testing.T) {
	assert.Equal(t, "Sorry, the requested quantity of Chair is not available right now",
		T(domain.LocaleEnglish, InsufficientStock, "Chair"))
	assert.Contains(t, T(domain.LocaleArabic, InsufficientStock, "Chair"), "Chair")
	assert.Equal(t, "Commande #ABC123 est: Shipped", T(domain.LocaleFrench, NotifMessage, "ABC123", "Shipped"))
	assert.Equal(t, "Order Accepted", T(domain.Locale("xx"), NotifAccepted))
	assert.Equal(t, "no_such_key", T(domain.LocaleEnglish, Key("no_such_key")))
}

func TestCatalogComplete(t *testing.T) {
	for key, e := range catalog {
		for _, loc := range locales {
			assert.NotEmpty(t, e[loc], "%s missing %s", key, loc)
		}
	}
}
