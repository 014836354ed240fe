package domain

type Locale string

const (
	LocaleArabic  Locale = "ar"
	LocaleEnglish Locale = "en"
	LocaleFrench  Locale = "fr"
)

// DefaultLocale matches the storefront's primary audience.
const DefaultLocale = LocaleArabic

func (l Locale) Valid() bool {
	switch l {
	case LocaleArabic, LocaleEnglish, LocaleFrench:
		return true
	}
	return false
}

// RTL reports whether the locale is written right to left.
func (l Locale) RTL() bool { return l == LocaleArabic }

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

func (t Theme) Valid() bool { return t == ThemeLight || t == ThemeDark }

type Preferences struct {
	Locale Locale `db:"locale" json:"locale"`
	Theme  Theme  `db:"theme" json:"theme"`
}

func DefaultPreferences() Preferences {
	return Preferences{Locale: DefaultLocale, Theme: ThemeLight}
}
