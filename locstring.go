package surveymeta

import "sort"

// DefaultLocale is the key under which locale-independent text is stored.
const DefaultLocale = "default"

// LocalizableString holds per-locale texts for one localizable property.
type LocalizableString struct {
	values    map[string]string
	locale    string
	OnGetText func(text string) string
}

var _ LocalizableValue = (*LocalizableString)(nil)

// NewLocalizableString returns an empty string bound to the default locale.
func NewLocalizableString() *LocalizableString {
	return &LocalizableString{values: map[string]string{}}
}

func (l *LocalizableString) Locale() string { return l.locale }

// SetLocale selects the locale read and written by Text and SetText.
func (l *LocalizableString) SetLocale(locale string) { l.locale = locale }

func (l *LocalizableString) currentLocale() string {
	if l.locale == "" {
		return DefaultLocale
	}
	return l.locale
}

// Text returns the text for the current locale, falling back to the default
// locale.
func (l *LocalizableString) Text() string {
	loc := l.currentLocale()
	res := l.values[loc]
	if res == "" && loc != DefaultLocale {
		res = l.values[DefaultLocale]
	}
	if l.OnGetText != nil {
		res = l.OnGetText(res)
	}
	return res
}

func (l *LocalizableString) SetText(text string) {
	l.SetLocaleText(l.currentLocale(), text)
}

func (l *LocalizableString) LocaleText(locale string) string {
	if locale == "" {
		locale = DefaultLocale
	}
	return l.values[locale]
}

// SetLocaleText stores text for locale; an empty text removes the entry.
func (l *LocalizableString) SetLocaleText(locale, text string) {
	if locale == "" {
		locale = DefaultLocale
	}
	if text == "" {
		delete(l.values, locale)
		return
	}
	l.values[locale] = text
}

// Locales returns the locales that carry text, sorted.
func (l *LocalizableString) Locales() []string {
	out := make([]string, 0, len(l.values))
	for k := range l.values {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (l *LocalizableString) IsEmpty() bool { return len(l.values) == 0 }

// GetJSON returns nil when empty, a plain string when only the default locale
// is set, and a locale map otherwise.
func (l *LocalizableString) GetJSON() any {
	if len(l.values) == 0 {
		return nil
	}
	if v, ok := l.values[DefaultLocale]; ok && len(l.values) == 1 {
		return v
	}
	out := make(map[string]any, len(l.values))
	for k, v := range l.values {
		out[k] = v
	}
	return out
}

// SetJSON replaces all texts. Strings set the default locale; maps set one
// locale per key. Non-string map values are ignored.
func (l *LocalizableString) SetJSON(value any) {
	l.values = map[string]string{}
	switch t := value.(type) {
	case string:
		l.SetLocaleText(DefaultLocale, t)
	case map[string]any:
		for k, v := range t {
			if s, ok := v.(string); ok {
				l.SetLocaleText(k, s)
			}
		}
	}
}
