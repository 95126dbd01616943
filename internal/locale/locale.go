// Package locale knows the three display languages of the catalog and
// negotiates the one a request asked for.
package locale

import (
	"strings"

	"golang.org/x/text/language"
)

const (
	Karakalpak = "kk"
	Uzbek      = "uz"
	Russian    = "ru"
)

// Supported lists the locale codes in their canonical display order.
var Supported = []string{Karakalpak, Uzbek, Russian}

// Some clients send Karakalpak as "qq" or as its ISO 639-3 code.
var aliases = map[string]string{
	"qq":  Karakalpak,
	"kaa": Karakalpak,
}

var matcher = language.NewMatcher([]language.Tag{
	language.Make(Karakalpak),
	language.Uzbek,
	language.Russian,
})

// Normalize maps a raw code (any case, aliases allowed) to a supported locale.
func Normalize(code string) (string, bool) {
	code = strings.ToLower(strings.TrimSpace(code))
	if alias, ok := aliases[code]; ok {
		return alias, true
	}
	for _, supported := range Supported {
		if supported == code {
			return supported, true
		}
	}
	return "", false
}

// IsSupported reports whether code is one of the canonical locale codes.
func IsSupported(code string) bool {
	for _, supported := range Supported {
		if supported == code {
			return true
		}
	}
	return false
}

// Negotiate picks the locale for an Accept-Language header value, returning
// fallback when nothing acceptable was asked for.
func Negotiate(header, fallback string) string {
	if code, ok := Normalize(header); ok {
		return code
	}

	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return fallback
	}

	for _, tag := range tags {
		base, _ := tag.Base()
		if code, ok := Normalize(base.String()); ok {
			return code
		}
	}

	if _, idx, confidence := matcher.Match(tags...); confidence != language.No {
		return Supported[idx]
	}
	return fallback
}

// Pick returns the item whose code is loc, else the one for fallback, else
// the first item. ok is false only when items is empty.
func Pick[T any](items []T, code func(T) string, loc, fallback string) (item T, ok bool) {
	if len(items) == 0 {
		return item, false
	}
	for _, candidate := range items {
		if code(candidate) == loc {
			return candidate, true
		}
	}
	for _, candidate := range items {
		if code(candidate) == fallback {
			return candidate, true
		}
	}
	return items[0], true
}
