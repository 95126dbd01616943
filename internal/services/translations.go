package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/example/foodcatalog/internal/locale"
	"github.com/example/foodcatalog/internal/validation"
)

const maxNameLength = 255

// TranslationInput is one locale entry of a create or update payload.
type TranslationInput struct {
	LangCode    string  `json:"lang_code" form:"lang_code"`
	Name        string  `json:"name" form:"name"`
	Description *string `json:"description" form:"description"`
}

// normalizeTranslations canonicalizes locale codes, trims names and checks
// the structural rules shared by categories and products: at least one
// entry, supported locales, no locale twice, non-empty names within length.
func normalizeTranslations(inputs []TranslationInput) ([]TranslationInput, *validation.Errors) {
	errs := validation.New()
	if len(inputs) == 0 {
		errs.Add("translations", "At least one translation is required.")
		return nil, errs
	}

	seen := make(map[string]bool, len(inputs))
	out := make([]TranslationInput, 0, len(inputs))
	for i, in := range inputs {
		field := fmt.Sprintf("translations.%d", i)

		code, ok := locale.Normalize(in.LangCode)
		switch {
		case strings.TrimSpace(in.LangCode) == "":
			errs.Add(field+".lang_code", "The lang code field is required.")
		case !ok:
			errs.Add(field+".lang_code", "The selected lang code is invalid.")
		case seen[code]:
			errs.Add(field+".lang_code", fmt.Sprintf("The lang code %s is given more than once.", code))
		default:
			seen[code] = true
		}

		name := strings.TrimSpace(in.Name)
		switch {
		case name == "":
			errs.Add(field+".name", "The name field is required.")
		case utf8.RuneCountInString(name) > maxNameLength:
			errs.Add(field+".name", fmt.Sprintf("The name may not be greater than %d characters.", maxNameLength))
		}

		var description *string
		if in.Description != nil {
			if trimmed := strings.TrimSpace(*in.Description); trimmed != "" {
				description = &trimmed
			}
		}

		out = append(out, TranslationInput{LangCode: code, Name: name, Description: description})
	}

	if !errs.Empty() {
		return nil, errs
	}
	return out, errs
}

// TranslationsFromMaps builds inputs from the legacy name[locale] and
// description[locale] shape. Known locales come first in display order.
func TranslationsFromMaps(names, descriptions map[string]string) []TranslationInput {
	if len(names) == 0 {
		return nil
	}

	var codes []string
	for _, code := range locale.Supported {
		if _, ok := names[code]; ok {
			codes = append(codes, code)
		}
	}
	var others []string
	for code := range names {
		if !locale.IsSupported(code) {
			others = append(others, code)
		}
	}
	sort.Strings(others)
	codes = append(codes, others...)

	inputs := make([]TranslationInput, 0, len(codes))
	for _, code := range codes {
		in := TranslationInput{LangCode: code, Name: names[code]}
		if description, ok := descriptions[code]; ok {
			d := description
			in.Description = &d
		}
		inputs = append(inputs, in)
	}
	return inputs
}

func takenMessage(code string) string {
	return fmt.Sprintf("The name.%s has already been taken.", code)
}

type localizedName struct {
	lang string
	name string
}

type nameLookup func(ctx context.Context, lang, name string, except uuid.UUID) (bool, error)

// duplicateNameError reports a unique index violation the way the precheck
// would, keyed by the locale whose name is now taken. When the conflicting
// row is gone again the first submitted locale is blamed.
func duplicateNameError(ctx context.Context, names []localizedName, self uuid.UUID, taken nameLookup) error {
	if len(names) == 0 {
		return validation.Single("name", "The name has already been taken.")
	}

	errs := validation.New()
	for _, n := range names {
		ok, err := taken(ctx, n.lang, n.name, self)
		if err != nil {
			return errors.Wrap(err, "check name")
		}
		if ok {
			errs.Add("name."+n.lang, takenMessage(n.lang))
		}
	}
	if errs.Empty() {
		errs.Add("name."+names[0].lang, takenMessage(names[0].lang))
	}
	return errs
}
