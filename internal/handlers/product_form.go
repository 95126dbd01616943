package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"regexp"
	"sort"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"github.com/spf13/cast"

	"github.com/example/foodcatalog/internal/services"
)

var (
	indexedTranslationField = regexp.MustCompile(`^translations\[(\d+)\]\[(lang_code|name|description)\]$`)
	localeKeyedField        = regexp.MustCompile(`^(name|description)\[([A-Za-z_-]+)\]$`)
)

var errMalformedBody = errors.New("malformed request body")

// readProductInput collects the product fields from a JSON, urlencoded or
// multipart body. The returned func closes the uploaded image.
func readProductInput(c *fiber.Ctx) (services.ProductInput, func(), error) {
	noop := func() {}

	if strings.HasPrefix(strings.ToLower(c.Get(fiber.HeaderContentType)), fiber.MIMEApplicationJSON) {
		in, err := readProductJSON(c.Body())
		return in, noop, err
	}

	values := map[string][]string{}
	var image *multipart.FileHeader
	if form, err := c.MultipartForm(); err == nil {
		values = form.Value
		if files := form.File["image"]; len(files) > 0 {
			image = files[0]
		}
	} else {
		c.Request().PostArgs().VisitAll(func(key, value []byte) {
			values[string(key)] = append(values[string(key)], string(value))
		})
	}

	in := services.ProductInput{
		CategoryID:  formValue(values, "category_id"),
		Price:       formValue(values, "price"),
		IsAvailable: formValue(values, "is_available"),
	}

	translations, err := formTranslations(values)
	if err != nil {
		return in, noop, err
	}
	in.Translations = translations

	if image == nil {
		return in, noop, nil
	}

	file, err := image.Open()
	if err != nil {
		return in, noop, errors.Wrap(err, "open uploaded image")
	}
	in.Image = &services.ImageUpload{File: file, Size: image.Size}
	return in, func() { file.Close() }, nil
}

func readProductJSON(body []byte) (services.ProductInput, error) {
	var in services.ProductInput
	if len(bytes.TrimSpace(body)) == 0 {
		return in, nil
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return in, errMalformedBody
	}

	in.CategoryID = jsonValue(raw, "category_id")
	in.Price = jsonValue(raw, "price")
	in.IsAvailable = jsonValue(raw, "is_available")

	if list, ok := raw["translations"]; ok && list != nil {
		encoded, err := json.Marshal(list)
		if err != nil {
			return in, errMalformedBody
		}
		if err := json.Unmarshal(encoded, &in.Translations); err != nil {
			return in, errMalformedBody
		}
		if in.Translations == nil {
			in.Translations = []services.TranslationInput{}
		}
		return in, nil
	}

	names := cast.ToStringMapString(raw["name"])
	descriptions := cast.ToStringMapString(raw["description"])
	if len(names) > 0 {
		in.Translations = services.TranslationsFromMaps(names, descriptions)
	}
	return in, nil
}

// formTranslations accepts translations[i][field] keys, a JSON encoded
// translations field, or name[locale]/description[locale] keys. It returns
// nil when none of them is present.
func formTranslations(values map[string][]string) ([]services.TranslationInput, error) {
	if encoded := formValue(values, "translations"); encoded != nil {
		var inputs []services.TranslationInput
		if err := json.Unmarshal([]byte(*encoded), &inputs); err != nil {
			return nil, errMalformedBody
		}
		if inputs == nil {
			inputs = []services.TranslationInput{}
		}
		return inputs, nil
	}

	indexed := map[int]*services.TranslationInput{}
	names := map[string]string{}
	descriptions := map[string]string{}

	for key, vals := range values {
		if len(vals) == 0 {
			continue
		}
		value := vals[0]

		if m := indexedTranslationField.FindStringSubmatch(key); m != nil {
			idx := cast.ToInt(strings.TrimLeft(m[1], "0"))
			entry, ok := indexed[idx]
			if !ok {
				entry = &services.TranslationInput{}
				indexed[idx] = entry
			}
			switch m[2] {
			case "lang_code":
				entry.LangCode = value
			case "name":
				entry.Name = value
			case "description":
				description := value
				entry.Description = &description
			}
			continue
		}

		if m := localeKeyedField.FindStringSubmatch(key); m != nil {
			if m[1] == "name" {
				names[m[2]] = value
			} else {
				descriptions[m[2]] = value
			}
		}
	}

	if len(indexed) > 0 {
		keys := make([]int, 0, len(indexed))
		for idx := range indexed {
			keys = append(keys, idx)
		}
		sort.Ints(keys)

		inputs := make([]services.TranslationInput, 0, len(keys))
		for _, idx := range keys {
			inputs = append(inputs, *indexed[idx])
		}
		return inputs, nil
	}

	if len(names) > 0 {
		return services.TranslationsFromMaps(names, descriptions), nil
	}
	return nil, nil
}

func formValue(values map[string][]string, key string) *string {
	vals, ok := values[key]
	if !ok || len(vals) == 0 {
		return nil
	}
	value := strings.TrimSpace(vals[0])
	if value == "" {
		return nil
	}
	return &value
}

func jsonValue(raw map[string]interface{}, key string) *string {
	value, ok := raw[key]
	if !ok || value == nil {
		return nil
	}
	s, err := cast.ToStringE(value)
	if err != nil {
		s = "invalid"
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
