package locale

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
		ok       bool
	}{
		{input: "kk", expected: Karakalpak, ok: true},
		{input: " UZ ", expected: Uzbek, ok: true},
		{input: "ru", expected: Russian, ok: true},
		{input: "qq", expected: Karakalpak, ok: true},
		{input: "kaa", expected: Karakalpak, ok: true},
		{input: "en", ok: false},
		{input: "", ok: false},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			code, ok := Normalize(tc.input)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.expected, code)
		})
	}
}

func TestNegotiate(t *testing.T) {
	testCases := []struct {
		name     string
		header   string
		expected string
	}{
		{name: "exact code", header: "ru", expected: Russian},
		{name: "alias", header: "qq", expected: Karakalpak},
		{name: "region variant", header: "ru-RU,ru;q=0.9,en;q=0.8", expected: Russian},
		{name: "weighted list", header: "en;q=0.9,uz;q=0.5", expected: Uzbek},
		{name: "script variant", header: "uz-Cyrl", expected: Uzbek},
		{name: "unsupported", header: "de-DE", expected: Uzbek},
		{name: "empty", header: "", expected: Uzbek},
		{name: "garbage", header: "@@@", expected: Uzbek},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Negotiate(tc.header, Uzbek))
		})
	}
}

func TestPick(t *testing.T) {
	type row struct{ lang, name string }
	code := func(r row) string { return r.lang }
	rows := []row{{"ru", "Салат"}, {"uz", "Salat"}}

	got, ok := Pick(rows, code, Uzbek, Russian)
	assert.True(t, ok)
	assert.Equal(t, "Salat", got.name)

	got, ok = Pick(rows, code, Karakalpak, Russian)
	assert.True(t, ok)
	assert.Equal(t, "Салат", got.name, "falls back to the default locale")

	got, ok = Pick(rows[:1], code, Karakalpak, Uzbek)
	assert.True(t, ok)
	assert.Equal(t, "Салат", got.name, "falls back to the first row")

	_, ok = Pick([]row{}, code, Uzbek, Uzbek)
	assert.False(t, ok)
}
