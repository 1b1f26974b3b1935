package i18n

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTranslator(t *testing.T) *Translator {
	t.Helper()
	tr, err := New("en")
	require.NoError(t, err)
	return tr
}

func TestNew_UnknownDefault(t *testing.T) {
	_, err := New("fr")
	assert.Error(t, err)
}

func TestTranslate_Placeholders(t *testing.T) {
	tr := newTranslator(t)

	msg := tr.T(context.Background(), MsgDuplicateField, Values{"entity": "Bank", "field": "name", "value": "Acme"})

	assert.Equal(t, "Bank with name 'Acme' already exists", msg)
}

func TestTranslate_LanguageFromContext(t *testing.T) {
	tr := newTranslator(t)
	ctx := WithLanguage(context.Background(), "es")

	msg := tr.T(ctx, MsgNotFound, Values{"entity": "Bank", "id": 4})

	assert.Equal(t, "No se encontró Bank con id 4", msg)
}

func TestTranslate_UnknownLanguageFallsBack(t *testing.T) {
	tr := newTranslator(t)
	ctx := WithLanguage(context.Background(), "de")

	assert.Equal(t, "The id must be a positive integer", tr.T(ctx, MsgInvalidID, nil))
}

func TestTranslate_UnknownKeyReturnsKey(t *testing.T) {
	tr := newTranslator(t)

	assert.Equal(t, "no_such_key", tr.T(context.Background(), "no_such_key", nil))
}

func TestCatalogsShareKeys(t *testing.T) {
	tr := newTranslator(t)

	for lang, catalog := range tr.catalogs {
		for key := range tr.catalogs["en"] {
			_, ok := catalog[key]
			assert.True(t, ok, "%s is missing %s", lang, key)
		}
	}
}

func TestNegotiate(t *testing.T) {
	tr := newTranslator(t)

	tests := []struct {
		header string
		want   string
	}{
		{"", "en"},
		{"es", "es"},
		{"es-MX", "es"},
		{"fr-FR, es;q=0.8", "es"},
		{"de", "en"},
		{"not a language!!", "en"},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			assert.Equal(t, tt.want, tr.Negotiate(tt.header))
		})
	}
}

func TestLanguages(t *testing.T) {
	tr := newTranslator(t)
	assert.Equal(t, []string{"en", "es"}, tr.Languages())
}
