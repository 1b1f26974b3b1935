// Package i18n translates user-facing message keys. The request language is
// carried in the context rather than in shared state.
package i18n

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/language"
)

//go:embed locales/*.json
var locales embed.FS

// Message keys
const (
	MsgSuccess            = "success"
	MsgCreated            = "created"
	MsgUpdated            = "updated"
	MsgDeleted            = "deleted"
	MsgFound              = "found"
	MsgListed             = "listed"
	MsgNotFound           = "not_found"
	MsgAlreadyExists      = "already_exists"
	MsgDuplicateField     = "duplicate_field"
	MsgParentNotFound     = "parent_not_found"
	MsgHasChildren        = "has_children"
	MsgInvalidID          = "invalid_id"
	MsgInvalidSearch      = "invalid_search"
	MsgInvalidBody        = "invalid_body"
	MsgValidationFailed   = "validation_failed"
	MsgUnauthorized       = "unauthorized"
	MsgRateLimited        = "rate_limited"
	MsgInternalError      = "internal_error"
	MsgStorageUnavailable = "storage_unavailable"
	MsgLogoUploaded       = "logo_uploaded"
	MsgLogoDeleted        = "logo_deleted"
	MsgLogoNotFound       = "logo_not_found"
	MsgLogoInvalid        = "logo_invalid"
)

// Values fills {name} placeholders in a message template
type Values map[string]any

// Translator looks up message templates per language
type Translator struct {
	catalogs map[string]map[string]string
	fallback string
	tags     []language.Tag
	matcher  language.Matcher
}

// New loads the embedded catalogs. fallback must name one of them.
func New(fallback string) (*Translator, error) {
	entries, err := locales.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("read locales: %w", err)
	}

	catalogs := make(map[string]map[string]string, len(entries))
	for _, entry := range entries {
		data, err := locales.ReadFile(path.Join("locales", entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read locale %s: %w", entry.Name(), err)
		}
		var catalog map[string]string
		if err := json.Unmarshal(data, &catalog); err != nil {
			return nil, fmt.Errorf("parse locale %s: %w", entry.Name(), err)
		}
		catalogs[strings.TrimSuffix(entry.Name(), ".json")] = catalog
	}

	fallback = strings.ToLower(strings.TrimSpace(fallback))
	if _, ok := catalogs[fallback]; !ok {
		return nil, fmt.Errorf("default language %q has no catalog", fallback)
	}

	// The fallback goes first so the matcher prefers it on ties and no-match.
	names := make([]string, 0, len(catalogs))
	for name := range catalogs {
		if name != fallback {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	names = append([]string{fallback}, names...)

	tags := make([]language.Tag, len(names))
	for i, name := range names {
		tags[i] = language.Make(name)
	}

	return &Translator{
		catalogs: catalogs,
		fallback: fallback,
		tags:     tags,
		matcher:  language.NewMatcher(tags),
	}, nil
}

// Default returns the fallback language
func (t *Translator) Default() string {
	return t.fallback
}

// Languages lists the available catalogs, fallback first
func (t *Translator) Languages() []string {
	out := make([]string, len(t.tags))
	for i, tag := range t.tags {
		base, _ := tag.Base()
		out[i] = base.String()
	}
	return out
}

// Negotiate picks the best catalog for an Api-Language / Accept-Language
// style header value. An empty or unparseable header yields the fallback.
func (t *Translator) Negotiate(header string) string {
	if strings.TrimSpace(header) == "" {
		return t.fallback
	}
	desired, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(desired) == 0 {
		return t.fallback
	}
	_, index, confidence := t.matcher.Match(desired...)
	if confidence == language.No {
		return t.fallback
	}
	base, _ := t.tags[index].Base()
	return base.String()
}

// T translates key into the context's language. Unknown keys are returned as is.
func (t *Translator) T(ctx context.Context, key string, values Values) string {
	template, ok := t.lookup(LanguageFrom(ctx), key)
	if !ok {
		return key
	}
	return format(template, values)
}

func (t *Translator) lookup(lang, key string) (string, bool) {
	if catalog, ok := t.catalogs[lang]; ok {
		if template, ok := catalog[key]; ok {
			return template, true
		}
	}
	template, ok := t.catalogs[t.fallback][key]
	return template, ok
}

func format(template string, values Values) string {
	if len(values) == 0 {
		return template
	}
	pairs := make([]string, 0, len(values)*2)
	for name, value := range values {
		pairs = append(pairs, "{"+name+"}", fmt.Sprint(value))
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

type languageKey struct{}

// WithLanguage returns a context carrying lang
func WithLanguage(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, languageKey{}, lang)
}

// LanguageFrom returns the language stored by WithLanguage, or "" if none
func LanguageFrom(ctx context.Context) string {
	lang, _ := ctx.Value(languageKey{}).(string)
	return lang
}
