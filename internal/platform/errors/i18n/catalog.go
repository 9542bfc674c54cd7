// Package i18n provides internationalization support for error messages.
package i18n

import (
	"bytes"
	"maps"
	"strings"
	"sync"
	"text/template"

	"golang.org/x/text/language"
)

// Code is a machine-readable error code (duplicated from errors package to avoid cycle).
type Code = string

// BaseLocale is the catalog used when no registered locale matches.
const BaseLocale = "en-US"

// Catalog maps error codes to message templates for a specific locale.
type Catalog struct {
	locale   string
	messages map[Code]string
}

var (
	catalogsMu sync.RWMutex
	catalogs   = map[string]*Catalog{
		enUSCatalog.locale: enUSCatalog,
		ptBRCatalog.locale: ptBRCatalog,
	}
	matcher = newMatcher()
)

// GetCatalog returns the catalog for the given locale. Exact registrations
// win; otherwise the closest built-in language is chosen, falling back to
// en-US.
func GetCatalog(locale string) *Catalog {
	requested := strings.TrimSpace(locale)
	if requested == "" {
		requested = BaseLocale
	}

	if c, ok := lookupCatalog(requested); ok {
		return c
	}

	if resolved := matchLocale(requested); resolved != "" {
		if c, ok := lookupCatalog(resolved); ok {
			return c
		}
	}

	c, _ := lookupCatalog(BaseLocale)
	return c
}

// Locale returns the locale of this catalog.
func (c *Catalog) Locale() string {
	return c.locale
}

// Format renders the message template with the given metadata.
// Falls back to the error code itself if no template is found.
// Templates are always executed even with nil/empty metadata to ensure
// consistent output (template variables without metadata render as empty).
func (c *Catalog) Format(code Code, metadata map[string]string) string {
	tmpl, ok := c.messages[code]
	if !ok {
		return code
	}

	if metadata == nil {
		metadata = map[string]string{}
	}

	t, err := template.New("msg").Parse(tmpl)
	if err != nil {
		return tmpl
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, metadata); err != nil {
		return tmpl
	}
	return buf.String()
}

// RegisterCatalog registers a new catalog for the given locale.
func RegisterCatalog(locale string, cat *Catalog) {
	catalogsMu.Lock()
	defer catalogsMu.Unlock()
	catalogs[locale] = cat
}

// NewCatalog creates a new catalog with the given locale and messages.
func NewCatalog(locale string, messages map[Code]string) *Catalog {
	return &Catalog{
		locale:   locale,
		messages: maps.Clone(messages),
	}
}

func lookupCatalog(locale string) (*Catalog, bool) {
	catalogsMu.RLock()
	defer catalogsMu.RUnlock()
	cat, ok := catalogs[locale]
	return cat, ok
}

var builtinLocales = []string{BaseLocale, "pt-BR"}

func newMatcher() language.Matcher {
	tags := make([]language.Tag, 0, len(builtinLocales))
	for _, locale := range builtinLocales {
		tags = append(tags, language.MustParse(locale))
	}
	return language.NewMatcher(tags)
}

// matchLocale maps a requested locale such as "pt" or "en-GB" to one of the
// built-in catalogs. Unparseable input returns "".
func matchLocale(requested string) string {
	tag, err := language.Parse(requested)
	if err != nil {
		return ""
	}
	_, index, confidence := matcher.Match(tag)
	if confidence == language.No {
		return ""
	}
	return builtinLocales[index]
}
