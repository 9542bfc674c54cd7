// Package catalog loads the localized reply messages shown to players.
package catalog

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/viper"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	textcatalog "golang.org/x/text/message/catalog"
)

const (
	// BaseLocale is the canonical source locale for catalogs.
	BaseLocale = "en-US"
)

type catalogFile struct {
	Locale    string            `mapstructure:"locale"`
	Namespace string            `mapstructure:"namespace"`
	Messages  map[string]string `mapstructure:"messages"`
}

// Bundle holds the messages of every locale. Keys are "namespace.key".
type Bundle struct {
	locales map[string]map[string]string

	once    sync.Once
	builder *textcatalog.Builder
	matcher language.Matcher
	tags    []language.Tag
	err     error
}

//go:embed locales/*/*.yaml
var embeddedCatalogFS embed.FS

var (
	defaultOnce   sync.Once
	defaultBundle *Bundle
)

// Default returns the process-wide embedded bundle.
func Default() *Bundle {
	defaultOnce.Do(func() {
		bundle, err := LoadFromFS(embeddedCatalogFS)
		if err != nil {
			panic(err)
		}
		defaultBundle = bundle
	})
	return defaultBundle
}

// LoadFromFS loads locales/<locale>/<namespace>.yaml files from catalogFS.
func LoadFromFS(catalogFS fs.FS) (*Bundle, error) {
	paths, err := fs.Glob(catalogFS, "locales/*/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("glob locale catalogs: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no catalog files found")
	}
	sort.Strings(paths)

	bundle := &Bundle{locales: map[string]map[string]string{}}
	for _, p := range paths {
		data, err := fs.ReadFile(catalogFS, p)
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", p, err)
		}
		file, err := parseCatalogFile(data)
		if err != nil {
			return nil, fmt.Errorf("parse catalog %s: %w", p, err)
		}
		if err := bundle.addFile(p, file); err != nil {
			return nil, err
		}
	}

	if !bundle.HasLocale(BaseLocale) {
		return nil, fmt.Errorf("base locale %s is not defined in catalogs", BaseLocale)
	}
	return bundle, nil
}

func parseCatalogFile(data []byte) (catalogFile, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return catalogFile{}, err
	}
	var file catalogFile
	if err := v.Unmarshal(&file); err != nil {
		return catalogFile{}, err
	}
	return file, nil
}

func (b *Bundle) addFile(p string, file catalogFile) error {
	localeFromPath := path.Base(path.Dir(p))
	namespaceFromPath := strings.TrimSuffix(path.Base(p), path.Ext(p))

	locale := strings.TrimSpace(file.Locale)
	if locale == "" {
		return fmt.Errorf("catalog %s: locale is required", p)
	}
	if locale != localeFromPath {
		return fmt.Errorf("catalog %s: locale %q must match path locale %q", p, locale, localeFromPath)
	}
	namespace := strings.TrimSpace(file.Namespace)
	if namespace != namespaceFromPath {
		return fmt.Errorf("catalog %s: namespace %q must match filename namespace %q", p, namespace, namespaceFromPath)
	}
	if len(file.Messages) == 0 {
		return fmt.Errorf("catalog %s: messages are required", p)
	}

	messages, ok := b.locales[locale]
	if !ok {
		messages = map[string]string{}
		b.locales[locale] = messages
	}
	for key, value := range file.Messages {
		trimmed := strings.TrimSpace(key)
		if trimmed == "" {
			return fmt.Errorf("catalog %s: message key cannot be blank", p)
		}
		full := namespace + "." + trimmed
		if _, exists := messages[full]; exists {
			return fmt.Errorf("catalog %s: duplicate key %q in locale %q", p, full, locale)
		}
		messages[full] = value
	}
	return nil
}

// HasLocale reports whether the locale exists in this bundle.
func (b *Bundle) HasLocale(locale string) bool {
	_, ok := b.locales[strings.TrimSpace(locale)]
	return ok
}

// Locales returns all locale identifiers, sorted.
func (b *Bundle) Locales() []string {
	out := make([]string, 0, len(b.locales))
	for locale := range b.locales {
		out = append(out, locale)
	}
	sort.Strings(out)
	return out
}

// Message returns one message with base-locale fallback.
func (b *Bundle) Message(locale, key string) (string, bool) {
	if messages, ok := b.locales[strings.TrimSpace(locale)]; ok {
		if value, exists := messages[key]; exists {
			return value, true
		}
	}
	value, ok := b.locales[BaseLocale][key]
	return value, ok
}

// Printer returns a printer for the closest supported locale. Unknown keys
// print as their own format string.
func (b *Bundle) Printer(locale string) (*message.Printer, error) {
	if err := b.build(); err != nil {
		return nil, err
	}
	tag := b.tags[0]
	if desired, err := language.Parse(strings.TrimSpace(locale)); err == nil {
		_, index, confidence := b.matcher.Match(desired)
		if confidence != language.No {
			tag = b.tags[index]
		}
	}
	return message.NewPrinter(tag, message.Catalog(b.builder)), nil
}

// build registers every message with an x/text catalog. The base locale is
// the first tag so unmatched locales fall back to it.
func (b *Bundle) build() error {
	b.once.Do(func() {
		builder := textcatalog.NewBuilder(textcatalog.Fallback(language.MustParse(BaseLocale)))
		tags := []language.Tag{language.MustParse(BaseLocale)}
		for _, locale := range b.Locales() {
			tag, err := language.Parse(locale)
			if err != nil {
				b.err = fmt.Errorf("parse locale tag %q: %w", locale, err)
				return
			}
			if locale != BaseLocale {
				tags = append(tags, tag)
			}
			for key, value := range b.locales[locale] {
				if err := builder.SetString(tag, key, value); err != nil {
					b.err = fmt.Errorf("register %s %s: %w", locale, key, err)
					return
				}
			}
		}
		b.builder = builder
		b.tags = tags
		b.matcher = language.NewMatcher(tags)
	})
	return b.err
}
