package language

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultTTSLocale is returned for codes missing from the catalog.
const DefaultTTSLocale = "en-US"

//go:embed languages.yaml
var defaultCatalogYAML []byte

// Entry describes one selectable language.
type Entry struct {
	Code      string `yaml:"code" json:"code"`
	Label     string `yaml:"label" json:"label"`
	TTSLocale string `yaml:"tts_locale" json:"tts_locale"`
}

type catalogFile struct {
	Languages []Entry `yaml:"languages"`
}

// Catalog is an immutable code → label/TTS locale table.
type Catalog struct {
	entries []Entry
	byCode  map[string]Entry
}

// DefaultCatalog returns the built-in language table.
func DefaultCatalog() *Catalog {
	catalog, err := ParseCatalog(defaultCatalogYAML)
	if err != nil {
		panic(fmt.Sprintf("built-in language catalog is invalid: %v", err))
	}
	return catalog
}

// LoadCatalog reads a YAML catalog from path; an empty path yields the default table.
func LoadCatalog(path string) (*Catalog, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return DefaultCatalog(), nil
	}
	raw, err := os.ReadFile(trimmed)
	if err != nil {
		return nil, fmt.Errorf("read language catalog %s: %w", trimmed, err)
	}
	catalog, err := ParseCatalog(raw)
	if err != nil {
		return nil, fmt.Errorf("parse language catalog %s: %w", trimmed, err)
	}
	return catalog, nil
}

func ParseCatalog(raw []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("decode catalog yaml: %w", err)
	}
	if len(file.Languages) == 0 {
		return nil, fmt.Errorf("catalog lists no languages")
	}

	catalog := &Catalog{
		entries: make([]Entry, 0, len(file.Languages)),
		byCode:  make(map[string]Entry, len(file.Languages)),
	}
	for idx, entry := range file.Languages {
		code := NormalizeCode(entry.Code)
		if code == "" {
			return nil, fmt.Errorf("languages[%d]: invalid code %q", idx, entry.Code)
		}
		if _, exists := catalog.byCode[code]; exists {
			return nil, fmt.Errorf("languages[%d]: duplicate code %q", idx, code)
		}
		entry.Code = code
		entry.Label = strings.TrimSpace(entry.Label)
		if entry.Label == "" {
			entry.Label = code
		}
		entry.TTSLocale = strings.TrimSpace(entry.TTSLocale)
		if entry.TTSLocale == "" {
			entry.TTSLocale = DefaultTTSLocale
		}
		catalog.entries = append(catalog.entries, entry)
		catalog.byCode[code] = entry
	}
	return catalog, nil
}

// Entries returns the languages in catalog order.
func (c *Catalog) Entries() []Entry {
	if c == nil {
		return nil
	}
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

func (c *Catalog) Lookup(code string) (Entry, bool) {
	if c == nil {
		return Entry{}, false
	}
	entry, ok := c.byCode[NormalizeCode(code)]
	return entry, ok
}

func (c *Catalog) Supports(code string) bool {
	_, ok := c.Lookup(code)
	return ok
}

// Label returns the display label, or the code itself when unknown.
func (c *Catalog) Label(code string) string {
	if entry, ok := c.Lookup(code); ok {
		return entry.Label
	}
	return code
}

// TTSLocale returns the speech-synthesis locale, defaulting to English.
func (c *Catalog) TTSLocale(code string) string {
	if entry, ok := c.Lookup(code); ok {
		return entry.TTSLocale
	}
	return DefaultTTSLocale
}

// Codes returns the catalog's language codes in order.
func (c *Catalog) Codes() []string {
	if c == nil {
		return nil
	}
	codes := make([]string, 0, len(c.entries))
	for _, entry := range c.entries {
		codes = append(codes, entry.Code)
	}
	return codes
}
