package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var bundledLocales embed.FS

// Code identifies a supported locale.
type Code string

const (
	English Code = "en"
	Chinese Code = "zh"
	Korean  Code = "ko"

	// Fallback is the canonical locale every other locale is validated against.
	Fallback = English
)

// Supported is the fixed set of recognized locales, in switcher order.
var Supported = []Code{English, Chinese, Korean}

var localeTags = map[Code]language.Tag{
	English: language.English,
	Chinese: language.Chinese,
	Korean:  language.Korean,
}

func (c Code) String() string {
	return string(c)
}

// Tag returns the language tag used for number formatting.
func (c Code) Tag() language.Tag {
	if tag, ok := localeTags[c]; ok {
		return tag
	}
	return language.English
}

// ParseCode normalizes a stored or submitted locale code.
func ParseCode(raw string) (Code, bool) {
	code := Code(strings.ToLower(strings.TrimSpace(raw)))
	for _, c := range Supported {
		if c == code {
			return c, true
		}
	}
	return "", false
}

// Catalog holds every supported locale's dictionary.
type Catalog struct {
	dicts map[Code]Dictionary
}

// LoadBundledCatalog loads the locale files compiled into the binary.
func LoadBundledCatalog() (*Catalog, error) {
	return LoadCatalog(bundledLocales, "locales")
}

// LoadCatalog reads <dir>/<code>.yaml for every supported locale and rejects
// the set if any locale misses a key present in the fallback locale.
func LoadCatalog(fsys fs.FS, dir string) (*Catalog, error) {
	dicts := make(map[Code]Dictionary, len(Supported))
	for _, code := range Supported {
		data, err := fs.ReadFile(fsys, dir+"/"+code.String()+".yaml")
		if err != nil {
			return nil, fmt.Errorf("read locale %s: %w", code, err)
		}
		var dict Dictionary
		if err := yaml.Unmarshal(data, &dict); err != nil {
			return nil, fmt.Errorf("parse locale %s: %w", code, err)
		}
		dicts[code] = dict
	}

	catalog := &Catalog{dicts: dicts}
	if err := catalog.Validate(); err != nil {
		return nil, err
	}
	return catalog, nil
}

// NewCatalog builds a catalog from in-memory dictionaries, validating them the
// same way as LoadCatalog.
func NewCatalog(dicts map[Code]Dictionary) (*Catalog, error) {
	catalog := &Catalog{dicts: dicts}
	if err := catalog.Validate(); err != nil {
		return nil, err
	}
	return catalog, nil
}

// Validate reports every fallback path that another locale fails to resolve.
func (c *Catalog) Validate() error {
	base, ok := c.dicts[Fallback]
	if !ok {
		return fmt.Errorf("fallback locale %s is missing", Fallback)
	}

	var problems []string
	for _, code := range Supported {
		if code == Fallback {
			continue
		}
		dict, ok := c.dicts[code]
		if !ok {
			problems = append(problems, fmt.Sprintf("%s: locale missing", code))
			continue
		}
		for _, path := range base.Paths() {
			if _, ok := dict.Lookup(path); !ok {
				problems = append(problems, fmt.Sprintf("%s: missing key %s", code, path))
			}
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("locale validation failed: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Dictionary returns the dictionary for code.
func (c *Catalog) Dictionary(code Code) (Dictionary, bool) {
	if c == nil {
		return nil, false
	}
	dict, ok := c.dicts[code]
	return dict, ok
}
