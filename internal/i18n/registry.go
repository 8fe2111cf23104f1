package i18n

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/alexivanou/geoweather-api/internal/model"
	"gopkg.in/yaml.v3"
)

//go:embed languages.yaml locales/*.yaml conditions/*.yaml
var resources embed.FS

// ErrNoBundle is returned by a loader for a language without a resource
var ErrNoBundle = errors.New("no bundle for language")

// stringBundles and conditionBundles map a language code to its embedded resource.
// A supported language may lack a resource; lookups then fall back to English.
var (
	stringBundles = map[string]string{
		"en": "locales/en.yaml",
		"ar": "locales/ar.yaml",
		"de": "locales/de.yaml",
		"fr": "locales/fr.yaml",
	}
	conditionBundles = map[string]string{
		"en": "conditions/en.yaml",
		"ar": "conditions/ar.yaml",
		"de": "conditions/de.yaml",
	}
)

// Registry resolves language codes to bundle resources
type Registry struct {
	fsys       fs.FS
	languages  []model.Language
	strings    map[string]string
	conditions map[string]string
}

// DefaultRegistry returns the registry over the embedded resources
func DefaultRegistry() (*Registry, error) {
	return NewRegistry(resources, stringBundles, conditionBundles)
}

// NewRegistry reads languages.yaml from fsys and checks every bundle path against it
func NewRegistry(fsys fs.FS, strings, conditions map[string]string) (*Registry, error) {
	raw, err := fs.ReadFile(fsys, "languages.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read languages: %w", err)
	}
	var languages []model.Language
	if err := yaml.Unmarshal(raw, &languages); err != nil {
		return nil, fmt.Errorf("failed to parse languages: %w", err)
	}

	supported := make(map[string]bool, len(languages))
	for _, l := range languages {
		supported[l.Code] = true
	}
	for domain, paths := range map[string]map[string]string{"strings": strings, "conditions": conditions} {
		if _, ok := paths[FallbackLang]; !ok {
			return nil, fmt.Errorf("%s: fallback language %q has no bundle", domain, FallbackLang)
		}
		for lang := range paths {
			if !supported[lang] {
				return nil, fmt.Errorf("%s: bundle for unsupported language %q", domain, lang)
			}
		}
	}

	return &Registry{
		fsys:       fsys,
		languages:  languages,
		strings:    strings,
		conditions: conditions,
	}, nil
}

// Languages returns the supported languages in declaration order
func (r *Registry) Languages() []model.Language {
	out := make([]model.Language, len(r.languages))
	copy(out, r.languages)
	return out
}

// Supported reports whether lang is a known language code
func (r *Registry) Supported(lang string) bool {
	for _, l := range r.languages {
		if l.Code == lang {
			return true
		}
	}
	return false
}

// StringLoader loads UI string bundles
func (r *Registry) StringLoader() Loader[string] {
	return yamlLoader[string](r.fsys, r.strings)
}

// ConditionLoader loads weather-condition bundles
func (r *Registry) ConditionLoader() Loader[Condition] {
	return yamlLoader[Condition](r.fsys, r.conditions)
}

func yamlLoader[V any](fsys fs.FS, paths map[string]string) Loader[V] {
	return func(lang string) (map[string]V, error) {
		path, ok := paths[lang]
		if !ok {
			return nil, fmt.Errorf("%w %q", ErrNoBundle, lang)
		}
		raw, err := fs.ReadFile(fsys, path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		bundle := make(map[string]V)
		if err := yaml.Unmarshal(raw, &bundle); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		return bundle, nil
	}
}
