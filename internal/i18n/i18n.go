// internal/i18n/i18n.go
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
)

//go:embed locales/*.json
var localeFS embed.FS

const DefaultLanguage = "en"

var (
	mu       sync.RWMutex
	catalogs map[string]map[string]string
)

// Initialize loads every embedded locale catalog. Safe to call more than
// once; the catalogs are simply rebuilt.
func Initialize() error {
	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return fmt.Errorf("failed to list locales: %w", err)
	}

	loaded := make(map[string]map[string]string, len(entries))
	for _, entry := range entries {
		lang := strings.TrimSuffix(entry.Name(), ".json")

		data, err := localeFS.ReadFile("locales/" + entry.Name())
		if err != nil {
			return fmt.Errorf("failed to read locale %s: %w", lang, err)
		}

		var messages map[string]string
		if err := json.Unmarshal(data, &messages); err != nil {
			return fmt.Errorf("failed to parse locale %s: %w", lang, err)
		}
		loaded[lang] = messages
	}

	if _, ok := loaded[DefaultLanguage]; !ok {
		return fmt.Errorf("default locale %q missing", DefaultLanguage)
	}

	mu.Lock()
	catalogs = loaded
	mu.Unlock()
	return nil
}

// T resolves key in lang, falling back to the default language and
// finally to the key itself so callers always get a usable string.
func T(lang, key string, args ...interface{}) string {
	mu.RLock()
	defer mu.RUnlock()

	if text, ok := catalogs[lang][key]; ok {
		return format(text, args)
	}
	if text, ok := catalogs[DefaultLanguage][key]; ok {
		return format(text, args)
	}
	return key
}

func format(text string, args []interface{}) string {
	if len(args) == 0 {
		return text
	}
	return fmt.Sprintf(text, args...)
}

// GetSupportedLanguages returns the loaded locale codes, sorted.
func GetSupportedLanguages() []string {
	mu.RLock()
	defer mu.RUnlock()

	if catalogs == nil {
		return []string{DefaultLanguage}
	}

	langs := make([]string, 0, len(catalogs))
	for lang := range catalogs {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}
