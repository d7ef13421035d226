package language

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"go.uber.org/zap"
)

const (
	// Pivot is the language all advice is generated in.
	Pivot = "en"
	// Baseline is what detection falls back to.
	Baseline = "en"
	// DefaultSpeechCode is used when a language has no speech recognition code.
	DefaultSpeechCode = "en-US"
)

// Language is one entry of the catalog. Key is empty for languages that are
// only reachable by code.
type Language struct {
	Key        string `json:"key,omitempty"`
	Name       string `json:"name"`
	Code       string `json:"code"`
	SpeechCode string `json:"speech_code,omitempty"`
}

// Selection is the language a session runs in.
type Selection struct {
	Code string
	Name string
}

// Catalog is immutable after construction and safe to share.
type Catalog struct {
	numbered   []Language
	additional []Language
	byKey      map[string]Language
	byCode     map[string]Language
}

var defaultNumbered = []Language{
	{Key: "1", Name: "English", Code: "en", SpeechCode: "en-US"},
	{Key: "2", Name: "Hindi", Code: "hi", SpeechCode: "hi-IN"},
	{Key: "3", Name: "Spanish", Code: "es", SpeechCode: "es-ES"},
	{Key: "4", Name: "French", Code: "fr", SpeechCode: "fr-FR"},
	{Key: "5", Name: "German", Code: "de", SpeechCode: "de-DE"},
	{Key: "6", Name: "Chinese", Code: "zh-CN", SpeechCode: "zh-CN"},
	{Key: "7", Name: "Arabic", Code: "ar", SpeechCode: "ar-AE"},
	{Key: "8", Name: "Russian", Code: "ru", SpeechCode: "ru-RU"},
	{Key: "9", Name: "Portuguese", Code: "pt", SpeechCode: "pt-BR"},
	{Key: "10", Name: "Bengali", Code: "bn", SpeechCode: "bn-IN"},
	{Key: "11", Name: "Japanese", Code: "ja", SpeechCode: "ja-JP"},
	{Key: "12", Name: "Korean", Code: "ko", SpeechCode: "ko-KR"},
	{Key: "13", Name: "Tamil", Code: "ta", SpeechCode: "ta-IN"},
	{Key: "14", Name: "Telugu", Code: "te", SpeechCode: "te-IN"},
	{Key: "15", Name: "Marathi", Code: "mr", SpeechCode: "mr-IN"},
}

var defaultAdditional = []Language{
	{Name: "Urdu", Code: "ur", SpeechCode: "ur-PK"},
	{Name: "Punjabi", Code: "pa", SpeechCode: "pa-IN"},
	{Name: "Gujarati", Code: "gu", SpeechCode: "gu-IN"},
	{Name: "Malayalam", Code: "ml", SpeechCode: "ml-IN"},
	{Name: "Kannada", Code: "kn", SpeechCode: "kn-IN"},
	{Name: "Odia", Code: "or", SpeechCode: "or-IN"},
	{Name: "Assamese", Code: "as", SpeechCode: "as-IN"},
	{Name: "Thai", Code: "th", SpeechCode: "th-TH"},
	{Name: "Vietnamese", Code: "vi", SpeechCode: "vi-VN"},
	{Name: "Indonesian", Code: "id", SpeechCode: "id-ID"},
	{Name: "Malay", Code: "ms", SpeechCode: "ms-MY"},
	{Name: "Turkish", Code: "tr", SpeechCode: "tr-TR"},
	{Name: "Italian", Code: "it", SpeechCode: "it-IT"},
	{Name: "Dutch", Code: "nl", SpeechCode: "nl-NL"},
	{Name: "Swedish", Code: "sv", SpeechCode: "sv-SE"},
	{Name: "Polish", Code: "pl", SpeechCode: "pl-PL"},
	{Name: "Ukrainian", Code: "uk", SpeechCode: "uk-UA"},
	{Name: "Greek", Code: "el", SpeechCode: "el-GR"},
	{Name: "Hebrew", Code: "he", SpeechCode: "he-IL"},
	{Name: "Persian", Code: "fa", SpeechCode: "fa-IR"},
}

// DefaultCatalog returns the built-in language table.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(defaultNumbered, defaultAdditional)
	if err != nil {
		panic(fmt.Sprintf("built-in language table is invalid: %v", err))
	}
	return c
}

// NewCatalog validates and indexes the given tables.
func NewCatalog(numbered, additional []Language) (*Catalog, error) {
	c := &Catalog{
		byKey:  make(map[string]Language, len(numbered)),
		byCode: make(map[string]Language, len(numbered)+len(additional)),
	}

	for _, lang := range numbered {
		lang = normalize(lang)
		if lang.Key == "" || lang.Code == "" {
			return nil, fmt.Errorf("numbered language %q needs both key and code", lang.Name)
		}
		if _, dup := c.byKey[lang.Key]; dup {
			return nil, fmt.Errorf("duplicate language key %q", lang.Key)
		}
		c.byKey[lang.Key] = lang
		c.numbered = append(c.numbered, lang)
		if _, seen := c.byCode[strings.ToLower(lang.Code)]; !seen {
			c.byCode[strings.ToLower(lang.Code)] = lang
		}
	}

	for _, lang := range additional {
		lang = normalize(lang)
		lang.Key = ""
		if lang.Code == "" {
			return nil, fmt.Errorf("additional language %q has no code", lang.Name)
		}
		c.additional = append(c.additional, lang)
		if _, seen := c.byCode[strings.ToLower(lang.Code)]; !seen {
			c.byCode[strings.ToLower(lang.Code)] = lang
		}
	}

	if len(c.numbered) == 0 {
		return nil, errors.New("language table has no numbered entries")
	}
	return c, nil
}

func normalize(lang Language) Language {
	lang.Key = strings.TrimSpace(lang.Key)
	lang.Name = strings.TrimSpace(lang.Name)
	lang.Code = strings.TrimSpace(lang.Code)
	lang.SpeechCode = strings.TrimSpace(lang.SpeechCode)
	if lang.Name == "" {
		lang.Name = lang.Code
	}
	return lang
}

type catalogFile struct {
	Languages  []Language `json:"languages"`
	Additional []Language `json:"additional"`
}

// LoadCatalog reads a JSON language table. A missing file yields the
// built-in table; an unreadable or invalid one is logged and also yields it.
func LoadCatalog(path string, logger *zap.SugaredLogger) *Catalog {
	if path == "" {
		return DefaultCatalog()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logger.Warnw("failed to read language table, using built-in", "path", path, "error", err)
		}
		return DefaultCatalog()
	}

	var file catalogFile
	if err := json.Unmarshal(data, &file); err != nil {
		logger.Warnw("invalid language table, using built-in", "path", path, "error", err)
		return DefaultCatalog()
	}

	c, err := NewCatalog(file.Languages, file.Additional)
	if err != nil {
		logger.Warnw("invalid language table, using built-in", "path", path, "error", err)
		return DefaultCatalog()
	}
	return c
}

// Lookup finds a numbered entry by its menu key.
func (c *Catalog) Lookup(key string) (Language, bool) {
	lang, ok := c.byKey[strings.TrimSpace(key)]
	return lang, ok
}

// ByCode finds any entry, numbered or additional, by code. Case is ignored.
func (c *Catalog) ByCode(code string) (Language, bool) {
	lang, ok := c.byCode[strings.ToLower(strings.TrimSpace(code))]
	return lang, ok
}

// SpeechCode maps a text code to the speech recognition code.
func (c *Catalog) SpeechCode(code string) string {
	if lang, ok := c.ByCode(code); ok && lang.SpeechCode != "" {
		return lang.SpeechCode
	}
	return DefaultSpeechCode
}

// Entries returns the numbered entries in menu order.
func (c *Catalog) Entries() []Language {
	out := make([]Language, len(c.numbered))
	copy(out, c.numbered)
	return out
}

// Additional returns the code-only entries.
func (c *Catalog) Additional() []Language {
	out := make([]Language, len(c.additional))
	copy(out, c.additional)
	return out
}
