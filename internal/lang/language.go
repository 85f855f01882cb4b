package lang

import (
	"fmt"
	"strings"
)

// Auto is the keyword that asks the speech-to-text backend to detect the language.
const Auto = "auto"

// validLanguages contains ISO 639-1 codes understood by Whisper-family models,
// both the whisper.cpp binary and the hosted transcription API.
var validLanguages = map[string]string{
	"af": "Afrikaans",
	"ar": "Arabic",
	"az": "Azerbaijani",
	"be": "Belarusian",
	"bg": "Bulgarian",
	"bn": "Bengali",
	"bs": "Bosnian",
	"ca": "Catalan",
	"cs": "Czech",
	"cy": "Welsh",
	"da": "Danish",
	"de": "German",
	"el": "Greek",
	"en": "English",
	"es": "Spanish",
	"et": "Estonian",
	"eu": "Basque",
	"fa": "Persian",
	"fi": "Finnish",
	"fr": "French",
	"gl": "Galician",
	"gu": "Gujarati",
	"he": "Hebrew",
	"hi": "Hindi",
	"hr": "Croatian",
	"hu": "Hungarian",
	"hy": "Armenian",
	"id": "Indonesian",
	"is": "Icelandic",
	"it": "Italian",
	"ja": "Japanese",
	"ka": "Georgian",
	"kk": "Kazakh",
	"kn": "Kannada",
	"ko": "Korean",
	"lt": "Lithuanian",
	"lv": "Latvian",
	"mi": "Maori",
	"mk": "Macedonian",
	"ml": "Malayalam",
	"mr": "Marathi",
	"ms": "Malay",
	"ne": "Nepali",
	"nl": "Dutch",
	"no": "Norwegian",
	"pa": "Punjabi",
	"pl": "Polish",
	"pt": "Portuguese",
	"ro": "Romanian",
	"ru": "Russian",
	"sk": "Slovak",
	"sl": "Slovenian",
	"sr": "Serbian",
	"sv": "Swedish",
	"sw": "Swahili",
	"ta": "Tamil",
	"te": "Telugu",
	"th": "Thai",
	"tl": "Tagalog",
	"tr": "Turkish",
	"uk": "Ukrainian",
	"ur": "Urdu",
	"vi": "Vietnamese",
	"zh": "Chinese",
}

// Language is a validated spoken-language hint.
// The zero value means auto-detect.
type Language struct {
	code string // normalized, e.g. "en" or "pt-br"
}

// Parse validates and normalizes a language code.
// Accepts ISO 639-1 codes (e.g., "en", "fr") and locales (e.g., "pt-BR", "zh_CN").
// Empty input and "auto" return the zero Language.
func Parse(s string) (Language, error) {
	normalized := Normalize(strings.TrimSpace(s))
	if normalized == "" || normalized == Auto {
		return Language{}, nil
	}

	if _, ok := validLanguages[baseOf(normalized)]; !ok {
		return Language{}, fmt.Errorf("invalid language code %q (use ISO 639-1 codes like 'en', 'fr', 'pt-BR', or 'auto'): %w",
			s, ErrInvalid)
	}
	return Language{code: normalized}, nil
}

// MustParse is like Parse but panics on error. Intended for tests and constants.
func MustParse(s string) Language {
	l, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return l
}

// Normalize lowercases a language code and uses hyphen separators.
// Accepts: "pt-BR", "pt_BR", "PT-BR", "pt-br" -> "pt-br"
func Normalize(code string) string {
	return strings.ToLower(strings.ReplaceAll(code, "_", "-"))
}

// IsZero reports whether the language is left to auto-detection.
func (l Language) IsZero() bool {
	return l.code == ""
}

// Code returns the normalized code, or "" for auto-detect.
func (l Language) Code() string {
	return l.code
}

// BaseCode returns the ISO 639-1 part of the code: "pt-br" -> "pt".
// Speech-to-text backends only accept base codes.
func (l Language) BaseCode() string {
	return baseOf(l.code)
}

// String returns the code, or "auto" for the zero value.
func (l Language) String() string {
	if l.IsZero() {
		return Auto
	}
	return l.code
}

// DisplayName returns the English name of the base language.
func (l Language) DisplayName() string {
	if l.IsZero() {
		return "auto-detect"
	}
	return validLanguages[l.BaseCode()]
}

func baseOf(code string) string {
	if idx := strings.Index(code, "-"); idx != -1 {
		return code[:idx]
	}
	return code
}
