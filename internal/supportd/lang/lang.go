// Package lang detects the language of customer messages by character class.
// The support flow only distinguishes Azerbaijani, Russian and English.
package lang

import "unicode"

const (
	AZ = "az"
	RU = "ru"
	EN = "en"
)

// Detect classifies text as az, ru or en. Azerbaijani-specific Latin letters
// win over Cyrillic because mixed messages from Baku customers usually carry
// at least one of them.
func Detect(text string) string {
	cyrillic := false
	for _, r := range text {
		switch r {
		case 'ə', 'Ə', 'ğ', 'Ğ', 'ş', 'Ş', 'ı', 'İ':
			return AZ
		}
		if unicode.Is(unicode.Cyrillic, r) {
			cyrillic = true
		}
	}
	if cyrillic {
		return RU
	}
	return EN
}
