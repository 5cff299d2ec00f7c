package lang

import (
	"errors"
	"strings"
)

var ErrInvalidLanguage = errors.New("invalid language code")

// Language is a lowercase BCP-47 primary subtag ("hi", "en", "ta").
type Language string

const (
	Hindi     Language = "hi"
	English   Language = "en"
	Bengali   Language = "bn"
	Tamil     Language = "ta"
	Telugu    Language = "te"
	Gujarati  Language = "gu"
	Kannada   Language = "kn"
	Malayalam Language = "ml"
	Punjabi   Language = "pa"
	Marathi   Language = "mr"
)

func New(code string) (Language, error) {
	code = strings.ToLower(strings.TrimSpace(code))
	if len(code) < 2 || len(code) > 8 {
		return "", ErrInvalidLanguage
	}
	for _, r := range code {
		if (r < 'a' || r > 'z') && r != '-' {
			return "", ErrInvalidLanguage
		}
	}
	return Language(code), nil
}

func (l Language) String() string {
	return string(l)
}

func (l Language) IsZero() bool {
	return l == ""
}
