package request

import (
	"encoding/base64"
	"errors"

	"github.com/uday68/VyaparMitra-sub000/internal/domain/lang"
)

var ErrNoUtterance = errors.New("either text or audio is required")

// UtteranceRequest carries one voice turn: raw text, or base64 audio to be
// transcribed server-side.
type UtteranceRequest struct {
	Text      string  `json:"text,omitempty"`
	Audio     string  `json:"audio,omitempty"`
	Language  string  `json:"language,omitempty"`
	PhotoRef  *string `json:"photoRef,omitempty"`
	WantAudio bool    `json:"wantAudio,omitempty"`
}

func (r UtteranceRequest) Validate() error {
	if r.Text == "" && r.Audio == "" {
		return ErrNoUtterance
	}
	return nil
}

func (r UtteranceRequest) AudioBytes() ([]byte, error) {
	if r.Audio == "" {
		return nil, nil
	}
	return base64.StdEncoding.DecodeString(r.Audio)
}

func (r UtteranceRequest) LanguageHint() lang.Language {
	if r.Language == "" {
		return ""
	}
	l, err := lang.New(r.Language)
	if err != nil {
		return ""
	}
	return l
}
