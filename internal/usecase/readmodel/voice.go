package readmodel

import (
	"github.com/uday68/VyaparMitra-sub000/internal/domain/voiceflow"
	"github.com/uday68/VyaparMitra-sub000/internal/voice"
)

// UtteranceRM is the full outcome of one voice turn: what was heard, how it
// was routed and where the workflow stands afterwards.
type UtteranceRM struct {
	Transcript     string                  `json:"transcript"`
	Intent         voiceflow.Intent        `json:"intent"`
	Entities       voice.Entities          `json:"entities"`
	Confidence     float64                 `json:"confidence"`
	Language       string                  `json:"language"`
	WorkflowState  *voiceflow.State        `json:"workflowState,omitempty"`
	Draft          *voiceflow.ProductDraft `json:"draft,omitempty"`
	Completed      bool                    `json:"completed"`
	Prompt         string                  `json:"prompt"`
	PromptAudioURL *string                 `json:"promptAudioUrl,omitempty"`
}
