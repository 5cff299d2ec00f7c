package voice

import (
	"regexp"

	"github.com/uday68/VyaparMitra-sub000/internal/domain/lang"
	"github.com/uday68/VyaparMitra-sub000/internal/domain/voiceflow"
)

// MinConfidence is the threshold under which state-scoped classification
// falls back to the full intent catalog.
const MinConfidence = 0.5

// Classification is the routing verdict for one utterance.
type Classification struct {
	Intent     voiceflow.Intent `json:"intent"`
	Entities   Entities         `json:"entities"`
	Confidence float64          `json:"confidence"`
	Language   lang.Language    `json:"language"`
}

type intentPattern struct {
	re     *regexp.Regexp
	weight float64
}

// The catalog is matched against the pivot-language utterance; a few common
// Hindi tokens are kept so pre-pivot text still routes.
var intentCatalog = map[voiceflow.Intent][]intentPattern{
	voiceflow.IntentStartWorkflow: {
		{regexp.MustCompile(`(?i)\b(add|new|list|sell)\b.*\b(product|item)\b`), 0.9},
		{regexp.MustCompile(`(?i)\bstart\b.*\b(listing|selling)\b`), 0.8},
		{regexp.MustCompile(`(?i)नया\s+(सामान|प्रोडक्ट)`), 0.9},
	},
	voiceflow.IntentPhotoCaptured: {
		{regexp.MustCompile(`(?i)\b(photo|picture|image)\b.*\b(taken|captured|done|ready)\b`), 0.9},
		{regexp.MustCompile(`(?i)\b(took|captured|clicked)\b.*\b(photo|picture)\b`), 0.9},
	},
	voiceflow.IntentConfirm: {
		{regexp.MustCompile(`(?i)^\s*(yes|yeah|yep|ok|okay|confirm|correct|right|done|sure|haan|हाँ|ठीक)\b`), 0.9},
		{regexp.MustCompile(`(?i)\bthat'?s\s+(right|correct|fine)\b`), 0.8},
	},
	voiceflow.IntentRetake: {
		{regexp.MustCompile(`(?i)\b(retake|redo|again|another)\b.*\b(photo|picture|one)?\b`), 0.8},
		{regexp.MustCompile(`(?i)^\s*(no|nahi|नहीं)\b.*\b(photo|picture)\b`), 0.7},
	},
	voiceflow.IntentQuantityGiven: {
		{regexp.MustCompile(`(?i)\d+(?:\.\d+)?\s*(kg|kilos?|kilograms?|किलो|grams?|litres?|liters?|dozen|pieces?|pcs)\b`), 0.95},
		{regexp.MustCompile(`(?i)\b(quantity|stock)\b.*\d`), 0.7},
	},
	voiceflow.IntentPriceGiven: {
		{regexp.MustCompile(`(?i)(₹|rs\.?|rupees?|रुपये)\s*\d|\d+(?:\.\d+)?\s*(rupees?|रुपये|rs\.?)`), 0.95},
		{regexp.MustCompile(`(?i)\b(price|cost|rate)\b.*\d`), 0.7},
	},
	voiceflow.IntentCancel: {
		{regexp.MustCompile(`(?i)^\s*(cancel|stop|quit|exit|abort|band karo|रद्द)\b`), 0.95},
		{regexp.MustCompile(`(?i)\b(cancel|forget)\b.*\b(it|this|that|workflow)\b`), 0.85},
	},
}

// Router maps a recognized utterance to an intent plus entities, scoped by
// the active workflow state when one exists.
type Router struct {
	fallbackLanguage lang.Language
}

func NewRouter(fallbackLanguage lang.Language) *Router {
	return &Router{fallbackLanguage: fallbackLanguage}
}

// Classify scores the utterance against the candidate intents. With a
// workflow state, candidates are the intents valid from that state; the full
// catalog is consulted only if no scoped candidate clears MinConfidence.
func (r *Router) Classify(text string, language lang.Language, workflowState *voiceflow.State) Classification {
	if language.IsZero() {
		language = InferLanguage(text, r.fallbackLanguage)
	}
	entities := ExtractEntities(text)

	var candidates []voiceflow.Intent
	if workflowState != nil {
		candidates = voiceflow.AllowedIntents(*workflowState)
	}

	intent, confidence := bestMatch(text, candidates, entities)
	if workflowState != nil && confidence < MinConfidence {
		intent, confidence = bestMatch(text, nil, entities)
	}
	if confidence < MinConfidence {
		intent = voiceflow.IntentUnknown
	}

	// A bare number answers the open prompt in input/confirmation states.
	if intent == voiceflow.IntentUnknown && workflowState != nil {
		if n := ExtractBareNumber(text); n != nil {
			switch *workflowState {
			case voiceflow.StateQuantityInput, voiceflow.StateQuantityConfirmation:
				intent, confidence = voiceflow.IntentQuantityGiven, 0.6
				if entities.Quantity == nil {
					entities.Quantity = n
				}
			case voiceflow.StatePriceInput, voiceflow.StatePriceConfirmation:
				intent, confidence = voiceflow.IntentPriceGiven, 0.6
				if entities.Price == nil {
					entities.Price = n
				}
			}
		}
	}

	return Classification{
		Intent:     intent,
		Entities:   entities,
		Confidence: confidence,
		Language:   language,
	}
}

func bestMatch(text string, candidates []voiceflow.Intent, entities Entities) (voiceflow.Intent, float64) {
	inCandidates := func(intent voiceflow.Intent) bool {
		if candidates == nil {
			return true
		}
		for _, c := range candidates {
			if c == intent {
				return true
			}
		}
		return false
	}

	best, bestScore := voiceflow.IntentUnknown, 0.0
	for intent, patterns := range intentCatalog {
		if !inCandidates(intent) {
			continue
		}
		for _, p := range patterns {
			if !p.re.MatchString(text) {
				continue
			}
			score := p.weight
			// Entity agreement strengthens the data-bearing intents.
			if intent == voiceflow.IntentQuantityGiven && entities.Quantity != nil {
				score += 0.05
			}
			if intent == voiceflow.IntentPriceGiven && entities.Price != nil {
				score += 0.05
			}
			if score > bestScore {
				best, bestScore = intent, score
			}
		}
	}
	return best, bestScore
}
