package voiceflow

import "errors"

var ErrNoTransition = errors.New("no transition for intent in current state")

// transitions is the explicit (state × intent → state) table. CANCEL is
// handled outside the table: it destroys the session from any state.
var transitions = map[State]map[Intent]State{
	StateIdle: {
		IntentStartWorkflow: StatePhotoCapture,
	},
	StatePhotoCapture: {
		IntentPhotoCaptured: StatePhotoConfirmation,
	},
	StatePhotoConfirmation: {
		IntentConfirm: StateQuantityInput,
		IntentRetake:  StatePhotoCapture,
	},
	StateQuantityInput: {
		IntentQuantityGiven: StateQuantityConfirmation,
	},
	StateQuantityConfirmation: {
		IntentConfirm:       StatePriceInput,
		IntentQuantityGiven: StateQuantityConfirmation,
	},
	StatePriceInput: {
		IntentPriceGiven: StatePriceConfirmation,
	},
	StatePriceConfirmation: {
		IntentConfirm:    StateCompletion,
		IntentPriceGiven: StatePriceConfirmation,
	},
}

// Next resolves one transition. CANCEL never appears in the table.
func Next(state State, intent Intent) (State, error) {
	byIntent, ok := transitions[state]
	if !ok {
		return "", ErrNoTransition
	}
	next, ok := byIntent[intent]
	if !ok {
		return "", ErrNoTransition
	}
	return next, nil
}

// AllowedIntents lists the candidate intents from a state, CANCEL included.
// The intent router uses this to scope classification.
func AllowedIntents(state State) []Intent {
	byIntent, ok := transitions[state]
	if !ok {
		return []Intent{IntentCancel}
	}
	out := make([]Intent, 0, len(byIntent)+1)
	for intent := range byIntent {
		out = append(out, intent)
	}
	out = append(out, IntentCancel)
	return out
}
