package voiceflow

// State is a step of the voice intake flow.
type State string

const (
	StateIdle                 State = "IDLE"
	StatePhotoCapture         State = "PHOTO_CAPTURE"
	StatePhotoConfirmation    State = "PHOTO_CONFIRMATION"
	StateQuantityInput        State = "QUANTITY_INPUT"
	StateQuantityConfirmation State = "QUANTITY_CONFIRMATION"
	StatePriceInput           State = "PRICE_INPUT"
	StatePriceConfirmation    State = "PRICE_CONFIRMATION"
	StateCompletion           State = "COMPLETION"
)

func (s State) String() string {
	return string(s)
}

func (s State) IsTerminal() bool {
	return s == StateCompletion
}

// Intent is a closed set of recognized utterance meanings.
type Intent string

const (
	IntentStartWorkflow Intent = "START_WORKFLOW"
	IntentPhotoCaptured Intent = "PHOTO_CAPTURED"
	IntentConfirm       Intent = "CONFIRM"
	IntentRetake        Intent = "RETAKE"
	IntentQuantityGiven Intent = "QUANTITY_GIVEN"
	IntentPriceGiven    Intent = "PRICE_GIVEN"
	IntentCancel        Intent = "CANCEL"
	IntentUnknown       Intent = "UNKNOWN"
)

func (i Intent) String() string {
	return string(i)
}
