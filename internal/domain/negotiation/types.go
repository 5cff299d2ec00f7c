package negotiation

type RoomStatus string

const (
	RoomWaiting   RoomStatus = "WAITING"
	RoomActive    RoomStatus = "ACTIVE"
	RoomCompleted RoomStatus = "COMPLETED"
	RoomAbandoned RoomStatus = "ABANDONED"
)

func (s RoomStatus) String() string {
	return string(s)
}

func (s RoomStatus) IsTerminal() bool {
	return s == RoomCompleted || s == RoomAbandoned
}

type SenderType string

const (
	SenderVendor   SenderType = "VENDOR"
	SenderCustomer SenderType = "CUSTOMER"
)

func (s SenderType) String() string {
	return string(s)
}

func (s SenderType) IsValid() bool {
	return s == SenderVendor || s == SenderCustomer
}

type MessageType string

const (
	MessageText  MessageType = "TEXT"
	MessageVoice MessageType = "VOICE"
)

func (m MessageType) IsValid() bool {
	return m == MessageText || m == MessageVoice
}

// TranslationStatus transitions PENDING→{COMPLETED|FAILED} exactly once.
// NOT_REQUIRED is assigned at append time when both parties share a language.
type TranslationStatus string

const (
	TranslationPending     TranslationStatus = "PENDING"
	TranslationCompleted   TranslationStatus = "COMPLETED"
	TranslationFailed      TranslationStatus = "FAILED"
	TranslationNotRequired TranslationStatus = "NOT_REQUIRED"
)

func (t TranslationStatus) String() string {
	return string(t)
}
