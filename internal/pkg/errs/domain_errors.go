package errs

import "errors"

// Domain-specific sentinel errors shared across usecase layers
var (
	// Session errors
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
	ErrInvalidToken    = errors.New("invalid session token")
	ErrJoinConflict    = errors.New("session already joined")

	// Negotiation errors
	ErrRoomNotFound       = errors.New("negotiation room not found")
	ErrRoomClosed         = errors.New("negotiation room is closed")
	ErrMessageNotFound    = errors.New("message not found")
	ErrCompletionConflict = errors.New("negotiation already completed")

	// Realtime errors
	ErrUnauthorizedRoomAccess = errors.New("unauthorized room access")
	ErrNotJoined              = errors.New("connection has not joined a room")

	// Voice errors
	ErrWorkflowNotFound  = errors.New("voice workflow session not found")
	ErrInvalidTransition = errors.New("invalid workflow transition")
	ErrSpeechUnavailable = errors.New("speech recognition unavailable")

	// Operation errors
	ErrDatabaseOperationFailed = errors.New("database operation failed")
)
