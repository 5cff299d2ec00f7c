//go:build unit

package api_test

import (
	"context"
	"time"

	"github.com/uday68/VyaparMitra-sub000/internal/domain/lang"
	"github.com/uday68/VyaparMitra-sub000/internal/domain/negotiation"
	"github.com/uday68/VyaparMitra-sub000/internal/domain/voiceflow"
	"github.com/uday68/VyaparMitra-sub000/internal/usecase"
	"github.com/uday68/VyaparMitra-sub000/internal/usecase/readmodel"

	"github.com/google/uuid"
)

type fakeSessionUseCase struct {
	generateResult *usecase.GenerateResult
	validateResult *usecase.ValidationResult
	joinResult     *usecase.JoinResult
	err            error

	joinedSession  uuid.UUID
	joinedCustomer uuid.UUID
	joinedLanguage lang.Language
}

func (f *fakeSessionUseCase) Generate(_ context.Context, _ uuid.UUID, _ *uuid.UUID, _ lang.Language) (*usecase.GenerateResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.generateResult, nil
}

func (f *fakeSessionUseCase) Validate(_ context.Context, _ string) (*usecase.ValidationResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.validateResult, nil
}

func (f *fakeSessionUseCase) Join(_ context.Context, sessionID, customerID uuid.UUID, customerLanguage lang.Language) (*usecase.JoinResult, error) {
	f.joinedSession = sessionID
	f.joinedCustomer = customerID
	f.joinedLanguage = customerLanguage
	if f.err != nil {
		return nil, f.err
	}
	return f.joinResult, nil
}

func (f *fakeSessionUseCase) ExpireSweep(_ context.Context, _ time.Time) ([]uuid.UUID, error) {
	return nil, nil
}

type fakeNegotiationUseCase struct {
	snapshot *readmodel.RoomSnapshotRM
	message  *negotiation.Message
	room     *readmodel.RoomRM
	history  []negotiation.Message
	err      error

	sent   *usecase.SendMessageInput
	marked []string
}

func (f *fakeNegotiationUseCase) Snapshot(_ context.Context, _, _ uuid.UUID, _ int) (*readmodel.RoomSnapshotRM, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.snapshot, nil
}

func (f *fakeNegotiationUseCase) SendMessage(_ context.Context, in usecase.SendMessageInput) (*negotiation.Message, error) {
	f.sent = &in
	if f.err != nil {
		return nil, f.err
	}
	return f.message, nil
}

func (f *fakeNegotiationUseCase) Complete(_ context.Context, _, _ uuid.UUID, _ string) (*readmodel.RoomRM, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.room, nil
}

func (f *fakeNegotiationUseCase) History(_ context.Context, _, _ uuid.UUID, _ int) ([]negotiation.Message, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.history, nil
}

func (f *fakeNegotiationUseCase) MarkDelivered(_ context.Context, _ uuid.UUID, _ string) (time.Time, error) {
	if f.err != nil {
		return time.Time{}, f.err
	}
	return time.Now(), nil
}

func (f *fakeNegotiationUseCase) MarkRead(_ context.Context, _, _ uuid.UUID, messageIDs []string) error {
	f.marked = messageIDs
	return f.err
}

type fakeVoiceUseCase struct {
	rm  *readmodel.UtteranceRM
	err error

	in *usecase.UtteranceInput
}

func (f *fakeVoiceUseCase) HandleUtterance(_ context.Context, in usecase.UtteranceInput) (*readmodel.UtteranceRM, error) {
	f.in = &in
	if f.err != nil {
		return nil, f.err
	}
	return f.rm, nil
}

func sessionRM(id, vendorID uuid.UUID) *readmodel.SessionRM {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return &readmodel.SessionRM{
		ID:             id,
		VendorID:       vendorID,
		VendorLanguage: "hi",
		Status:         "ACTIVE",
		CreatedAt:      now,
		ExpiresAt:      now.Add(24 * time.Hour),
		LastActivityAt: now,
	}
}

func roomRM(sessionID, vendorID uuid.UUID) *readmodel.RoomRM {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return &readmodel.RoomRM{
		ID:             uuid.New(),
		SessionID:      sessionID,
		VendorID:       vendorID,
		VendorLanguage: "hi",
		Status:         "ACTIVE",
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func utteranceRM() *readmodel.UtteranceRM {
	state := voiceflow.StateQuantityInput
	return &readmodel.UtteranceRM{
		Transcript:    "photo taken",
		Intent:        voiceflow.IntentPhotoCaptured,
		Confidence:    0.9,
		Language:      "en",
		WorkflowState: &state,
		Prompt:        "How much stock do you have? For example, say 10 kg.",
	}
}
