package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/uday68/VyaparMitra-sub000/internal/domain/lang"
	"github.com/uday68/VyaparMitra-sub000/internal/domain/voiceflow"
	"github.com/uday68/VyaparMitra-sub000/internal/pkg/clock"
	"github.com/uday68/VyaparMitra-sub000/internal/pkg/errs"
	"github.com/uday68/VyaparMitra-sub000/internal/translation"
	"github.com/uday68/VyaparMitra-sub000/internal/usecase/readmodel"
	"github.com/uday68/VyaparMitra-sub000/internal/voice"

	"github.com/google/uuid"
)

type WorkflowStore interface {
	Find(ctx context.Context, userID uuid.UUID) (*voiceflow.Session, error)
	Save(ctx context.Context, sess *voiceflow.Session, ttl time.Duration) error
	Delete(ctx context.Context, userID uuid.UUID) error
}

// Translator is the synchronous side of the translation pipeline, used here
// to pivot utterances and localize prompts.
type Translator interface {
	Translate(ctx context.Context, text string, from, to lang.Language) translation.Result
}

type IntentRouter interface {
	Classify(text string, language lang.Language, workflowState *voiceflow.State) voice.Classification
}

type UtteranceInput struct {
	UserID       uuid.UUID
	Text         string
	Audio        []byte
	LanguageHint lang.Language
	PhotoRef     *string
	WantAudio    bool
}

type VoiceUseCase interface {
	HandleUtterance(ctx context.Context, in UtteranceInput) (*readmodel.UtteranceRM, error)
}

type voiceUseCaseImpl struct {
	workflows  WorkflowStore
	stt        voice.SpeechToText
	tts        voice.TextToSpeech
	translator Translator
	router     IntentRouter
	clock      clock.Clock
	ttl        time.Duration
	pivot      lang.Language
	logger     *slog.Logger
}

func NewVoiceUseCase(
	workflows WorkflowStore,
	stt voice.SpeechToText,
	tts voice.TextToSpeech,
	translator Translator,
	router IntentRouter,
	clock clock.Clock,
	ttl time.Duration,
	pivot lang.Language,
	logger *slog.Logger,
) VoiceUseCase {
	return &voiceUseCaseImpl{
		workflows:  workflows,
		stt:        stt,
		tts:        tts,
		translator: translator,
		router:     router,
		clock:      clock,
		ttl:        ttl,
		pivot:      pivot,
		logger:     logger,
	}
}

// HandleUtterance runs one voice turn: transcribe, pivot, classify, advance
// the workflow and answer with a localized prompt. Unroutable input never
// fails the turn; it re-prompts for the current step instead.
func (u *voiceUseCaseImpl) HandleUtterance(ctx context.Context, in UtteranceInput) (*readmodel.UtteranceRM, error) {
	text := in.Text
	if text == "" && len(in.Audio) > 0 {
		transcript, err := u.stt.Transcribe(ctx, in.Audio, in.LanguageHint)
		if err != nil {
			return nil, errs.Mark(err, errs.ErrSpeechUnavailable)
		}
		text = transcript.Text
	}
	if text == "" {
		return nil, errs.ErrSpeechUnavailable
	}

	userLang := in.LanguageHint
	if userLang.IsZero() {
		userLang = voice.InferLanguage(text, u.pivot)
	}

	// Classification patterns run against the pivot language.
	routed := text
	if userLang != u.pivot {
		routed = u.translator.Translate(ctx, text, userLang, u.pivot).Text
	}

	now := u.clock.Now()
	sess, err := u.workflows.Find(ctx, in.UserID)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	if sess != nil && sess.HasExpired(now) {
		if err := u.workflows.Delete(ctx, in.UserID); err != nil {
			u.logger.Warn("failed to drop expired workflow session", "user_id", in.UserID, "error", err)
		}
		sess = nil
	}

	var statePtr *voiceflow.State
	if sess != nil {
		statePtr = &sess.State
	}
	cls := u.router.Classify(routed, userLang, statePtr)

	rm := &readmodel.UtteranceRM{
		Transcript: text,
		Intent:     cls.Intent,
		Entities:   cls.Entities,
		Confidence: cls.Confidence,
		Language:   cls.Language.String(),
	}

	var prompt string
	switch {
	case cls.Intent == voiceflow.IntentCancel && sess != nil:
		if err := u.workflows.Delete(ctx, in.UserID); err != nil {
			return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		prompt = "Listing cancelled. Say add new product to start over."

	case cls.Intent == voiceflow.IntentStartWorkflow && sess == nil:
		sess = voiceflow.NewSession(in.UserID, userLang, u.ttl, now)
		if err := u.workflows.Save(ctx, sess, u.ttl); err != nil {
			return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		rm.WorkflowState = &sess.State
		prompt = u.promptFor(sess.State, sess.Data)

	case sess == nil:
		prompt = "Say add new product to get started."

	case cls.Intent == voiceflow.IntentUnknown:
		rm.WorkflowState = &sess.State
		prompt = u.promptFor(sess.State, sess.Data)

	default:
		input := voiceflow.TransitionInput{
			PhotoRef:    in.PhotoRef,
			ProductName: cls.Entities.ProductName,
			Quantity:    cls.Entities.Quantity,
			Unit:        cls.Entities.Unit,
			Price:       cls.Entities.Price,
		}
		if err := sess.Advance(cls.Intent, input, u.ttl, now); err != nil {
			rm.WorkflowState = &sess.State
			prompt = u.promptFor(sess.State, sess.Data)
			break
		}

		rm.WorkflowState = &sess.State
		if sess.State.IsTerminal() {
			if err := u.workflows.Delete(ctx, in.UserID); err != nil {
				return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
			}
			rm.Completed = true
			draft := sess.Data
			rm.Draft = &draft
			prompt = u.promptFor(sess.State, sess.Data)
		} else {
			if err := u.workflows.Save(ctx, sess, u.ttl); err != nil {
				return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
			}
			prompt = u.promptFor(sess.State, sess.Data)
		}
	}

	if userLang != u.pivot {
		prompt = u.translator.Translate(ctx, prompt, u.pivot, userLang).Text
	}
	rm.Prompt = prompt

	if in.WantAudio && u.tts != nil {
		synth, err := u.tts.Synthesize(ctx, prompt, userLang)
		if err != nil {
			u.logger.Warn("prompt synthesis failed", "user_id", in.UserID, "error", err)
		} else {
			rm.PromptAudioURL = &synth.AudioURL
		}
	}
	return rm, nil
}

func (u *voiceUseCaseImpl) promptFor(state voiceflow.State, draft voiceflow.ProductDraft) string {
	switch state {
	case voiceflow.StatePhotoCapture:
		return "Point the camera at your product and say photo taken when you are ready."
	case voiceflow.StatePhotoConfirmation:
		return "Is the photo okay? Say yes to continue or retake for another one."
	case voiceflow.StateQuantityInput:
		return "How much stock do you have? For example, say 10 kg."
	case voiceflow.StateQuantityConfirmation:
		if draft.Quantity != nil {
			unit := ""
			if draft.Unit != nil {
				unit = " " + *draft.Unit
			}
			return fmt.Sprintf("You said %g%s. Say yes to confirm or give a new quantity.", *draft.Quantity, unit)
		}
		return "Say yes to confirm the quantity or give a new one."
	case voiceflow.StatePriceInput:
		return "What price do you want? For example, say 50 rupees."
	case voiceflow.StatePriceConfirmation:
		if draft.Price != nil {
			return fmt.Sprintf("You said %g rupees. Say yes to confirm or give a new price.", *draft.Price)
		}
		return "Say yes to confirm the price or give a new one."
	case voiceflow.StateCompletion:
		return "Your product is listed. Say add new product to list another."
	default:
		return "Say add new product to get started."
	}
}
