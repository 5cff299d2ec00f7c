package components

import (
	"log/slog"
	"net/http"

	"github.com/uday68/VyaparMitra-sub000/internal/domain/lang"
	"github.com/uday68/VyaparMitra-sub000/internal/infra/redisstore"
	"github.com/uday68/VyaparMitra-sub000/internal/pkg/clock"
	"github.com/uday68/VyaparMitra-sub000/internal/pkg/config"
	"github.com/uday68/VyaparMitra-sub000/internal/translation"
	"github.com/uday68/VyaparMitra-sub000/internal/usecase"
	"github.com/uday68/VyaparMitra-sub000/internal/voice"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	fx.Provide(
		clock.NewRealClock,

		NewSessionUseCase,
		usecase.NewNegotiationUseCase,
		NewSweeper,

		NewTranslationPipeline,
		func(p *translation.Pipeline) usecase.TranslationDispatcher { return p },
		func(p *translation.Pipeline) usecase.Translator { return p },

		NewSpeechClient,
		func(c *voice.HTTPSpeechClient) voice.SpeechToText { return c },
		func(c *voice.HTTPSpeechClient) voice.TextToSpeech { return c },
		NewIntentRouter,
		NewVoiceUseCase,
	),
)

func NewSessionUseCase(
	sessions usecase.SessionRepository,
	rooms usecase.RoomRepository,
	tokens usecase.TokenService,
	clk clock.Clock,
	cfg config.Config,
) usecase.SessionUseCase {
	return usecase.NewSessionUseCase(sessions, rooms, tokens, clk, cfg.Server.PublicBaseURL)
}

func NewSweeper(
	sessions usecase.SessionUseCase,
	rooms usecase.RoomRepository,
	clk clock.Clock,
	cfg config.Config,
	logger *slog.Logger,
) *usecase.Sweeper {
	return usecase.NewSweeper(sessions, rooms, clk, cfg.Sweep.Interval, cfg.Sweep.RoomRetention, logger)
}

func NewTranslationPipeline(
	cfg config.Config,
	rdb *redis.Client,
	upgrader translation.MessageUpgrader,
	logger *slog.Logger,
) *translation.Pipeline {
	client := &http.Client{Timeout: cfg.Translation.RequestTimeout}
	primary := translation.NewHTTPProvider("primary", cfg.Translation.PrimaryURL, client)

	var secondary translation.Provider
	if cfg.Translation.SecondaryURL != "" {
		secondary = translation.NewHTTPProvider("secondary", cfg.Translation.SecondaryURL, client)
	}

	cache := redisstore.NewTranslationCache(rdb, cfg.Translation.CacheTTL)

	return translation.NewPipeline(primary, secondary, cache, upgrader, translation.Options{
		RequestTimeout: cfg.Translation.RequestTimeout,
		MaxRetries:     cfg.Translation.MaxRetries,
		MaxInflight:    cfg.Translation.MaxInflight,
	}, logger)
}

func NewSpeechClient(cfg config.Config) *voice.HTTPSpeechClient {
	return voice.NewHTTPSpeechClient(cfg.Voice.SpeechToTextURL, cfg.Voice.TextToSpeechURL, cfg.Voice.RequestTimeout)
}

func NewIntentRouter(cfg config.Config) (usecase.IntentRouter, error) {
	pivot, err := lang.New(cfg.Voice.PivotLanguage)
	if err != nil {
		return nil, err
	}
	return voice.NewRouter(pivot), nil
}

func NewVoiceUseCase(
	workflows usecase.WorkflowStore,
	stt voice.SpeechToText,
	tts voice.TextToSpeech,
	translator usecase.Translator,
	router usecase.IntentRouter,
	clk clock.Clock,
	cfg config.Config,
	logger *slog.Logger,
) (usecase.VoiceUseCase, error) {
	pivot, err := lang.New(cfg.Voice.PivotLanguage)
	if err != nil {
		return nil, err
	}
	return usecase.NewVoiceUseCase(workflows, stt, tts, translator, router, clk, cfg.Voice.WorkflowTTL, pivot, logger), nil
}
