package translation

import (
	"context"
	"log/slog"
	"time"

	"github.com/uday68/VyaparMitra-sub000/internal/domain/lang"
	"github.com/uday68/VyaparMitra-sub000/internal/domain/negotiation"
	"github.com/uday68/VyaparMitra-sub000/internal/infra/redisstore"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/sony/gobreaker"
)

// Cache is the best-effort lookup the pipeline consults before any provider
// call. Races on Put are tolerated: both writers store identical content.
type Cache interface {
	Get(ctx context.Context, text, fromLang, toLang string) (*redisstore.CachedTranslation, error)
	Put(ctx context.Context, text, fromLang, toLang, translated, provider string, confidence float64) error
}

// MessageUpgrader persists the asynchronous translation upgrade.
type MessageUpgrader interface {
	ApplyTranslation(ctx context.Context, messageID, content string, status negotiation.TranslationStatus) error
	FindMessage(ctx context.Context, id string) (*negotiation.Message, error)
}

// Notifier fans the upgraded message out to connected clients. The hub
// implements it; the indirection keeps this package off the websocket layer.
type Notifier interface {
	NotifyTranslationUpgrade(sessionID uuid.UUID, message *negotiation.Message)
}

type Options struct {
	RequestTimeout time.Duration
	MaxRetries     uint
	MaxInflight    int
}

// Pipeline resolves translations cache-first, then primary provider with
// retry and a circuit breaker, then the secondary provider, and finally
// degrades to the original text so message delivery never blocks on
// translation.
type Pipeline struct {
	primary   Provider
	secondary Provider // may be nil
	cache     Cache
	upgrader  MessageUpgrader
	notifier  Notifier
	breaker   *gobreaker.CircuitBreaker
	inflight  chan struct{}
	opts      Options
	logger    *slog.Logger
}

func NewPipeline(primary, secondary Provider, cache Cache, upgrader MessageUpgrader, opts Options, logger *slog.Logger) *Pipeline {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 5 * time.Second
	}
	if opts.MaxInflight <= 0 {
		opts.MaxInflight = 32
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name: "translation-primary",
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		Timeout: 30 * time.Second,
	})

	return &Pipeline{
		primary:   primary,
		secondary: secondary,
		cache:     cache,
		upgrader:  upgrader,
		breaker:   breaker,
		inflight:  make(chan struct{}, opts.MaxInflight),
		opts:      opts,
		logger:    logger,
	}
}

// SetNotifier binds the realtime fan-out after construction. The hub depends
// on the pipeline, so the reverse edge is attached late.
func (p *Pipeline) SetNotifier(n Notifier) {
	p.notifier = n
}

// Translate resolves one translation synchronously. It never returns an
// error: exhausted attempts degrade to the original text with
// Provider=FALLBACK.
func (p *Pipeline) Translate(ctx context.Context, text string, from, to lang.Language) Result {
	if from == to || text == "" {
		return Result{Text: text, Confidence: 1, Provider: ProviderFallback}
	}

	if cached, err := p.cache.Get(ctx, text, from.String(), to.String()); err != nil {
		p.logger.Warn("translation cache lookup failed", "error", err)
	} else if cached != nil {
		return Result{Text: cached.Text, Confidence: cached.Confidence, Provider: cached.Provider}
	}

	result, err := p.translateWithRetry(ctx, p.primary, text, from, to)
	if err != nil && p.secondary != nil {
		p.logger.Warn("primary translation provider failed, trying secondary",
			"provider", p.primary.Name(), "error", err)
		result, err = p.translateOnce(ctx, p.secondary, text, from, to)
	}
	if err != nil {
		p.logger.Warn("all translation providers failed, falling back to original",
			"from", from.String(), "to", to.String(), "error", err)
		return Result{Text: text, Confidence: 0, Provider: ProviderFallback}
	}

	if err := p.cache.Put(ctx, text, from.String(), to.String(), result.Text, result.Provider, result.Confidence); err != nil {
		p.logger.Warn("translation cache store failed", "error", err)
	}
	return result
}

// TranslateMessageAsync performs the post-delivery translation upgrade as a
// bounded background task. The message is already visible untranslated;
// failure marks it FAILED and still notifies, never stalling the room.
func (p *Pipeline) TranslateMessageAsync(messageID string, sessionID uuid.UUID, text string, from, to lang.Language) {
	p.inflight <- struct{}{}
	go func() {
		defer func() { <-p.inflight }()

		ctx, cancel := context.WithTimeout(context.Background(), p.opts.RequestTimeout*time.Duration(p.opts.MaxRetries+2))
		defer cancel()

		result := p.Translate(ctx, text, from, to)

		status := negotiation.TranslationCompleted
		content := result.Text
		if result.Provider == ProviderFallback {
			status = negotiation.TranslationFailed
			content = text
		}

		if err := p.upgrader.ApplyTranslation(ctx, messageID, content, status); err != nil {
			// A lost CAS means the upgrade already happened; anything else is logged.
			p.logger.Warn("failed to persist translation upgrade",
				"message_id", messageID, "status", status.String(), "error", err)
			return
		}

		if p.notifier == nil {
			return
		}
		message, err := p.upgrader.FindMessage(ctx, messageID)
		if err != nil {
			p.logger.Warn("failed to reload upgraded message", "message_id", messageID, "error", err)
			return
		}
		p.notifier.NotifyTranslationUpgrade(sessionID, message)
	}()
}

func (p *Pipeline) translateWithRetry(ctx context.Context, provider Provider, text string, from, to lang.Language) (Result, error) {
	var result Result

	operation := func() error {
		out, err := p.breaker.Execute(func() (any, error) {
			return p.translateOnce(ctx, provider, text, from, to)
		})
		if err != nil {
			if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
				return backoff.Permanent(err)
			}
			return err
		}
		result = out.(Result)
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(p.opts.MaxRetries)),
		ctx,
	)
	if err := backoff.Retry(operation, policy); err != nil {
		return Result{}, err
	}
	return result, nil
}

func (p *Pipeline) translateOnce(ctx context.Context, provider Provider, text string, from, to lang.Language) (Result, error) {
	callCtx, cancel := context.WithTimeout(ctx, p.opts.RequestTimeout)
	defer cancel()
	return provider.Translate(callCtx, text, from, to)
}
