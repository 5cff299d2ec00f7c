package components

import (
	"context"

	"github.com/uday68/VyaparMitra-sub000/internal/realtime"
	"github.com/uday68/VyaparMitra-sub000/internal/translation"
	"github.com/uday68/VyaparMitra-sub000/internal/usecase"

	"go.uber.org/fx"
)

var RealtimeModule = fx.Module("realtime",
	fx.Provide(
		realtime.NewHub,
	),
	fx.Invoke(
		wireNotifiers,
		runSweeper,
	),
)

// wireNotifiers closes the construction cycle: pipeline and sweeper need the
// hub for fan-out, the hub needs the negotiation use case, which needs the
// pipeline.
func wireNotifiers(pipeline *translation.Pipeline, sweeper *usecase.Sweeper, hub *realtime.Hub) {
	pipeline.SetNotifier(hub)
	sweeper.SetNotifier(hub)
}

func runSweeper(lc fx.Lifecycle, sweeper *usecase.Sweeper, hub *realtime.Hub) {
	ctx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			go sweeper.Run(ctx)
			return nil
		},
		OnStop: func(_ context.Context) error {
			cancel()
			hub.Shutdown("server restarting")
			return nil
		},
	})
}
