package components

import (
	"github.com/uday68/VyaparMitra-sub000/internal/handler"
	"github.com/uday68/VyaparMitra-sub000/internal/handler/api"
	"github.com/uday68/VyaparMitra-sub000/internal/handler/middleware"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewSessionHandler,
		api.NewNegotiationHandler,
		api.NewVoiceHandler,
		api.NewWSHandler,
		middleware.NewAuthMiddleware,
	),
	fx.Invoke(handler.NewRouter),
)
