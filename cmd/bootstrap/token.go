package bootstrap

import (
	"time"

	"github.com/uday68/VyaparMitra-sub000/internal/handler/middleware"
	"github.com/uday68/VyaparMitra-sub000/internal/pkg/config"
	"github.com/uday68/VyaparMitra-sub000/internal/pkg/qrtoken"
	"github.com/uday68/VyaparMitra-sub000/internal/realtime"
	"github.com/uday68/VyaparMitra-sub000/internal/usecase"

	"go.uber.org/fx"
)

var TokenModule = fx.Module("token",
	fx.Provide(
		NewQRTokenService,
		func(s *qrtoken.Service) usecase.TokenService { return s },
		func(s *qrtoken.Service) middleware.ParticipantValidator { return s },
		func(s *qrtoken.Service) realtime.TokenValidator { return s },
	),
)

func NewQRTokenService(cfg config.Config) *qrtoken.Service {
	duration, err := time.ParseDuration(cfg.QRToken.Duration)
	if err != nil {
		panic("invalid QR_TOKEN_DURATION: " + err.Error())
	}

	return qrtoken.NewService(cfg.QRToken.Secret, duration)
}
