package bootstrap

import (
	"github.com/uday68/VyaparMitra-sub000/cmd/bootstrap/components"

	"go.uber.org/fx"
)

var Module = fx.Options(
	ConfigModule,
	DBModule,
	RedisModule,
	TokenModule,
	components.RepositoryModule,
	components.UseCaseModule,
	components.RealtimeModule,
	components.HandlerModule,
)
