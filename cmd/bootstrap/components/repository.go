package components

import (
	"github.com/uday68/VyaparMitra-sub000/internal/infra/redisstore"
	repo_impl "github.com/uday68/VyaparMitra-sub000/internal/infra/repository"
	"github.com/uday68/VyaparMitra-sub000/internal/translation"
	"github.com/uday68/VyaparMitra-sub000/internal/usecase"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var RepositoryModule = fx.Module("repository",
	fx.Provide(
		NewDBTX,
		fx.Annotate(
			repo_impl.NewSessionRepository,
			fx.As(new(usecase.SessionRepository)),
		),
		// The negotiation repository doubles as the translation pipeline's
		// message upgrader: both sides hit the same messages table.
		fx.Annotate(
			repo_impl.NewNegotiationRepository,
			fx.As(new(usecase.RoomRepository)),
			fx.As(new(translation.MessageUpgrader)),
		),
		fx.Annotate(
			redisstore.NewWorkflowStore,
			fx.As(new(usecase.WorkflowStore)),
		),
	),
)

func NewDBTX(pool *pgxpool.Pool) repo_impl.DBTX {
	return pool
}
