package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/uday68/VyaparMitra-sub000/internal/handler/api"
	"github.com/uday68/VyaparMitra-sub000/internal/handler/middleware"
	"github.com/uday68/VyaparMitra-sub000/internal/pkg/config"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

func NewRouter(
	engine *gin.Engine,
	cfg config.Config,
	sessionHandler *api.SessionHandler,
	negotiationHandler *api.NegotiationHandler,
	voiceHandler *api.VoiceHandler,
	wsHandler *api.WSHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	setupMiddleware(engine, cfg)
	setupRoutes(engine, sessionHandler, negotiationHandler, voiceHandler, wsHandler, authMiddleware)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(middleware.LoggingMiddleware(nil, cfg.Log))
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(
	engine *gin.Engine,
	sessionHandler *api.SessionHandler,
	negotiationHandler *api.NegotiationHandler,
	voiceHandler *api.VoiceHandler,
	wsHandler *api.WSHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	engine.GET("/health", healthCheck)

	// Token validation for the upgrade happens inside the hub.
	engine.GET("/ws/negotiate", wsHandler.Negotiate)

	apiGroup := engine.Group("/api")
	{
		sessions := apiGroup.Group("/sessions")
		{
			addRoutes(sessions, []route{
				{Method: http.MethodPost, Path: "", Handler: sessionHandler.GenerateSession},
				{Method: http.MethodGet, Path: "/validate", Handler: sessionHandler.ValidateSession},
			})

			joinRequired := sessions.Group("")
			joinRequired.Use(authMiddleware.RequireParticipant())
			addRoutes(joinRequired, []route{
				{Method: http.MethodPost, Path: "/:id/join", Handler: sessionHandler.JoinSession},
			})
		}

		negotiations := apiGroup.Group("/negotiations/:sessionId")
		negotiations.Use(authMiddleware.RequireParticipant())
		{
			addRoutes(negotiations, []route{
				{Method: http.MethodGet, Path: "", Handler: negotiationHandler.GetSnapshot},
				{Method: http.MethodGet, Path: "/messages", Handler: negotiationHandler.GetHistory},
				{Method: http.MethodPost, Path: "/messages", Handler: negotiationHandler.SendMessage},
				{Method: http.MethodPost, Path: "/complete", Handler: negotiationHandler.CompleteNegotiation},
				{Method: http.MethodPost, Path: "/read", Handler: negotiationHandler.MarkRead},
			})
		}

		voiceGroup := apiGroup.Group("/voice")
		voiceGroup.Use(authMiddleware.RequireParticipant())
		{
			addRoutes(voiceGroup, []route{
				{Method: http.MethodPost, Path: "/utterance", Handler: voiceHandler.HandleUtterance},
			})
		}
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
