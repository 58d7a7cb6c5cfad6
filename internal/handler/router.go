package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/zhouzirui/mind-chat/backend/internal/handler/chat"
	"github.com/zhouzirui/mind-chat/backend/internal/handler/journal"
	"github.com/zhouzirui/mind-chat/backend/internal/handler/mood"
	middlewarePkg "github.com/zhouzirui/mind-chat/backend/internal/middleware"
	"github.com/zhouzirui/mind-chat/backend/internal/service/companion"
	"github.com/zhouzirui/mind-chat/backend/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(svc *companion.Service, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewarePkg.Identify)
	r.Use(middlewarePkg.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	chatHandler := chat.New(svc)
	journalHandler := journal.New(svc)
	moodHandler := mood.New(svc)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(api chi.Router) {
		moodHandler.RegisterPublicRoutes(api)

		// 聊天允许匿名访问，统一记为 guest
		api.Group(func(g chi.Router) {
			g.Use(middlewarePkg.GuestFallback)
			chatHandler.RegisterRoutes(g)
		})

		api.Group(func(g chi.Router) {
			g.Use(middlewarePkg.RequireUser)
			journalHandler.RegisterRoutes(g)
			moodHandler.RegisterRoutes(g)
		})
	})

	return r
}
