package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	aihandler "github.com/counslerai/counslerai/internal/handler/ai"
	chathandler "github.com/counslerai/counslerai/internal/handler/chat"
	middlewarePkg "github.com/counslerai/counslerai/internal/middleware"
	aiservice "github.com/counslerai/counslerai/internal/service/ai"
	chatservice "github.com/counslerai/counslerai/internal/service/chat"
)

// NewRouter wires HTTP routes to core services. adviceSvc may be nil when
// provider credentials are absent; the advice routes are then not mounted.
func NewRouter(chatSvc *chatservice.Service, adviceSvc *aiservice.Service) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	chatHandler := chathandler.New(chatSvc)

	r.Route("/api", func(api chi.Router) {
		chatHandler.RegisterRoutes(api)

		if adviceSvc != nil {
			aihandler.New(adviceSvc, chatSvc).RegisterRoutes(api)
		}
	})

	return r
}
