// internal/wire/wire.go
package wire

import (
	"net/http"

	"exam-registration/internal/adaptor"
	"exam-registration/internal/usecase"
	"exam-registration/pkg/middleware"
	"exam-registration/pkg/ratelimit"
	"exam-registration/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const version = "1.0.0"

// App holds the assembled HTTP surface
type App struct {
	Router  *chi.Mux
	Service *usecase.Service
}

// Wiring builds services, handlers and routes from the shared collaborators
func Wiring(deps usecase.Deps, limiter ratelimit.Limiter, config *utils.Config, logger *zap.Logger) *App {
	service := usecase.NewService(deps, config, logger)
	handler := adaptor.NewHandler(service, logger)

	router := setupRouter(handler, service, limiter, config, logger)

	return &App{
		Router:  router,
		Service: service,
	}
}

// setupRouter configures the chi router
func setupRouter(
	handler *adaptor.Handler,
	service *usecase.Service,
	limiter ratelimit.Limiter,
	config *utils.Config,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Apply global middleware
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS(config.App.CORSOrigins))

	authenticated := middleware.AuthJWT(service.Session, usecase.ErrAccountNotFound, logger)
	bounded := middleware.Timeout(config.Database.Timeout)

	// Apply routes
	r.Group(func(r chi.Router) {
		r.Use(bounded)
		wireAuth(r, handler.Auth, authenticated, limiter, logger)
		wireRegistration(r, handler.Registration, authenticated)
		wireConfig(r, handler.Config)
	})
	wireAdmin(r, handler.Admin, authenticated, bounded, config, logger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		utils.ResponseSuccess(w, config.App.Name, map[string]string{
			"name":    config.App.Name,
			"version": version,
		})
	})

	return r
}
