package serverhttp

import (
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"planfact-service/internal/config"
	"planfact-service/internal/middleware"
	pfHnd "planfact-service/internal/planfact/handler"
	"planfact-service/server/http/handlers"
)

func NewRouter(cfg config.Config, logger zerolog.Logger) *chi.Mux {
	r := chi.NewRouter()

	// порядок важен: recover -> requestID -> logging -> cors -> limit
	r.Use(middleware.Recover(logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS(cfg.AllowOrigins))
	r.Use(middleware.LimitBytes(int64(cfg.MaxUploadMB) * 1024 * 1024))

	// health-check
	r.Get("/health", handlers.Health)

	// анализ план/факт: json-результат и выгрузка в xlsx
	r.Post("/analyze", pfHnd.Analyze(cfg, logger))
	r.Post("/analyze/export", pfHnd.Export(cfg, logger))

	return r
}
