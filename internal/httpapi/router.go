package httpapi

import (
	"net/http"

	"go.uber.org/zap"

	"quizmaster/internal/store/sqlite"
)

func NewRouter(store *sqlite.SQLiteStore, logger *zap.Logger, opts Options) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	api := NewAPI(store, logger, opts)
	metrics := opts.Metrics
	if metrics == nil {
		metrics = NewMetrics()
	}
	loginLimiter := newIPLimiter(opts.LoginRatePerMinute)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", api.HandleHealth)
	mux.Handle("GET /metrics", metrics.Handler())

	mux.HandleFunc("POST /auth/register", api.HandleRegister)
	mux.HandleFunc("POST /auth/login", loginLimiter.Wrap(api.HandleLogin))
	mux.HandleFunc("POST /auth/logout", api.HandleLogout)
	mux.HandleFunc("GET /auth/me", api.requireUser(api.HandleMe))

	mux.HandleFunc("GET /categories", api.requireUser(api.HandleCategories))
	mux.HandleFunc("GET /categories/{category_id}/quizzes/available", api.requireUser(api.HandleAvailableQuizzes))

	mux.HandleFunc("POST /attempts/start/{quiz_id}", api.requireUser(api.HandleStartQuiz))
	mux.HandleFunc("POST /attempts/submit/{attempt_id}", api.requireUser(api.HandleSubmitAttempt))
	mux.HandleFunc("GET /attempts/progress", api.requireUser(api.HandleProgress))
	mux.HandleFunc("GET /attempts/{attempt_id}", api.requireUser(api.HandleAttemptDetail))

	mux.HandleFunc("GET /users/me/attempts", api.requireUser(api.HandleMyAttempts))
	mux.HandleFunc("GET /users/me/stats", api.requireUser(api.HandleMyStats))

	mux.HandleFunc("GET /admin/stats", api.requireAdmin(api.HandleAdminStats))
	mux.HandleFunc("GET /admin/users", api.requireAdmin(api.HandleAdminUsers))

	return logRequests(logger, metrics.Middleware(mux))
}
