// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/danielhkuo/quickly-quiz/cliparse"
	"github.com/danielhkuo/quickly-quiz/handlers"
	"github.com/danielhkuo/quickly-quiz/metrics"
	"github.com/danielhkuo/quickly-quiz/middleware"
	"github.com/danielhkuo/quickly-quiz/models"
	"github.com/danielhkuo/quickly-quiz/services"
	"github.com/danielhkuo/quickly-quiz/store"
)

// NewRouter builds the API handler over st. m may be nil; a nil gatherer
// serves the default Prometheus registry on /metrics.
func NewRouter(st store.Store, cfg cliparse.Config, m *metrics.Metrics, gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()

	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	// Services
	userService := services.NewUserService(st.Users(), cfg.JWTSecret, cfg.JWTExpire)
	pollService := services.NewPollService(st, cfg.PollTTL, m)
	voteService := services.NewVoteService(st, m)
	authn := middleware.NewAuthenticator(userService)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService, cfg)
	pollHandler := handlers.NewPollHandler(pollService)
	votingHandler := handlers.NewVotingHandler(voteService)
	resultsHandler := handlers.NewResultsHandler(pollService)
	dashboardHandler := handlers.NewDashboardHandler(pollService)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.HandleFunc("GET /api", func(w http.ResponseWriter, r *http.Request) {
		middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{Message: "Quick Poll Maker API running..."})
	})
	mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	// Accounts
	mux.HandleFunc("POST /api/auth/register", middleware.WithLogging(authHandler.Register))
	mux.HandleFunc("POST /api/auth/login", middleware.WithLogging(authHandler.Login))
	mux.HandleFunc("GET /api/auth/me", middleware.WithLogging(authn.Require(authHandler.Me)))
	mux.HandleFunc("GET /api/auth/logout", middleware.WithLogging(authn.Require(authHandler.Logout)))

	// Polls
	mux.HandleFunc("GET /api/polls", middleware.WithLogging(authn.Optional(pollHandler.ListPolls)))
	mux.HandleFunc("POST /api/polls", middleware.WithLogging(authn.Require(pollHandler.CreatePoll)))
	mux.HandleFunc("GET /api/polls/{id}", middleware.WithLogging(authn.Optional(pollHandler.GetPoll)))
	mux.HandleFunc("DELETE /api/polls/{id}", middleware.WithLogging(authn.Require(pollHandler.DeletePoll)))
	mux.HandleFunc("GET /api/polls/{id}/results", middleware.WithLogging(resultsHandler.GetResults))

	// Dashboard
	mux.HandleFunc("GET /api/polls/me/created", middleware.WithLogging(authn.Require(dashboardHandler.GetMyPolls)))
	mux.HandleFunc("GET /api/polls/me/voted", middleware.WithLogging(authn.Require(dashboardHandler.GetMyVotes)))

	// Voting
	mux.HandleFunc("POST /api/votes/{id}/vote", middleware.WithLogging(authn.Require(votingHandler.SubmitVote)))

	// Unknown GET routes
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Route not found")
	})

	var handler http.Handler = mux
	handler = middleware.CORS(cfg.CORSOrigin)(handler)
	handler = middleware.SecureHeaders(handler)
	handler = middleware.Instrument(m)(handler)
	handler = middleware.Recover(handler)
	return handler
}
