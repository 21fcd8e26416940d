package rest

import (
	_ "bigbrain/docs"
	"bigbrain/internal/service"
	"bigbrain/internal/transport/rest/handler"
	"bigbrain/internal/transport/rest/middleware"
	"bigbrain/internal/transport/ws"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/swaggo/swag"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService    *service.AuthService
	GameService    *service.GameService
	SessionService *service.SessionService
	PlayerService  *service.PlayerService
	WSHub          *ws.Hub
	Log            zerolog.Logger
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	authHandler := handler.NewAuthHandler(c.AuthService)
	gameHandler := handler.NewGameHandler(c.GameService, c.SessionService)
	sessionHandler := handler.NewSessionHandler(c.SessionService, c.PlayerService)
	playerHandler := handler.NewPlayerHandler(c.PlayerService)

	authMW := middleware.NewAuthMiddleware(c.AuthService)

	r.Use(middleware.RequestLogger(c.Log))
	r.Use(corsMiddleware)

	// Public routes
	r.HandleFunc("/admin/auth/register", authHandler.Register).Methods("POST", "OPTIONS")
	r.HandleFunc("/admin/auth/login", authHandler.Login).Methods("POST", "OPTIONS")

	r.HandleFunc("/play/join/{sessionid}", playerHandler.Join).Methods("POST", "OPTIONS")
	r.HandleFunc("/play/{playerid}/status", playerHandler.Status).Methods("GET", "OPTIONS")
	r.HandleFunc("/play/{playerid}/question", playerHandler.Question).Methods("GET", "OPTIONS")
	r.HandleFunc("/play/{playerid}/answer", playerHandler.Answers).Methods("GET", "OPTIONS")
	r.HandleFunc("/play/{playerid}/answer", playerHandler.SubmitAnswers).Methods("PUT", "OPTIONS")
	r.HandleFunc("/play/{playerid}/results", playerHandler.Results).Methods("GET", "OPTIONS")

	// WebSocket routes (admin token in query param)
	if c.WSHub != nil {
		wsHandler := ws.NewHandler(c.WSHub, c.AuthService, c.SessionService, c.PlayerService)
		r.HandleFunc("/ws/admin/session/{sessionid}", wsHandler.AdminWS).Methods("GET")
		r.HandleFunc("/ws/play/{playerid}", wsHandler.PlayerWS).Methods("GET")
	}

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	r.HandleFunc("/swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
		doc, err := swag.ReadDoc()
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(doc))
	}).Methods("GET")

	// Admin routes (require admin auth)
	adminRoutes := r.PathPrefix("/admin").Subrouter()
	adminRoutes.Use(authMW.RequireAdmin)

	adminRoutes.HandleFunc("/auth/logout", authHandler.Logout).Methods("POST", "OPTIONS")
	adminRoutes.HandleFunc("/games", gameHandler.List).Methods("GET", "OPTIONS")
	adminRoutes.HandleFunc("/games", gameHandler.Replace).Methods("PUT", "OPTIONS")
	adminRoutes.HandleFunc("/game/{gameid}/mutate", gameHandler.Mutate).Methods("POST", "OPTIONS")
	adminRoutes.HandleFunc("/session/{sessionid}/status", sessionHandler.Status).Methods("GET", "OPTIONS")
	adminRoutes.HandleFunc("/session/{sessionid}/results", sessionHandler.Results).Methods("GET", "OPTIONS")
	adminRoutes.HandleFunc("/session/{sessionid}/leaderboard", sessionHandler.Leaderboard).Methods("GET", "OPTIONS")

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		allowedMethods := os.Getenv("CORS_ALLOWED_METHODS")
		if allowedMethods == "" {
			allowedMethods = "GET, POST, PUT, DELETE, OPTIONS"
		}

		allowedHeaders := os.Getenv("CORS_ALLOWED_HEADERS")
		if allowedHeaders == "" {
			allowedHeaders = "Content-Type, Authorization"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", allowedMethods)
		w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
