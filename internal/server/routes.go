package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"learnset/internal/handlers"
	"learnset/internal/middlewares"
)

func (s *Server) RegisterRoutes() http.Handler {
	r := mux.NewRouter()

	r.Use(middlewares.CorsMiddleware)
	r.Use(middlewares.RateLimit)
	r.Use(middlewares.PrometheusMiddleware)

	ch := handlers.NewCommonHandler(s.db)
	r.HandleFunc("/", ch.HelloWorldHandler)
	r.HandleFunc("/health", ch.HealthHandler)
	r.Handle("/metrics", promhttp.Handler())

	s.registerAuthRoutes(r)
	s.registerNoteRoutes(r)
	s.registerChatRoutes(r)

	return r
}

func (s *Server) registerAuthRoutes(r *mux.Router) {
	ah := handlers.NewAuthHandler(s.authService, s.oauthService)

	r.HandleFunc("/api/auth/send-otp", ah.SendOTP).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/auth/register", ah.Register).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/auth/send-reset-email", ah.SendResetEmail).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/auth/reset-password", ah.ResetPassword).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/auth/login", ah.Login).Methods("POST", "OPTIONS")

	r.HandleFunc("/api/auth/success", ah.AuthSuccess).Methods("GET", "OPTIONS")
	r.HandleFunc("/api/auth/error", ah.AuthError).Methods("GET", "OPTIONS")
	r.HandleFunc("/api/auth/{provider}", ah.ProviderAuth).Methods("GET", "OPTIONS")
	r.HandleFunc("/api/auth/{provider}/callback", ah.ProviderCallback).Methods("GET", "OPTIONS")
}

func (s *Server) registerNoteRoutes(r *mux.Router) {
	nh := handlers.NewNoteHandler(s.noteService)

	r.HandleFunc("/api/notes", nh.ListApproved).Methods("GET", "OPTIONS")
	r.Handle("/api/notes", middlewares.AuthMiddleware(http.HandlerFunc(nh.Upload))).Methods("POST", "OPTIONS")

	admin := func(h http.HandlerFunc) http.Handler {
		return middlewares.AuthMiddleware(middlewares.AdminMiddleware(h))
	}
	r.Handle("/api/admin/notes", admin(nh.ListAll)).Methods("GET", "OPTIONS")
	r.Handle("/api/admin/notes/{id}/approve", admin(nh.Approve)).Methods("POST", "OPTIONS")
	r.Handle("/api/admin/notes/{id}", admin(nh.Reject)).Methods("DELETE", "OPTIONS")
}

func (s *Server) registerChatRoutes(r *mux.Router) {
	ch := handlers.NewChatHandler(s.chatService)
	r.HandleFunc("/api/chat", ch.Ask).Methods("POST", "OPTIONS")
}
