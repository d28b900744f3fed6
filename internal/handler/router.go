package handler

import (
	"net/http"

	"doc-study-server/internal/domain"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// NewRouter creates a new HTTP router with all routes configured. Files under
// staticDir are served at / when it is set.
func NewRouter(studyHandler *StudyHandler, logger domain.Logger, staticDir string) http.Handler {
	router := mux.NewRouter()
	router.Use(RequestLogger(logger))

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "doc-study-server"})
	}).Methods("GET")

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/upload", studyHandler.Upload).Methods("POST")
	api.HandleFunc("/chat", studyHandler.Chat).Methods("POST")
	api.HandleFunc("/analyses", studyHandler.ListAnalyses).Methods("GET")
	api.HandleFunc("/analyses/{id}", studyHandler.GetAnalysis).Methods("GET")

	// Unversioned paths used by the bundled frontend.
	router.HandleFunc("/upload", studyHandler.Upload).Methods("POST")
	router.HandleFunc("/chat", studyHandler.Chat).Methods("POST")

	if staticDir != "" {
		router.PathPrefix("/").Handler(http.FileServer(http.Dir(staticDir))).Methods("GET", "HEAD")
	}

	// Configure CORS
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			requestIDHeader,
		},
		ExposedHeaders: []string{
			requestIDHeader,
		},
		MaxAge: 300, // Maximum value not ignored by any of major browsers
	})

	return c.Handler(router)
}
