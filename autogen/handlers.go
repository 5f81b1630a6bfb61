package autogen

import (
	"encoding/json"
	"net/http"

	"prensa/logger"
)

// Handler exposes the pipeline as HTTP function endpoints, mirroring the
// serverless entry points: POST with a JSON body, permissive CORS, and an
// OPTIONS preflight that always succeeds.
type Handler struct {
	dispatcher *Dispatcher
	generator  *Generator
	log        *logger.Logger
}

func NewHandler(dispatcher *Dispatcher, generator *Generator, log *logger.Logger) *Handler {
	return &Handler{dispatcher: dispatcher, generator: generator, log: log}
}

func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "authorization, x-client-info, apikey, content-type")
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// Cron handles POST /functions/v1/auto-content-cron. No request body.
func (h *Handler) Cron(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	summary, err := h.dispatcher.Dispatch(r.Context())
	if err != nil {
		h.log.Error("cron dispatch failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error":     err.Error(),
			"processed": 0,
		})
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// GenerateArticle handles POST /functions/v1/generate-article.
func (h *Handler) GenerateArticle(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var in GenerateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"error":   "invalid request body: " + err.Error(),
		})
		return
	}

	post, err := h.generator.Generate(r.Context(), in)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"article": post,
		"message": "Article generated and published successfully",
	})
}
