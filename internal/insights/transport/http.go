package transport

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pendergraft/trustscore/internal/insights/domain"
)

// Handler handles HTTP requests for insights.
type Handler struct {
	svc          domain.Service
	maxBodyBytes int64
}

// NewHandler creates a new insights HTTP handler. maxBodyBytes <= 0 leaves
// request bodies unbounded.
func NewHandler(svc domain.Service, maxBodyBytes int64) *Handler {
	return &Handler{svc: svc, maxBodyBytes: maxBodyBytes}
}

// RegisterRoutes registers the insights routes on a chi router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/insights", h.handleInsights)
	r.Get("/chains", h.handleChains)
}

func (h *Handler) handleInsights(w http.ResponseWriter, r *http.Request) {
	body := r.Body
	if h.maxBodyBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	}

	var req InsightsRequest
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			writeError(w, http.StatusRequestEntityTooLarge, "BODY_TOO_LARGE", "Request body too large")
		case errors.Is(err, io.EOF):
			writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Request body is empty")
		default:
			writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON: "+err.Error())
		}
		return
	}
	if req.Transaction == nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "transaction is required")
		return
	}
	if req.ChainID == "" {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "chainId is required")
		return
	}

	resp := h.svc.OnTransactionReview(r.Context(), req.Transaction, req.ChainID)
	writeJSON(w, http.StatusOK, InsightsResponse{Insights: resp.Insights})
}

func (h *Handler) handleChains(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ChainsResponse{Chains: h.svc.Chains(r.Context())})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	})
}
