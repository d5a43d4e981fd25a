package medications

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/alaraguvercin/kolay-hatirla/internal/middleware"
	"github.com/alaraguvercin/kolay-hatirla/internal/platform/logger"
	"github.com/alaraguvercin/kolay-hatirla/internal/watch"
)

const (
	msgSaveFailed   = "İlaç kaydedilirken bir hata oluştu."
	msgDeleteFailed = "İlaç silinirken bir hata oluştu."
	msgToggleFailed = "İlaç durumu güncellenirken bir hata oluştu."
	msgListFailed   = "İlaçlar yüklenirken bir hata oluştu."
)

func RegisterRoutes(r chi.Router, svc *Service, log logger.Logger) {
	r.Route("/medications", func(mr chi.Router) {
		mr.Post("/", createMedicationHandler(svc, log))
		mr.Get("/", listMedicationsHandler(svc, log))
		mr.Get("/stream", streamMedicationsHandler(svc, log))

		mr.Patch("/{medicationID}", updateMedicationHandler(svc, log))
		mr.Delete("/{medicationID}", deleteMedicationHandler(svc, log))
		mr.Post("/{medicationID}/toggle", toggleMedicationHandler(svc, log))
	})
}

type medicationRequest struct {
	Name   string `json:"name"`
	Dosage string `json:"dosage"`

	// FrequencyPerDay is accepted but never trusted: the persisted value is
	// always the count of valid times.
	FrequencyPerDay int      `json:"frequencyPerDay"`
	Times           []string `json:"times"`

	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Notes     string `json:"notes"`
	IsActive  *bool  `json:"isActive"`
}

func createMedicationHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		var req medicationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}

		active := true
		if req.IsActive != nil {
			active = *req.IsActive
		}

		m, err := svc.Create(r.Context(), claims.UserID, CreateInput{
			Name:      req.Name,
			Dosage:    req.Dosage,
			Times:     req.Times,
			StartDate: req.StartDate,
			EndDate:   req.EndDate,
			Notes:     req.Notes,
			IsActive:  active,
		})
		if err != nil {
			respondServiceError(w, log, err, msgSaveFailed)
			return
		}

		writeJSON(w, http.StatusCreated, m)
	}
}

func listMedicationsHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		items, err := svc.ListByUser(r.Context(), claims.UserID)
		if err != nil {
			log.Error("list medications failed", map[string]any{"err": err.Error()})
			writeError(w, http.StatusInternalServerError, msgListFailed)
			return
		}

		writeJSON(w, http.StatusOK, items)
	}
}

func updateMedicationHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		var req struct {
			Name      *string   `json:"name"`
			Dosage    *string   `json:"dosage"`
			Times     *[]string `json:"times"`
			StartDate *string   `json:"startDate"`
			EndDate   *string   `json:"endDate"`
			Notes     *string   `json:"notes"`
			IsActive  *bool     `json:"isActive"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}

		m, err := svc.Update(r.Context(), chi.URLParam(r, "medicationID"), claims.UserID, UpdateInput{
			Name:      req.Name,
			Dosage:    req.Dosage,
			Times:     req.Times,
			StartDate: req.StartDate,
			EndDate:   req.EndDate,
			Notes:     req.Notes,
			IsActive:  req.IsActive,
		})
		if err != nil {
			respondServiceError(w, log, err, msgSaveFailed)
			return
		}

		writeJSON(w, http.StatusOK, m)
	}
}

func deleteMedicationHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		if err := svc.Delete(r.Context(), chi.URLParam(r, "medicationID"), claims.UserID); err != nil {
			respondServiceError(w, log, err, msgDeleteFailed)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func toggleMedicationHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		m, err := svc.ToggleActive(r.Context(), chi.URLParam(r, "medicationID"), claims.UserID)
		if err != nil {
			respondServiceError(w, log, err, msgToggleFailed)
			return
		}

		writeJSON(w, http.StatusOK, m)
	}
}

// streamMedicationsHandler pushes the full medication list over SSE: one
// snapshot on connect, then one per change. The subscription lives for the
// connection and is released on disconnect.
func streamMedicationsHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		fl, ok := w.(http.Flusher)
		if !ok {
			writeError(w, http.StatusInternalServerError, "streaming unsupported")
			return
		}

		snapshots := make(chan []Medication, 1)
		unsubscribe := svc.Watch(claims.UserID, func(snap []Medication) {
			// Latest snapshot wins; never block the publishing goroutine.
			watch.Offer(snapshots, snap)
		})
		defer unsubscribe()

		// Load the initial snapshot before the stream headers commit so a
		// store failure can still answer with a status.
		initial, err := svc.ListByUser(r.Context(), claims.UserID)
		if err != nil {
			log.Error("stream initial snapshot failed", map[string]any{"err": err.Error()})
			writeError(w, http.StatusInternalServerError, msgListFailed)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")

		writeSSE(w, fl, initial)

		for {
			select {
			case <-r.Context().Done():
				return
			case snap := <-snapshots:
				writeSSE(w, fl, snap)
			}
		}
	}
}

func writeSSE(w http.ResponseWriter, fl http.Flusher, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	_, _ = w.Write([]byte("event: snapshot\ndata: " + string(b) + "\n\n"))
	fl.Flush()
}

func respondServiceError(w http.ResponseWriter, log logger.Logger, err error, fallback string) {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, ve.Message)
	case errors.Is(err, ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "invalid input")
	case errors.Is(err, ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "medication not found")
	default:
		log.Error("medication store operation failed", map[string]any{"err": err.Error()})
		writeError(w, http.StatusInternalServerError, fallback)
	}
}

// writeJSON is intentionally duplicated across module handlers instead of
// living in a shared helper package; extract it once a third copy shows up.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
