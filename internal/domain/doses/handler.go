package doses

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
	msgMarkFailed = "Doza işaretlenirken bir hata oluştu."
	msgListFailed = "Doz kayıtları yüklenirken bir hata oluştu."
)

func RegisterRoutes(r chi.Router, svc *Service, log logger.Logger) {
	r.Route("/doses", func(dr chi.Router) {
		dr.Post("/mark", markDoseHandler(svc, log))
		dr.Get("/", listDosesHandler(svc, log))
		dr.Get("/stream", streamDosesHandler(svc, log))
	})
}

type markDoseRequest struct {
	MedicationID  string `json:"medicationId"`
	ScheduledTime string `json:"scheduledTime"`
	Date          string `json:"date"`
}

func markDoseHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		var req markDoseRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}

		d, err := svc.MarkTaken(r.Context(), claims.UserID, req.MedicationID, req.ScheduledTime, req.Date)
		if err != nil {
			if errors.Is(err, ErrInvalidInput) {
				writeError(w, http.StatusBadRequest, "medicationId, scheduledTime and date are required")
				return
			}
			log.Error("mark dose failed", map[string]any{"err": err.Error()})
			writeError(w, http.StatusInternalServerError, msgMarkFailed)
			return
		}

		writeJSON(w, http.StatusOK, d)
	}
}

func listDosesHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		date := strings.TrimSpace(r.URL.Query().Get("date"))
		if date == "" {
			date = svc.today()
		}

		items, err := svc.ListByUserDate(r.Context(), claims.UserID, date)
		if err != nil {
			log.Error("list doses failed", map[string]any{"err": err.Error()})
			writeError(w, http.StatusInternalServerError, msgListFailed)
			return
		}

		writeJSON(w, http.StatusOK, items)
	}
}

// streamDosesHandler pushes the user's dose records for one date over SSE,
// full snapshot per change, scoped to the connection lifetime.
func streamDosesHandler(svc *Service, log logger.Logger) http.HandlerFunc {
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

		date := strings.TrimSpace(r.URL.Query().Get("date"))
		if date == "" {
			date = svc.today()
		}

		snapshots := make(chan []Dose, 1)
		unsubscribe := svc.Watch(claims.UserID, date, func(snap []Dose) {
			// Latest snapshot wins; never block the publishing goroutine.
			watch.Offer(snapshots, snap)
		})
		defer unsubscribe()

		// Load the initial snapshot before the stream headers commit so a
		// store failure can still answer with a status.
		initial, err := svc.ListByUserDate(r.Context(), claims.UserID, date)
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
