package dashboard

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/alaraguvercin/kolay-hatirla/internal/domain/doses"
	"github.com/alaraguvercin/kolay-hatirla/internal/domain/medications"
	"github.com/alaraguvercin/kolay-hatirla/internal/middleware"
	"github.com/alaraguvercin/kolay-hatirla/internal/platform/logger"
)

const msgLoadFailed = "Panel verileri yüklenirken bir hata oluştu."

type Deps struct {
	Medications *medications.Service
	Doses       *doses.Service
	Log         logger.Logger

	// Now is overridable in tests; nil means time.Now.
	Now func() time.Time
}

func RegisterRoutes(r chi.Router, deps Deps) {
	if deps.Now == nil {
		deps.Now = time.Now
	}

	r.Route("/dashboard", func(dr chi.Router) {
		dr.Get("/summary", summaryHandler(deps))
		dr.Get("/upcoming", upcomingHandler(deps))
	})
}

func summaryHandler(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		now := deps.Now()
		today := now.Format("2006-01-02")

		meds, todayDoses, err := load(r, deps, claims.UserID, today)
		if err != nil {
			deps.Log.Error("dashboard load failed", map[string]any{"err": err.Error()})
			writeError(w, http.StatusInternalServerError, msgLoadFailed)
			return
		}

		writeJSON(w, http.StatusOK, BuildSummary(meds, todayDoses, today))
	}
}

func upcomingHandler(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		now := deps.Now()
		today := now.Format("2006-01-02")

		meds, todayDoses, err := load(r, deps, claims.UserID, today)
		if err != nil {
			deps.Log.Error("dashboard load failed", map[string]any{"err": err.Error()})
			writeError(w, http.StatusInternalServerError, msgLoadFailed)
			return
		}

		writeJSON(w, http.StatusOK, UpcomingSlots(meds, todayDoses, today, now, DefaultHorizon))
	}
}

func load(r *http.Request, deps Deps, userID, today string) ([]medications.Medication, []doses.Dose, error) {
	meds, err := deps.Medications.ListByUser(r.Context(), userID)
	if err != nil {
		return nil, nil, err
	}
	todayDoses, err := deps.Doses.ListByUserDate(r.Context(), userID, today)
	if err != nil {
		return nil, nil, err
	}
	return meds, todayDoses, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
