package doses

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/alaraguvercin/kolay-hatirla/internal/middleware"
	"github.com/alaraguvercin/kolay-hatirla/internal/platform/logger"
)

// failingRepo errors on every read so handler error paths can be exercised.
type failingRepo struct{}

func (failingRepo) Create(context.Context, Dose) error { return errors.New("store down") }
func (failingRepo) Update(context.Context, Dose) error { return errors.New("store down") }
func (failingRepo) Find(context.Context, string, string, string, string) (Dose, error) {
	return Dose{}, errors.New("store down")
}
func (failingRepo) ListByUserDate(context.Context, string, string) ([]Dose, error) {
	return nil, errors.New("store down")
}
func (failingRepo) DeleteByMedication(context.Context, string) error {
	return errors.New("store down")
}

func newFailingServer(t *testing.T) *httptest.Server {
	t.Helper()

	r := chi.NewRouter()
	r.Use(middleware.AuthContext(nil))
	RegisterRoutes(r, NewService(failingRepo{}), logger.New(logger.Options{App: "test"}))

	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	return ts
}

func errorBody(t *testing.T, res *http.Response) string {
	t.Helper()

	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body.Error
}

func TestListDosesHandler_StoreFailureUsesListMessage(t *testing.T) {
	ts := newFailingServer(t)

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/doses?date=2024-06-15", nil)
	req.Header.Set("X-Debug-User-ID", "user-1")

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", res.StatusCode)
	}
	if got := errorBody(t, res); got != msgListFailed {
		t.Fatalf("expected list message %q, got %q", msgListFailed, got)
	}
}

func TestStreamDosesHandler_InitialSnapshotFailureAnswers500(t *testing.T) {
	ts := newFailingServer(t)

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/doses/stream?date=2024-06-15", nil)
	req.Header.Set("X-Debug-User-ID", "user-1")

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500 before the stream commits, got %d", res.StatusCode)
	}
	if ct := res.Header.Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected json error response, got %q", ct)
	}
	if got := errorBody(t, res); got != msgListFailed {
		t.Fatalf("expected list message %q, got %q", msgListFailed, got)
	}
}
