package medications

import (
	"context"
	"errors"
	"testing"
	"time"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

type testRepo struct {
	byID map[string]Medication
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Medication{}}
}

func (r *testRepo) Create(ctx context.Context, m Medication) error {
	if m.ID == "" {
		return errors.New("repo: id required")
	}
	if _, ok := r.byID[m.ID]; ok {
		return errors.New("repo: already exists")
	}
	r.byID[m.ID] = m
	return nil
}

func (r *testRepo) Update(ctx context.Context, m Medication) error {
	if _, ok := r.byID[m.ID]; !ok {
		return ErrNotFound
	}
	r.byID[m.ID] = m
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Medication, error) {
	m, ok := r.byID[id]
	if !ok {
		return Medication{}, ErrNotFound
	}
	return m, nil
}

func (r *testRepo) ListByUser(ctx context.Context, userID string) ([]Medication, error) {
	out := make([]Medication, 0)
	for _, m := range r.byID {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *testRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

type testPurger struct {
	calls []string
}

func (p *testPurger) PurgeByMedication(ctx context.Context, userID, medicationID string) error {
	p.calls = append(p.calls, medicationID)
	return nil
}

// -------------------------
// Tests
// -------------------------

func TestService_Create_DerivesFrequencyFromValidTimes(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo, nil)

	m, err := svc.Create(context.Background(), "user-1", CreateInput{
		Name:      "Parol",
		Dosage:    "500mg",
		Times:     []string{"08:00", "", "  ", "20:00"},
		StartDate: "2024-01-01",
		IsActive:  true,
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if m.FrequencyPerDay != 2 {
		t.Fatalf("expected frequency 2 (count of valid times), got %d", m.FrequencyPerDay)
	}
	if len(m.Times) != 2 || m.Times[0] != "08:00" || m.Times[1] != "20:00" {
		t.Fatalf("expected filtered times [08:00 20:00], got %#v", m.Times)
	}
}

func TestService_Create_SetsTimestampsAndOwner(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo, nil)

	now := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	m, err := svc.Create(context.Background(), "user-1", CreateInput{
		Name:      "  Parol  ",
		Dosage:    "500mg",
		Times:     []string{"08:00"},
		StartDate: "2024-01-01",
		IsActive:  true,
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if m.UserID != "user-1" {
		t.Fatalf("expected owner user-1, got %s", m.UserID)
	}
	if m.Name != "Parol" {
		t.Fatalf("expected trimmed name, got %q", m.Name)
	}
	if m.CreatedAt != now.UnixMilli() || m.UpdatedAt != now.UnixMilli() {
		t.Fatalf("expected created/updated = now ms")
	}
}

func TestService_Create_ValidationRejectsWithoutPersisting(t *testing.T) {
	cases := []struct {
		name string
		in   CreateInput
	}{
		{"empty name", CreateInput{Name: "  ", Dosage: "500mg", Times: []string{"08:00"}, StartDate: "2024-01-01"}},
		{"empty dosage", CreateInput{Name: "Parol", Dosage: "", Times: []string{"08:00"}, StartDate: "2024-01-01"}},
		{"no times", CreateInput{Name: "Parol", Dosage: "500mg", Times: []string{"", " "}, StartDate: "2024-01-01"}},
		{"bad time format", CreateInput{Name: "Parol", Dosage: "500mg", Times: []string{"8:00"}, StartDate: "2024-01-01"}},
		{"hour out of range", CreateInput{Name: "Parol", Dosage: "500mg", Times: []string{"24:00"}, StartDate: "2024-01-01"}},
		{"bad start date", CreateInput{Name: "Parol", Dosage: "500mg", Times: []string{"08:00"}, StartDate: "15.06.2024"}},
		{"end before start", CreateInput{Name: "Parol", Dosage: "500mg", Times: []string{"08:00"}, StartDate: "2024-06-15", EndDate: "2024-06-01"}},
	}

	for _, c := range cases {
		repo := newTestRepo()
		svc := NewService(repo, nil)

		_, err := svc.Create(context.Background(), "user-1", c.in)

		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("%s: expected ValidationError, got %v", c.name, err)
		}
		if len(repo.byID) != 0 {
			t.Fatalf("%s: expected nothing persisted", c.name)
		}
	}
}

func TestService_Update_PartialKeepsOwnerAndCreatedAt(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo, nil)

	now1 := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)
	now2 := now1.Add(time.Hour)

	svc.now = func() time.Time { return now1 }
	m, err := svc.Create(context.Background(), "user-1", CreateInput{
		Name:      "Parol",
		Dosage:    "500mg",
		Times:     []string{"08:00"},
		StartDate: "2024-01-01",
		IsActive:  true,
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	svc.now = func() time.Time { return now2 }
	dosage := "250mg"
	updated, err := svc.Update(context.Background(), m.ID, "user-1", UpdateInput{Dosage: &dosage})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}

	if updated.Dosage != "250mg" {
		t.Fatalf("expected dosage updated, got %s", updated.Dosage)
	}
	if updated.Name != "Parol" {
		t.Fatalf("expected untouched name, got %s", updated.Name)
	}
	if updated.CreatedAt != now1.UnixMilli() {
		t.Fatalf("expected CreatedAt unchanged")
	}
	if updated.UpdatedAt != now2.UnixMilli() {
		t.Fatalf("expected UpdatedAt refreshed")
	}
	if updated.UserID != "user-1" {
		t.Fatalf("expected owner unchanged")
	}
}

func TestService_Update_OtherUserForbidden(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo, nil)

	m, err := svc.Create(context.Background(), "user-1", CreateInput{
		Name:      "Parol",
		Dosage:    "500mg",
		Times:     []string{"08:00"},
		StartDate: "2024-01-01",
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	name := "Hacked"
	_, err = svc.Update(context.Background(), m.ID, "user-2", UpdateInput{Name: &name})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestService_ToggleActive_FlipsFlagOnly(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo, nil)

	m, err := svc.Create(context.Background(), "user-1", CreateInput{
		Name:      "Parol",
		Dosage:    "500mg",
		Times:     []string{"08:00"},
		StartDate: "2024-01-01",
		IsActive:  true,
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	toggled, err := svc.ToggleActive(context.Background(), m.ID, "user-1")
	if err != nil {
		t.Fatalf("ToggleActive error: %v", err)
	}
	if toggled.IsActive {
		t.Fatalf("expected inactive after toggle")
	}
	if toggled.Name != m.Name || toggled.Dosage != m.Dosage {
		t.Fatalf("expected other fields untouched")
	}

	toggled, err = svc.ToggleActive(context.Background(), m.ID, "user-1")
	if err != nil {
		t.Fatalf("ToggleActive #2 error: %v", err)
	}
	if !toggled.IsActive {
		t.Fatalf("expected active after second toggle")
	}
}

func TestService_Delete_CascadesToDoses(t *testing.T) {
	repo := newTestRepo()
	purger := &testPurger{}
	svc := NewService(repo, purger)

	m, err := svc.Create(context.Background(), "user-1", CreateInput{
		Name:      "Parol",
		Dosage:    "500mg",
		Times:     []string{"08:00"},
		StartDate: "2024-01-01",
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	if err := svc.Delete(context.Background(), m.ID, "user-1"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}

	if _, err := svc.GetByID(context.Background(), m.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected medication gone, got %v", err)
	}
	if len(purger.calls) != 1 || purger.calls[0] != m.ID {
		t.Fatalf("expected dose purge for %s, got %#v", m.ID, purger.calls)
	}
}

func TestService_Watch_PublishesSnapshotOnMutation(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo, nil)

	var snapshots [][]Medication
	unsubscribe := svc.Watch("user-1", func(list []Medication) {
		snapshots = append(snapshots, list)
	})
	defer unsubscribe()

	if _, err := svc.Create(context.Background(), "user-1", CreateInput{
		Name:      "Parol",
		Dosage:    "500mg",
		Times:     []string{"08:00"},
		StartDate: "2024-01-01",
	}); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	if len(snapshots) != 1 || len(snapshots[0]) != 1 {
		t.Fatalf("expected one snapshot with one medication, got %#v", snapshots)
	}

	unsubscribe()
	if _, err := svc.Create(context.Background(), "user-1", CreateInput{
		Name:      "Aspirin",
		Dosage:    "100mg",
		Times:     []string{"09:00"},
		StartDate: "2024-01-01",
	}); err != nil {
		t.Fatalf("Create #2 error: %v", err)
	}
	if len(snapshots) != 1 {
		t.Fatalf("expected no snapshot after unsubscribe, got %d", len(snapshots))
	}
}
