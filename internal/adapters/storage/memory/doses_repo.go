package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/alaraguvercin/kolay-hatirla/internal/domain/doses"
)

type dosesRepo struct {
	mu   sync.RWMutex
	byID map[string]doses.Dose
}

func NewDosesRepo() doses.Repository {
	return &dosesRepo{
		byID: make(map[string]doses.Dose),
	}
}

func (r *dosesRepo) Create(ctx context.Context, d doses.Dose) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(d.ID) == "" {
		return errors.New("dose id required")
	}
	if _, exists := r.byID[d.ID]; exists {
		return errors.New("dose already exists")
	}
	r.byID[d.ID] = d
	return nil
}

func (r *dosesRepo) Update(ctx context.Context, d doses.Dose) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(d.ID) == "" {
		return errors.New("dose id required")
	}
	if _, exists := r.byID[d.ID]; !exists {
		return doses.ErrNotFound
	}
	r.byID[d.ID] = d
	return nil
}

// Find scans for the compound slot key. When duplicates exist (the mark-taken
// race can produce them) the first match in stable id order wins, mirroring
// the store's "first document of the query result".
func (r *dosesRepo) Find(ctx context.Context, userID, medicationID, scheduledTime, date string) (doses.Dose, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var (
		found  doses.Dose
		hasOne bool
	)
	for _, d := range r.byID {
		if d.UserID != userID || d.MedicationID != medicationID {
			continue
		}
		if d.ScheduledTime != scheduledTime || d.Date != date {
			continue
		}
		if !hasOne || d.ID < found.ID {
			found = d
			hasOne = true
		}
	}

	if !hasOne {
		return doses.Dose{}, doses.ErrNotFound
	}
	return found, nil
}

func (r *dosesRepo) ListByUserDate(ctx context.Context, userID, date string) ([]doses.Dose, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]doses.Dose, 0)
	for _, d := range r.byID {
		if d.UserID == userID && d.Date == date {
			out = append(out, d)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].ScheduledTime != out[j].ScheduledTime {
			return out[i].ScheduledTime < out[j].ScheduledTime
		}
		return out[i].ID < out[j].ID
	})

	return out, nil
}

func (r *dosesRepo) DeleteByMedication(ctx context.Context, medicationID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, d := range r.byID {
		if d.MedicationID == medicationID {
			delete(r.byID, id)
		}
	}
	return nil
}
