package medications

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alaraguvercin/kolay-hatirla/internal/watch"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("medication not found")
	ErrForbidden    = errors.New("forbidden")
)

// DosePurger removes the dose records that reference a medication.
// Small interface to avoid a medications <-> doses import cycle.
type DosePurger interface {
	PurgeByMedication(ctx context.Context, userID, medicationID string) error
}

type Service struct {
	repo   Repository
	purger DosePurger
	hub    *watch.Hub[[]Medication]
	now    func() time.Time
}

func NewService(repo Repository, purger DosePurger) *Service {
	return &Service{
		repo:   repo,
		purger: purger,
		hub:    watch.NewHub[[]Medication](),
		now:    time.Now,
	}
}

type CreateInput struct {
	Name      string
	Dosage    string
	Times     []string
	StartDate string
	EndDate   string
	Notes     string
	IsActive  bool
}

func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (Medication, error) {
	if strings.TrimSpace(userID) == "" {
		return Medication{}, ErrInvalidInput
	}

	times := validTimes(in.Times)
	if err := validate(in.Name, in.Dosage, times, in.StartDate, in.EndDate); err != nil {
		return Medication{}, err
	}

	nowMs := s.now().UnixMilli()
	m := Medication{
		ID:              uuid.NewString(),
		UserID:          userID,
		Name:            strings.TrimSpace(in.Name),
		Dosage:          strings.TrimSpace(in.Dosage),
		FrequencyPerDay: len(times),
		Times:           times,
		StartDate:       in.StartDate,
		EndDate:         in.EndDate,
		Notes:           strings.TrimSpace(in.Notes),
		IsActive:        in.IsActive,
		CreatedAt:       nowMs,
		UpdatedAt:       nowMs,
	}

	if err := s.repo.Create(ctx, m); err != nil {
		return Medication{}, err
	}

	s.publish(ctx, userID)
	return m, nil
}

// UpdateInput is a real PATCH: nil = leave the field alone.
type UpdateInput struct {
	Name      *string
	Dosage    *string
	Times     *[]string
	StartDate *string
	EndDate   *string // pointer to "" clears the end date
	Notes     *string
	IsActive  *bool
}

func (s *Service) Update(ctx context.Context, id, userID string, in UpdateInput) (Medication, error) {
	current, err := s.ownedByUser(ctx, id, userID)
	if err != nil {
		return Medication{}, err
	}

	if in.Name != nil {
		current.Name = strings.TrimSpace(*in.Name)
	}
	if in.Dosage != nil {
		current.Dosage = strings.TrimSpace(*in.Dosage)
	}
	if in.Times != nil {
		current.Times = validTimes(*in.Times)
	}
	if in.StartDate != nil {
		current.StartDate = *in.StartDate
	}
	if in.EndDate != nil {
		current.EndDate = *in.EndDate
	}
	if in.Notes != nil {
		current.Notes = strings.TrimSpace(*in.Notes)
	}
	if in.IsActive != nil {
		current.IsActive = *in.IsActive
	}

	if err := validate(current.Name, current.Dosage, current.Times, current.StartDate, current.EndDate); err != nil {
		return Medication{}, err
	}
	current.FrequencyPerDay = len(current.Times)
	current.UpdatedAt = s.now().UnixMilli()

	if err := s.repo.Update(ctx, current); err != nil {
		return Medication{}, err
	}

	s.publish(ctx, userID)
	return current, nil
}

// ToggleActive flips the active flag only.
func (s *Service) ToggleActive(ctx context.Context, id, userID string) (Medication, error) {
	current, err := s.ownedByUser(ctx, id, userID)
	if err != nil {
		return Medication{}, err
	}

	active := !current.IsActive
	return s.Update(ctx, id, userID, UpdateInput{IsActive: &active})
}

// Delete removes the medication, then every dose record referencing it.
// Two independent store operations; an interruption in between leaves
// orphaned dose records (accepted, see the store's access model).
func (s *Service) Delete(ctx context.Context, id, userID string) error {
	if _, err := s.ownedByUser(ctx, id, userID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, userID)

	if s.purger != nil {
		if err := s.purger.PurgeByMedication(ctx, userID, id); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Medication, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Medication{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]Medication, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Watch subscribes to full-snapshot updates of the user's medication list.
// The returned handle unsubscribes; callers own its lifetime.
func (s *Service) Watch(userID string, fn func([]Medication)) (unsubscribe func()) {
	return s.hub.Subscribe(userID, fn)
}

func (s *Service) ownedByUser(ctx context.Context, id, userID string) (Medication, error) {
	current, err := s.GetByID(ctx, id)
	if err != nil {
		return Medication{}, err
	}
	if current.UserID != userID {
		return Medication{}, ErrForbidden
	}
	return current, nil
}

// publish pushes the user's current list to watchers. Best effort: a failed
// re-read drops the notification, the next mutation re-publishes.
func (s *Service) publish(ctx context.Context, userID string) {
	list, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return
	}
	s.hub.Publish(userID, list)
}
