package doses

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
	ErrNotFound     = errors.New("dose record not found")
)

type Service struct {
	repo  Repository
	hub   *watch.Hub[[]Dose]
	now   func() time.Time
	today func() string
}

func NewService(repo Repository) *Service {
	s := &Service{
		repo: repo,
		hub:  watch.NewHub[[]Dose](),
		now:  time.Now,
	}
	s.today = func() string {
		return s.now().Format("2006-01-02")
	}
	return s
}

// MarkTaken upserts the dose record for a slot: look up the compound key,
// create with takenAt=now when absent, otherwise refresh takenAt in place.
// Re-marking a slot never duplicates the record under sequential calls; the
// lookup-then-write is not guarded against concurrent markers (accepted,
// single writer per user).
func (s *Service) MarkTaken(ctx context.Context, userID, medicationID, scheduledTime, date string) (Dose, error) {
	if strings.TrimSpace(userID) == "" ||
		strings.TrimSpace(medicationID) == "" ||
		strings.TrimSpace(scheduledTime) == "" ||
		strings.TrimSpace(date) == "" {
		return Dose{}, ErrInvalidInput
	}

	nowMs := s.now().UnixMilli()

	existing, err := s.repo.Find(ctx, userID, medicationID, scheduledTime, date)
	switch {
	case err == nil:
		existing.TakenAt = nowMs
		if err := s.repo.Update(ctx, existing); err != nil {
			return Dose{}, err
		}
		s.publish(ctx, userID, date)
		return existing, nil

	case errors.Is(err, ErrNotFound):
		d := Dose{
			ID:            uuid.NewString(),
			UserID:        userID,
			MedicationID:  medicationID,
			ScheduledTime: scheduledTime,
			Date:          date,
			TakenAt:       nowMs,
		}
		if err := s.repo.Create(ctx, d); err != nil {
			return Dose{}, err
		}
		s.publish(ctx, userID, date)
		return d, nil

	default:
		return Dose{}, err
	}
}

func (s *Service) ListByUserDate(ctx context.Context, userID, date string) ([]Dose, error) {
	return s.repo.ListByUserDate(ctx, userID, date)
}

// PurgeByMedication is the second leg of the medication delete cascade.
func (s *Service) PurgeByMedication(ctx context.Context, userID, medicationID string) error {
	if err := s.repo.DeleteByMedication(ctx, medicationID); err != nil {
		return err
	}
	// Watchers only track today's records, so today is the snapshot to refresh.
	s.publish(ctx, userID, s.today())
	return nil
}

// Watch subscribes to full-snapshot updates for one user's records on one
// date. The returned handle unsubscribes.
func (s *Service) Watch(userID, date string, fn func([]Dose)) (unsubscribe func()) {
	return s.hub.Subscribe(watchKey(userID, date), fn)
}

func (s *Service) publish(ctx context.Context, userID, date string) {
	list, err := s.repo.ListByUserDate(ctx, userID, date)
	if err != nil {
		return
	}
	s.hub.Publish(watchKey(userID, date), list)
}

func watchKey(userID, date string) string {
	return userID + "|" + date
}
