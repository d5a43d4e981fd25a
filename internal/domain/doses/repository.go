package doses

import "context"

type Repository interface {
	Create(ctx context.Context, d Dose) error
	Update(ctx context.Context, d Dose) error

	// Find matches the compound slot key. Implementations return an error
	// wrapping ErrNotFound when no record matches.
	Find(ctx context.Context, userID, medicationID, scheduledTime, date string) (Dose, error)

	ListByUserDate(ctx context.Context, userID, date string) ([]Dose, error)
	DeleteByMedication(ctx context.Context, medicationID string) error
}
