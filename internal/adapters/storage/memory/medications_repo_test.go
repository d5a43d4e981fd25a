package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alaraguvercin/kolay-hatirla/internal/domain/medications"
)

func med(id, userID string, createdAt int64) medications.Medication {
	return medications.Medication{
		ID:        id,
		UserID:    userID,
		Name:      "Parol",
		Dosage:    "500mg",
		Times:     []string{"08:00"},
		StartDate: "2024-01-01",
		IsActive:  true,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func TestMedicationsRepo_CreateAndGet(t *testing.T) {
	repo := NewMedicationsRepo()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, med("m1", "u1", 100)))

	got, err := repo.GetByID(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, "Parol", got.Name)
}

func TestMedicationsRepo_CreateRejectsDuplicateAndEmptyID(t *testing.T) {
	repo := NewMedicationsRepo()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, med("m1", "u1", 100)))
	assert.Error(t, repo.Create(ctx, med("m1", "u1", 100)))
	assert.Error(t, repo.Create(ctx, med("  ", "u1", 100)))
}

func TestMedicationsRepo_GetMissingReturnsNotFound(t *testing.T) {
	repo := NewMedicationsRepo()

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, medications.ErrNotFound)
}

func TestMedicationsRepo_UpdateMissingReturnsNotFound(t *testing.T) {
	repo := NewMedicationsRepo()

	err := repo.Update(context.Background(), med("missing", "u1", 100))
	assert.ErrorIs(t, err, medications.ErrNotFound)
}

func TestMedicationsRepo_ListByUser_FiltersAndOrdersByCreation(t *testing.T) {
	repo := NewMedicationsRepo()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, med("m3", "u1", 300)))
	require.NoError(t, repo.Create(ctx, med("m1", "u1", 100)))
	require.NoError(t, repo.Create(ctx, med("m2", "u2", 200)))
	// same creation instant, id breaks the tie
	require.NoError(t, repo.Create(ctx, med("m5", "u1", 300)))

	list, err := repo.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "m1", list[0].ID)
	assert.Equal(t, "m3", list[1].ID)
	assert.Equal(t, "m5", list[2].ID)

	empty, err := repo.ListByUser(ctx, "u3")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestMedicationsRepo_Delete(t *testing.T) {
	repo := NewMedicationsRepo()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, med("m1", "u1", 100)))
	require.NoError(t, repo.Delete(ctx, "m1"))

	_, err := repo.GetByID(ctx, "m1")
	assert.ErrorIs(t, err, medications.ErrNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, "m1"), medications.ErrNotFound)
}
