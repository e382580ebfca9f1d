package notes

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeWithTips(t *testing.T) {
	assert.Equal(t, DefaultTips, MergeWithTips(nil, DashboardLimit))

	saved := []Note{
		{Text: "Hips back on the squat."},
		{Text: "Consistency > intensity."},
		{Text: "Hips back on the squat."},
		{Text: ""},
	}
	merged := MergeWithTips(saved, DashboardLimit)
	require.Len(t, merged, 6)
	assert.Equal(t, "Hips back on the squat.", merged[0])
	assert.Equal(t, "Consistency > intensity.", merged[1])
	assert.Equal(t, "Today: clean technique.", merged[2])

	var many []Note
	for i := 0; i < 12; i++ {
		many = append(many, Note{Text: strings.Repeat("x", i+1)})
	}
	merged = MergeWithTips(many, DashboardLimit)
	assert.Len(t, merged, DashboardLimit)
	assert.Equal(t, "x", merged[0])
}

func TestBox_ForUser(t *testing.T) {
	ctx := context.Background()
	repo := NewTestRepo()
	box := NewBox(repo)

	_, err := repo.Add(ctx, &Note{UserID: 1, Text: "first", CreatedAt: time.Now()})
	require.NoError(t, err)
	_, err = repo.Add(ctx, &Note{UserID: 1, Text: " second ", CreatedAt: time.Now()})
	require.NoError(t, err)
	_, err = repo.Add(ctx, &Note{UserID: 2, Text: "other user", CreatedAt: time.Now()})
	require.NoError(t, err)

	texts, err := box.ForUser(ctx, 1)
	require.NoError(t, err)
	require.Len(t, texts, 7)
	assert.Equal(t, []string{"second", "first"}, texts[:2])

	repo.Err = errors.New("db down")
	_, err = box.ForUser(ctx, 1)
	assert.Error(t, err)
}

func TestTestRepo_Delete(t *testing.T) {
	ctx := context.Background()
	repo := NewTestRepo()

	n, err := repo.Add(ctx, &Note{UserID: 1, Text: "note"})
	require.NoError(t, err)

	_, err = repo.Add(ctx, &Note{UserID: 1, Text: "   "})
	assert.ErrorIs(t, err, ErrEmptyNote)

	assert.ErrorIs(t, repo.Delete(ctx, 2, n.ID), ErrNoteNotFound)
	require.NoError(t, repo.Delete(ctx, 1, n.ID))
	assert.ErrorIs(t, repo.Delete(ctx, 1, n.ID), ErrNoteNotFound)
}
