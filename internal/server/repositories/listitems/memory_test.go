package listitems

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/dmitrijs2005/bookshelf/internal/common"
	"github.com/dmitrijs2005/bookshelf/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()

	a, err := r.Create(ctx, &models.ListItem{OwnerID: "u1", BookID: "b1"})
	require.NoError(t, err)
	require.NotEmpty(t, a.ID)
	_, err = r.Create(ctx, &models.ListItem{OwnerID: "u1", BookID: "b2"})
	require.NoError(t, err)
	_, err = r.Create(ctx, &models.ListItem{OwnerID: "u2", BookID: "b1"})
	require.NoError(t, err)

	_, err = r.Create(ctx, &models.ListItem{OwnerID: "u1", BookID: "b1"})
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)

	mine, err := r.Query(ctx, Filter{OwnerID: "u1"})
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "b1", mine[0].BookID)
	assert.Equal(t, "b2", mine[1].BookID)

	pair, err := r.Query(ctx, Filter{OwnerID: "u2", BookID: "b1"})
	require.NoError(t, err)
	assert.Len(t, pair, 1)

	notes := "great"
	updated, err := r.Update(ctx, a.ID, models.ListItemPatch{Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, "great", updated.Notes)

	got, err := r.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "great", got.Notes)

	require.NoError(t, r.Delete(ctx, a.ID))
	_, err = r.GetByID(ctx, a.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)
	assert.ErrorIs(t, r.Delete(ctx, a.ID), common.ErrorNotFound)

	_, err = r.Update(ctx, a.ID, models.ListItemPatch{})
	assert.ErrorIs(t, err, common.ErrorNotFound)

	// the pair is free again once the item is gone
	_, err = r.Create(ctx, &models.ListItem{OwnerID: "u1", BookID: "b1"})
	assert.NoError(t, err)
}

func TestMemoryRepository_QueryEmpty(t *testing.T) {
	got, err := NewMemoryRepository().Query(context.Background(), Filter{OwnerID: "nobody"})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestMemoryRepository_ConcurrentSamePair(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()

	var ok atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := r.Create(ctx, &models.ListItem{OwnerID: "u1", BookID: "b1"}); err == nil {
				ok.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), ok.Load())
}
