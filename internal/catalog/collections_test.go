package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reviere_back_end/internal/models"
	"reviere_back_end/internal/store/memory"
)

func TestCollections(t *testing.T) {
	ctx := context.Background()
	products := memory.NewProducts()
	require.NoError(t, products.Create(ctx, &models.Product{ID: 1, Name: "Cuaderno"}))
	require.NoError(t, products.Create(ctx, &models.Product{ID: 2, Name: "Lápiz"}))
	svc := NewCollections(memory.NewCollections(), products, memory.NewCounter())

	name := "Regreso a clases"
	v, err := svc.Create(ctx, CollectionRequest{Name: &name, ProductIDs: []int64{1, 2, 1, 99}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), v.ID)
	assert.Equal(t, []models.CollectionProduct{{ID: 1, Name: "Cuaderno"}, {ID: 2, Name: "Lápiz"}}, v.Products)

	require.NoError(t, products.Delete(ctx, 2))
	got, err := svc.Get(ctx, v.ID)
	require.NoError(t, err)
	assert.Len(t, got.Products, 1)

	updated, err := svc.Update(ctx, v.ID, CollectionRequest{ProductIDs: []int64{}})
	require.NoError(t, err)
	assert.Empty(t, updated.Products)
	assert.Equal(t, name, updated.Name)

	empty := " "
	_, err = svc.Create(ctx, CollectionRequest{Name: &empty})
	assert.ErrorIs(t, err, ErrNameRequired)

	require.NoError(t, svc.Delete(ctx, v.ID))
	_, err = svc.Get(ctx, v.ID)
	assert.ErrorIs(t, err, ErrCollectionNotFound)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}
