package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildTextQuery(t *testing.T) {
	t.Run("heaviest terms come first", func(t *testing.T) {
		query := buildTextQuery(map[string]float64{
			"бумага":  4.0,
			"офисная": 3.7,
			"белая":   2.5,
		})
		assert.Equal(t, "бумага офисная белая", query)
	})

	t.Run("ties break alphabetically for determinism", func(t *testing.T) {
		query := buildTextQuery(map[string]float64{
			"ручка":  2.0,
			"papier": 2.0,
			"блок":   2.0,
		})
		assert.Equal(t, "papier блок ручка", query)
	})

	t.Run("empty terms yield empty query", func(t *testing.T) {
		assert.Empty(t, buildTextQuery(nil))
	})
}

func TestMongoStore_Degraded(t *testing.T) {
	// A store without a connection returns empty candidate sets instead of
	// failing requests.
	store := &MongoStore{}
	ctx := context.Background()

	t.Run("prefix search returns nothing", func(t *testing.T) {
		products, err := store.FindByPrefix(ctx, "10.11", 50)
		require.NoError(t, err)
		assert.Empty(t, products)
	})

	t.Run("enhanced search returns nothing", func(t *testing.T) {
		products, err := store.FindEnhanced(ctx, "10.11", map[string]float64{"бумага": 4.0}, 50)
		require.NoError(t, err)
		assert.Empty(t, products)
	})
}
