package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealhound/dealhound/models"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "history.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, path
}

func runReport(t *testing.T, at time.Time, best *models.Offer, committed bool) *models.RunReport {
	t.Helper()
	criteria, err := models.NewCriteria(models.Criteria{Items: []string{"pizza"}})
	require.NoError(t, err)

	r := &models.RunReport{
		Criteria:           criteria,
		PlatformsProcessed: []string{"Swiggy", "Zomato"},
		BestDeal:           best,
		ExecutionSeconds:   1.62,
		Timestamp:          at,
	}
	if best != nil {
		r.TotalOptions = 1
		r.Commit = &models.CommitOutcome{Committed: committed, Attempts: 2}
	}
	return r
}

// TestStoreSaveAndRecent checks the full round trip: rows come back newest
// first with best-deal fields intact, and a run without results keeps its
// price columns null.
func TestStoreSaveAndRecent(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()

	older := runReport(t, time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC), &models.Offer{
		Platform:    "Swiggy",
		Restaurant:  "Pizza Palace",
		ItemName:    "Margherita Pizza",
		FinalPrice:  models.Float(250),
		DiscountPct: models.Float(16.67),
	}, true)
	newer := runReport(t, time.Date(2026, 8, 21, 12, 0, 0, 0, time.UTC), nil, false)

	require.NoError(t, s.Save(ctx, older))
	require.NoError(t, s.Save(ctx, newer))

	runs, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	assert.True(t, runs[0].RanAt.After(runs[1].RanAt))
	assert.Nil(t, runs[0].BestPrice)
	assert.False(t, runs[0].Committed)

	got := runs[1]
	assert.Equal(t, []string{"pizza"}, got.Items)
	assert.Equal(t, []string{"Swiggy", "Zomato"}, got.Platforms)
	assert.Equal(t, 1, got.TotalOptions)
	assert.Equal(t, "Swiggy", got.BestPlatform)
	assert.Equal(t, "Margherita Pizza", got.BestItem)
	require.NotNil(t, got.BestPrice)
	assert.Equal(t, 250.0, *got.BestPrice)
	require.NotNil(t, got.DiscountPct)
	assert.Equal(t, 16.67, *got.DiscountPct)
	assert.True(t, got.Committed)
	assert.Equal(t, 2, got.CommitAttempts)
	assert.Equal(t, 1.62, got.ExecutionSeconds)
}

// TestStoreRecentLimit checks that the row cap applies after ordering.
func TestStoreRecentLimit(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()

	for day := 1; day <= 3; day++ {
		at := time.Date(2026, 8, day, 12, 0, 0, 0, time.UTC)
		require.NoError(t, s.Save(ctx, runReport(t, at, nil, false)))
	}

	runs, err := s.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, 3, runs[0].RanAt.Day())
	assert.Equal(t, 2, runs[1].RanAt.Day())
}

// TestStoreItemTrend checks per-item lookup: case-insensitive on the item
// name, excluding runs that never priced a best deal.
func TestStoreItemTrend(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()

	priced := runReport(t, time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC), &models.Offer{
		Platform:   "Swiggy",
		Restaurant: "Pizza Palace",
		ItemName:   "Margherita Pizza",
		FinalPrice: models.Float(250),
	}, true)
	unpriced := runReport(t, time.Date(2026, 8, 21, 12, 0, 0, 0, time.UTC), &models.Offer{
		Platform:   "Zomato",
		Restaurant: "Crust Co",
		ItemName:   "Margherita Pizza",
	}, false)
	other := runReport(t, time.Date(2026, 8, 22, 12, 0, 0, 0, time.UTC), &models.Offer{
		Platform:   "Swiggy",
		Restaurant: "Biryani Bowl",
		ItemName:   "Chicken Biryani",
		FinalPrice: models.Float(310),
	}, true)

	require.NoError(t, s.Save(ctx, priced))
	require.NoError(t, s.Save(ctx, unpriced))
	require.NoError(t, s.Save(ctx, other))

	runs, err := s.ItemTrend(ctx, "margherita pizza", 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "Pizza Palace", runs[0].BestRestaurant)
	assert.Equal(t, 250.0, *runs[0].BestPrice)
}

// TestStoreReopen checks that Open is idempotent over an existing database.
func TestStoreReopen(t *testing.T) {
	s, path := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, runReport(t, time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC), nil, false)))
	require.NoError(t, s.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	runs, err := reopened.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}
