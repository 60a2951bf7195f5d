package stock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockledger/internal/core/id"
)

func TestSpecMapEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b SpecMap
		want bool
	}{
		{"both empty", SpecMap{}, SpecMap{}, true},
		{"nil equals empty", nil, SpecMap{}, true},
		{"same pairs", SpecMap{"length": "2m", "color": "red"}, SpecMap{"color": "red", "length": "2m"}, true},
		{"different value", SpecMap{"length": "2m"}, SpecMap{"length": "5m"}, false},
		{"missing key", SpecMap{"length": "2m"}, SpecMap{"color": "red"}, false},
		{"subset", SpecMap{"length": "2m"}, SpecMap{"length": "2m", "color": "red"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Equal(tt.b))
		})
	}
}

func TestSpecMapValueNilEncodesEmptyObject(t *testing.T) {
	var m SpecMap
	v, err := m.Value()
	require.NoError(t, err)
	assert.Equal(t, "{}", v)
}

func TestSpecMapScan(t *testing.T) {
	var m SpecMap
	require.NoError(t, m.Scan([]byte(`{"size":"27"}`)))
	assert.Equal(t, SpecMap{"size": "27"}, m)

	require.NoError(t, m.Scan(nil))
	assert.Nil(t, m)

	assert.Error(t, m.Scan(42))
}

func TestMatch(t *testing.T) {
	wh, cat := id.New(), id.New()
	items := []Item{
		{ID: id.New(), WarehouseID: wh, CategoryID: cat, Specs: SpecMap{"length": "2m"}, Quantity: 3},
		{ID: id.New(), WarehouseID: wh, CategoryID: cat, Specs: SpecMap{"length": "5m"}, Quantity: 7},
	}

	got, ok := Match(items, SpecMap{"length": "5m"})
	require.True(t, ok)
	assert.Equal(t, items[1].ID, got.ID)

	_, ok = Match(items, SpecMap{"length": "10m"})
	assert.False(t, ok)
}

func TestMatchDuplicatePositionsPicksFirst(t *testing.T) {
	// Duplicate positions (same specs) are possible in historical data; the
	// caller supplies id-ordered rows and the first one wins.
	wh, cat := id.New(), id.New()
	items := []Item{
		{ID: id.New(), WarehouseID: wh, CategoryID: cat, Specs: SpecMap{"length": "2m"}, Quantity: 3},
		{ID: id.New(), WarehouseID: wh, CategoryID: cat, Specs: SpecMap{"length": "2m"}, Quantity: 9},
	}

	got, ok := Match(items, SpecMap{"length": "2m"})
	require.True(t, ok)
	assert.Equal(t, items[0].ID, got.ID)
	assert.Equal(t, int64(3), got.Quantity)
}
