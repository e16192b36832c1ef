package cart

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chair() Entry {
	return Entry{ID: "p1", Name: "Oak Chair", Price: NewPrice(decimal.RequireFromString("180.25")), Images: []string{"a.jpg"}}
}

func table() Entry {
	return Entry{ID: "p2", Name: "Pine Table", Price: NewPrice(decimal.NewFromInt(320))}
}

func TestCart_AddMergesByID(t *testing.T) {
	c, err := Load(NewMemoryStorage())
	require.NoError(t, err)

	require.NoError(t, c.Add(chair(), 1))
	require.NoError(t, c.Add(chair(), 1))

	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, 2, c.Count())
	assert.True(t, decimal.RequireFromString("360.50").Equal(c.Total()))

	assert.ErrorIs(t, c.Add(table(), 0), ErrInvalidQuantity)
}

func TestCart_UpdateQuantity(t *testing.T) {
	c, err := Load(NewMemoryStorage())
	require.NoError(t, err)
	require.NoError(t, c.Add(chair(), 1))
	require.NoError(t, c.Add(table(), 2))

	require.NoError(t, c.UpdateQuantity("p1", 4))
	assert.Equal(t, 6, c.Count())

	// Zero removes the entry and the total no longer includes it.
	require.NoError(t, c.UpdateQuantity("p1", 0))
	require.Len(t, c.Items(), 1)
	assert.True(t, decimal.NewFromInt(640).Equal(c.Total()))

	// Negative values clamp to zero.
	require.NoError(t, c.UpdateQuantity("p2", -3))
	assert.Empty(t, c.Items())
	assert.True(t, c.Total().IsZero())

	require.NoError(t, c.UpdateQuantity("unknown", 2))
	assert.Zero(t, c.Count())
}

func TestCart_RemoveAndClear(t *testing.T) {
	c, err := Load(NewMemoryStorage())
	require.NoError(t, err)
	require.NoError(t, c.Add(chair(), 1))
	require.NoError(t, c.Add(table(), 1))

	require.NoError(t, c.Remove("p1"))
	assert.Equal(t, "p2", c.Items()[0].ID)
	require.NoError(t, c.Remove("p1"))

	require.NoError(t, c.Clear())
	assert.Empty(t, c.Items())
	assert.Zero(t, c.Count())
}

func TestCart_WriteThroughAndRehydrate(t *testing.T) {
	storage := NewFileStorage(filepath.Join(t.TempDir(), "state", "shop.json"))

	c, err := Load(storage)
	require.NoError(t, err)
	require.NoError(t, c.Add(chair(), 3))
	require.NoError(t, c.Add(table(), 1))

	raw, ok, err := storage.GetItem(StorageKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, raw, `"price":180.25`)

	again, err := Load(storage)
	require.NoError(t, err)
	assert.Equal(t, c.Items(), again.Items())
	assert.True(t, c.Total().Equal(again.Total()))
}

func TestCart_LoadNormalizesPrices(t *testing.T) {
	storage := NewMemoryStorage()
	stored := `[
		{"_id":"p1","name":"Oak Chair","price":180.25,"quantity":1},
		{"_id":"p2","name":"Pine Table","price":"320","quantity":2},
		{"_id":"p3","name":"Walnut Stool","price":{"$numberDecimal":"95.50"},"quantity":2}
	]`
	require.NoError(t, storage.SetItem(StorageKey, stored))

	c, err := Load(storage)
	require.NoError(t, err)
	assert.Equal(t, 5, c.Count())
	assert.True(t, decimal.RequireFromString("1011.25").Equal(c.Total()), c.Total().String())
}

func TestCart_LoadCorruptData(t *testing.T) {
	storage := NewMemoryStorage()
	require.NoError(t, storage.SetItem(StorageKey, "{not a list"))

	c, err := Load(storage)
	require.NoError(t, err)
	assert.Empty(t, c.Items())
}

type failingStorage struct{ MemoryStorage }

func (*failingStorage) GetItem(string) (string, bool, error) {
	return "", false, errors.New("disk gone")
}

func TestCart_LoadStorageFailure(t *testing.T) {
	_, err := Load(&failingStorage{})
	assert.Error(t, err)
}

func TestPrice_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: `180`, want: "180"},
		{in: `180.25`, want: "180.25"},
		{in: `"99.90"`, want: "99.9"},
		{in: `{"$numberDecimal":"12.5"}`, want: "12.5"},
		{in: `null`, want: "0"},
		{in: `{"value":"1"}`, wantErr: true},
		{in: `"abc"`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var p Price
			err := json.Unmarshal([]byte(tt.in), &p)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(p.Decimal), p.String())
		})
	}
}

func TestSession(t *testing.T) {
	storage := NewMemoryStorage()
	s := NewSession(storage)

	info, err := s.Load()
	require.NoError(t, err)
	assert.Nil(t, info)

	require.NoError(t, s.Save(UserInfo{ID: "u1", Name: "Ana", Token: "tok"}))
	info, err = s.Load()
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, "Ana", info.Name)

	require.NoError(t, s.Clear())
	info, err = s.Load()
	require.NoError(t, err)
	assert.Nil(t, info)

	require.NoError(t, storage.SetItem(SessionKey, "garbage"))
	info, err = s.Load()
	require.NoError(t, err)
	assert.Nil(t, info)
}
