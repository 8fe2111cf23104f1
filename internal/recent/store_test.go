package recent

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alexivanou/geoweather-api/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingSlot struct {
	payload []byte
}

func (f *failingSlot) Read(context.Context, string) ([]byte, error) { return f.payload, nil }

func (f *failingSlot) Write(context.Context, string, []byte) error {
	return errors.New("quota exceeded")
}

func place(i int) model.RecentPlace {
	return model.RecentPlace{Name: fmt.Sprintf("City%d", i), Country: "X", Lat: float64(i), Lon: float64(-i)}
}

func TestStore_AddKeepsMostRecentFive(t *testing.T) {
	ctx := context.Background()
	store := NewStore(NewMemorySlot(), nil)

	for i := 1; i <= 6; i++ {
		store.Add(ctx, "en", place(i))
	}

	got := store.Load(ctx, "en")
	require.Len(t, got, MaxItems)
	assert.Equal(t, []model.RecentPlace{place(6), place(5), place(4), place(3), place(2)}, got)
}

func TestStore_ReAddMovesToFront(t *testing.T) {
	ctx := context.Background()
	store := NewStore(NewMemorySlot(), nil)

	paris := model.RecentPlace{Name: "Paris", Country: "France", Lat: 48.85, Lon: 2.35}
	berlin := model.RecentPlace{Name: "Berlin", Country: "Germany", Lat: 52.52, Lon: 13.4}
	store.Add(ctx, "en", paris)
	store.Add(ctx, "en", berlin)

	moved := paris
	moved.Lat = 48.86
	got := store.Add(ctx, "en", moved)

	assert.Equal(t, []model.RecentPlace{moved, berlin}, got)
	assert.Equal(t, got, store.Load(ctx, "en"))
}

func TestStore_LanguagesAreIndependent(t *testing.T) {
	ctx := context.Background()
	store := NewStore(NewMemorySlot(), nil)

	store.Add(ctx, "en", place(1))
	store.Add(ctx, "ar", place(2))

	assert.Equal(t, []model.RecentPlace{place(1)}, store.Load(ctx, "en"))
	assert.Equal(t, []model.RecentPlace{place(2)}, store.Load(ctx, "ar"))
	assert.Empty(t, store.Load(ctx, "de"))
}

func TestStore_Keys(t *testing.T) {
	store := NewStore(NewMemorySlot(), nil)
	assert.Equal(t, "recentSearches_en", store.Key("en"))
	assert.Equal(t, "abc:recentSearches_fr", store.WithNamespace("abc").Key("fr"))
	assert.Equal(t, "recentSearches_en", store.Key("en"), "namespacing must not mutate the parent")
}

func TestStore_NamespacesAreIsolated(t *testing.T) {
	ctx := context.Background()
	store := NewStore(NewMemorySlot(), nil)

	store.WithNamespace("a").Add(ctx, "en", place(1))
	assert.Empty(t, store.WithNamespace("b").Load(ctx, "en"))
	assert.Empty(t, store.Load(ctx, "en"))
	assert.Len(t, store.WithNamespace("a").Load(ctx, "en"), 1)
}

func TestStore_WriteFailureStillReturnsList(t *testing.T) {
	ctx := context.Background()
	slot := &failingSlot{payload: []byte(`[{"name":"Rome","country":"Italy","lat":41.9,"lon":12.5}]`)}
	store := NewStore(slot, nil)

	got := store.Add(ctx, "en", place(1))
	require.Len(t, got, 2)
	assert.Equal(t, place(1), got[0])
	assert.Equal(t, "Rome", got[1].Name)
}

func TestStore_UnreachableRedis(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	store := NewStore(NewRedisSlot(client, 0), nil)
	assert.Empty(t, store.Load(ctx, "en"))
	assert.Equal(t, []model.RecentPlace{place(1)}, store.Add(ctx, "en", place(1)))
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want int
	}{
		{name: "Absent", raw: "", want: 0},
		{name: "Not JSON", raw: "{oops", want: 0},
		{name: "Object instead of array", raw: `{"name":"Paris"}`, want: 0},
		{name: "Valid list", raw: `[{"name":"Paris","country":"France","lat":1,"lon":2}]`, want: 1},
		{name: "Bad entries dropped", raw: `[{"name":"Paris","country":"France","lat":"1","lon":2},3,{"name":"Oslo","country":"Norway","lat":59.9,"lon":10.7}]`, want: 1},
		{name: "Duplicates dropped", raw: `[{"name":"Paris","country":"France","lat":1,"lon":2},{"name":"Paris","country":"France","lat":3,"lon":4}]`, want: 1},
		{name: "Overlong list truncated", raw: `[` +
			`{"name":"A","country":"X","lat":1,"lon":1},{"name":"B","country":"X","lat":1,"lon":1},` +
			`{"name":"C","country":"X","lat":1,"lon":1},{"name":"D","country":"X","lat":1,"lon":1},` +
			`{"name":"E","country":"X","lat":1,"lon":1},{"name":"F","country":"X","lat":1,"lon":1}]`, want: MaxItems},
		{name: "Seven valid entries load as five", raw: `[` +
			`{"name":"A","country":"X","lat":1,"lon":1},{"name":"B","country":"X","lat":1,"lon":1},` +
			`{"name":"C","country":"X","lat":1,"lon":1},{"name":"D","country":"X","lat":1,"lon":1},` +
			`{"name":"E","country":"X","lat":1,"lon":1},{"name":"F","country":"X","lat":1,"lon":1},` +
			`{"name":"G","country":"X","lat":1,"lon":1}]`, want: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decode([]byte(tt.raw))
			assert.NotNil(t, got)
			assert.Len(t, got, tt.want)
		})
	}
}
