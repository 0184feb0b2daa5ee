package docstore

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storeContract is shared by every backend that can run inside a unit test.
func storeContract(t *testing.T, newStore func(t *testing.T) Store) {
	ctx := context.Background()

	t.Run("missing document", func(t *testing.T) {
		s := newStore(t)
		_, found, err := s.Get(ctx, "menu", "nope")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("merge keeps other fields", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set(ctx, "phoneTable", "555", Fields{"phoneNumber": "555", "tableNumber": "4"}, Overwrite))
		require.NoError(t, s.Set(ctx, "phoneTable", "555", Fields{"tableNumber": "9"}, Merge))

		doc, found, err := s.Get(ctx, "phoneTable", "555")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, Fields{"phoneNumber": "555", "tableNumber": "9"}, doc.Fields)
	})

	t.Run("overwrite replaces document", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set(ctx, "phoneTable", "555", Fields{"phoneNumber": "555", "note": "x"}, Overwrite))
		require.NoError(t, s.Set(ctx, "phoneTable", "555", Fields{"tableNumber": "2"}, Overwrite))

		doc, _, err := s.Get(ctx, "phoneTable", "555")
		require.NoError(t, err)
		assert.Equal(t, Fields{"tableNumber": "2"}, doc.Fields)
	})

	t.Run("list is sorted by key", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set(ctx, "menu", "b", Fields{"name": "Tea"}, Overwrite))
		require.NoError(t, s.Set(ctx, "menu", "a", Fields{"name": "Coffee", "price": 3.5}, Overwrite))
		require.NoError(t, s.Set(ctx, "other", "z", Fields{"name": "x"}, Overwrite))

		docs, err := s.List(ctx, "menu")
		require.NoError(t, err)
		require.Len(t, docs, 2)
		assert.Equal(t, "a", docs[0].Key)
		assert.Equal(t, 3.5, docs[0].Fields["price"])
		assert.Equal(t, "b", docs[1].Key)
	})

	t.Run("failed transaction writes nothing", func(t *testing.T) {
		s := newStore(t)
		boom := errors.New("boom")
		err := s.RunTransaction(ctx, func(ctx context.Context, tx Tx) error {
			if err := tx.Set(ctx, "counters", "c", Fields{"value": 1}, Merge); err != nil {
				return err
			}
			return boom
		})
		require.ErrorIs(t, err, boom)

		_, found, err := s.Get(ctx, "counters", "c")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("transaction reads its own writes", func(t *testing.T) {
		s := newStore(t)
		err := s.RunTransaction(ctx, func(ctx context.Context, tx Tx) error {
			if err := tx.Set(ctx, "counters", "c", Fields{"value": 7}, Merge); err != nil {
				return err
			}
			doc, found, err := tx.Get(ctx, "counters", "c")
			require.NoError(t, err)
			require.True(t, found)
			v, ok := Int(doc.Fields["value"])
			require.True(t, ok)
			assert.EqualValues(t, 7, v)
			return nil
		})
		require.NoError(t, err)
	})

	t.Run("concurrent increments do not lose updates", func(t *testing.T) {
		s := newStore(t)
		const workers = 20

		var wg sync.WaitGroup
		errs := make(chan error, workers)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				errs <- s.RunTransaction(ctx, func(ctx context.Context, tx Tx) error {
					doc, _, err := tx.Get(ctx, "counters", "hits")
					if err != nil {
						return err
					}
					cur, _ := Int(doc.Fields["value"])
					return tx.Set(ctx, "counters", "hits", Fields{"value": cur + 1}, Merge)
				})
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		doc, found, err := s.Get(ctx, "counters", "hits")
		require.NoError(t, err)
		require.True(t, found)
		v, _ := Int(doc.Fields["value"])
		assert.EqualValues(t, workers, v)
	})
}

func TestMemoryStore(t *testing.T) {
	storeContract(t, func(t *testing.T) Store { return NewMemory() })
}

func TestMemoryGetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	require.NoError(t, s.Set(ctx, "menu", "a", Fields{"tags": []any{"hot"}}, Overwrite))

	doc, _, err := s.Get(ctx, "menu", "a")
	require.NoError(t, err)
	doc.Fields["tags"].([]any)[0] = "cold"

	again, _, err := s.Get(ctx, "menu", "a")
	require.NoError(t, err)
	assert.Equal(t, []any{"hot"}, again.Fields["tags"])
}

func TestInt(t *testing.T) {
	cases := []struct {
		in   any
		want int64
		ok   bool
	}{
		{float64(7), 7, true},
		{float64(-5), -5, true},
		{3.9, 3, true},
		{int32(4), 4, true},
		{int64(12), 12, true},
		{"8", 8, true},
		{"abc", 0, false},
		{1e19, 0, false},
		{-1e19, 0, false},
		{"1e300", 0, false},
		{nil, 0, false},
		{true, 0, false},
	}
	for _, c := range cases {
		got, ok := Int(c.in)
		assert.Equal(t, c.ok, ok, "%v", c.in)
		assert.Equal(t, c.want, got, "%v", c.in)
	}
}

func TestString(t *testing.T) {
	assert.Equal(t, "12", String(float64(12)))
	assert.Equal(t, "4.5", String(4.5))
	assert.Equal(t, "A7", String("A7"))
	assert.Equal(t, "", String(nil))
}
