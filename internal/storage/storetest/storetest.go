// Package storetest holds the behavioural tests every storage.Store
// implementation must pass.
package storetest

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/companion/internal/storage"
)

// Run exercises the Store contract against stores built by open. Each subtest
// gets a fresh store.
func Run(t *testing.T, open func(t *testing.T) storage.Store) {
	t.Run("GetMissing", func(t *testing.T) {
		s := open(t)
		_, err := s.Get(context.Background(), storage.KeyRoster)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("SetGet", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()
		require.NoError(t, s.Set(ctx, storage.KeyDraft, []byte(`{"a":1}`)))
		got, err := s.Get(ctx, storage.KeyDraft)
		require.NoError(t, err)
		assert.Equal(t, `{"a":1}`, string(got))
	})

	t.Run("SetOverwrites", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()
		require.NoError(t, s.Set(ctx, storage.KeySettings, []byte("one")))
		require.NoError(t, s.Set(ctx, storage.KeySettings, []byte("two")))
		got, err := s.Get(ctx, storage.KeySettings)
		require.NoError(t, err)
		assert.Equal(t, "two", string(got))
	})

	t.Run("Remove", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()
		require.NoError(t, s.Set(ctx, storage.KeyQuickSave, []byte("x")))
		require.NoError(t, s.Remove(ctx, storage.KeyQuickSave))
		_, err := s.Get(ctx, storage.KeyQuickSave)
		assert.ErrorIs(t, err, storage.ErrNotFound)
		assert.NoError(t, s.Remove(ctx, storage.KeyQuickSave), "removing a missing key")
	})

	t.Run("KeysAreIndependent", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()
		for i, k := range storage.Keys() {
			require.NoError(t, s.Set(ctx, k, []byte(fmt.Sprint(i))))
		}
		for i, k := range storage.Keys() {
			got, err := s.Get(ctx, k)
			require.NoError(t, err)
			assert.Equal(t, fmt.Sprint(i), string(got), k)
		}
	})

	t.Run("ConcurrentWriters", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				key := fmt.Sprintf("k%d", i)
				for j := 0; j < 10; j++ {
					assert.NoError(t, s.Set(ctx, key, []byte(fmt.Sprint(j))))
				}
			}(i)
		}
		wg.Wait()
		for i := 0; i < 8; i++ {
			got, err := s.Get(ctx, fmt.Sprintf("k%d", i))
			require.NoError(t, err)
			assert.Equal(t, "9", string(got))
		}
	})

	t.Run("PropertyRoundTrip", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()
		rapid.Check(t, func(rt *rapid.T) {
			key := rapid.SampledFrom(storage.Keys()).Draw(rt, "key")
			value := rapid.SliceOfN(rapid.Byte(), 1, 256).Draw(rt, "value")
			if err := s.Set(ctx, key, value); err != nil {
				rt.Fatalf("Set: %v", err)
			}
			got, err := s.Get(ctx, key)
			if err != nil {
				rt.Fatalf("Get: %v", err)
			}
			if string(got) != string(value) {
				rt.Fatalf("Get(%q) = %x, want %x", key, got, value)
			}
		})
	})
}
