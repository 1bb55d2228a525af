package ingest

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartWatcher(t *testing.T) {
	t.Run("emits files created while the debounce timer fires", func(t *testing.T) {
		root := t.TempDir()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		evCh, _, err := StartWatcher(ctx, WatchConfig{
			Roots:    []string{root},
			Debounce: 20 * time.Millisecond,
		}, discardLogger())
		require.NoError(t, err)

		// Interleave creations with timer expiries so flushing and new
		// events overlap.
		want := map[string]bool{}
		for i := 0; i < 8; i++ {
			path := filepath.Join(root, fmt.Sprintf("register%d.pdf", i))
			writeFile(t, path, "page content")
			want[path] = false
			time.Sleep(25 * time.Millisecond)
		}
		writeFile(t, filepath.Join(root, "notes.txt"), "never emitted")

		deadline := time.After(10 * time.Second)
		got := 0
		for got < len(want) {
			select {
			case path := <-evCh:
				assert.NotContains(t, path, "notes.txt")
				if seen, ok := want[path]; ok && !seen {
					want[path] = true
					got++
				}
			case <-deadline:
				t.Fatalf("timed out: received %d of %d watched paths", got, len(want))
			}
		}
	})

	t.Run("initial scan emits existing files", func(t *testing.T) {
		root := t.TempDir()
		existing := filepath.Join(root, "old.pdf")
		writeFile(t, existing, "page content")

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		evCh, _, err := StartWatcher(ctx, WatchConfig{
			Roots:       []string{root},
			InitialScan: true,
		}, discardLogger())
		require.NoError(t, err)

		select {
		case path := <-evCh:
			assert.Equal(t, existing, path)
		case <-time.After(5 * time.Second):
			t.Fatal("initial scan path never emitted")
		}
	})

	t.Run("requires at least one root", func(t *testing.T) {
		_, _, err := StartWatcher(context.Background(), WatchConfig{}, discardLogger())
		assert.Error(t, err)
	})
}
