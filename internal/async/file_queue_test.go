package async

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mnystrom/inkomstregister/constants"
	"github.com/mnystrom/inkomstregister/internal/common"
	"github.com/mnystrom/inkomstregister/internal/extract"
	"github.com/mnystrom/inkomstregister/internal/parse"
	processor "github.com/mnystrom/inkomstregister/internal/pipeline"
)

const queueTestPage = `187 74  Täby
Kindström Magnus, Djupdalsvägen 114 53 23 80 N 932 500 -129 720 Lindqvist Eva, Storgatan 12 67 23 41 J 412 300 55 000
`

type stubExtractor struct {
	failing map[string]bool

	mu      sync.Mutex
	fileIDs map[string]uuid.UUID
}

func (s *stubExtractor) ExtractPages(ctx context.Context, path string) ([]extract.PageContent, error) {
	s.mu.Lock()
	s.fileIDs[path] = common.FileIDFromContext(ctx)
	s.mu.Unlock()

	if s.failing[path] {
		return nil, errors.New("unreadable file")
	}
	return []extract.PageContent{{Text: queueTestPage}}, nil
}

func (s *stubExtractor) fileID(path string) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fileIDs[path]
}

func newTestQueue(failing map[string]bool, opts ...Option) (*FileQueue, *stubExtractor) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	stub := &stubExtractor{failing: failing, fileIDs: map[string]uuid.UUID{}}
	proc := processor.NewProcessor(logger, stub, parse.NewParser(logger))
	return NewFileQueue(proc, logger, opts...), stub
}

func TestFileQueue(t *testing.T) {
	t.Run("one result per job, failures isolated", func(t *testing.T) {
		q, _ := newTestQueue(map[string]bool{"b.pdf": true}, WithWorkers(2))

		ctx := context.Background()
		for _, path := range []string{"a.pdf", "b.pdf", "c.pdf"} {
			require.NoError(t, q.Enqueue(ctx, Job{Path: path, TraceID: uuid.New(), SubmittedAt: time.Now()}))
		}
		go q.Shutdown(ctx)

		var ok, failed, records int
		for res := range q.Results() {
			if res.Err != nil {
				failed++
				assert.Equal(t, "b.pdf", res.Job.Path)
				assert.Equal(t, constants.FileStatusFailed, res.Report.Status)
				continue
			}
			ok++
			assert.Equal(t, constants.FileStatusOK, res.Report.Status)
			records += len(res.Report.Records)
		}

		assert.Equal(t, 2, ok)
		assert.Equal(t, 1, failed)
		assert.Equal(t, 4, records)
	})

	t.Run("saturated pool still yields one result per job", func(t *testing.T) {
		// Far more jobs than the bounded channels can hold: enqueueing
		// and draining overlap, so the pool must keep moving while both
		// buffers are full.
		q, _ := newTestQueue(nil, WithWorkers(1), WithQueueSize(1))
		const total = 50

		go func() {
			for i := 0; i < total; i++ {
				_ = q.Enqueue(context.Background(), Job{Path: "a.pdf", TraceID: uuid.New()})
			}
			q.Shutdown(context.Background())
		}()

		done := make(chan int)
		go func() {
			n := 0
			for range q.Results() {
				n++
			}
			done <- n
		}()

		select {
		case n := <-done:
			assert.Equal(t, total, n)
		case <-time.After(10 * time.Second):
			t.Fatal("pool stalled before delivering every result")
		}
	})

	t.Run("blocked enqueue respects context cancellation", func(t *testing.T) {
		// Nobody drains results here, so the pool wedges after a few
		// jobs; the blocked send must give up with the context instead
		// of hanging forever.
		q, _ := newTestQueue(nil, WithWorkers(1), WithQueueSize(1))

		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()

		var err error
		for i := 0; i < 10 && err == nil; i++ {
			err = q.Enqueue(ctx, Job{Path: "a.pdf", TraceID: uuid.New()})
		}
		assert.ErrorIs(t, err, context.DeadlineExceeded)

		go func() {
			for range q.Results() {
			}
		}()
		q.Shutdown(context.Background())
	})

	t.Run("worker context carries the job trace id", func(t *testing.T) {
		q, stub := newTestQueue(nil, WithWorkers(1))
		traceID := uuid.New()

		require.NoError(t, q.Enqueue(context.Background(), Job{Path: "traced.pdf", TraceID: traceID}))
		go q.Shutdown(context.Background())
		for range q.Results() {
		}

		assert.Equal(t, traceID, stub.fileID("traced.pdf"))
	})

	t.Run("shutdown closes results without jobs", func(t *testing.T) {
		q, _ := newTestQueue(nil, WithWorkers(1))
		go q.Shutdown(context.Background())

		select {
		case _, open := <-q.Results():
			assert.False(t, open, "results channel should be closed")
		case <-time.After(5 * time.Second):
			t.Fatal("results channel never closed")
		}
	})

	t.Run("enqueue after shutdown is a no-op", func(t *testing.T) {
		q, _ := newTestQueue(nil, WithWorkers(1))
		q.Shutdown(context.Background())

		err := q.Enqueue(context.Background(), Job{Path: "late.pdf"})
		assert.NoError(t, err)

		_, open := <-q.Results()
		assert.False(t, open)
	})

	t.Run("double shutdown is safe", func(t *testing.T) {
		q, _ := newTestQueue(nil)
		q.Shutdown(context.Background())
		q.Shutdown(context.Background())
	})
}
