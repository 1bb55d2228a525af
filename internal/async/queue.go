package async

import (
	"context"
	"time"

	"github.com/google/uuid"

	processor "github.com/mnystrom/inkomstregister/internal/pipeline"
)

// Job is one file to process. TraceID ties queue logs, processor logs, and
// the run summary together.
type Job struct {
	Path        string
	TraceID     uuid.UUID
	SubmittedAt time.Time
}

// Result pairs a job with its report. Err is set when the file failed and
// was skipped; the rest of the batch is unaffected.
type Result struct {
	Job    Job
	Report processor.FileReport
	Err    error
}

// Queue accepts jobs and delivers results until shut down.
type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Results() <-chan Result
	Shutdown(ctx context.Context)
}
