package batch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/electroitzone/report-dashboard/backend-go/internal/domain"
	"github.com/electroitzone/report-dashboard/backend-go/internal/export"
	"github.com/electroitzone/report-dashboard/backend-go/internal/service"
	"github.com/rs/zerolog/log"
)

// Status of a single export job.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Job tracks one report export.
type Job struct {
	Report   string
	Status   Status
	Location string
	Size     int64
	Error    string
	Duration time.Duration
}

// Exporter runs and serializes a report.
type Exporter interface {
	Export(ctx context.Context, key string, filter domain.FilterState, opts service.ExportOptions) (*service.ExportResult, error)
}

// Sink persists a local artifact and returns where it was written.
type Sink func(artifact *export.Artifact) (string, error)

// Config controls a batch run.
type Config struct {
	WorkerCount int
	Options     service.ExportOptions
}

// Summary counts finished jobs by outcome.
type Summary struct {
	Completed int
	Failed    int
}

// Runner exports many reports with a fixed number of workers.
type Runner struct {
	exporter Exporter
	sink     Sink
	cfg      Config
}

// NewRunner builds a runner. sink may be nil when every export is uploaded.
func NewRunner(exporter Exporter, sink Sink, cfg Config) *Runner {
	if cfg.WorkerCount < 1 {
		cfg.WorkerCount = 1
	}
	return &Runner{exporter: exporter, sink: sink, cfg: cfg}
}

// Run exports every key with the same filter. A failing report is recorded
// on its job and does not stop the others. Jobs come back in key order;
// the returned error is set only when ctx ends before all jobs were queued.
func (r *Runner) Run(ctx context.Context, keys []string, filter domain.FilterState) ([]*Job, error) {
	jobs := make([]*Job, len(keys))
	for i, key := range keys {
		jobs[i] = &Job{Report: key, Status: StatusQueued}
	}

	jobChan := make(chan *Job, len(jobs))
	var wg sync.WaitGroup

	for i := 0; i < r.cfg.WorkerCount; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for job := range jobChan {
				r.process(ctx, job, filter)
				if job.Status == StatusFailed {
					log.Warn().
						Int("worker", workerID).
						Str("report", job.Report).
						Str("error", job.Error).
						Msg("report export failed")
				}
			}
		}(i)
	}

	// jobChan holds every job, so sends never block.
	var queueErr error
	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			queueErr = err
			break
		}
		jobChan <- job
	}
	close(jobChan)
	wg.Wait()

	return jobs, queueErr
}

func (r *Runner) process(ctx context.Context, job *Job, filter domain.FilterState) {
	start := time.Now()
	job.Status = StatusProcessing
	defer func() { job.Duration = time.Since(start) }()

	res, err := r.exporter.Export(ctx, job.Report, filter, r.cfg.Options)
	if err != nil {
		r.fail(job, err)
		return
	}

	switch {
	case res.Object != nil:
		job.Location = res.Object.URL
		job.Size = res.Object.Size
	case r.sink != nil:
		location, err := r.sink(res.Artifact)
		if err != nil {
			r.fail(job, fmt.Errorf("failed writing %s: %w", res.Artifact.Filename, err))
			return
		}
		job.Location = location
		job.Size = int64(len(res.Artifact.Data))
	default:
		r.fail(job, fmt.Errorf("no destination for %s", res.Artifact.Filename))
		return
	}
	job.Status = StatusCompleted
}

func (r *Runner) fail(job *Job, err error) {
	job.Status = StatusFailed
	job.Error = err.Error()
}

// Summarize counts completed and failed jobs.
func Summarize(jobs []*Job) Summary {
	var s Summary
	for _, job := range jobs {
		switch job.Status {
		case StatusCompleted:
			s.Completed++
		case StatusFailed:
			s.Failed++
		}
	}
	return s
}
