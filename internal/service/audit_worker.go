package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/adlytics/govern/internal/models"
)

// AuditJob is one buffered audit entry.
type AuditJob struct {
	WorkspaceID string
	Record      models.AuditRecord
}

// AuditWorker buffers best-effort audit entries and writes them via a single
// worker goroutine. Only observability entries (permission denials) go
// through here; the audit writes that gate operation success are synchronous
// in the orchestrator.
type AuditWorker struct {
	auditor Auditor
	log     *logrus.Logger
	jobs    chan *AuditJob
}

// NewAuditWorker creates an AuditWorker with the given queue capacity.
func NewAuditWorker(auditor Auditor, log *logrus.Logger, queueSize int) *AuditWorker {
	if queueSize <= 0 {
		queueSize = 1000
	}
	return &AuditWorker{
		auditor: auditor,
		log:     log,
		jobs:    make(chan *AuditJob, queueSize),
	}
}

// Enqueue adds an audit job. Non-blocking; drops the job if the queue is full.
func (w *AuditWorker) Enqueue(job *AuditJob) {
	select {
	case w.jobs <- job:
	default:
		w.log.WithField("action", job.Record.Action).Warn("audit queue full, dropping entry")
	}
}

// RecordDenial implements guard.DenialRecorder: a denied attempt becomes an
// observability audit entry naming the attempted action and denying role.
func (w *AuditWorker) RecordDenial(actor models.Actor, action models.Action) {
	w.Enqueue(&AuditJob{
		WorkspaceID: actor.WorkspaceID,
		Record: models.AuditRecord{
			Action:     models.AuditActionPermissionDenied,
			EntityType: "action",
			EntityID:   string(action),
			Actor:      actor,
			Metadata:   map[string]any{"denied_role": string(actor.Role)},
		},
	})
}

// Run processes audit jobs until the context is cancelled, then drains
// remaining jobs.
func (w *AuditWorker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.drain()
			return
		case job := <-w.jobs:
			w.process(job)
		}
	}
}

func (w *AuditWorker) drain() {
	for {
		select {
		case job := <-w.jobs:
			w.process(job)
		default:
			return
		}
	}
}

func (w *AuditWorker) process(job *AuditJob) {
	if err := w.auditor.Record(context.Background(), job.WorkspaceID, job.Record); err != nil {
		w.log.WithError(err).Warn("audit record failed")
	}
}
