package application

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/aquatech-dashboard/internal/domain/entity"
	"github.com/oksasatya/aquatech-dashboard/internal/domain/repository"
)

const (
	DefaultAuditBuffer = 256
	auditSinkTimeout   = 5 * time.Second
)

// ActivityAudit records activity without blocking the caller. Entries queue
// in a bounded buffer drained by one goroutine; when the buffer is full the
// entry is dropped and counted. Sink failures are logged and swallowed.
type ActivityAudit struct {
	sinks  []repository.ActivityRepository
	logger *logrus.Logger
	now    func() time.Time

	ch        chan entity.ActivityLogEntry
	done      chan struct{}
	wg        sync.WaitGroup
	dropped   atomic.Uint64
	closed    atomic.Bool
	closeOnce sync.Once
}

func NewActivityAudit(bufferSize int, logger *logrus.Logger, sinks ...repository.ActivityRepository) *ActivityAudit {
	if bufferSize <= 0 {
		bufferSize = DefaultAuditBuffer
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	a := &ActivityAudit{
		sinks:  sinks,
		logger: logger,
		now:    time.Now,
		ch:     make(chan entity.ActivityLogEntry, bufferSize),
		done:   make(chan struct{}),
	}
	a.wg.Add(1)
	go a.run()
	return a
}

func (a *ActivityAudit) run() {
	defer a.wg.Done()
	for {
		select {
		case e := <-a.ch:
			a.write(e)
		case <-a.done:
			for {
				select {
				case e := <-a.ch:
					a.write(e)
				default:
					return
				}
			}
		}
	}
}

func (a *ActivityAudit) write(e entity.ActivityLogEntry) {
	for _, s := range a.sinks {
		ctx, cancel := context.WithTimeout(context.Background(), auditSinkTimeout)
		err := s.Append(ctx, e)
		cancel()
		if err != nil {
			a.logger.WithError(err).WithFields(logrus.Fields{
				"user_id":       e.UserID,
				"activity_type": e.ActivityType,
			}).Warn("activity sink write failed")
		}
	}
}

// Record enqueues an entry stamped with the current time. It never blocks.
func (a *ActivityAudit) Record(_ context.Context, userID string, typ entity.ActivityType, details map[string]string) {
	if a == nil || a.closed.Load() {
		return
	}
	e := entity.ActivityLogEntry{
		UserID:       userID,
		ActivityType: typ,
		Timestamp:    a.now().UTC(),
		Details:      details,
	}
	select {
	case a.ch <- e:
	case <-a.done:
	default:
		a.dropped.Add(1)
	}
}

// Close stops accepting entries and waits for the buffer to drain.
func (a *ActivityAudit) Close() {
	if a == nil {
		return
	}
	a.closeOnce.Do(func() {
		a.closed.Store(true)
		close(a.done)
		a.wg.Wait()
	})
}

func (a *ActivityAudit) Dropped() uint64 {
	if a == nil {
		return 0
	}
	return a.dropped.Load()
}

// LogActivitySink writes entries to the application log.
type LogActivitySink struct {
	Logger *logrus.Logger
}

func (s LogActivitySink) Append(_ context.Context, e entity.ActivityLogEntry) error {
	fields := logrus.Fields{
		"user_id":       e.UserID,
		"activity_type": string(e.ActivityType),
		"timestamp":     e.Timestamp.Format(time.RFC3339),
	}
	for k, v := range e.Details {
		fields["detail_"+k] = v
	}
	s.Logger.WithFields(fields).Info("user activity")
	return nil
}
