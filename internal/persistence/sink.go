package persistence

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Sink receives durable copies of interview state. Implementations never
// block the caller on storage and never report storage failures back.
type Sink interface {
	InterviewStarted(candidate Candidate, interview Interview)
	QuestionAnswered(record QuestionRecord)
	InterviewUpdated(update InterviewUpdate)
	Close(ctx context.Context) error
}

type NopSink struct{}

func (NopSink) InterviewStarted(Candidate, Interview) {}
func (NopSink) QuestionAnswered(QuestionRecord)       {}
func (NopSink) InterviewUpdated(InterviewUpdate)      {}
func (NopSink) Close(context.Context) error           { return nil }

type write struct {
	name      string
	sessionID string
	apply     func(ctx context.Context, repo *Repository) error
}

// AsyncSink applies writes on a single goroutine so they reach the database
// in the order they were enqueued. A full queue drops the write.
type AsyncSink struct {
	repo   *Repository
	logger *zap.Logger
	queue  chan write

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

func NewAsyncSink(repo *Repository, queueSize int, logger *zap.Logger) *AsyncSink {
	s := &AsyncSink{
		repo:   repo,
		logger: logger,
		queue:  make(chan write, queueSize),
		done:   make(chan struct{}),
	}
	go s.loop()
	return s
}

func (s *AsyncSink) InterviewStarted(candidate Candidate, interview Interview) {
	s.enqueue(write{
		name:      "create_interview",
		sessionID: interview.SessionID,
		apply: func(ctx context.Context, repo *Repository) error {
			return repo.CreateInterview(ctx, &candidate, &interview)
		},
	})
}

func (s *AsyncSink) QuestionAnswered(record QuestionRecord) {
	s.enqueue(write{
		name:      "save_question",
		sessionID: record.SessionID,
		apply: func(ctx context.Context, repo *Repository) error {
			return repo.SaveQuestionRecord(ctx, &record)
		},
	})
}

func (s *AsyncSink) InterviewUpdated(update InterviewUpdate) {
	s.enqueue(write{
		name:      "update_interview",
		sessionID: update.SessionID,
		apply: func(ctx context.Context, repo *Repository) error {
			return repo.UpdateInterview(ctx, update)
		},
	})
}

func (s *AsyncSink) enqueue(w write) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		s.logger.Warn("Persistence write after close dropped",
			zap.String("write", w.name),
			zap.String("session_id", w.sessionID),
		)
		return
	}

	select {
	case s.queue <- w:
	default:
		s.logger.Error("Persistence queue full, write dropped",
			zap.String("write", w.name),
			zap.String("session_id", w.sessionID),
		)
	}
}

func (s *AsyncSink) loop() {
	defer close(s.done)
	for w := range s.queue {
		if err := w.apply(context.Background(), s.repo); err != nil {
			s.logger.Error("Persistence write failed",
				zap.String("write", w.name),
				zap.String("session_id", w.sessionID),
				zap.Error(err),
			)
		}
	}
}

// Close stops accepting writes and drains the queue, or gives up when ctx is done
func (s *AsyncSink) Close(ctx context.Context) error {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.queue)
	}
	s.mu.Unlock()

	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
