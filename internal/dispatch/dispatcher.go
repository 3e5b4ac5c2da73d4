// Package dispatch validates inbound webhook events, classifies them, and
// runs message events through a bounded background worker pool so the
// webhook acknowledgement never waits on the completion service or the
// messaging platform.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"orunmila/internal/agent"
	"orunmila/internal/domain"
	"orunmila/internal/metrics"
)

const (
	defaultWorkers   = 4
	defaultQueueSize = 64
	defaultJobBudget = 60 * time.Second
)

// Answerer produces answer text for a question. Satisfied by *agent.Generator.
type Answerer interface {
	Answer(ctx context.Context, question string, req *agent.Requester) string
}

// Sender delivers replies to the platform. Satisfied by *telex.Client.
type Sender interface {
	Send(ctx context.Context, reply domain.Reply) (*domain.DeliveryResult, error)
	SendTyping(ctx context.Context, chatID string)
}

// Ack is the immediate webhook acknowledgement, sent before any reply has
// been generated or delivered.
type Ack struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type job struct {
	id    string
	event *domain.Event
}

// Dispatcher owns the ingestion pipeline: validate, classify, enqueue.
// Failures inside a background job are terminal to that job and observable
// only via logs and metrics; the acknowledgement has already been sent.
type Dispatcher struct {
	answerer  Answerer
	sender    Sender
	logger    *slog.Logger
	jobBudget time.Duration

	jobs chan job
	wg   sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

type Config struct {
	Answerer  Answerer
	Sender    Sender
	Logger    *slog.Logger
	Workers   int
	QueueSize int
	JobBudget time.Duration
}

// New creates a dispatcher and starts its worker pool.
func New(cfg Config) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}
	if cfg.JobBudget <= 0 {
		cfg.JobBudget = defaultJobBudget
	}

	d := &Dispatcher{
		answerer:  cfg.Answerer,
		sender:    cfg.Sender,
		logger:    cfg.Logger,
		jobBudget: cfg.JobBudget,
		jobs:      make(chan job, cfg.QueueSize),
	}

	d.wg.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		go d.worker()
	}
	d.logger.Info("dispatcher started", "workers", cfg.Workers, "queue_size", cfg.QueueSize)

	return d
}

// Handle validates and classifies an inbound event. Message events are
// queued for background processing; every other kind is acknowledged and
// logged only. The returned error is always a validation failure.
func (d *Dispatcher) Handle(ctx context.Context, ev *domain.Event) (Ack, error) {
	if err := ev.Validate(); err != nil {
		return Ack{}, err
	}

	metrics.Collector.Counter("orunmila_events_received_total", "Webhook events received by kind", `kind="`+string(ev.Kind)+`"`).Inc()

	switch ev.Kind {
	case domain.KindMessage:
		if strings.TrimSpace(ev.Message.Text) == "" {
			d.logger.Warn("message event has no text content", "event_id", ev.ID)
			return Ack{Success: true, Message: "message has no text content"}, nil
		}
		d.enqueue(ev)
		return Ack{Success: true, Message: "message received and being processed"}, nil

	case domain.KindMessageDelivered, domain.KindMessageRead:
		d.logger.Info("message status update", "event_id", ev.ID, "kind", ev.Kind)
		return Ack{Success: true, Message: fmt.Sprintf("event %s acknowledged", ev.Kind)}, nil

	case domain.KindUserJoined, domain.KindUserLeft:
		d.logger.Info("user event", "event_id", ev.ID, "kind", ev.Kind)
		return Ack{Success: true, Message: fmt.Sprintf("event %s acknowledged", ev.Kind)}, nil
	}

	// Unreachable: Validate rejects unknown kinds.
	return Ack{Success: true, Message: "event kind not handled"}, nil
}

// enqueue is best effort: when the queue is full the event is dropped with
// a warning rather than blocking the acknowledgement. There is no crash
// durability; an in-process queue loses queued work on shutdown mid-drain.
func (d *Dispatcher) enqueue(ev *domain.Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.logger.Warn("dispatch after close, dropping event", "event_id", ev.ID)
		return
	}

	jb := job{id: uuid.NewString(), event: ev}
	select {
	case d.jobs <- jb:
		metrics.Collector.Counter("orunmila_jobs_queued_total", "Background reply jobs accepted onto the queue", "").Inc()
		metrics.Collector.Gauge("orunmila_queue_depth", "Reply jobs currently waiting", "").Set(int64(len(d.jobs)))
	default:
		metrics.Collector.Counter("orunmila_jobs_dropped_total", "Reply jobs dropped because the queue was full", "").Inc()
		d.logger.Warn("job queue full, dropping event",
			"event_id", ev.ID,
			"chat_id", ev.Message.ChatID,
		)
	}
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for jb := range d.jobs {
		d.process(jb)
	}
}

// process derives an answer and delivers it. Errors never escape: the
// generator degrades to fallback text internally, and a delivery failure is
// logged and counted, then the job ends.
func (d *Dispatcher) process(jb job) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("reply job panic", "job_id", jb.id, "panic", r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), d.jobBudget)
	defer cancel()

	msg := jb.event.Message
	log := d.logger.With("job_id", jb.id, "event_id", jb.event.ID, "chat_id", msg.ChatID)
	log.Info("processing message", "sender", msg.From.ID)

	d.sender.SendTyping(ctx, msg.ChatID)

	req := &agent.Requester{ID: msg.From.ID, Name: msg.From.DisplayName()}
	answer := d.answerer.Answer(ctx, strings.TrimSpace(msg.Text), req)

	if _, err := d.sender.Send(ctx, domain.Reply{
		ChatID:  msg.ChatID,
		Text:    answer,
		ReplyTo: msg.ID,
	}); err != nil {
		metrics.Collector.Counter("orunmila_jobs_failed_total", "Reply jobs that failed to deliver", "").Inc()
		log.Error("reply delivery failed", "error", err)
		return
	}

	metrics.Collector.Gauge("orunmila_queue_depth", "Reply jobs currently waiting", "").Set(int64(len(d.jobs)))
	log.Info("reply delivered")
}

// Close stops intake and waits for in-flight jobs to drain.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.jobs)
	d.mu.Unlock()

	d.wg.Wait()
	d.logger.Info("dispatcher stopped")
}
