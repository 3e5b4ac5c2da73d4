package dispatch

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"orunmila/internal/agent"
	"orunmila/internal/domain"
)

type fakeAnswerer struct {
	mu      sync.Mutex
	answers []string
	lastReq *agent.Requester
}

func (f *fakeAnswerer) Answer(_ context.Context, question string, req *agent.Requester) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.answers = append(f.answers, question)
	f.lastReq = req
	return "answer to: " + question
}

type fakeSender struct {
	mu      sync.Mutex
	sent    []domain.Reply
	typing  []string
	sendErr error
	done    chan struct{}
}

func newFakeSender() *fakeSender {
	return &fakeSender{done: make(chan struct{}, 16)}
}

func (f *fakeSender) Send(_ context.Context, reply domain.Reply) (*domain.DeliveryResult, error) {
	f.mu.Lock()
	f.sent = append(f.sent, reply)
	err := f.sendErr
	f.mu.Unlock()
	f.done <- struct{}{}
	if err != nil {
		return nil, err
	}
	return &domain.DeliveryResult{ChatID: reply.ChatID, MessageID: "m-out"}, nil
}

func (f *fakeSender) SendTyping(_ context.Context, chatID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.typing = append(f.typing, chatID)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func messageEvent(text string) *domain.Event {
	return &domain.Event{
		ID:        "evt-1",
		Kind:      domain.KindMessage,
		Timestamp: time.Now(),
		Message: &domain.Message{
			ID:     "msg-1",
			From:   domain.Sender{ID: "u-1", FirstName: "Ade"},
			ChatID: "chat-1",
			Text:   text,
		},
	}
}

func waitForSend(t *testing.T, s *fakeSender) {
	t.Helper()
	select {
	case <-s.done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for delivery")
	}
}

func TestHandle_MessageEventQueuedAndDelivered(t *testing.T) {
	ans := &fakeAnswerer{}
	snd := newFakeSender()
	d := New(Config{Answerer: ans, Sender: snd, Logger: testLogger(), Workers: 1})
	defer d.Close()

	ack, err := d.Handle(context.Background(), messageEvent("  Who was Moremi?  "))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !ack.Success {
		t.Error("ack should be successful")
	}

	waitForSend(t, snd)

	snd.mu.Lock()
	defer snd.mu.Unlock()
	if len(snd.sent) != 1 {
		t.Fatalf("sent %d replies, want 1", len(snd.sent))
	}
	reply := snd.sent[0]
	if reply.ChatID != "chat-1" {
		t.Errorf("chat id = %q", reply.ChatID)
	}
	if reply.ReplyTo != "msg-1" {
		t.Errorf("reply should thread onto the inbound message, got %q", reply.ReplyTo)
	}
	if reply.Text != "answer to: Who was Moremi?" {
		t.Errorf("text = %q; question should be trimmed before answering", reply.Text)
	}
	if len(snd.typing) != 1 || snd.typing[0] != "chat-1" {
		t.Errorf("typing indicator not sent: %v", snd.typing)
	}

	ans.mu.Lock()
	defer ans.mu.Unlock()
	if ans.lastReq == nil || ans.lastReq.Name != "Ade" {
		t.Errorf("requester not derived from sender: %+v", ans.lastReq)
	}
}

func TestHandle_EmptyTextAckedWithoutWork(t *testing.T) {
	ans := &fakeAnswerer{}
	snd := newFakeSender()
	d := New(Config{Answerer: ans, Sender: snd, Logger: testLogger(), Workers: 1})
	defer d.Close()

	ack, err := d.Handle(context.Background(), messageEvent("   "))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !ack.Success {
		t.Error("empty text is still acknowledged")
	}
	if ack.Message != "message has no text content" {
		t.Errorf("ack message = %q", ack.Message)
	}

	select {
	case <-snd.done:
		t.Fatal("no delivery expected for empty text")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestHandle_NonMessageKindsNotQueued(t *testing.T) {
	ans := &fakeAnswerer{}
	snd := newFakeSender()
	d := New(Config{Answerer: ans, Sender: snd, Logger: testLogger(), Workers: 1})
	defer d.Close()

	for _, kind := range []domain.EventKind{
		domain.KindMessageDelivered,
		domain.KindMessageRead,
		domain.KindUserJoined,
		domain.KindUserLeft,
	} {
		ack, err := d.Handle(context.Background(), &domain.Event{ID: "evt-2", Kind: kind, Timestamp: time.Now()})
		if err != nil {
			t.Fatalf("kind %s: %v", kind, err)
		}
		if !ack.Success {
			t.Errorf("kind %s should be acknowledged", kind)
		}
	}

	select {
	case <-snd.done:
		t.Fatal("status and user events must not produce deliveries")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestHandle_InvalidEventRejected(t *testing.T) {
	d := New(Config{Answerer: &fakeAnswerer{}, Sender: newFakeSender(), Logger: testLogger(), Workers: 1})
	defer d.Close()

	tests := []struct {
		name string
		ev   *domain.Event
	}{
		{"unknown kind", &domain.Event{ID: "e", Kind: "mystery", Timestamp: time.Now()}},
		{"message without message", &domain.Event{ID: "e", Kind: domain.KindMessage, Timestamp: time.Now()}},
		{"missing id", &domain.Event{Kind: domain.KindUserJoined, Timestamp: time.Now()}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := d.Handle(context.Background(), tt.ev); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestProcess_DeliveryFailureContained(t *testing.T) {
	snd := newFakeSender()
	snd.sendErr = errors.New("platform down")
	d := New(Config{Answerer: &fakeAnswerer{}, Sender: snd, Logger: testLogger(), Workers: 1})

	if _, err := d.Handle(context.Background(), messageEvent("hello")); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	waitForSend(t, snd)

	// Close must not hang after a failed job, and further events still flow.
	d.Close()
}

func TestClose_DrainsQueuedJobs(t *testing.T) {
	snd := newFakeSender()
	d := New(Config{Answerer: &fakeAnswerer{}, Sender: snd, Logger: testLogger(), Workers: 2, QueueSize: 8})

	for i := 0; i < 5; i++ {
		if _, err := d.Handle(context.Background(), messageEvent("question")); err != nil {
			t.Fatalf("Handle: %v", err)
		}
	}
	d.Close()

	snd.mu.Lock()
	defer snd.mu.Unlock()
	if len(snd.sent) != 5 {
		t.Errorf("Close should drain the queue, delivered %d of 5", len(snd.sent))
	}
}

// blockingAnswerer holds every answer open until released, pinning the
// worker so the queue can saturate.
type blockingAnswerer struct {
	release chan struct{}
}

func (b *blockingAnswerer) Answer(ctx context.Context, _ string, _ *agent.Requester) string {
	select {
	case <-b.release:
	case <-ctx.Done():
	}
	return "answered"
}

func TestHandle_QueueFullDropsWithoutBlocking(t *testing.T) {
	ans := &blockingAnswerer{release: make(chan struct{})}
	snd := newFakeSender()
	d := New(Config{Answerer: ans, Sender: snd, Logger: testLogger(), Workers: 1, QueueSize: 1})

	// one event occupies the worker, one fills the queue, the rest must be
	// dropped while the ack still succeeds immediately
	const events = 5
	acked := make(chan Ack, events)
	go func() {
		for i := 0; i < events; i++ {
			ack, err := d.Handle(context.Background(), messageEvent("question"))
			if err != nil {
				t.Errorf("Handle: %v", err)
			}
			acked <- ack
		}
	}()

	for i := 0; i < events; i++ {
		select {
		case ack := <-acked:
			if !ack.Success {
				t.Error("saturated queue must still acknowledge success")
			}
		case <-time.After(2 * time.Second):
			t.Fatal("Handle blocked on a full queue")
		}
	}

	close(ans.release)
	d.Close()

	snd.mu.Lock()
	defer snd.mu.Unlock()
	delivered := len(snd.sent)
	if delivered < 1 || delivered > 2 {
		t.Errorf("delivered %d replies, want 1-2 (worker + queue slot); the rest are dropped", delivered)
	}
}

func TestHandle_AfterCloseDropsQuietly(t *testing.T) {
	d := New(Config{Answerer: &fakeAnswerer{}, Sender: newFakeSender(), Logger: testLogger(), Workers: 1})
	d.Close()

	// must not panic on the closed channel
	ack, err := d.Handle(context.Background(), messageEvent("late"))
	if err != nil {
		t.Fatalf("Handle after close: %v", err)
	}
	if !ack.Success {
		t.Error("late events are still acknowledged")
	}
}
