package stream

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Pkra99/minichat-v2/internal/models"
	"github.com/Pkra99/minichat-v2/internal/segment"
	"github.com/Pkra99/minichat-v2/internal/store"
)

// echoGenerator replies with the inbound message verbatim.
type echoGenerator struct {
	engine string
}

func (g echoGenerator) RequestReply(ctx context.Context, message, tenantID string, mode models.Mode) models.GeneratedReply {
	return models.GeneratedReply{Reply: message, Engine: g.engine, Timestamp: time.Now().UTC()}
}

// fixedGenerator always replies with the same text.
type fixedGenerator struct {
	reply  string
	engine string
}

func (g fixedGenerator) RequestReply(ctx context.Context, message, tenantID string, mode models.Mode) models.GeneratedReply {
	return models.GeneratedReply{Reply: g.reply, Engine: g.engine, Timestamp: time.Now().UTC()}
}

// event records one sink call for assertions.
type event struct {
	kind    string // "chunk", "done", "error"
	text    string
	summary Summary
}

// recordingSink captures every event; failAfter > -1 makes Chunk fail once
// that many chunks have been accepted.
type recordingSink struct {
	events    []event
	failAfter int
}

func newRecordingSink() *recordingSink {
	return &recordingSink{failAfter: -1}
}

func (s *recordingSink) Chunk(text string) error {
	if s.failAfter >= 0 && len(s.chunks()) >= s.failAfter {
		return errors.New("client disconnected")
	}
	s.events = append(s.events, event{kind: "chunk", text: text})
	return nil
}

func (s *recordingSink) Done(summary Summary) error {
	s.events = append(s.events, event{kind: "done", summary: summary})
	return nil
}

func (s *recordingSink) Error(message string) error {
	s.events = append(s.events, event{kind: "error", text: message})
	return nil
}

func (s *recordingSink) chunks() []string {
	var out []string
	for _, e := range s.events {
		if e.kind == "chunk" {
			out = append(out, e.text)
		}
	}
	return out
}

func (s *recordingSink) last() event {
	if len(s.events) == 0 {
		return event{}
	}
	return s.events[len(s.events)-1]
}

func newOrchestrator(st store.HistoryStore, gen Generator) *Orchestrator {
	return NewOrchestrator(st, gen, zerolog.Nop(), time.Millisecond, 2*time.Millisecond)
}

func TestRunHappyPath(t *testing.T) {
	st := store.NewMemoryStore()
	o := newOrchestrator(st, echoGenerator{engine: "EchoEngine"})
	sink := newRecordingSink()

	result := o.Run(context.Background(), Turn{
		TenantID:    "acme",
		Message:     "hello world",
		Granularity: segment.ByWord(),
	}, sink)

	if result.State != StateCompleted {
		t.Fatalf("expected completed, got %q", result.State)
	}

	chunks := sink.chunks()
	want := []string{"hello ", "world"}
	if len(chunks) != 2 || chunks[0] != want[0] || chunks[1] != want[1] {
		t.Fatalf("expected chunks %q, got %q", want, chunks)
	}

	last := sink.last()
	if last.kind != "done" {
		t.Fatalf("expected terminal done event, got %q", last.kind)
	}
	if last.summary.ChunkCount != 2 || last.summary.Engine != "EchoEngine" {
		t.Fatalf("unexpected summary: %+v", last.summary)
	}
	if last.summary.TotalLength != len("hello world") {
		t.Fatalf("unexpected total length %d", last.summary.TotalLength)
	}

	// Both sides of the turn are recorded, in order, and the assistant
	// message equals the concatenation of the delivered units.
	h, _ := st.Snapshot(context.Background(), "acme")
	if len(h.Messages) != 2 {
		t.Fatalf("expected 2 recorded messages, got %d", len(h.Messages))
	}
	if h.Messages[0].Role != models.RoleUser || h.Messages[1].Role != models.RoleAssistant {
		t.Fatalf("unexpected roles: %q, %q", h.Messages[0].Role, h.Messages[1].Role)
	}
	if h.Messages[1].Content != strings.Join(chunks, "") {
		t.Fatalf("assistant message %q != delivered %q", h.Messages[1].Content, strings.Join(chunks, ""))
	}
	if h.Messages[1].Metadata["engine"] != "EchoEngine" {
		t.Fatalf("assistant metadata missing engine: %+v", h.Messages[1].Metadata)
	}
}

func TestRunEmptyReplyStillCompletes(t *testing.T) {
	st := store.NewMemoryStore()
	o := newOrchestrator(st, fixedGenerator{reply: "", engine: "EchoEngine"})
	sink := newRecordingSink()

	result := o.Run(context.Background(), Turn{
		TenantID:    "acme",
		Message:     "anything",
		Granularity: segment.ByWord(),
	}, sink)

	if result.State != StateCompleted {
		t.Fatalf("expected completed, got %q", result.State)
	}
	if len(sink.chunks()) != 0 {
		t.Fatalf("expected no chunks, got %q", sink.chunks())
	}
	last := sink.last()
	if last.kind != "done" || last.summary.ChunkCount != 0 {
		t.Fatalf("expected done with zero chunks, got %+v", last)
	}
}

func TestRunSinkFailureAbortsDelivery(t *testing.T) {
	st := store.NewMemoryStore()
	o := newOrchestrator(st, fixedGenerator{reply: "one two three four", engine: "EchoEngine"})
	sink := newRecordingSink()
	sink.failAfter = 2

	result := o.Run(context.Background(), Turn{
		TenantID:    "acme",
		Message:     "hi",
		Granularity: segment.ByWord(),
	}, sink)

	if result.State != StateFailed {
		t.Fatalf("expected failed, got %q", result.State)
	}
	if got := len(sink.chunks()); got != 2 {
		t.Fatalf("expected delivery to stop after 2 chunks, got %d", got)
	}
	if sink.last().kind != "error" {
		t.Fatalf("expected best-effort error event, got %q", sink.last().kind)
	}

	// The user message is retained; no assistant message is recorded.
	h, _ := st.Snapshot(context.Background(), "acme")
	if len(h.Messages) != 1 || h.Messages[0].Role != models.RoleUser {
		t.Fatalf("expected only the user message, got %+v", h.Messages)
	}
}

func TestRunCancellationStopsDelivery(t *testing.T) {
	st := store.NewMemoryStore()
	o := NewOrchestrator(st, fixedGenerator{reply: "a b c d e f", engine: "EchoEngine"},
		zerolog.Nop(), 50*time.Millisecond, 100*time.Millisecond)
	sink := newRecordingSink()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(60 * time.Millisecond)
		cancel()
	}()

	result := o.Run(ctx, Turn{
		TenantID:    "acme",
		Message:     "hi",
		Granularity: segment.ByWord(),
	}, sink)

	if result.State != StateFailed {
		t.Fatalf("expected failed after cancellation, got %q", result.State)
	}
	if got := len(sink.chunks()); got == 0 || got >= 6 {
		t.Fatalf("expected partial delivery, got %d chunks", got)
	}
}

func TestRunSlowModeIsSlower(t *testing.T) {
	st := store.NewMemoryStore()
	o := NewOrchestrator(st, fixedGenerator{reply: "a b c d", engine: "EchoEngine"},
		zerolog.Nop(), time.Millisecond, 40*time.Millisecond)

	run := func(mode models.Mode) time.Duration {
		sink := newRecordingSink()
		start := time.Now()
		o.Run(context.Background(), Turn{
			TenantID:    "acme",
			Message:     "hi",
			Mode:        mode,
			Granularity: segment.ByWord(),
		}, sink)
		return time.Since(start)
	}

	fast := run(models.ModeFast)
	slow := run(models.ModeSlow)

	// 4 units: slow mode spends at least 3 * 40ms between units.
	if slow < 120*time.Millisecond {
		t.Fatalf("slow mode finished too quickly: %v", slow)
	}
	if fast >= slow {
		t.Fatalf("fast run (%v) should be quicker than slow run (%v)", fast, slow)
	}
}

func TestRunFixedSizeGranularity(t *testing.T) {
	st := store.NewMemoryStore()
	reply := strings.Repeat("0123456789", 12)
	o := newOrchestrator(st, fixedGenerator{reply: reply, engine: "RuleBasedEngine"})
	sink := newRecordingSink()

	result := o.Run(context.Background(), Turn{
		TenantID:    "acme",
		Message:     "hi",
		Granularity: segment.BySize(50),
	}, sink)

	if result.State != StateCompleted {
		t.Fatalf("expected completed, got %q", result.State)
	}
	if strings.Join(sink.chunks(), "") != reply {
		t.Fatal("delivered chunks do not reassemble the reply")
	}
	if result.Summary.ChunkCount != len(sink.chunks()) {
		t.Fatalf("summary chunk count %d != delivered %d", result.Summary.ChunkCount, len(sink.chunks()))
	}
}
