// Package stream drives one chat turn over a single open client channel:
// record the user message, fetch a complete reply, re-segment it into timed
// delivery units, forward them in order, record the assembled reply and emit
// a terminal summary.
package stream

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Pkra99/minichat-v2/internal/metrics"
	"github.com/Pkra99/minichat-v2/internal/models"
	"github.com/Pkra99/minichat-v2/internal/segment"
	"github.com/Pkra99/minichat-v2/internal/store"
)

// Default inter-unit delays per mode.
const (
	DefaultDelay     = 30 * time.Millisecond
	DefaultSlowDelay = 100 * time.Millisecond
)

// Generator produces one complete reply per turn. The contract is total:
// implementations absorb their own failures into a degraded reply.
type Generator interface {
	RequestReply(ctx context.Context, message, tenantID string, mode models.Mode) models.GeneratedReply
}

// Summary is the terminal event for a completed turn.
type Summary struct {
	Engine      string `json:"engine"`
	TotalLength int    `json:"totalLength"`
	ChunkCount  int    `json:"chunkCount"`
}

// EventSink is the open channel to one client. Implementations report a send
// failure by returning an error, which aborts the rest of the delivery.
type EventSink interface {
	Chunk(text string) error
	Done(summary Summary) error
	Error(message string) error
}

// State names a stage of the per-turn state machine.
type State string

const (
	StateReceived           State = "received"
	StateRecordingUser      State = "recording_user"
	StateGenerating         State = "generating"
	StateDelivering         State = "delivering"
	StateRecordingAssistant State = "recording_assistant"
	StateCompleted          State = "completed"
	StateFailed             State = "failed"
)

// Turn is one validated inbound chat turn.
type Turn struct {
	TenantID    string
	Message     string
	Mode        models.Mode
	Granularity segment.Granularity
}

// Result reports how a turn ended.
type Result struct {
	TurnID  string
	State   State
	Summary Summary
}

// Orchestrator runs turns against a shared history store. One orchestrator
// serves many channels; each Run is an independent state machine that only
// suspends at the generator call and at inter-unit delays.
type Orchestrator struct {
	store     store.HistoryStore
	generator Generator
	logger    zerolog.Logger
	delay     time.Duration
	slowDelay time.Duration
}

// NewOrchestrator creates an orchestrator. Non-positive delays fall back to
// the defaults.
func NewOrchestrator(st store.HistoryStore, gen Generator, logger zerolog.Logger, delay, slowDelay time.Duration) *Orchestrator {
	if delay <= 0 {
		delay = DefaultDelay
	}
	if slowDelay <= 0 {
		slowDelay = DefaultSlowDelay
	}
	return &Orchestrator{
		store:     st,
		generator: gen,
		logger:    logger,
		delay:     delay,
		slowDelay: slowDelay,
	}
}

// delayFor maps a mode to its inter-unit delay.
func (o *Orchestrator) delayFor(mode models.Mode) time.Duration {
	if mode == models.ModeSlow {
		return o.slowDelay
	}
	return o.delay
}

// Run executes one turn. The user message is recorded before generation and
// is retained even when delivery later fails; the assistant message is the
// exact concatenation of every unit sent.
func (o *Orchestrator) Run(ctx context.Context, turn Turn, sink EventSink) Result {
	turnID := uuid.NewString()
	logger := o.logger.With().
		Str("turn_id", turnID).
		Str("tenant", turn.TenantID).
		Logger()

	state := StateReceived
	metrics.TurnsStarted.WithLabelValues(modeLabel(turn.Mode)).Inc()

	// Received -> RecordingUser
	state = StateRecordingUser
	if _, err := o.store.Append(ctx, turn.TenantID, models.RoleUser, turn.Message, models.Metadata{"turnId": turnID}); err != nil {
		return o.fail(logger, turnID, state, sink, err)
	}
	metrics.MessagesStored.WithLabelValues(string(models.RoleUser)).Inc()

	// RecordingUser -> Generating. The generator contract is total, so this
	// transition cannot fail.
	state = StateGenerating
	reply := o.generator.RequestReply(ctx, turn.Message, turn.TenantID, turn.Mode)

	// Generating -> Delivering
	state = StateDelivering
	units := segment.Split(reply.Reply, turn.Granularity)
	timed := segment.NewTimedSequence(segment.NewSequence(units), o.delayFor(turn.Mode))

	logger.Info().
		Str("engine", reply.Engine).
		Int("units", len(units)).
		Str("mode", modeLabel(turn.Mode)).
		Msg("delivering reply")

	for {
		unit, ok, err := timed.Next(ctx)
		if err != nil {
			return o.fail(logger, turnID, state, sink, err)
		}
		if !ok {
			break
		}
		if err := sink.Chunk(unit.Text); err != nil {
			return o.fail(logger, turnID, state, sink, err)
		}
		metrics.DeliveryUnits.Inc()
	}

	// Delivering -> RecordingAssistant
	state = StateRecordingAssistant
	meta := models.Metadata{"turnId": turnID, "engine": reply.Engine}
	if _, err := o.store.Append(ctx, turn.TenantID, models.RoleAssistant, reply.Reply, meta); err != nil {
		return o.fail(logger, turnID, state, sink, err)
	}
	metrics.MessagesStored.WithLabelValues(string(models.RoleAssistant)).Inc()

	// RecordingAssistant -> Completed
	summary := Summary{
		Engine:      reply.Engine,
		TotalLength: len(reply.Reply),
		ChunkCount:  len(units),
	}
	if err := sink.Done(summary); err != nil {
		return o.fail(logger, turnID, StateCompleted, sink, err)
	}

	metrics.TurnsCompleted.Inc()
	logger.Info().
		Int("total_length", summary.TotalLength).
		Int("chunk_count", summary.ChunkCount).
		Msg("turn completed")

	return Result{TurnID: turnID, State: StateCompleted, Summary: summary}
}

// fail aborts remaining delivery, attempts one best-effort error event and
// reports the turn as failed. Already-recorded messages are not rolled back.
func (o *Orchestrator) fail(logger zerolog.Logger, turnID string, at State, sink EventSink, err error) Result {
	logger.Warn().Err(err).Str("state", string(at)).Msg("turn aborted")
	metrics.TurnsFailed.Inc()

	if sinkErr := sink.Error("Stream error"); sinkErr != nil {
		logger.Debug().Err(sinkErr).Msg("could not deliver error event")
	}

	return Result{TurnID: turnID, State: StateFailed}
}

func modeLabel(mode models.Mode) string {
	if mode == models.ModeDefault {
		return "default"
	}
	return string(mode)
}
