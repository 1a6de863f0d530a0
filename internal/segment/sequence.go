package segment

import (
	"context"
	"time"
)

// Sequence is a finite, restartable pull iterator over units. It carries no
// timing of its own, which keeps splitting testable independently of delivery.
type Sequence struct {
	units []Unit
	pos   int
}

// NewSequence returns a sequence over the given units.
func NewSequence(units []Unit) *Sequence {
	return &Sequence{units: units}
}

// Next returns the next unit, or ok=false once the sequence is exhausted.
func (s *Sequence) Next() (Unit, bool) {
	if s.pos >= len(s.units) {
		return Unit{}, false
	}
	u := s.units[s.pos]
	s.pos++
	return u, true
}

// Reset rewinds the sequence to the first unit.
func (s *Sequence) Reset() {
	s.pos = 0
}

// Len returns the total number of units in the sequence.
func (s *Sequence) Len() int {
	return len(s.units)
}

// TimedSequence paces a Sequence with a fixed delay between successive units.
// There is no delay before the first unit and none after the last.
type TimedSequence struct {
	seq     *Sequence
	delay   time.Duration
	yielded bool
}

// NewTimedSequence wraps seq with the given inter-unit delay.
func NewTimedSequence(seq *Sequence, delay time.Duration) *TimedSequence {
	return &TimedSequence{seq: seq, delay: delay}
}

// Next blocks for the inter-unit delay (except before the first unit) and
// returns the next unit. It returns ok=false once exhausted, or the context
// error if cancelled while waiting.
func (t *TimedSequence) Next(ctx context.Context) (Unit, bool, error) {
	u, ok := t.seq.Next()
	if !ok {
		return Unit{}, false, nil
	}

	if t.yielded && t.delay > 0 {
		timer := time.NewTimer(t.delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return Unit{}, false, ctx.Err()
		case <-timer.C:
		}
	}

	t.yielded = true
	return u, true, nil
}
