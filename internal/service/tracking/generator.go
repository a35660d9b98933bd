package tracking

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/Domenick1991/parcelbooking/internal/domain"
	"github.com/sirupsen/logrus"
)

const (
	Prefix      = "DL"
	MaxSequence = 999
	dayLayout   = "20060102"
)

var pattern = regexp.MustCompile(`^DL[0-9]{11}$`)

// Valid reports whether id has the DL + YYYYMMDD + NNN shape.
func Valid(id string) bool {
	return pattern.MatchString(id)
}

func Format(day time.Time, seq int) string {
	return fmt.Sprintf("%s%s%03d", Prefix, day.Format(dayLayout), seq)
}

type Store interface {
	TrackingIDExists(ctx context.Context, trackingID string) (bool, error)
}

// SequenceHint hands out a per-day counter shared by every process so
// concurrent callers start their search at different sequences.
type SequenceHint interface {
	NextTrackingSeq(ctx context.Context, day string) (int64, error)
}

type Generator struct {
	store Store
	hint  SequenceHint
	loc   *time.Location
	now   func() time.Time
	log   logrus.FieldLogger
}

type Option func(*Generator)

func WithSequenceHint(hint SequenceHint) Option {
	return func(g *Generator) {
		g.hint = hint
	}
}

func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		g.now = now
	}
}

func WithLocation(loc *time.Location) Option {
	return func(g *Generator) {
		if loc != nil {
			g.loc = loc
		}
	}
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(g *Generator) {
		g.log = log
	}
}

func NewGenerator(store Store, opts ...Option) *Generator {
	g := &Generator{store: store, loc: time.UTC, now: time.Now, log: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate returns the first unused id for today. The store's unique
// constraint is still the final arbiter: a caller whose insert collides
// should call Generate again.
//
// When all 999 sequences of the day are taken it returns
// domain.ErrTrackingIDExhausted.
func (g *Generator) Generate(ctx context.Context) (string, error) {
	day := g.now().In(g.loc)
	start := g.startSequence(ctx, day.Format(dayLayout))

	for i := 0; i < MaxSequence; i++ {
		seq := (start-1+i)%MaxSequence + 1
		candidate := Format(day, seq)
		exists, err := g.store.TrackingIDExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: %s", domain.ErrTrackingIDExhausted, day.Format(dayLayout))
}

// startSequence falls back to 1 whenever the hint is missing, failing or out
// of range. Past 999 the hint no longer helps, so the full range is scanned.
func (g *Generator) startSequence(ctx context.Context, day string) int {
	if g.hint == nil {
		return 1
	}
	n, err := g.hint.NextTrackingSeq(ctx, day)
	if err != nil {
		g.log.WithError(err).Warn("tracking sequence hint unavailable")
		return 1
	}
	if n < 1 || n > MaxSequence {
		return 1
	}
	return int(n)
}
