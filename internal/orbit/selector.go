package orbit

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Mode selects where the next parameter set comes from.
type Mode int

const (
	ModeRandom Mode = iota
	ModeCurated
)

func (m Mode) String() string {
	if m == ModeCurated {
		return "curated"
	}
	return "random"
}

// ParseMode accepts "random" or "curated".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "random", "":
		return ModeRandom, nil
	case "curated":
		return ModeCurated, nil
	}
	return ModeRandom, fmt.Errorf("orbit: unknown mode %q", s)
}

// Rating bounds for history feedback.
const (
	MinRating = 1
	MaxRating = 5
)

// Entry is one record in the selection history.
type Entry struct {
	Params Params `json:"params"`
	Mode   string `json:"mode"`
	Rating int    `json:"rating,omitempty"`
}

// Selector hands out parameter sets and keeps an append-only history of
// everything it has handed out.
type Selector struct {
	catalog Catalog
	cursor  int
	rng     *rand.Rand
	now     func() time.Time

	history []Entry
	index   map[string]int
}

func NewSelector(catalog Catalog, rng *rand.Rand) *Selector {
	return &Selector{
		catalog: catalog,
		rng:     rng,
		now:     time.Now,
		history: make([]Entry, 0, 64),
		index:   make(map[string]int),
	}
}

// SetClock replaces the timestamp source.
func (s *Selector) SetClock(now func() time.Time) { s.now = now }

// Cursor is the catalog index the next curated selection will return.
func (s *Selector) Cursor() int { return s.cursor }

// Select returns the next parameter set for the given mode and records it.
// Curated mode falls back to random when the catalog is empty.
func (s *Selector) Select(mode Mode) Params {
	var p Params
	if mode == ModeCurated && len(s.catalog) > 0 {
		if s.cursor >= len(s.catalog) {
			s.cursor = 0
		}
		p = s.catalog[s.cursor]
		s.cursor++
		p.ID = uuid.NewString()
		p.CreatedAt = s.now()
	} else {
		mode = ModeRandom
		p = RandomParams(s.rng, s.now())
	}

	s.index[p.ID] = len(s.history)
	s.history = append(s.history, Entry{Params: p, Mode: mode.String()})
	return p
}

// History returns a copy of the log in append order.
func (s *Selector) History() []Entry {
	out := make([]Entry, len(s.history))
	copy(out, s.history)
	return out
}

// Latest returns the most recently created entry. Equal timestamps resolve to
// the last appended.
func (s *Selector) Latest() (Params, bool) {
	if len(s.history) == 0 {
		return Params{}, false
	}
	best := 0
	for i := 1; i < len(s.history); i++ {
		if !s.history[i].Params.CreatedAt.Before(s.history[best].Params.CreatedAt) {
			best = i
		}
	}
	return s.history[best].Params, true
}

// Rate attaches feedback to a history entry.
func (s *Selector) Rate(id string, rating int) error {
	if rating < MinRating || rating > MaxRating {
		return fmt.Errorf("%w: %d", ErrInvalidRating, rating)
	}
	i, ok := s.index[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownEntry, id)
	}
	s.history[i].Rating = rating
	return nil
}
