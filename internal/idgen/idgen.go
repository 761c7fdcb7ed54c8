// Package idgen provides the injectable id source spec.md §5 requires:
// process ids and invisible-task ids must come from a pluggable supplier
// so transformation tests can assert byte-stable output.
package idgen

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Source generates the two kinds of identifiers the graph transformer
// needs at runtime. Implementations must be safe to call repeatedly from
// a single-threaded transform() invocation; concurrent use is not
// required (see spec.md §5, "single transformer instance per call").
type Source interface {
	// NewProcessID returns a fresh process scope identifier.
	NewProcessID() string
	// NewInvisibleID returns a fresh invisible-task identifier, already
	// carrying the "invisible_" prefix spec.md §3 requires.
	NewInvisibleID() string
}

// uuidSource is the production Source backed by github.com/google/uuid.
type uuidSource struct{}

// Default is the production id source used when callers do not supply
// their own.
var Default Source = uuidSource{}

func (uuidSource) NewProcessID() string {
	return uuid.NewString()
}

func (uuidSource) NewInvisibleID() string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("invisible_%s", hex[:8])
}

// Sequence is a deterministic Source for tests: it returns the injected
// process id on every call, and "invisible_<seed><counter>" (counter as
// two hex digits, starting at 01) for every invisible task, matching spec.md §8's requirement that two transformations of the
// same input agree modulo process_id and invisible-task ids.
type Sequence struct {
	ProcessID string
	Seed      string
	counter   int
}

func (s *Sequence) NewProcessID() string {
	return s.ProcessID
}

func (s *Sequence) NewInvisibleID() string {
	s.counter++
	return fmt.Sprintf("invisible_%s%02x", s.Seed, s.counter)
}
