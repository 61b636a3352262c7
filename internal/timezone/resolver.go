package timezone

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

var ErrUnknownTimezone = errors.New("unknown timezone")

// Resolver answers UTC offset queries for IANA timezone identifiers, backed by
// the host tz database. Successful lookups are cached.
type Resolver struct {
	mu    sync.RWMutex
	cache map[string]*time.Location
}

func NewResolver() *Resolver {
	return &Resolver{cache: make(map[string]*time.Location)}
}

// Location resolves an IANA identifier, returning ErrUnknownTimezone when the
// host database does not know it.
func (r *Resolver) Location(id string) (*time.Location, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty identifier", ErrUnknownTimezone)
	}

	r.mu.RLock()
	loc, ok := r.cache[id]
	r.mu.RUnlock()
	if ok {
		return loc, nil
	}

	loc, err := time.LoadLocation(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTimezone, id)
	}

	r.mu.Lock()
	r.cache[id] = loc
	r.mu.Unlock()

	return loc, nil
}

// OffsetMinutes returns how many minutes the zone is ahead of UTC at the given
// instant. The same zone can answer differently across a DST transition.
func (r *Resolver) OffsetMinutes(id string, at time.Time) (int, error) {
	loc, err := r.Location(id)
	if err != nil {
		return 0, err
	}
	_, offsetSeconds := at.In(loc).Zone()
	return offsetSeconds / 60, nil
}
