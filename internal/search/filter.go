package search

import (
	"time"

	"github.com/HendryAvila/clinimap/internal/records"
)

// Filter narrows the processes shown on a map. Zero fields do not filter.
type Filter struct {
	Dimensions []records.Dimension
	SessionIDs []string
	// From and To bound the session date, both inclusive.
	From time.Time
	To   time.Time
	Text string
}

// Apply returns the processes of sessions that pass every set criterion,
// in session/process order.
func (f Filter) Apply(sessions []records.Session) []records.Process {
	dims := toSet(f.Dimensions)
	ids := toSet(f.SessionIDs)

	var out []records.Process
	for _, s := range sessions {
		if len(ids) > 0 {
			if _, ok := ids[s.ID]; !ok {
				continue
			}
		}
		if !f.From.IsZero() && s.Date.Before(f.From) {
			continue
		}
		if !f.To.IsZero() && s.Date.After(f.To) {
			continue
		}
		for _, p := range s.Processes {
			if len(dims) > 0 {
				if _, ok := dims[p.Dimension]; !ok {
					continue
				}
			}
			if f.Text != "" && Count(p.Text, f.Text) == 0 {
				continue
			}
			out = append(out, p)
		}
	}
	return out
}

func toSet[T comparable](items []T) map[T]struct{} {
	set := make(map[T]struct{}, len(items))
	for _, it := range items {
		set[it] = struct{}{}
	}
	return set
}
