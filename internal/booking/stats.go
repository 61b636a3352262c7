package booking

import (
	"context"
	"fmt"
)

// CountedLabel is a "most X" metric result: the winning key and its count.
type CountedLabel struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type Statistics struct {
	MostConsultedSpecialty CountedLabel `json:"most_consulted_specialty"`
	BusiestDay             CountedLabel `json:"busiest_day"`
	MostUsedModality       CountedLabel `json:"most_used_modality"`
	TotalSessions          int          `json:"total_sessions"`
	TotalProviders         int          `json:"total_providers"`
}

// Aggregator folds the historical session dataset and the active bookings
// into summary statistics. It never mutates either source.
type Aggregator struct {
	sessions SessionStore
	ledger   Ledger
}

func NewAggregator(sessions SessionStore, ledger Ledger) *Aggregator {
	return &Aggregator{sessions: sessions, ledger: ledger}
}

// Summarize recomputes the statistics from scratch: seed sessions first, then
// active bookings in ledger order. When two keys tie on count, the one seen
// first in that combined order wins, so repeated runs over the same data give
// the same answer.
func (a *Aggregator) Summarize(ctx context.Context) (*Statistics, error) {
	sessions, err := a.sessions.ListSessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	bookings, err := a.ledger.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active bookings: %w", err)
	}

	specialties := newCounter()
	days := newCounter()
	modalities := newCounter()
	providers := make(map[string]struct{})

	fold := func(providerID, specialty, weekday string, modality Modality) {
		specialties.add(specialty)
		days.add(weekday)
		modalities.add(string(modality))
		providers[providerID] = struct{}{}
	}

	for _, s := range sessions {
		fold(s.ProviderID, s.Specialty, s.Date.Weekday().String(), s.Modality)
	}
	for _, b := range bookings {
		fold(b.ProviderID, b.Specialty, b.Date.Weekday().String(), b.Modality)
	}

	return &Statistics{
		MostConsultedSpecialty: specialties.max(),
		BusiestDay:             days.max(),
		MostUsedModality:       modalities.max(),
		TotalSessions:          len(sessions) + len(bookings),
		TotalProviders:         len(providers),
	}, nil
}

// counter tracks per-key counts while remembering first-seen order, which is
// what makes the tie-break deterministic.
type counter struct {
	counts map[string]int
	order  []string
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) add(key string) {
	if _, seen := c.counts[key]; !seen {
		c.order = append(c.order, key)
	}
	c.counts[key]++
}

func (c *counter) max() CountedLabel {
	var best CountedLabel
	for _, key := range c.order {
		if c.counts[key] > best.Count {
			best = CountedLabel{Name: key, Count: c.counts[key]}
		}
	}
	return best
}
