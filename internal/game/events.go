package game

import "fmt"

// Event is the engine-side bookkeeping of a narrative event.
type Event struct {
	ID           int     `json:"id" yaml:"id"`
	Name         string  `json:"name" yaml:"name"`
	Locked       bool    `json:"locked" yaml:"locked"`
	ProbModifier float64 `json:"prob_modifier" yaml:"prob_modifier"` // baseline 1.0
}

// QueuedEvent is an event scheduled to fire after Years more years.
type QueuedEvent struct {
	EventID int  `json:"event_id"`
	Region  *int `json:"region,omitempty"`
	Years   int  `json:"years"`
}

// EventPool holds the events and the queue of triggered events.
type EventPool struct {
	Events []Event        `json:"events"`
	Queue  []QueuedEvent `json:"queue"`
}

// Event returns the event with the given id.
func (p *EventPool) Event(id int) (*Event, error) {
	if id < 0 || id >= len(p.Events) {
		return nil, fmt.Errorf("event %d: %w", id, ErrNotFound)
	}
	return &p.Events[id], nil
}

// QueueEvent schedules an event to fire in years, optionally in a region.
func (p *EventPool) QueueEvent(id int, region *int, years int) error {
	if _, err := p.Event(id); err != nil {
		return err
	}
	q := QueuedEvent{EventID: id, Years: years}
	if region != nil {
		r := *region
		q.Region = &r
	}
	p.Queue = append(p.Queue, q)
	return nil
}

// Advance counts every queued event down by one year and removes and
// returns the ones that are due, in queue order.
func (p *EventPool) Advance() []QueuedEvent {
	var due []QueuedEvent
	n := 0
	for _, q := range p.Queue {
		q.Years--
		if q.Years <= 0 {
			due = append(due, q)
			continue
		}
		p.Queue[n] = q
		n++
	}
	p.Queue = p.Queue[:n]
	return due
}
