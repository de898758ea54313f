// Package events distributes entity snapshots to live subscribers.
//
// A Hub is an explicit subscription registry: listeners subscribe to a topic,
// receive the latest snapshot immediately, and receive every later snapshot
// until they call the returned unsubscribe function. RedisRelay carries
// "topic changed" notices between API instances.
package events

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Topic names an entity collection whose full list is published on change.
type Topic string

const (
	TopicTrips     Topic = "trips"
	TopicVehicles  Topic = "vehicles"
	TopicDrivers   Topic = "drivers"
	TopicCustomers Topic = "customers"
	TopicExpenses  Topic = "expenses"
)

// AllTopics lists every topic in publish order.
var AllTopics = []Topic{TopicTrips, TopicVehicles, TopicDrivers, TopicCustomers, TopicExpenses}

// Valid reports whether t is a known topic.
func (t Topic) Valid() bool {
	for _, known := range AllTopics {
		if t == known {
			return true
		}
	}
	return false
}

// ParseTopics splits a comma-separated topic list, dropping blanks and
// duplicates. An empty input yields every topic.
func ParseTopics(raw string) ([]Topic, error) {
	if strings.TrimSpace(raw) == "" {
		return append([]Topic(nil), AllTopics...), nil
	}
	seen := make(map[Topic]bool)
	var topics []Topic
	for _, part := range strings.Split(raw, ",") {
		t := Topic(strings.TrimSpace(part))
		if t == "" || seen[t] {
			continue
		}
		if !t.Valid() {
			return nil, fmt.Errorf("unknown topic %q", t)
		}
		seen[t] = true
		topics = append(topics, t)
	}
	return topics, nil
}

// Snapshot is the full current list of one topic. Data holds the domain
// slice for the topic, e.g. []domain.Trip for TopicTrips.
type Snapshot struct {
	Topic Topic
	Data  any
	At    time.Time
	// Seq orders snapshots of one topic. Publish assigns it.
	Seq uint64
}

// Listener receives snapshots. It is called synchronously from Publish and
// must not block.
type Listener func(Snapshot)

// Hub fans snapshots out to subscribed listeners. The zero value is not
// usable; construct with NewHub. Safe for concurrent use.
//
// A listener never receives a snapshot older than one it has already seen,
// so the last snapshot it received is always the newest published.
type Hub struct {
	mu        sync.Mutex
	nextID    int
	listeners map[Topic]map[int]*subscription
	latest    map[Topic]Snapshot
	seq       map[Topic]uint64
}

// subscription serializes delivery to one listener and drops stale snapshots.
type subscription struct {
	mu   sync.Mutex
	l    Listener
	seen uint64
}

func (s *subscription) deliver(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if snap.Seq <= s.seen {
		return
	}
	s.seen = snap.Seq
	s.l(snap)
}

// NewHub returns an empty Hub.
func NewHub() *Hub {
	return &Hub{
		listeners: make(map[Topic]map[int]*subscription),
		latest:    make(map[Topic]Snapshot),
		seq:       make(map[Topic]uint64),
	}
}

// Subscribe registers l for topic and returns a function that removes it.
// If a snapshot has already been published for topic, l receives it before
// Subscribe returns. Calling the unsubscribe function more than once is safe.
func (h *Hub) Subscribe(topic Topic, l Listener) (unsubscribe func()) {
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	if h.listeners[topic] == nil {
		h.listeners[topic] = make(map[int]*subscription)
	}
	sub := &subscription{l: l}
	h.listeners[topic][id] = sub
	current, ok := h.latest[topic]
	h.mu.Unlock()

	if ok {
		sub.deliver(current)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.listeners[topic], id)
			h.mu.Unlock()
		})
	}
}

// Publish records s as the latest snapshot of its topic and delivers it to
// every listener subscribed at the time of the call. Listeners run outside
// the hub lock so they may subscribe or unsubscribe, but must not publish to
// the topic they listen on.
func (h *Hub) Publish(s Snapshot) {
	if s.At.IsZero() {
		s.At = time.Now().UTC()
	}

	h.mu.Lock()
	h.seq[s.Topic]++
	s.Seq = h.seq[s.Topic]
	h.latest[s.Topic] = s
	targets := make([]*subscription, 0, len(h.listeners[s.Topic]))
	for _, sub := range h.listeners[s.Topic] {
		targets = append(targets, sub)
	}
	h.mu.Unlock()

	for _, sub := range targets {
		sub.deliver(s)
	}
}

// Latest returns the most recent snapshot published for topic.
func (h *Hub) Latest(topic Topic) (Snapshot, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.latest[topic]
	return s, ok
}

// SubscriberCount returns the number of listeners on topic.
func (h *Hub) SubscriberCount(topic Topic) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.listeners[topic])
}
