package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/pkordes/travel-desk/internal/events"
	"github.com/pkordes/travel-desk/internal/repo"
)

// Publisher receives full-list snapshots. *events.Hub satisfies it.
type Publisher interface {
	Publish(events.Snapshot)
}

// Announcer tells other API instances that a topic changed.
// *events.RedisRelay satisfies it.
type Announcer interface {
	Announce(ctx context.Context, topic events.Topic) error
}

// FeedSources are the repos a ChangeFeed reloads snapshots from.
type FeedSources struct {
	Trips     repo.TripRepo
	Vehicles  repo.VehicleRepo
	Drivers   repo.DriverRepo
	Customers repo.CustomerRepo
	Expenses  repo.ExpenseRepo
}

// ChangeFeed turns mutations into published snapshots. After a write, the
// mutating service calls Changed with the affected topics; the feed reloads
// each full list, publishes it locally, and announces it to other instances.
type ChangeFeed struct {
	pub       Publisher
	src       FeedSources
	announcer Announcer
	log       *slog.Logger

	// locks holds one mutex per topic, held from load through publish so a
	// slow reload cannot publish over a newer one.
	locks map[events.Topic]*sync.Mutex
}

// NewChangeFeed constructs a ChangeFeed. announcer may be nil for a single
// instance deployment.
func NewChangeFeed(pub Publisher, src FeedSources, announcer Announcer, log *slog.Logger) *ChangeFeed {
	locks := make(map[events.Topic]*sync.Mutex, len(events.AllTopics))
	for _, topic := range events.AllTopics {
		locks[topic] = &sync.Mutex{}
	}
	return &ChangeFeed{pub: pub, src: src, announcer: announcer, log: log, locks: locks}
}

// Changed refreshes and announces each topic. Failures are logged; the
// mutation that triggered them has already been committed.
func (f *ChangeFeed) Changed(ctx context.Context, topics ...events.Topic) {
	for _, topic := range topics {
		if err := f.Refresh(ctx, topic); err != nil {
			f.log.Error("change feed refresh failed", "topic", string(topic), "error", err)
			continue
		}
		if f.announcer == nil {
			continue
		}
		if err := f.announcer.Announce(ctx, topic); err != nil {
			f.log.Warn("change feed announce failed", "topic", string(topic), "error", err)
		}
	}
}

// Refresh reloads topic's full list and publishes it locally only. It is the
// handler for notices relayed from other instances.
func (f *ChangeFeed) Refresh(ctx context.Context, topic events.Topic) error {
	mu, ok := f.locks[topic]
	if !ok {
		return fmt.Errorf("service.ChangeFeed.Refresh: unknown topic %q", topic)
	}
	mu.Lock()
	defer mu.Unlock()

	data, err := f.load(ctx, topic)
	if err != nil {
		return fmt.Errorf("service.ChangeFeed.Refresh: %s: %w", topic, err)
	}
	f.pub.Publish(events.Snapshot{Topic: topic, Data: data, At: time.Now().UTC()})
	return nil
}

// Prime publishes an initial snapshot of every topic so subscribers get data
// before the first mutation.
func (f *ChangeFeed) Prime(ctx context.Context) error {
	for _, topic := range events.AllTopics {
		if err := f.Refresh(ctx, topic); err != nil {
			return err
		}
	}
	return nil
}

func (f *ChangeFeed) load(ctx context.Context, topic events.Topic) (any, error) {
	switch topic {
	case events.TopicTrips:
		return f.src.Trips.List(ctx)
	case events.TopicVehicles:
		return f.src.Vehicles.List(ctx)
	case events.TopicDrivers:
		return f.src.Drivers.List(ctx)
	case events.TopicCustomers:
		return f.src.Customers.List(ctx)
	case events.TopicExpenses:
		return f.src.Expenses.List(ctx, time.Time{}, time.Time{})
	}
	return nil, fmt.Errorf("unknown topic %q", topic)
}
