package service

import (
	"context"
	"sync"

	"github.com/pkordes/travel-desk/internal/events"
)

// reconcileRunner is the part of StatusSynchronizer used by Reconciler.
type reconcileRunner interface {
	Reconcile(ctx context.Context) (SyncReport, error)
}

// Reconciler runs full status reconciliation passes, one at a time, and
// notifies subscribers when a pass changed anything. It backs both the
// scheduled job and the admin sync endpoint.
type Reconciler struct {
	mu       sync.Mutex
	runner   reconcileRunner
	notifier ChangeNotifier
}

// NewReconciler constructs a Reconciler. notifier may be nil.
func NewReconciler(s reconcileRunner, notifier ChangeNotifier) *Reconciler {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &Reconciler{runner: s, notifier: notifier}
}

// Run performs one reconciliation pass. Concurrent calls are serialized.
func (r *Reconciler) Run(ctx context.Context) (SyncReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	report, err := r.runner.Reconcile(ctx)
	if err != nil {
		return SyncReport{}, err
	}
	if report.Updated > 0 {
		r.notifier.Changed(ctx, events.TopicVehicles, events.TopicDrivers)
	}
	return report, nil
}
