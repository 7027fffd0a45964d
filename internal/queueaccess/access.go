// Package queueaccess abstracts over the two ways the CLI can reach the
// queue: live daemon IPC, or the database directly when no daemon is up.
package queueaccess

import (
	"context"

	"bleep/internal/api"
	"bleep/internal/ipc"
	"bleep/internal/queue"
)

// Access provides queue operations regardless of IPC or direct store backing.
type Access interface {
	Stats(ctx context.Context) (map[string]int, error)
	List(ctx context.Context, statuses []string) ([]api.QueueItem, error)
	Describe(ctx context.Context, id int64) (*api.QueueItem, error)
	// Clear removes pending work. A video the daemon is mid-way through is
	// left alone; it finishes or fails on its own.
	Clear(ctx context.Context) (int64, error)
	Health(ctx context.Context) (queue.HealthSummary, error)
	Processed(ctx context.Context, limit int) ([]api.ProcessedEntry, int, error)
	ClearProcessed(ctx context.Context) (int64, error)
}

// NewIPCAccess returns an Access backed by daemon IPC.
func NewIPCAccess(client *ipc.Client) Access {
	return &ipcAccess{client: client}
}

// NewStoreAccess returns an Access backed by direct DB access.
func NewStoreAccess(store *queue.Store) Access {
	return &storeAccess{store: store}
}

type ipcAccess struct {
	client *ipc.Client
}

func (a *ipcAccess) Stats(_ context.Context) (map[string]int, error) {
	resp, err := a.client.Status()
	if err != nil {
		return nil, err
	}
	return resp.QueueStats, nil
}

func (a *ipcAccess) List(_ context.Context, statuses []string) ([]api.QueueItem, error) {
	resp, err := a.client.QueueList(statuses)
	if err != nil {
		return nil, err
	}
	return resp.Items, nil
}

func (a *ipcAccess) Describe(_ context.Context, id int64) (*api.QueueItem, error) {
	resp, err := a.client.QueueDescribe(id)
	if err != nil {
		return nil, err
	}
	if resp == nil || !resp.Found {
		return nil, nil
	}
	return &resp.Item, nil
}

func (a *ipcAccess) Clear(_ context.Context) (int64, error) {
	resp, err := a.client.QueueClear()
	if err != nil {
		return 0, err
	}
	return resp.Removed, nil
}

func (a *ipcAccess) Health(_ context.Context) (queue.HealthSummary, error) {
	resp, err := a.client.QueueHealth()
	if err != nil {
		return queue.HealthSummary{}, err
	}
	return queue.HealthSummary{
		Total:    resp.Total,
		Pending:  resp.Pending,
		InFlight: resp.InFlight,
	}, nil
}

func (a *ipcAccess) Processed(_ context.Context, limit int) ([]api.ProcessedEntry, int, error) {
	resp, err := a.client.Processed(limit)
	if err != nil {
		return nil, 0, err
	}
	return resp.Entries, resp.Total, nil
}

func (a *ipcAccess) ClearProcessed(_ context.Context) (int64, error) {
	resp, err := a.client.ProcessedClear()
	if err != nil {
		return 0, err
	}
	return resp.Removed, nil
}

type storeAccess struct {
	store *queue.Store
}

func (a *storeAccess) Stats(ctx context.Context) (map[string]int, error) {
	stats, err := a.store.Stats(ctx)
	if err != nil {
		return nil, err
	}
	return api.MergeQueueStats(stats), nil
}

func (a *storeAccess) List(ctx context.Context, statuses []string) ([]api.QueueItem, error) {
	var filters []queue.Status
	for _, s := range statuses {
		if parsed, ok := queue.ParseStatus(s); ok {
			filters = append(filters, parsed)
		}
	}
	items, err := a.store.List(ctx, filters...)
	if err != nil {
		return nil, err
	}
	return api.FromQueueItems(items), nil
}

func (a *storeAccess) Describe(ctx context.Context, id int64) (*api.QueueItem, error) {
	item, err := a.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, nil
	}
	dto := api.FromQueueItem(item)
	return &dto, nil
}

func (a *storeAccess) Clear(ctx context.Context) (int64, error) {
	return a.store.Clear(ctx)
}

func (a *storeAccess) Health(ctx context.Context) (queue.HealthSummary, error) {
	return a.store.Health(ctx)
}

func (a *storeAccess) Processed(ctx context.Context, limit int) ([]api.ProcessedEntry, int, error) {
	entries, err := a.store.ListProcessed(ctx, limit)
	if err != nil {
		return nil, 0, err
	}
	total, err := a.store.ProcessedCount(ctx)
	if err != nil {
		return nil, 0, err
	}
	return api.FromProcessedEntries(entries), total, nil
}

func (a *storeAccess) ClearProcessed(ctx context.Context) (int64, error) {
	return a.store.ClearProcessed(ctx)
}
