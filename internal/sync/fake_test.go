package sync

import (
	"context"
	stdsync "sync"

	"github.com/BuzzLyutic/task-sync/internal/model"
	"github.com/BuzzLyutic/task-sync/internal/remote"
)

// fakeClient emulates the remote store: writes mutate an in-memory
// collection and every subscriber receives a fresh full snapshot.
type fakeClient struct {
	mu      stdsync.Mutex
	records map[string]model.TaskRecord
	subs    map[chan remote.Event]struct{}

	failPut    error
	failMerge  error
	failRemove error
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		records: make(map[string]model.TaskRecord),
		subs:    make(map[chan remote.Event]struct{}),
	}
}

func (f *fakeClient) Put(ctx context.Context, id string, rec model.TaskRecord) error {
	f.mu.Lock()
	if f.failPut != nil {
		f.mu.Unlock()
		return f.failPut
	}
	f.records[id] = rec
	f.mu.Unlock()

	f.broadcast()
	return nil
}

func (f *fakeClient) Merge(ctx context.Context, id string, fields map[string]any) error {
	f.mu.Lock()
	if f.failMerge != nil {
		f.mu.Unlock()
		return f.failMerge
	}
	rec, ok := f.records[id]
	if !ok {
		// merge on a missing id is a silent no-op
		f.mu.Unlock()
		return nil
	}
	for key, value := range fields {
		switch key {
		case "title":
			rec.Title = value.(string)
		case "description":
			rec.Description = value.(string)
		case "priority":
			rec.Priority = value.(string)
		case "completed":
			rec.Completed = value.(bool)
		case "updatedAt":
			rec.UpdatedAt = value.(string)
		}
	}
	f.records[id] = rec
	f.mu.Unlock()

	f.broadcast()
	return nil
}

func (f *fakeClient) Remove(ctx context.Context, id string) error {
	f.mu.Lock()
	if f.failRemove != nil {
		f.mu.Unlock()
		return f.failRemove
	}
	delete(f.records, id)
	f.mu.Unlock()

	f.broadcast()
	return nil
}

func (f *fakeClient) Subscribe(ctx context.Context) (<-chan remote.Event, func(), error) {
	ch := make(chan remote.Event, 64)

	f.mu.Lock()
	f.subs[ch] = struct{}{}
	ch <- remote.Event{Tasks: f.copyRecords()}
	f.mu.Unlock()

	var once stdsync.Once
	cancel := func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subs, ch)
			close(ch)
			f.mu.Unlock()
		})
	}
	return ch, cancel, nil
}

func (f *fakeClient) broadcast() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.subs {
		ch <- remote.Event{Tasks: f.copyRecords()}
	}
}

// emitError pushes a transport failure to every subscriber
func (f *fakeClient) emitError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.subs {
		ch <- remote.Event{Err: err}
	}
}

// seed inserts a record without notifying anyone
func (f *fakeClient) seed(id string, rec model.TaskRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[id] = rec
}

func (f *fakeClient) copyRecords() map[string]model.TaskRecord {
	if len(f.records) == 0 {
		return nil
	}
	out := make(map[string]model.TaskRecord, len(f.records))
	for id, rec := range f.records {
		out[id] = rec
	}
	return out
}
