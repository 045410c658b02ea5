package chat

import (
	"context"
	"sync"

	"github.com/krishanu8219/AgroLabs/internal/models"
)

// FarmContext is the shared farm-selection object. It replaces ambient
// global signaling with an explicit publish/subscribe handle passed to
// consumers. The empty farm ID means the "general" (farm-less) bucket.
type FarmContext struct {
	mu      sync.Mutex
	current string
	subs    map[int]chan string
	nextSub int
}

// NewFarmContext returns a context with no farm selected.
func NewFarmContext() *FarmContext {
	return &FarmContext{subs: make(map[int]chan string)}
}

// Select changes the active farm and notifies subscribers. Slow subscribers
// only miss intermediate selections, never the latest one they read next.
func (f *FarmContext) Select(farmID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if farmID == f.current {
		return
	}
	f.current = farmID
	for _, ch := range f.subs {
		select {
		case ch <- farmID:
		default:
			// drop; subscriber will read Current on its next cycle
		}
	}
}

// Current reports the active farm ID ("" for general).
func (f *FarmContext) Current() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current
}

// Subscribe returns a channel receiving selection changes and a cancel
// function that must be called when the consumer goes away.
func (f *FarmContext) Subscribe() (<-chan string, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextSub
	f.nextSub++
	ch := make(chan string, 1)
	f.subs[id] = ch
	return ch, func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.subs, id)
	}
}

// HistoryStore is the slice of the persistence layer the history view needs.
type HistoryStore interface {
	ListChatMessages(ctx context.Context, userID string, farmID *string, limit int) ([]models.ChatMessage, error)
}

// historyLimit caps a single history load.
const historyLimit = 50

// HistoryView tracks the message list for the currently selected farm.
// Loads resolve asynchronously; a resolution is applied only when the
// selection at resolution time still matches the farm the load was issued
// for. Last-writer-wins by farm identity, not by arrival order, so a slow
// load for farm A can never overwrite a fast load for farm B.
type HistoryView struct {
	farms  *FarmContext
	store  HistoryStore
	userID string

	mu       sync.Mutex
	messages []models.ChatMessage
	onChange func([]models.ChatMessage)
}

// NewHistoryView builds a view over the given selection context and store.
// onChange, if non-nil, fires after every applied load.
func NewHistoryView(farms *FarmContext, store HistoryStore, userID string, onChange func([]models.ChatMessage)) *HistoryView {
	return &HistoryView{farms: farms, store: store, userID: userID, onChange: onChange}
}

// Refresh loads history for the farm selected at call time and applies the
// result unless the selection moved on while the load was in flight. Returns
// the loaded messages and whether they were applied.
func (v *HistoryView) Refresh(ctx context.Context) ([]models.ChatMessage, bool, error) {
	farmID := v.farms.Current()
	var scope *string
	if farmID != "" {
		scope = &farmID
	}

	msgs, err := v.store.ListChatMessages(ctx, v.userID, scope, historyLimit)
	if err != nil {
		return nil, false, err
	}

	// Stale-load guard: apply only if this farm is still the selection.
	if v.farms.Current() != farmID {
		return msgs, false, nil
	}

	v.mu.Lock()
	v.messages = msgs
	cb := v.onChange
	v.mu.Unlock()
	if cb != nil {
		cb(msgs)
	}
	return msgs, true, nil
}

// Messages returns the last applied message list.
func (v *HistoryView) Messages() []models.ChatMessage {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.messages
}
