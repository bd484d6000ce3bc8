package odds

import (
	"sync"
)

// PriceBook retains the latest quote per (game, selection) so the EV layer
// can read current prices without consuming the stream directly.
type PriceBook struct {
	mu     sync.RWMutex
	prices map[string]map[string]PriceUpdate
}

// NewPriceBook creates an empty book.
func NewPriceBook() *PriceBook {
	return &PriceBook{
		prices: make(map[string]map[string]PriceUpdate),
	}
}

// Handler returns a PriceHandler that keeps the book current; register it on
// the stream client.
func (b *PriceBook) Handler() PriceHandler {
	return func(update PriceUpdate) error {
		b.mu.Lock()
		defer b.mu.Unlock()
		selections, ok := b.prices[update.GameID]
		if !ok {
			selections = make(map[string]PriceUpdate)
			b.prices[update.GameID] = selections
		}
		selections[update.Selection] = update
		return nil
	}
}

// Latest returns the newest quote for a selection, if any has arrived.
func (b *PriceBook) Latest(gameID, selection string) (PriceUpdate, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	selections, ok := b.prices[gameID]
	if !ok {
		return PriceUpdate{}, false
	}
	update, ok := selections[selection]
	return update, ok
}

// Games returns the IDs of all games with at least one quote.
func (b *PriceBook) Games() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	ids := make([]string, 0, len(b.prices))
	for id := range b.prices {
		ids = append(ids, id)
	}
	return ids
}
