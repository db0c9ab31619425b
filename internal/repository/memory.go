package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"roomstay/internal/models"
)

type MemoryPriceCache struct {
	quotes sync.Map
	ttl    time.Duration
}

func NewMemoryPriceCache(ttl time.Duration) *MemoryPriceCache {
	return &MemoryPriceCache{
		ttl: ttl,
	}
}

type cachedQuote struct {
	quote     *models.PriceQuote
	expiresAt time.Time
}

func quoteKey(roomID int64, date string) string {
	return fmt.Sprintf("price_quote:%d:%s", roomID, date)
}

func (r *MemoryPriceCache) Get(ctx context.Context, roomID int64, date string) (*models.PriceQuote, error) {
	val, ok := r.quotes.Load(quoteKey(roomID, date))
	if !ok {
		return nil, nil
	}
	entry := val.(*cachedQuote)
	if time.Now().After(entry.expiresAt) {
		r.quotes.Delete(quoteKey(roomID, date))
		return nil, nil
	}
	return entry.quote, nil
}

func (r *MemoryPriceCache) Set(ctx context.Context, quote *models.PriceQuote) error {
	r.quotes.Store(quoteKey(quote.RoomID, quote.Date), &cachedQuote{
		quote:     quote,
		expiresAt: time.Now().Add(r.ttl),
	})
	return nil
}

func (r *MemoryPriceCache) Clear(ctx context.Context) error {
	r.quotes.Range(func(key, _ interface{}) bool {
		r.quotes.Delete(key)
		return true
	})
	return nil
}
