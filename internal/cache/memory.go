package cache

import (
	"context"
	"sync"
)

// MemoryReviewCache keeps entries in a process-local map. Used for
// development and tests; contents are lost on restart.
type MemoryReviewCache struct {
	mu    sync.RWMutex
	items map[string]Entry
}

func NewMemoryReviewCache() *MemoryReviewCache {
	return &MemoryReviewCache{
		items: make(map[string]Entry),
	}
}

// Find retrieves the review stored for prompt.
func (c *MemoryReviewCache) Find(ctx context.Context, prompt string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	c.mu.RLock()
	entry, ok := c.items[prompt]
	c.mu.RUnlock()

	if !ok {
		return "", false, nil
	}
	return entry.Review, true, nil
}

// Insert stores the pair unless prompt is already present.
func (c *MemoryReviewCache) Insert(ctx context.Context, prompt, review string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.items[prompt]; exists {
		return ErrDuplicate
	}
	c.items[prompt] = Entry{Prompt: prompt, Review: review}
	return nil
}

// Len returns the number of stored entries.
func (c *MemoryReviewCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
