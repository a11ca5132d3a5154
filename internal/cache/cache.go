package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

// ErrDuplicate is returned by Insert when an entry for the prompt already exists.
var ErrDuplicate = errors.New("review cache: prompt already stored")

// ReviewCache is the prompt -> review store used by the review service.
// Implemented by the SQL (GORM), Redis and memory backends.
type ReviewCache interface {
	// Find looks up the review stored for prompt. Matching is exact and
	// case-sensitive. ok is false on a clean miss.
	Find(ctx context.Context, prompt string) (review string, ok bool, err error)

	// Insert stores a new (prompt, review) pair. Entries are never updated.
	Insert(ctx context.Context, prompt, review string) error
}

// Entry is one row of the reviews table: (prompt, review).
type Entry struct {
	Prompt string `gorm:"column:prompt" json:"prompt"`
	Review string `gorm:"column:review" json:"review"`
}

// TableName keeps the existing "reviews" table name.
func (Entry) TableName() string {
	return "reviews"
}

// PromptHash returns the hex SHA-256 of prompt. Used as the Redis key and in
// log fields.
func PromptHash(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return hex.EncodeToString(sum[:])
}

// Close releases backend resources when c supports it.
func Close(c ReviewCache) error {
	if closer, ok := c.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}

// Ping checks backend connectivity when c supports it.
func Ping(ctx context.Context, c ReviewCache) error {
	if pinger, ok := c.(interface{ Ping(context.Context) error }); ok {
		return pinger.Ping(ctx)
	}
	return nil
}
