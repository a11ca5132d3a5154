package cache

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlserver"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// SQLReviewCache implements ReviewCache on a relational database via GORM.
type SQLReviewCache struct {
	db      *gorm.DB
	dialect string
}

type SQLConfig struct {
	// Dialect is one of "sqlserver", "postgres" or "sqlite".
	Dialect string
	DSN     string

	AutoMigrate bool

	MaxOpenConns    int           // default: 10
	MaxIdleConns    int           // default: 5
	ConnMaxLifetime time.Duration // default: 30m
}

// SQLServerDSN builds an encrypted SQL Server connection string.
func SQLServerDSN(server, database, user, password string) string {
	q := url.Values{}
	q.Set("database", database)
	q.Set("encrypt", "true")

	u := url.URL{
		Scheme:   "sqlserver",
		User:     url.UserPassword(user, password),
		Host:     server,
		RawQuery: q.Encode(),
	}
	return u.String()
}

func dialector(cfg SQLConfig) (gorm.Dialector, error) {
	switch cfg.Dialect {
	case "sqlserver":
		return sqlserver.Open(cfg.DSN), nil
	case "postgres":
		return postgres.Open(cfg.DSN), nil
	case "sqlite":
		return sqlite.Open(cfg.DSN), nil
	default:
		return nil, fmt.Errorf("unsupported sql dialect %q", cfg.Dialect)
	}
}

// OpenSQLReviewCache opens the connection pool and verifies connectivity.
func OpenSQLReviewCache(ctx context.Context, cfg SQLConfig) (*SQLReviewCache, error) {
	d, err := dialector(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(d, &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Dialect, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("sql pool: %w", err)
	}

	if cfg.MaxOpenConns <= 0 {
		cfg.MaxOpenConns = 10
	}
	if cfg.MaxIdleConns <= 0 {
		cfg.MaxIdleConns = 5
	}
	if cfg.ConnMaxLifetime <= 0 {
		cfg.ConnMaxLifetime = 30 * time.Minute
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping %s: %w", cfg.Dialect, err)
	}

	c := NewSQLReviewCache(db)
	if cfg.AutoMigrate {
		if err := c.Migrate(ctx); err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
	}
	return c, nil
}

// NewSQLReviewCache wraps an already opened GORM handle.
func NewSQLReviewCache(db *gorm.DB) *SQLReviewCache {
	return &SQLReviewCache{db: db, dialect: db.Dialector.Name()}
}

// Migrate creates the reviews(prompt, review) table when missing. On
// Postgres and SQLite it also adds a unique index on prompt; SQL Server
// cannot index nvarchar(max), so uniqueness there is not enforced.
func (c *SQLReviewCache) Migrate(ctx context.Context) error {
	db := c.db.WithContext(ctx)
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return fmt.Errorf("migrate reviews: %w", err)
	}

	switch c.dialect {
	case "postgres", "sqlite":
		if err := db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_reviews_prompt ON reviews (prompt)").Error; err != nil {
			return fmt.Errorf("migrate reviews index: %w", err)
		}
	}
	return nil
}

// Find retrieves the review stored for prompt. Candidates are re-checked in
// Go because SQL Server's default collation compares case-insensitively and
// ignores trailing spaces.
func (c *SQLReviewCache) Find(ctx context.Context, prompt string) (string, bool, error) {
	var entries []Entry
	err := c.db.WithContext(ctx).
		Where("prompt = ?", prompt).
		Find(&entries).Error
	if err != nil {
		return "", false, fmt.Errorf("select review: %w", err)
	}

	for _, e := range entries {
		if e.Prompt == prompt {
			return e.Review, true, nil
		}
	}
	return "", false, nil
}

// Insert stores the pair. A unique-index violation leaves the existing row
// untouched and reports ErrDuplicate.
func (c *SQLReviewCache) Insert(ctx context.Context, prompt, review string) error {
	entry := Entry{
		Prompt: prompt,
		Review: review,
	}

	if err := c.db.WithContext(ctx).Create(&entry).Error; err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert review: %w", err)
	}
	return nil
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}

// Ping checks database connectivity.
func (c *SQLReviewCache) Ping(ctx context.Context) error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the connection pool.
func (c *SQLReviewCache) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
