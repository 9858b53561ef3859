package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/extra/bundebug"
)

// BunDB wraps bun.DB and provides repository access
type BunDB struct {
	db *bun.DB

	// Repositories
	Users    UserRepository
	Products ProductRepository
	Maps     MapRepository
}

// Option is a functional option for configuring the database
type Option func(*BunDB)

// WithDebug enables query logging for debugging
func WithDebug(enabled bool) Option {
	return func(db *BunDB) {
		if enabled {
			db.db.AddQueryHook(bundebug.NewQueryHook(
				bundebug.WithVerbose(true),
			))
			log.Info().Msg("Bun query logging enabled")
		}
	}
}

// New opens the SQLite database at dsn and runs migrations
func New(dsn string, opts ...Option) (*BunDB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Every connection to :memory: gets its own empty database
	if strings.Contains(dsn, ":memory:") {
		sqldb.SetMaxOpenConns(1)
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())

	bunDB := &BunDB{
		db: db,
	}

	for _, opt := range opts {
		opt(bunDB)
	}

	bunDB.Users = NewUserRepository(db)
	bunDB.Products = NewProductRepository(db)
	bunDB.Maps = NewMapRepository(db)

	if err := bunDB.Migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Info().Str("dsn", dsn).Msg("Catalog database initialized")
	return bunDB, nil
}

// Close closes the database connection
func (db *BunDB) Close() error {
	return db.db.Close()
}

// DB returns the underlying bun.DB instance for advanced operations
func (db *BunDB) DB() *bun.DB {
	return db.db
}

// Ping verifies the database is reachable
func (db *BunDB) Ping(ctx context.Context) error {
	return db.db.PingContext(ctx)
}

// Migrate creates tables and indexes that do not exist yet
func (db *BunDB) Migrate(ctx context.Context) error {
	log.Debug().Msg("Running database migrations")

	models := []interface{}{
		(*User)(nil),
		(*Product)(nil),
		(*Map)(nil),
	}

	for _, model := range models {
		if _, err := db.db.NewCreateTable().
			Model(model).
			IfNotExists().
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_products_manufacturer ON products(manufacturer)",
		"CREATE INDEX IF NOT EXISTS idx_products_category ON products(category)",
		"CREATE INDEX IF NOT EXISTS idx_products_created_at ON products(created_at)",
		"CREATE INDEX IF NOT EXISTS idx_maps_created_at ON maps(created_at)",
	}

	for _, idx := range indexes {
		if _, err := db.db.ExecContext(ctx, idx); err != nil {
			log.Warn().Err(err).Str("index", idx).Msg("Failed to create index")
		}
	}

	log.Debug().Msg("Database migrations completed")
	return nil
}

// Stats holds the row count of every table
type Stats struct {
	Users    int
	Products int
	Maps     int
}

// Stats counts rows in every table
func (db *BunDB) Stats(ctx context.Context) (Stats, error) {
	var (
		s   Stats
		err error
	)
	if s.Users, err = db.Users.Count(ctx); err != nil {
		return s, fmt.Errorf("count users: %w", err)
	}
	if s.Products, err = db.Products.Count(ctx); err != nil {
		return s, fmt.Errorf("count products: %w", err)
	}
	if s.Maps, err = db.Maps.Count(ctx); err != nil {
		return s, fmt.Errorf("count maps: %w", err)
	}
	return s, nil
}

// Clean removes all data from all tables
// WARNING: This will delete ALL data in the database!
func (db *BunDB) Clean(ctx context.Context) error {
	log.Warn().Msg("Cleaning all data from database")

	for _, table := range []string{"maps", "products", "users"} {
		if _, err := db.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s", table)); err != nil {
			return fmt.Errorf("clean %s: %w", table, err)
		}
		log.Debug().Str("table", table).Msg("Cleaned table")
	}
	return nil
}
