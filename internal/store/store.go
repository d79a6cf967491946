// Package store is the relational data-access layer behind the GraphQL
// resolvers. It wraps a gorm connection (SQLite or PostgreSQL) and exposes
// one generic repository per entity.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/blogql/blogql/internal/config"
	"github.com/blogql/blogql/internal/entity"
)

var ErrNotFound = errors.New("record not found")

// Store holds the database handle and the per-entity repositories.
type Store struct {
	db *gorm.DB

	Users         *Repo[entity.User]
	Profiles      *Repo[entity.Profile]
	Posts         *Repo[entity.Post]
	MemberTypes   *Repo[entity.MemberType]
	Subscriptions *Repo[entity.SubscribersOnAuthors]
}

// New wraps an existing gorm connection.
func New(db *gorm.DB) *Store {
	return &Store{
		db:            db,
		Users:         newRepo[entity.User](db),
		Profiles:      newRepo[entity.Profile](db),
		Posts:         newRepo[entity.Post](db),
		MemberTypes:   newRepo[entity.MemberType](db),
		Subscriptions: newRepo[entity.SubscribersOnAuthors](db),
	}
}

// Open connects to the configured database.
func Open(cfg config.DatabaseConfig) (*Store, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case config.DriverSQLite:
		dialector = sqlite.Open(sqliteDSN(cfg.DSN))
	case config.DriverPostgres:
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}

	level := logger.Silent
	if cfg.Debug {
		level = logger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.Driver, err)
	}

	return New(db), nil
}

// sqliteDSN turns on foreign key enforcement unless the DSN sets pragmas itself.
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "_pragma=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// DB returns the underlying gorm handle.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Migrate creates or updates the schema for every entity.
func (s *Store) Migrate(ctx context.Context) error {
	err := s.db.WithContext(ctx).AutoMigrate(
		&entity.MemberType{},
		&entity.User{},
		&entity.Profile{},
		&entity.Post{},
		&entity.SubscribersOnAuthors{},
	)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Seed upserts the default member types.
func (s *Store) Seed(ctx context.Context) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"discount", "posts_limit_per_month"}),
	}).Create(entity.DefaultMemberTypes()).Error
	if err != nil {
		return fmt.Errorf("seed member types: %w", err)
	}
	return nil
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
