package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

type Config struct {
	Host         string
	Port         int
	User         string
	Password     string
	DBName       string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

// DSN builds a lib/pq connection string.
func (c Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

type Connection struct {
	DB *sqlx.DB
}

// NewConnection opens a pooled connection and verifies it with a ping.
func NewConnection(cfg Config) (*Connection, error) {
	db, err := sqlx.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.MaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Connection{DB: db}, nil
}

// Migrate creates the interaction tables when they do not exist yet.
func (c *Connection) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := c.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}

func (c *Connection) HealthCheck(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

func (c *Connection) Close() error {
	return c.DB.Close()
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS interaction_service_posts (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL,
		content TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		likes_count INTEGER NOT NULL DEFAULT 0 CHECK (likes_count >= 0),
		comments_count INTEGER NOT NULL DEFAULT 0 CHECK (comments_count >= 0)
	)`,
	`CREATE TABLE IF NOT EXISTS interaction_service_likes (
		id UUID PRIMARY KEY,
		post_id UUID NOT NULL REFERENCES interaction_service_posts(id) ON DELETE CASCADE,
		user_id UUID NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (post_id, user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS interaction_service_comments (
		id UUID PRIMARY KEY,
		post_id UUID NOT NULL REFERENCES interaction_service_posts(id) ON DELETE CASCADE,
		user_id UUID NOT NULL,
		content TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS interaction_service_comments_post_created
		ON interaction_service_comments (post_id, created_at)`,
}
