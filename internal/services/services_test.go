package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/example/haribookstore/internal/config"
	"github.com/example/haribookstore/internal/database"
	"github.com/example/haribookstore/internal/mail"
)

type recordingSender struct {
	mu       sync.Mutex
	messages []mail.Message
	err      error
}

func (r *recordingSender) Send(ctx context.Context, msg mail.Message) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return "", r.err
	}
	r.messages = append(r.messages, msg)
	return "test-id", nil
}

func (r *recordingSender) sent() []mail.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]mail.Message(nil), r.messages...)
}

func (r *recordingSender) failWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

var errSMTPDown = errors.New("smtp down")

type fixture struct {
	db       *gorm.DB
	cfg      *config.Config
	sender   *recordingSender
	notifier *Notifier
	auth     *AuthService
	orders   *OrderService
	clock    *testClock
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	_, err = database.SeedBooks(db)
	require.NoError(t, err)
	return db
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := newTestDB(t)
	cfg := &config.Config{
		JWTSecret:    "test-secret",
		TokenExpires: 24 * time.Hour,
		AdminEmail:   "payments@haribookstore.com",
		AdminEmails:  []string{"boss@haribookstore.com"},
		UPIID:        "7416219267@ybl",
	}
	sender := &recordingSender{}
	notifier, err := NewNotifier(sender, nil, cfg.AdminEmail, cfg.UPIID)
	require.NoError(t, err)

	clock := &testClock{now: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)}

	auth := NewAuthService(db, cfg, notifier)
	auth.now = clock.Now

	orders := NewOrderService(db, NewCatalogService(db), notifier, cfg.UPIID)
	orders.now = clock.Now

	return &fixture{
		db:       db,
		cfg:      cfg,
		sender:   sender,
		notifier: notifier,
		auth:     auth,
		orders:   orders,
		clock:    clock,
	}
}
