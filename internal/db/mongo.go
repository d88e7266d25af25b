package db

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/singleflight"

	"blogdesk/internal/errors"
)

const connectTimeout = 10 * time.Second

// MongoProvider hands out the application database, connecting on demand.
type MongoProvider interface {
	Database(ctx context.Context) (*mongo.Database, error)
}

// ConnectHook runs once against a freshly connected database, before the
// client is handed out. A failing hook fails the connection attempt.
type ConnectHook func(ctx context.Context, db *mongo.Database) error

// Mongo owns the process wide MongoDB client. The client is created by the
// first caller of Database; concurrent callers share that single attempt.
// A failed attempt is not remembered, so the next caller tries again.
type Mongo struct {
	uri      string
	database string
	dial     func(ctx context.Context) (*mongo.Client, error)
	hooks    []ConnectHook

	attempts singleflight.Group
	mu       sync.RWMutex
	client   *mongo.Client
}

// NewMongo returns an unconnected handle. No I/O happens until first use.
func NewMongo(uri, database string) *Mongo {
	m := &Mongo{uri: uri, database: database}
	m.dial = m.dialURI
	return m
}

// OnConnect registers hook to run after each successful connect and before
// the client is cached. Register hooks before the first Database call.
func (m *Mongo) OnConnect(hook ConnectHook) {
	m.hooks = append(m.hooks, hook)
}

// Database returns the configured database, connecting first if needed.
// Connection failures are reported as errors.ErrStoreUnavailable.
func (m *Mongo) Database(ctx context.Context) (*mongo.Database, error) {
	client, err := m.connect(ctx)
	if err != nil {
		return nil, err
	}
	return client.Database(m.database), nil
}

func (m *Mongo) cached() *mongo.Client {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.client
}

func (m *Mongo) connect(ctx context.Context) (*mongo.Client, error) {
	if client := m.cached(); client != nil {
		return client, nil
	}

	ch := m.attempts.DoChan("connect", func() (interface{}, error) {
		if client := m.cached(); client != nil {
			return client, nil
		}

		// Shared by every waiter, so it must not die with the first caller's request.
		attemptCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), connectTimeout)
		defer cancel()

		client, err := m.dial(attemptCtx)
		if err != nil {
			return nil, err
		}
		database := client.Database(m.database)
		for _, hook := range m.hooks {
			if err := hook(attemptCtx, database); err != nil {
				_ = client.Disconnect(context.Background())
				return nil, fmt.Errorf("%w: mongo connect hook: %v", errors.ErrStoreUnavailable, err)
			}
		}

		m.mu.Lock()
		m.client = client
		m.mu.Unlock()
		return client, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*mongo.Client), nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", errors.ErrStoreUnavailable, ctx.Err())
	}
}

func (m *Mongo) dialURI(ctx context.Context) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(m.uri))
	if err != nil {
		return nil, fmt.Errorf("%w: connect mongo: %v", errors.ErrStoreUnavailable, err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("%w: ping mongo: %v", errors.ErrStoreUnavailable, err)
	}
	return client, nil
}

// Ping checks the store round trip, connecting first if needed.
func (m *Mongo) Ping(ctx context.Context) error {
	client, err := m.connect(ctx)
	if err != nil {
		return err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("%w: ping mongo: %v", errors.ErrStoreUnavailable, err)
	}
	return nil
}

// Close disconnects the client if one was established.
func (m *Mongo) Close(ctx context.Context) error {
	m.mu.Lock()
	client := m.client
	m.client = nil
	m.mu.Unlock()

	if client == nil {
		return nil
	}
	return client.Disconnect(ctx)
}

// StaticMongo is a MongoProvider over an already connected database.
type StaticMongo struct {
	DB *mongo.Database
}

// Database returns the wrapped database.
func (s StaticMongo) Database(context.Context) (*mongo.Database, error) {
	return s.DB, nil
}
