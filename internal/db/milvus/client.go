package milvus

import (
	"context"
	"fmt"
	"time"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
)

// Config holds connection parameters for Milvus or Zilliz Cloud.
type Config struct {
	Address  string
	Token    string // Zilliz Cloud API key; takes precedence over username/password
	Username string
	Password string
	Database string
	UseTLS   bool
	Timeout  time.Duration
}

// Open dials Milvus. The returned client is safe for concurrent use.
func Open(ctx context.Context, cfg Config) (client.Client, error) {
	if cfg.Address == "" {
		return nil, fmt.Errorf("milvus address is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	c, err := client.NewClient(dialCtx, client.Config{
		Address:       cfg.Address,
		APIKey:        cfg.Token,
		Username:      cfg.Username,
		Password:      cfg.Password,
		DBName:        cfg.Database,
		EnableTLSAuth: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("create milvus client: %w", err)
	}
	return c, nil
}

// collectionChecker is the subset of client.Client used for readiness probes.
type collectionChecker interface {
	HasCollection(ctx context.Context, collName string) (bool, error)
}

// Pinger reports Milvus availability by probing one collection.
type Pinger struct {
	client     collectionChecker
	collection string
}

// NewPinger creates a health probe for the given collection.
func NewPinger(c collectionChecker, collection string) *Pinger {
	return &Pinger{client: c, collection: collection}
}

// Ping fails when Milvus is unreachable or the collection does not exist.
func (p *Pinger) Ping(ctx context.Context) error {
	ok, err := p.client.HasCollection(ctx, p.collection)
	if err != nil {
		return fmt.Errorf("milvus ping: %w", err)
	}
	if !ok {
		return fmt.Errorf("milvus collection %q not found", p.collection)
	}
	return nil
}

// WaitForReady polls Ping until it succeeds or timeout expires.
func (p *Pinger) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		if err := p.Ping(ctx); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for milvus: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}
