package service

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/nekkaida/Cardose-sub003/remote"
	"github.com/nekkaida/Cardose-sub003/store"
)

func testDB(t *testing.T) *store.DB {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// fakeClient is a scripted remote API. While offline it fails every
// request with a transport error; online it either runs the respond
// hook or echoes the request body back as accepted data.
type fakeClient struct {
	mu      sync.Mutex
	offline bool
	err     error
	respond func(method, path string, body any) (*remote.Envelope, error)
	calls   []string
}

func (c *fakeClient) Request(_ context.Context, method, path string, body any) (*remote.Envelope, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, method+" "+path)
	if c.offline {
		if c.err != nil {
			return nil, c.err
		}
		return nil, errors.New("dial tcp 127.0.0.1:3000: connect: connection refused")
	}
	if c.respond != nil {
		return c.respond(method, path, body)
	}
	data, _ := json.Marshal(body)
	return &remote.Envelope{Success: true, Data: data}, nil
}

func (c *fakeClient) setOffline(offline bool) {
	c.mu.Lock()
	c.offline = offline
	c.mu.Unlock()
}

func (c *fakeClient) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}
