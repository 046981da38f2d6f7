// Package store keeps the bot data in JSON files under the data directory.
package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

var ErrClosed = errors.New("store is closed")

type writeRequest struct {
	data   []byte
	result chan error
}

// writeQueue owns one file. Writes are executed one at a time on a
// dedicated goroutine, in the order they were submitted.
type writeQueue struct {
	path     string
	requests chan writeRequest
	done     chan struct{}

	mu     sync.RWMutex
	closed bool
}

func newWriteQueue(path string) *writeQueue {
	q := &writeQueue{
		path:     path,
		requests: make(chan writeRequest, 16),
		done:     make(chan struct{}),
	}
	go q.loop()
	return q
}

func (q *writeQueue) loop() {
	defer close(q.done)
	for request := range q.requests {
		request.result <- writeFileAtomic(q.path, request.data)
	}
}

// submit enqueues data and returns where the write result will be delivered.
func (q *writeQueue) submit(ctx context.Context, data []byte) (<-chan error, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return nil, ErrClosed
	}
	request := writeRequest{data: data, result: make(chan error, 1)}
	select {
	case q.requests <- request:
		return request.result, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func wait(ctx context.Context, result <-chan error) error {
	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// close stops accepting writes and waits until the queued ones are on disk.
func (q *writeQueue) close() {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.requests)
	}
	q.mu.Unlock()
	<-q.done
}

// writeFileAtomic writes to a temporary file in the same directory and
// renames it over path.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	temp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file for %s: %w", filepath.Base(path), err)
	}
	tempPath := temp.Name()

	_, err = temp.Write(data)
	if err == nil {
		err = temp.Sync()
	}
	if closeErr := temp.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Chmod(tempPath, 0600)
	}
	if err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to write temporary file for %s: %w", filepath.Base(path), err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to rename %s: %w", filepath.Base(path), err)
	}
	return nil
}
