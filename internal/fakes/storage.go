package fakes

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/karac38/gdevapps-portal/internal/storage"
)

// Objects is an in-memory storage.Storage.
type Objects struct {
	mu    sync.Mutex
	Data  map[string][]byte
	Types map[string]string
	// FailUpload makes Upload fail.
	FailUpload error
}

var _ storage.Storage = (*Objects)(nil)

func NewObjects() *Objects {
	return &Objects{Data: map[string][]byte{}, Types: map[string]string{}}
}

func (o *Objects) Upload(_ context.Context, key, contentType string, data io.ReadSeeker) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.FailUpload != nil {
		return o.FailUpload
	}
	b, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	o.Data[key] = b
	o.Types[key] = contentType
	return nil
}

func (o *Objects) Download(_ context.Context, key string) (io.ReadCloser, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	b, ok := o.Data[key]
	if !ok {
		return nil, notFound("object " + key)
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (o *Objects) Delete(_ context.Context, key string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.Data, key)
	return nil
}

func (o *Objects) Exists(_ context.Context, key string) (bool, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, ok := o.Data[key]
	return ok, nil
}
