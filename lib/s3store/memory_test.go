// Copyright 2026 The Nightjar Authors
// SPDX-License-Identifier: Apache-2.0

package s3store

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/aws/smithy-go"

	"github.com/groboclown/nightjar-mesh-sub000/lib/clock"
)

// memoryStore is an in-memory ObjectStore. Each upload advances the
// clock by a second so that LastModified strictly increases.
type memoryStore struct {
	clock   *clock.FakeClock
	objects map[string]memoryObject

	downloads []string
	deletes   [][]string

	listErr     error
	uploadErr   func(key string) error
	downloadErr error
	deleteErr   error
}

type memoryObject struct {
	data     []byte
	modified time.Time
}

func newMemoryStore(fakeClock *clock.FakeClock) *memoryStore {
	return &memoryStore{clock: fakeClock, objects: make(map[string]memoryObject)}
}

func (m *memoryStore) put(key string, data string, modified time.Time) {
	m.objects[key] = memoryObject{data: []byte(data), modified: modified}
}

func (m *memoryStore) keys() []string {
	keys := make([]string, 0, len(m.objects))
	for key := range m.objects {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}

func (m *memoryStore) List(_ context.Context, prefix string) ([]Entry, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var entries []Entry
	for _, key := range m.keys() {
		if strings.HasPrefix(key, prefix) {
			object := m.objects[key]
			entries = append(entries, Entry{Key: key, LastModified: object.modified, Size: int64(len(object.data))})
		}
	}
	return entries, nil
}

func (m *memoryStore) Upload(_ context.Context, key string, data []byte) error {
	if m.uploadErr != nil {
		if err := m.uploadErr(key); err != nil {
			return err
		}
	}
	m.clock.Advance(time.Second)
	m.objects[key] = memoryObject{data: slices.Clone(data), modified: m.clock.Now()}
	return nil
}

func (m *memoryStore) Download(_ context.Context, key string) ([]byte, error) {
	m.downloads = append(m.downloads, key)
	if m.downloadErr != nil {
		return nil, m.downloadErr
	}
	object, ok := m.objects[key]
	if !ok {
		return nil, &smithy.GenericAPIError{Code: "NoSuchKey", Message: "The specified key does not exist."}
	}
	return slices.Clone(object.data), nil
}

func (m *memoryStore) Delete(_ context.Context, keys []string) error {
	m.deletes = append(m.deletes, slices.Clone(keys))
	if m.deleteErr != nil {
		return m.deleteErr
	}
	for _, key := range keys {
		delete(m.objects, key)
	}
	return nil
}
