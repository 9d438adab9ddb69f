// Package kvcache mirrors single named values into durable local storage.
// A value is read once when created and rewritten on every change.
package kvcache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
)

// Value is one cached value of type T stored under key.
type Value[T any] struct {
	storage Storage
	key     string

	mu    sync.RWMutex
	value T
}

// New reads key from storage. A missing or unparsable entry falls back to
// initial; read and parse errors are logged, never returned. The resolved
// value is written back right away.
func New[T any](ctx context.Context, storage Storage, key string, initial T) *Value[T] {
	v := &Value[T]{storage: storage, key: key, value: initial}

	raw, ok, err := storage.Get(ctx, key)
	switch {
	case err != nil:
		log.Printf("⚠️ Failed to read cached %q: %v", key, err)
	case ok:
		var stored T
		if err := json.Unmarshal([]byte(raw), &stored); err != nil {
			log.Printf("⚠️ Ignoring unparsable cached %q: %v", key, err)
		} else {
			v.value = stored
		}
	}

	if err := v.persist(ctx, v.value); err != nil {
		log.Printf("❌ %v", err)
	}
	return v
}

// Get returns the in-memory value.
func (v *Value[T]) Get() T {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.value
}

// Set replaces the value and writes it through. The in-memory value changes
// even when the write fails. Writes are serialized so storage always ends
// up holding the latest value.
func (v *Value[T]) Set(ctx context.Context, value T) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.value = value

	if err := v.persist(ctx, value); err != nil {
		log.Printf("❌ %v", err)
		return err
	}
	return nil
}

// Update applies fn to the current value and stores the result.
func (v *Value[T]) Update(ctx context.Context, fn func(T) T) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	next := fn(v.value)
	v.value = next

	if err := v.persist(ctx, next); err != nil {
		log.Printf("❌ %v", err)
		return err
	}
	return nil
}

func (v *Value[T]) persist(ctx context.Context, value T) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode cached %q: %w", v.key, err)
	}
	if err := v.storage.Set(ctx, v.key, string(data)); err != nil {
		return fmt.Errorf("write cached %q: %w", v.key, err)
	}
	return nil
}
