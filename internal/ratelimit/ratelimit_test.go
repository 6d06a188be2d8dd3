package ratelimit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllow_WithinBurst(t *testing.T) {
	krl := New(1, 3)

	assert.True(t, krl.Allow("user-1"))
	assert.True(t, krl.Allow("user-1"))
	assert.True(t, krl.Allow("user-1"))
	assert.False(t, krl.Allow("user-1"))
}

func TestAllow_KeysAreIndependent(t *testing.T) {
	krl := New(1, 1)

	assert.True(t, krl.Allow("user-1"))
	assert.False(t, krl.Allow("user-1"))

	// A different user still has their full budget.
	assert.True(t, krl.Allow("user-2"))
}

func TestAllow_ConcurrentAccess(t *testing.T) {
	krl := New(1000, 1000)

	done := make(chan struct{})
	for range 10 {
		go func() {
			defer func() { done <- struct{}{} }()
			for range 50 {
				krl.Allow("shared-key")
			}
		}()
	}
	for range 10 {
		<-done
	}

	// No assertion beyond not racing; run with -race.
}
