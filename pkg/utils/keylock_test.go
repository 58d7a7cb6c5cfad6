package utils

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKeyedMutexSerializesSameKey(t *testing.T) {
	locks := NewKeyedMutex()
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.Lock("alice")
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	require.Equal(t, 50, counter)
	require.Zero(t, locks.Len(), "released keys must be reclaimed")
}

func TestKeyedMutexDoubleUnlockIsSafe(t *testing.T) {
	locks := NewKeyedMutex()
	unlock := locks.Lock("bob")
	unlock()
	unlock()

	again := locks.Lock("bob")
	again()
	require.Zero(t, locks.Len())
}
