package broadcast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFrameSlotDropsOlderPendingFrameOnOverwrite(t *testing.T) {
	slot := NewFrameSlot()
	slot.Put([]byte("frame-1"), false)
	slot.Put([]byte("frame-2"), true)

	packet, isKey, ok := slot.Take()
	require.True(t, ok)
	require.Equal(t, "frame-2", string(packet))
	require.True(t, isKey)
}

func TestFrameSlotTakeBlocksUntilPut(t *testing.T) {
	slot := NewFrameSlot()
	result := make(chan []byte, 1)
	go func() {
		packet, _, ok := slot.Take()
		if ok {
			result <- packet
		}
	}()

	select {
	case <-result:
		t.Fatal("Take returned before Put")
	case <-time.After(20 * time.Millisecond):
	}

	slot.Put([]byte("frame-1"), false)
	select {
	case packet := <-result:
		require.Equal(t, "frame-1", string(packet))
	case <-time.After(time.Second):
		t.Fatal("Take never unblocked after Put")
	}
}

func TestFrameSlotCloseUnblocksTake(t *testing.T) {
	slot := NewFrameSlot()
	done := make(chan bool, 1)
	go func() {
		_, _, ok := slot.Take()
		done <- ok
	}()

	time.Sleep(20 * time.Millisecond)
	slot.Close()

	select {
	case ok := <-done:
		require.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("Take never unblocked after Close")
	}
}
