package broadcast

import (
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
)

func TestAttachSendsConfigThenCachedInit(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	b := New(StreamConfig{Width: 640, Height: 480, FPS: 30, Quality: 75})
	b.BroadcastInit([]byte{0x67, 0xAA}, []byte{0x68, 0xBB}, 1280, 720)

	var sent [][]byte
	var mu sync.Mutex

	client := NewMockClient(ctrl)
	client.EXPECT().ID().Return("client-a").AnyTimes()
	client.EXPECT().Send(gomock.Any()).DoAndReturn(func(msg []byte) error {
		mu.Lock()
		sent = append(sent, append([]byte(nil), msg...))
		mu.Unlock()
		return nil
	}).Times(2)
	client.EXPECT().Close().Return(nil)

	recvErr := make(chan struct{})
	recv := func() ([]byte, error) {
		<-recvErr
		return nil, errClosed
	}

	done := make(chan struct{})
	go func() {
		b.Attach(client, recv)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	close(recvErr)
	<-done

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, 2, len(sent))
	require.Equal(t, byte(0x01), sent[0][0]) // Config tag
	require.Equal(t, byte(0x03), sent[1][0]) // VideoInit tag
}

func TestAttachTwoClientsBothGetReplayedInit(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	b := New(StreamConfig{Width: 640, Height: 480, FPS: 30, Quality: 75})
	b.BroadcastInit([]byte{0x67}, []byte{0x68}, 640, 480)

	var wg sync.WaitGroup
	for _, id := range []string{"a", "b"} {
		id := id
		client := NewMockClient(ctrl)
		client.EXPECT().ID().Return(id).AnyTimes()
		got := make(chan []byte, 2)
		client.EXPECT().Send(gomock.Any()).DoAndReturn(func(msg []byte) error {
			got <- append([]byte(nil), msg...)
			return nil
		}).Times(2)
		client.EXPECT().Close().Return(nil)

		recvErr := make(chan struct{})
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.Attach(client, func() ([]byte, error) {
				<-recvErr
				return nil, errClosed
			})
		}()

		require.Equal(t, byte(0x01), (<-got)[0])
		require.Equal(t, byte(0x03), (<-got)[0])
		close(recvErr)
	}
	wg.Wait()
}

type sentinelErr string

func (e sentinelErr) Error() string { return string(e) }

const errClosed = sentinelErr("connection closed")
