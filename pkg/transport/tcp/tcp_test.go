package tcp_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/snayrouz/combine-go/pkg/rs"
	"github.com/snayrouz/combine-go/pkg/subject"
	"github.com/snayrouz/combine-go/pkg/tck"
	"github.com/snayrouz/combine-go/pkg/transport/tcp"
)

func TestFramesReachARemoteSubscriber(t *testing.T) {
	frames := subject.NewPassthrough[[]byte]()
	server, err := tcp.Listen("127.0.0.1:0", frames, zaptest.NewLogger(t))
	require.NoError(t, err)
	go server.Serve()
	defer func() {
		server.Shutdown()
		server.AwaitShutdown()
	}()

	remote, handle, err := tcp.Dial(server.Addr().String())
	require.NoError(t, err)
	defer handle.Cancel()

	rec := tck.NewRecorder[[]byte](rs.UnboundedDemand, rs.NoDemand)
	remote.Subscribe(rec)

	require.Eventually(t, func() bool {
		return frames.SubscriberCount() == 1
	}, 5*time.Second, time.Millisecond)

	frames.Send([]byte("hello"))
	frames.Send([]byte("world"))

	require.Eventually(t, func() bool {
		return len(rec.Values()) == 2
	}, 5*time.Second, time.Millisecond)
	require.Equal(t, [][]byte{[]byte("hello"), []byte("world")}, rec.Values())
}

func TestCompletionClosesTheConnectionCleanly(t *testing.T) {
	frames := subject.NewPassthrough[[]byte]()
	server, err := tcp.Listen("127.0.0.1:0", frames, zaptest.NewLogger(t))
	require.NoError(t, err)
	go server.Serve()
	defer func() {
		server.Shutdown()
		server.AwaitShutdown()
	}()

	remote, handle, err := tcp.Dial(server.Addr().String())
	require.NoError(t, err)
	defer handle.Cancel()

	rec := tck.NewRecorder[[]byte](rs.UnboundedDemand, rs.NoDemand)
	remote.Subscribe(rec)

	require.Eventually(t, func() bool {
		return frames.SubscriberCount() == 1
	}, 5*time.Second, time.Millisecond)

	frames.SendCompletion(rs.Finished())
	require.Eventually(t, rec.Finished, 5*time.Second, time.Millisecond)
	require.Empty(t, rec.Values())
}

func TestClientCancelDetachesTheServerPeer(t *testing.T) {
	frames := subject.NewPassthrough[[]byte]()
	server, err := tcp.Listen("127.0.0.1:0", frames, zaptest.NewLogger(t))
	require.NoError(t, err)
	go server.Serve()
	defer func() {
		server.Shutdown()
		server.AwaitShutdown()
	}()

	_, handle, err := tcp.Dial(server.Addr().String())
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return frames.SubscriberCount() == 1
	}, 5*time.Second, time.Millisecond)

	handle.Cancel()
	require.Eventually(t, func() bool {
		return frames.SubscriberCount() == 0
	}, 5*time.Second, time.Millisecond)
}
