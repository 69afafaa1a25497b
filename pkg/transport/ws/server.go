// Package ws bridges a byte-frame stream to websocket peers: Listen fans a
// publisher out to every connected peer, Dial republishes a remote stream
// locally. Each peer is exactly one subscriber on the source.
package ws

import (
	"errors"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/websocket"

	"github.com/snayrouz/combine-go/pkg/rs"
	"github.com/snayrouz/combine-go/pkg/transport"
)

// Listen serves source over websocket on address. Every peer that connects
// is attached to the source as a fresh subscriber with unbounded demand;
// a peer disconnecting cancels only its own subscription. A nil logger
// means silent.
func Listen(address string, source rs.Publisher[[]byte], logger *zap.Logger) (transport.Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	laddr, err := net.ResolveTCPAddr("tcp", address)
	if err != nil {
		return nil, err
	}
	listener, err := net.ListenTCP("tcp", laddr)
	if err != nil {
		return nil, err
	}

	s := &streamServer{
		listener: &interruptibleListener{
			listener,
			make(chan int, 2),
		},
		source:          source,
		log:             logger,
		shutdownWaiters: &sync.WaitGroup{},
	}
	s.shutdownWaiters.Add(1)
	return s, nil
}

type streamServer struct {
	listener        *interruptibleListener
	source          rs.Publisher[[]byte]
	log             *zap.Logger
	shutdownWaiters *sync.WaitGroup
	peers           rs.Bag
}

func (s *streamServer) Serve() error {
	defer s.shutdownWaiters.Done()
	defer s.listener.Close()

	var connIds int64 = 0
	h := &websocket.Server{
		Handler: func(rwc *websocket.Conn) {
			connId := atomic.AddInt64(&connIds, 1) - 1
			s.servePeer(connId, rwc)
		},
	}
	httpServer := &http.Server{
		Addr:    s.listener.Addr().String(),
		Handler: h,
	}

	err := httpServer.Serve(s.listener)
	if err == shutdownToken {
		return nil
	}
	return err
}

// servePeer blocks until the stream ends or the peer goes away; the
// websocket library closes the connection when the handler returns.
func (s *streamServer) servePeer(id int64, rwc *websocket.Conn) {
	s.log.Info("peer connected", zap.Int64("conn", id))

	done := make(chan struct{})
	var once sync.Once
	finish := func() { once.Do(func() { close(done) }) }

	handle := rs.Attach(s.source, (&rs.SubscriberParts[[]byte]{
		OnSubscribe: func(sub rs.Subscription) {
			sub.Request(rs.UnboundedDemand)
		},
		OnNext: func(frame []byte) rs.Demand {
			if err := websocket.Message.Send(rwc, frame); err != nil {
				s.log.Warn("peer send failed", zap.Int64("conn", id), zap.Error(err))
				finish()
			}
			return rs.NoDemand
		},
		OnComplete: func(c rs.Completion) {
			if c.IsFailure() {
				s.log.Warn("stream failed", zap.Int64("conn", id), zap.Error(c.Err()))
			}
			finish()
		},
	}).Build())
	s.peers.Store(rs.CancelFunc(func() {
		handle.Cancel()
		finish()
	}))

	// Drain and discard inbound frames so we notice the peer going away.
	go func() {
		var msg []byte
		for {
			if err := websocket.Message.Receive(rwc, &msg); err != nil {
				finish()
				return
			}
		}
	}()

	<-done
	handle.Cancel()
	s.log.Info("peer detached", zap.Int64("conn", id))
}

func (s *streamServer) Shutdown() {
	s.peers.Cancel()
	s.listener.shutdown()
}

func (s *streamServer) AwaitShutdown() {
	s.shutdownWaiters.Wait()
}

func (s *streamServer) Addr() net.Addr {
	return s.listener.Addr()
}

var shutdownToken = errors.New("induced shutdown")

// HTTP server doesn't have a clean shutdown mechanism, so we inject errors
// into the accept loop to stop it.
type interruptibleListener struct {
	*net.TCPListener
	control chan int
}

func (l *interruptibleListener) Accept() (net.Conn, error) {
	for {
		l.SetDeadline(time.Now().Add(time.Second))

		newConn, err := l.TCPListener.Accept()

		select {
		case <-l.control:
			return nil, shutdownToken
		default:
		}

		if err != nil {
			netErr, ok := err.(net.Error)
			if ok && netErr.Timeout() {
				continue
			}
		}

		return newConn, err
	}
}
func (l *interruptibleListener) shutdown() {
	close(l.control)
}
