// Package tcp serves a byte-frame stream over plain TCP, each frame
// length-prefixed on the wire. The counterpart of the ws package for peers
// that do not speak websocket.
package tcp

import (
	"net"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/snayrouz/combine-go/internal/wire"
	"github.com/snayrouz/combine-go/pkg/rs"
	"github.com/snayrouz/combine-go/pkg/transport"
)

// Listen serves source over TCP on address. Every peer that connects is
// attached to the source as a fresh subscriber with unbounded demand; a
// peer disconnecting cancels only its own subscription. A nil logger means
// silent.
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

	s := &frameServer{
		listener:        listener,
		source:          source,
		log:             logger,
		control:         make(chan struct{}),
		shutdownWaiters: &sync.WaitGroup{},
	}
	s.shutdownWaiters.Add(1)
	return s, nil
}

type frameServer struct {
	listener        *net.TCPListener
	source          rs.Publisher[[]byte]
	log             *zap.Logger
	control         chan struct{}
	shutdownWaiters *sync.WaitGroup
	peers           rs.Bag
}

func (s *frameServer) Serve() error {
	defer s.shutdownWaiters.Done()
	defer s.listener.Close()

	var connIds int64 = 0
	for {
		if s.checkForShutdown() {
			return nil
		}
		s.listener.SetDeadline(time.Now().Add(time.Second))
		rwc, err := s.listener.Accept()
		if err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				continue
			}
			if s.checkForShutdown() {
				return nil
			}
			return err
		}

		connId := atomic.AddInt64(&connIds, 1) - 1
		go s.servePeer(connId, rwc)
	}
}

// servePeer blocks until the stream ends or the peer goes away, then
// closes the connection.
func (s *frameServer) servePeer(id int64, rwc net.Conn) {
	s.log.Info("peer connected", zap.Int64("conn", id))

	done := make(chan struct{})
	var once sync.Once
	finish := func() { once.Do(func() { close(done) }) }

	enc := wire.NewEncoder(rwc)
	handle := rs.Attach(s.source, (&rs.SubscriberParts[[]byte]{
		OnSubscribe: func(sub rs.Subscription) {
			sub.Request(rs.UnboundedDemand)
		},
		OnNext: func(frame []byte) rs.Demand {
			if err := enc.Write(frame); err != nil {
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
		dec := wire.NewDecoder(rwc)
		for {
			if _, err := dec.Read(); err != nil {
				finish()
				return
			}
		}
	}()

	<-done
	handle.Cancel()
	rwc.Close()
	s.log.Info("peer detached", zap.Int64("conn", id))
}

func (s *frameServer) Shutdown() {
	s.peers.Cancel()
	close(s.control)
}

func (s *frameServer) AwaitShutdown() {
	s.shutdownWaiters.Wait()
}

func (s *frameServer) Addr() net.Addr {
	return s.listener.Addr()
}

func (s *frameServer) checkForShutdown() bool {
	select {
	case <-s.control:
		return true
	default:
		return false
	}
}
