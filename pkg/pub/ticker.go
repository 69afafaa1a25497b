package pub

import (
	"sync"
	"time"

	"github.com/snayrouz/combine-go/internal/account"
	"github.com/snayrouz/combine-go/pkg/rs"
)

// Ticker delivers an increasing tick counter every interval. This is the one
// explicitly asynchronous source in the package: delivery happens on a
// goroutine owned by the subscription, decoupled from the Subscribe call.
//
// A tick that fires while the subscriber has no outstanding demand is
// dropped, not buffered; the counter still advances, so the values reflect
// elapsed intervals. The sequence has no natural end - it stops only when
// the subscriber cancels. Never fails.
func Ticker(interval time.Duration) rs.Publisher[int] {
	return tickerPublisher{interval}
}

type tickerPublisher struct {
	interval time.Duration
}

func (p tickerPublisher) Subscribe(s rs.Subscriber[int]) {
	sub := &tickerSubscription{
		interval: p.interval,
		sink:     s,
		stop:     make(chan struct{}),
	}
	s.OnSubscribe(sub)
	go sub.loop()
}

type tickerSubscription struct {
	ledger   account.Ledger
	interval time.Duration
	sink     rs.Subscriber[int]
	stop     chan struct{}
	stopOnce sync.Once
}

func (sub *tickerSubscription) Request(d rs.Demand) {
	sub.ledger.Credit(d)
}

func (sub *tickerSubscription) Cancel() {
	if sub.ledger.Cancel() {
		sub.stopOnce.Do(func() { close(sub.stop) })
	}
}

func (sub *tickerSubscription) loop() {
	t := time.NewTicker(sub.interval)
	defer t.Stop()
	for n := 0; ; n++ {
		select {
		case <-sub.stop:
			return
		case <-t.C:
		}
		if !sub.ledger.Claim() {
			continue
		}
		sub.ledger.Credit(sub.sink.OnNext(n))
	}
}
