package tck_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/snayrouz/combine-go/pkg/pub"
	"github.com/snayrouz/combine-go/pkg/rs"
	"github.com/snayrouz/combine-go/pkg/tck"
)

func TestCheckPassesAConformingPublisher(t *testing.T) {
	script := []tck.Step{
		{Request: rs.MaxDemand(2)},
		{Request: rs.MaxDemand(1)},
		{Cancel: true},
		{Request: rs.UnboundedDemand},
	}
	require.Empty(t, tck.Check(pub.FromSlice([]int{1, 2, 3, 4, 5}), script))
}

func TestCheckFlagsValueBeforeSubscribe(t *testing.T) {
	rude := pub.Anon(func(s rs.Subscriber[int]) {
		s.OnNext(1)
		s.OnSubscribe(noopSub{})
		s.OnComplete(rs.Finished())
	})
	vs := tck.Check(rude, nil)
	require.Len(t, vs, 1)
	require.Equal(t, "value before subscribe", vs[0].Rule)
}

func TestCheckFlagsDemandOverrun(t *testing.T) {
	greedy := pub.Anon(func(s rs.Subscriber[int]) {
		s.OnSubscribe(overrunSub{s})
	})
	vs := tck.Check(greedy, []tck.Step{{Request: rs.MaxDemand(1)}})
	require.Len(t, vs, 1)
	require.Equal(t, "demand overrun", vs[0].Rule)
}

func TestCheckFlagsDoubleCompletion(t *testing.T) {
	insistent := pub.Anon(func(s rs.Subscriber[int]) {
		s.OnSubscribe(noopSub{})
		s.OnComplete(rs.Finished())
		s.OnComplete(rs.Finished())
	})
	vs := tck.Check(insistent, nil)
	require.Len(t, vs, 1)
	require.Equal(t, "double completion", vs[0].Rule)
}

func TestCheckFlagsDeliveryAfterCancel(t *testing.T) {
	// A subscription that ignores Cancel and keeps answering requests.
	stubborn := pub.Anon(func(s rs.Subscriber[int]) {
		s.OnSubscribe(deafSub{s})
	})
	script := []tck.Step{
		{Request: rs.MaxDemand(1)},
		{Cancel: true},
		{Request: rs.MaxDemand(1)},
	}
	vs := tck.Check(stubborn, script)
	require.Len(t, vs, 1)
	require.Equal(t, "value after cancel", vs[0].Rule)
}

func TestCheckFlagsCompletionAfterCancel(t *testing.T) {
	stubborn := pub.Anon(func(s rs.Subscriber[int]) {
		s.OnSubscribe(completeOnRequestSub{s})
	})
	script := []tck.Step{
		{Cancel: true},
		{Request: rs.MaxDemand(1)},
	}
	vs := tck.Check(stubborn, script)
	require.Len(t, vs, 1)
	require.Equal(t, "completion after cancel", vs[0].Rule)
}

func TestProbeCountsDeliveries(t *testing.T) {
	probe := &tck.Probe[int]{}
	pub.FromSlice([]int{1, 2, 3}).Subscribe(probe)
	probe.Request(rs.UnboundedDemand)

	require.Equal(t, 3, probe.Delivered())
	require.True(t, probe.Terminated())
	require.Empty(t, probe.Violations())
}

type noopSub struct{}

func (noopSub) Request(rs.Demand) {}
func (noopSub) Cancel()           {}

// overrunSub answers any request with one value more than was asked for.
type overrunSub struct{ s rs.Subscriber[int] }

func (o overrunSub) Request(d rs.Demand) {
	for i := 0; i <= d.Count(); i++ {
		o.s.OnNext(i)
	}
}
func (o overrunSub) Cancel() {}

// deafSub honors requests but not cancels.
type deafSub struct{ s rs.Subscriber[int] }

func (d deafSub) Request(rs.Demand) { d.s.OnNext(7) }
func (d deafSub) Cancel()           {}

type completeOnRequestSub struct{ s rs.Subscriber[int] }

func (c completeOnRequestSub) Request(rs.Demand) { c.s.OnComplete(rs.Finished()) }
func (c completeOnRequestSub) Cancel()           {}
