package rs_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/snayrouz/combine-go/pkg/rs"
)

func TestSubscriberPartsFillsNilSlots(t *testing.T) {
	s := (&rs.SubscriberParts[string]{}).Build()

	// None of these may panic, and the default OnNext returns no demand.
	s.OnSubscribe((&rs.SubscriptionParts{}).Build())
	require.Equal(t, rs.NoDemand, s.OnNext("anything"))
	s.OnComplete(rs.Finished())
}

func TestSinkRequestsUnboundedUpFront(t *testing.T) {
	var requested rs.Demand
	var seen []int
	var terminal []rs.Completion

	sink := rs.Sink(
		func(v int) { seen = append(seen, v) },
		func(c rs.Completion) { terminal = append(terminal, c) },
	)
	sink.OnSubscribe((&rs.SubscriptionParts{
		Request: func(d rs.Demand) { requested = requested.Add(d) },
	}).Build())
	sink.OnNext(7)
	sink.OnComplete(rs.Finished())

	require.True(t, requested.IsUnbounded())
	require.Equal(t, []int{7}, seen)
	require.Len(t, terminal, 1)
	require.False(t, terminal[0].IsFailure())
}

func TestCompletionVariants(t *testing.T) {
	require.False(t, rs.Finished().IsFailure())
	require.NoError(t, rs.Finished().Err())

	boom := errTest("boom")
	c := rs.Failed(boom)
	require.True(t, c.IsFailure())
	require.Equal(t, boom, c.Err())
	require.Equal(t, "failed(boom)", c.String())
	require.Equal(t, "finished", rs.Finished().String())
}

type errTest string

func (e errTest) Error() string { return string(e) }
