package op_test

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/snayrouz/combine-go/pkg/op"
	"github.com/snayrouz/combine-go/pkg/pub"
	"github.com/snayrouz/combine-go/pkg/rs"
	"github.com/snayrouz/combine-go/pkg/tck"
)

func TestMapTransformsEveryValue(t *testing.T) {
	p := op.Map(pub.FromSlice([]int{1, 2, 3}), strconv.Itoa)
	rec := tck.NewRecorder[string](rs.UnboundedDemand, rs.NoDemand)
	p.Subscribe(rec)

	require.Equal(t, []string{"1", "2", "3"}, rec.Values())
	require.True(t, rec.Finished())
}

func TestMapPassesDemandThroughUntouched(t *testing.T) {
	p := op.Map(pub.FromSlice([]int{1, 2, 3, 4}), func(v int) int { return v * 10 })
	rec := tck.NewRecorder[int](rs.NoDemand, rs.NoDemand)
	p.Subscribe(rec)

	require.Empty(t, rec.Values(), "no demand, no values, mapped or otherwise")

	rec.Request(rs.MaxDemand(2))
	require.Equal(t, []int{10, 20}, rec.Values())

	rec.Request(rs.UnboundedDemand)
	require.Equal(t, []int{10, 20, 30, 40}, rec.Values())
	require.True(t, rec.Finished())
}

func TestMapRollingDemandFromOnNext(t *testing.T) {
	p := op.Map(pub.FromSlice([]int{1, 2, 3, 4, 5}), func(v int) int { return -v })
	rec := tck.NewRecorder[int](rs.MaxDemand(1), rs.MaxDemand(1))
	p.Subscribe(rec)

	require.Equal(t, []int{-1, -2, -3, -4, -5}, rec.Values())
	require.True(t, rec.Finished())
}

func TestMapPropagatesFailure(t *testing.T) {
	boom := errTransform("boom")
	p := op.Map(pub.Fail[int](boom), strconv.Itoa)
	rec := tck.NewRecorder[string](rs.UnboundedDemand, rs.NoDemand)
	p.Subscribe(rec)

	require.Empty(t, rec.Values())
	require.Equal(t, boom, rec.Err())
}

func TestFilterCreditsDroppedValues(t *testing.T) {
	even := func(v int) bool { return v%2 == 0 }
	p := op.Filter(pub.FromSlice([]int{1, 2, 3, 4, 5, 6}), even)
	rec := tck.NewRecorder[int](rs.MaxDemand(2), rs.NoDemand)
	p.Subscribe(rec)

	// Each dropped odd value is replaced by one unit of upstream demand, so
	// two units of downstream demand surface exactly two even values.
	require.Equal(t, []int{2, 4}, rec.Values())
	require.Empty(t, rec.Completions())

	rec.Request(rs.UnboundedDemand)
	require.Equal(t, []int{2, 4, 6}, rec.Values())
	require.True(t, rec.Finished())
}

type errTransform string

func (e errTransform) Error() string { return string(e) }
