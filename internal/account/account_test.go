package account_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/snayrouz/combine-go/internal/account"
	"github.com/snayrouz/combine-go/pkg/rs"
)

func TestClaimConsumesCreditedDemand(t *testing.T) {
	var l account.Ledger
	require.False(t, l.Claim(), "fresh ledger has nothing to claim")

	l.Credit(rs.MaxDemand(2))
	require.True(t, l.Claim())
	require.True(t, l.Claim())
	require.False(t, l.Claim(), "two credits allow exactly two claims")

	l.Credit(rs.MaxDemand(1))
	require.True(t, l.Claim(), "credit is additive across calls")
}

func TestUnboundedAlwaysClaims(t *testing.T) {
	var l account.Ledger
	l.Credit(rs.UnboundedDemand)
	for i := 0; i < 1000; i++ {
		require.True(t, l.Claim())
	}
	require.True(t, l.Outstanding().IsUnbounded())
}

func TestCancelIsTerminalAndExactlyOnce(t *testing.T) {
	var l account.Ledger
	l.Credit(rs.MaxDemand(5))

	require.True(t, l.Cancel(), "first cancel performs the move")
	require.False(t, l.Cancel(), "second cancel is a no-op")
	require.False(t, l.Terminate(), "terminate after cancel is a no-op")
	require.False(t, l.Claim())
	require.True(t, l.Cancelled())
	require.False(t, l.Live())
	require.True(t, l.Outstanding().IsZero(), "cancel drops outstanding demand")

	l.Credit(rs.MaxDemand(3))
	require.True(t, l.Outstanding().IsZero(), "credit after cancel is ignored")
}

func TestTerminateOwnsTheCompletion(t *testing.T) {
	var l account.Ledger
	require.True(t, l.Terminate())
	require.False(t, l.Terminate(), "only one caller owns the terminal event")
	require.False(t, l.Cancel())
	require.False(t, l.Cancelled(), "terminated is not cancelled")
	require.False(t, l.Live())
}
