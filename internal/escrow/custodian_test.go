package escrow

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"pollmarket-backend/internal/ledger"
)

func TestDeriveAuthorityDeterministic(t *testing.T) {
	pollID := uuid.New()

	a := DeriveAuthority(pollID)
	b := DeriveAuthority(pollID)
	require.Equal(t, a, b)
	require.NotEqual(t, common.Address{}, a)
}

func TestDeriveAuthorityDistinctPerPoll(t *testing.T) {
	a := DeriveAuthority(uuid.New())
	b := DeriveAuthority(uuid.New())
	require.NotEqual(t, a, b)
}

func TestNewVaultsOwnedByAuthority(t *testing.T) {
	l := ledger.New()
	mint := l.CreateMint()
	pollID := uuid.New()

	v, err := NewVaults(l, pollID, mint)
	require.NoError(t, err)
	require.Equal(t, DeriveAuthority(pollID), v.Authority)
	require.NotEqual(t, v.Pool, v.Fee)

	pool, err := l.GetAccount(v.Pool)
	require.NoError(t, err)
	require.Equal(t, v.Authority, pool.Owner)

	fee, err := l.GetAccount(v.Fee)
	require.NoError(t, err)
	require.Equal(t, v.Authority, fee.Owner)
}

func TestCollectAndPayOut(t *testing.T) {
	l := ledger.New()
	mint := l.CreateMint()
	user := common.HexToAddress("0x00000000000000000000000000000000000000a1")
	userAcct, err := l.CreateAccount(user, mint)
	require.NoError(t, err)
	require.NoError(t, l.MintTo(userAcct, 100))

	v, err := NewVaults(l, uuid.New(), mint)
	require.NoError(t, err)

	require.NoError(t, v.Collect(l, user, userAcct, 97, 3))
	require.Equal(t, uint64(97), v.PoolBalance(l))
	require.Equal(t, uint64(3), v.FeeBalance(l))

	require.NoError(t, v.PayOut(l, userAcct, 97))
	require.Zero(t, v.PoolBalance(l))
	bal, _ := l.Balance(userAcct)
	require.Equal(t, uint64(97), bal)
}

func TestVaultFundsLockedToCustodian(t *testing.T) {
	l := ledger.New()
	mint := l.CreateMint()
	user := common.HexToAddress("0x00000000000000000000000000000000000000a1")
	userAcct, err := l.CreateAccount(user, mint)
	require.NoError(t, err)
	require.NoError(t, l.MintTo(userAcct, 100))

	v, err := NewVaults(l, uuid.New(), mint)
	require.NoError(t, err)
	require.NoError(t, v.Collect(l, user, userAcct, 97, 3))

	// Nobody but the derived authority can move vault funds
	err = l.Transfer(user, v.Pool, userAcct, 97)
	require.ErrorIs(t, err, ledger.ErrNotAccountOwner)
	require.Equal(t, uint64(97), v.PoolBalance(l))
}
