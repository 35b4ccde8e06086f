package escrow

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"

	"pollmarket-backend/internal/ledger"
)

// authoritySeed is the fixed domain tag mixed into every custodian address
const authoritySeed = "pool"

// DeriveAuthority computes the keyless custodian address for a poll. The
// address is a pure function of the fixed seed and the poll identifier; no
// private key exists for it, so the only way vault funds move is through
// Vaults methods invoked by the market logic itself.
func DeriveAuthority(pollID uuid.UUID) common.Address {
	hash := crypto.Keccak256([]byte(authoritySeed), pollID[:])
	return common.BytesToAddress(hash[12:])
}

// Vaults is the escrow pair backing one poll: the pool vault holds staked
// funds that back winner payouts, the fee vault accrues protocol revenue.
// Both accounts are owned by the poll's derived authority.
type Vaults struct {
	PollID    uuid.UUID      `json:"poll_id"`
	Authority common.Address `json:"authority"`
	Pool      uuid.UUID      `json:"pool_vault"`
	Fee       uuid.UUID      `json:"fee_vault"`
}

// NewVaults opens the pool and fee vaults for a poll in the given mint
func NewVaults(l *ledger.Ledger, pollID, mint uuid.UUID) (*Vaults, error) {
	authority := DeriveAuthority(pollID)

	pool, err := l.CreateAccount(authority, mint)
	if err != nil {
		return nil, err
	}
	fee, err := l.CreateAccount(authority, mint)
	if err != nil {
		return nil, err
	}

	return &Vaults{
		PollID:    pollID,
		Authority: authority,
		Pool:      pool,
		Fee:       fee,
	}, nil
}

// Collect pulls a stake out of the caller's account, splitting it between the
// pool vault (net) and the fee vault (fee) atomically.
func (v *Vaults) Collect(l *ledger.Ledger, caller common.Address, from uuid.UUID, net, fee uint64) error {
	return l.SplitTransfer(caller, from, v.Pool, net, v.Fee, fee)
}

// PayOut moves a payout from the pool vault to the given account, signed by
// the derived authority. This is the only path that withdraws pool funds.
func (v *Vaults) PayOut(l *ledger.Ledger, to uuid.UUID, amount uint64) error {
	return l.Transfer(v.Authority, v.Pool, to, amount)
}

// PoolBalance returns the pool vault's current balance
func (v *Vaults) PoolBalance(l *ledger.Ledger) uint64 {
	bal, _ := l.Balance(v.Pool)
	return bal
}

// FeeBalance returns the fee vault's current balance
func (v *Vaults) FeeBalance(l *ledger.Ledger) uint64 {
	bal, _ := l.Balance(v.Fee)
	return bal
}
