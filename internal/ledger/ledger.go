package ledger

import (
	"errors"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

var (
	ErrMintNotFound      = errors.New("token mint not found")
	ErrAccountNotFound   = errors.New("token account not found")
	ErrNotAccountOwner   = errors.New("caller does not own the source account")
	ErrMintMismatch      = errors.New("accounts do not share a token mint")
	ErrInsufficientFunds = errors.New("insufficient token balance")
	ErrBalanceOverflow   = errors.New("token balance overflow")
)

// Account is a single token account: a balance of one mint held for one owner.
// Only the owner may move funds out of it.
type Account struct {
	ID      uuid.UUID      `json:"id"`
	Owner   common.Address `json:"owner"`
	Mint    uuid.UUID      `json:"mint"`
	Balance uint64         `json:"balance"`
}

// Ledger is an in-process fungible-token ledger: mints, owner-verified
// accounts, and atomic transfers between them. It stands in for the external
// token program the market settles against.
type Ledger struct {
	mu       sync.RWMutex
	mints    map[uuid.UUID]bool
	accounts map[uuid.UUID]*Account
}

// New creates an empty ledger
func New() *Ledger {
	return &Ledger{
		mints:    make(map[uuid.UUID]bool),
		accounts: make(map[uuid.UUID]*Account),
	}
}

// CreateMint registers a new token mint and returns its identifier
func (l *Ledger) CreateMint() uuid.UUID {
	l.mu.Lock()
	defer l.mu.Unlock()

	id := uuid.New()
	l.mints[id] = true
	return id
}

// MintExists reports whether a mint is registered
func (l *Ledger) MintExists(mint uuid.UUID) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.mints[mint]
}

// CreateAccount opens a zero-balance account for owner in the given mint
func (l *Ledger) CreateAccount(owner common.Address, mint uuid.UUID) (uuid.UUID, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.mints[mint] {
		return uuid.Nil, ErrMintNotFound
	}

	acct := &Account{
		ID:    uuid.New(),
		Owner: owner,
		Mint:  mint,
	}
	l.accounts[acct.ID] = acct
	return acct.ID, nil
}

// GetAccount returns a copy of an account
func (l *Ledger) GetAccount(id uuid.UUID) (Account, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	acct, ok := l.accounts[id]
	if !ok {
		return Account{}, ErrAccountNotFound
	}
	return *acct, nil
}

// Balance returns an account's current balance
func (l *Ledger) Balance(id uuid.UUID) (uint64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	acct, ok := l.accounts[id]
	if !ok {
		return 0, ErrAccountNotFound
	}
	return acct.Balance, nil
}

// MintTo credits freshly minted tokens to an account. This is the airdrop
// surface used to fund test and faucet accounts; real deposits are out of
// scope for the ledger core.
func (l *Ledger) MintTo(id uuid.UUID, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	acct, ok := l.accounts[id]
	if !ok {
		return ErrAccountNotFound
	}
	if acct.Balance+amount < acct.Balance {
		return ErrBalanceOverflow
	}
	acct.Balance += amount
	return nil
}

// Transfer moves amount from one account to another. The caller must be the
// owner of the source account and both accounts must share a mint.
func (l *Ledger) Transfer(caller common.Address, from, to uuid.UUID, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	src, dst, err := l.pair(caller, from, to, amount)
	if err != nil {
		return err
	}

	src.Balance -= amount
	dst.Balance += amount
	return nil
}

// SplitTransfer moves two amounts from one source account to two destinations
// under a single lock: either both legs apply or neither does. This is the
// fee/stake split a vote performs.
func (l *Ledger) SplitTransfer(caller common.Address, from, toA uuid.UUID, amountA uint64, toB uuid.UUID, amountB uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	total := amountA + amountB
	if total < amountA {
		return ErrBalanceOverflow
	}

	src, dstA, err := l.pair(caller, from, toA, total)
	if err != nil {
		return err
	}
	dstB, ok := l.accounts[toB]
	if !ok {
		return ErrAccountNotFound
	}
	if dstB.Mint != src.Mint {
		return ErrMintMismatch
	}
	if dstB.Balance+amountB < dstB.Balance {
		return ErrBalanceOverflow
	}

	src.Balance -= total
	dstA.Balance += amountA
	dstB.Balance += amountB
	return nil
}

// pair validates a transfer of amount from -> to on behalf of caller and
// returns both accounts. Must hold the write lock.
func (l *Ledger) pair(caller common.Address, from, to uuid.UUID, amount uint64) (*Account, *Account, error) {
	src, ok := l.accounts[from]
	if !ok {
		return nil, nil, ErrAccountNotFound
	}
	dst, ok := l.accounts[to]
	if !ok {
		return nil, nil, ErrAccountNotFound
	}
	if src.Owner != caller {
		return nil, nil, ErrNotAccountOwner
	}
	if src.Mint != dst.Mint {
		return nil, nil, ErrMintMismatch
	}
	if src.Balance < amount {
		return nil, nil, ErrInsufficientFunds
	}
	if dst.Balance+amount < dst.Balance {
		return nil, nil, ErrBalanceOverflow
	}
	return src, dst, nil
}
