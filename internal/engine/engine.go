package engine

import (
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"pollmarket-backend/internal/escrow"
	"pollmarket-backend/internal/ledger"
	"pollmarket-backend/internal/poll"
)

// Event types broadcast after successful state transitions
const (
	EventPollCreated     = "poll_created"
	EventVote            = "vote"
	EventPollResolved    = "poll_resolved"
	EventPollCanceled    = "poll_canceled"
	EventWinningsClaimed = "winnings_claimed"
)

// Event is a ledger event emitted to subscribers
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Engine executes the market's fund-moving operations: it owns the escrow
// vaults and vote records, and serializes every mutation of a poll behind a
// per-poll lock. Operations on different polls proceed independently.
type Engine struct {
	mu     sync.RWMutex
	polls  *poll.Manager
	tokens *ledger.Ledger

	vaults      map[uuid.UUID]*escrow.Vaults
	votes       map[uuid.UUID]*Vote
	byPoll      map[uuid.UUID][]*Vote
	locks       map[uuid.UUID]*sync.Mutex
	settlements map[uuid.UUID]*Settlement

	now func() time.Time

	// Callback for event notifications
	onEvent func(Event)
}

// New creates a voting engine over a poll registry and a token ledger
func New(polls *poll.Manager, tokens *ledger.Ledger) *Engine {
	return &Engine{
		polls:       polls,
		tokens:      tokens,
		vaults:      make(map[uuid.UUID]*escrow.Vaults),
		votes:       make(map[uuid.UUID]*Vote),
		byPoll:      make(map[uuid.UUID][]*Vote),
		locks:       make(map[uuid.UUID]*sync.Mutex),
		settlements: make(map[uuid.UUID]*Settlement),
		now:         time.Now,
	}
}

// SetEventCallback sets the callback for event notifications
func (e *Engine) SetEventCallback(fn func(Event)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onEvent = fn
}

// SetClock overrides the engine's clock, for tests
func (e *Engine) SetClock(now func() time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.now = now
}

func (e *Engine) emit(typ string, data interface{}) {
	e.mu.RLock()
	fn := e.onEvent
	e.mu.RUnlock()
	if fn != nil {
		fn(Event{Type: typ, Data: data})
	}
}

// pollLock returns the mutex linearizing all mutations of one poll
func (e *Engine) pollLock(id uuid.UUID) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	lk, ok := e.locks[id]
	if !ok {
		lk = &sync.Mutex{}
		e.locks[id] = lk
	}
	return lk
}

// CreatePoll validates and allocates a new poll together with its escrow
// vault pair. Nothing is allocated on a validation failure.
func (e *Engine) CreatePoll(req poll.CreateRequest) (*poll.Poll, error) {
	if !e.tokens.MintExists(req.TokenMint) {
		return nil, ledger.ErrMintNotFound
	}

	p, err := e.polls.Create(req)
	if err != nil {
		return nil, err
	}

	vaults, err := escrow.NewVaults(e.tokens, p.ID, p.TokenMint)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.vaults[p.ID] = vaults
	e.locks[p.ID] = &sync.Mutex{}
	e.mu.Unlock()

	e.emit(EventPollCreated, p.ToJSON())
	return p, nil
}

// Vote stakes amount of the poll's token on outcome choice (1 or 2) for
// user, paying from the user's token account. The whole transition is
// atomic: every validation runs before any fund movement, and the one
// fund-moving step is itself all-or-nothing.
func (e *Engine) Vote(pollID uuid.UUID, user common.Address, userAccount uuid.UUID, choice uint8, amount uint64) (*Vote, error) {
	lk := e.pollLock(pollID)
	lk.Lock()
	defer lk.Unlock()

	p, ok := e.polls.Get(pollID)
	if !ok {
		return nil, poll.ErrPollNotFound
	}
	if p.Status != poll.StatusActive {
		return nil, poll.ErrPollNotActive
	}
	if e.clock().Unix() >= p.ClosesAt {
		return nil, poll.ErrPollClosed
	}
	if choice != 1 && choice != 2 {
		return nil, ErrInvalidChoice
	}
	if amount == 0 {
		return nil, ErrInvalidAmount
	}

	fee, net := SplitFee(amount)

	var acquired, newNFT1, newNFT2 uint64
	var err error
	if choice == 1 {
		acquired, newNFT1, newNFT2, err = Reprice(p.NFT1Shares, p.NFT2Shares, p.K, net)
	} else {
		acquired, newNFT2, newNFT1, err = Reprice(p.NFT2Shares, p.NFT1Shares, p.K, net)
	}
	if err != nil {
		return nil, err
	}

	vaults := e.pollVaults(pollID)
	if vaults == nil {
		return nil, poll.ErrPollNotFound
	}
	if err := vaults.Collect(e.tokens, user, userAccount, net, fee); err != nil {
		return nil, err
	}

	if err := e.polls.ApplySwap(pollID, newNFT1, newNFT2); err != nil {
		// The poll slipped out of active under our feet (auto-close at the
		// deadline boundary). Refund both legs and surface the rejection.
		_ = vaults.PayOut(e.tokens, userAccount, net)
		_ = e.tokens.Transfer(vaults.Authority, vaults.Fee, userAccount, fee)
		return nil, err
	}

	v := newVote(pollID, user, choice, amount, acquired, Price(newNFT1, newNFT2, choice))

	e.mu.Lock()
	e.votes[v.ID] = v
	e.byPoll[pollID] = append(e.byPoll[pollID], v)
	e.mu.Unlock()

	e.emit(EventVote, v)
	return v, nil
}

// Resolve sets the winning outcome of a poll and freezes the settlement
// figures every claim will be paid against.
func (e *Engine) Resolve(pollID uuid.UUID, caller common.Address, admin *common.Address, winningNFT common.Address) (*poll.Poll, error) {
	lk := e.pollLock(pollID)
	lk.Lock()
	defer lk.Unlock()

	p, err := e.polls.Resolve(poll.ResolveRequest{
		PollID:     pollID,
		Caller:     caller,
		Admin:      admin,
		WinningNFT: winningNFT,
	})
	if err != nil {
		return nil, err
	}

	e.snapshotSettlement(p)
	e.emit(EventPollResolved, p.ToJSON())
	return p, nil
}

// Cancel voids an unresolved poll
func (e *Engine) Cancel(pollID uuid.UUID, caller common.Address, admin *common.Address) (*poll.Poll, error) {
	lk := e.pollLock(pollID)
	lk.Lock()
	defer lk.Unlock()

	p, err := e.polls.Cancel(poll.CancelRequest{
		PollID: pollID,
		Caller: caller,
		Admin:  admin,
	})
	if err != nil {
		return nil, err
	}

	e.emit(EventPollCanceled, p.ToJSON())
	return p, nil
}

// GetVote retrieves a vote by ID
func (e *Engine) GetVote(id uuid.UUID) (*Vote, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	v, ok := e.votes[id]
	return v, ok
}

// Votes returns all votes recorded on a poll
func (e *Engine) Votes(pollID uuid.UUID) []*Vote {
	e.mu.RLock()
	defer e.mu.RUnlock()

	votes := make([]*Vote, len(e.byPoll[pollID]))
	copy(votes, e.byPoll[pollID])
	return votes
}

// VaultBalances returns the current pool and fee vault balances of a poll
func (e *Engine) VaultBalances(pollID uuid.UUID) (pool, fee uint64) {
	v := e.pollVaults(pollID)
	if v == nil {
		return 0, 0
	}
	return v.PoolBalance(e.tokens), v.FeeBalance(e.tokens)
}

func (e *Engine) pollVaults(pollID uuid.UUID) *escrow.Vaults {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.vaults[pollID]
}

func (e *Engine) clock() time.Time {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.now()
}
