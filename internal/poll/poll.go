package poll

import (
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/holiman/uint256"
)

// Status represents the lifecycle stage of a poll
type Status int

const (
	StatusActive   Status = iota // Accepting votes
	StatusClosed                 // Deadline passed, awaiting resolution
	StatusResolved               // Winning outcome determined, claims open
	StatusCanceled               // Voided by its authority
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusClosed:
		return "closed"
	case StatusResolved:
		return "resolved"
	case StatusCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// TitleCapacity is the fixed byte capacity of a poll title; longer input is
// truncated at creation.
const TitleCapacity = 64

// Poll is one two-outcome market: a pair of AMM reserves, a stake deadline,
// and a resolving authority.
type Poll struct {
	ID         uuid.UUID       `json:"id"`
	Authority  common.Address  `json:"authority"`
	Title      string          `json:"title"`
	TokenMint  uuid.UUID       `json:"token_mint"`
	ClosesAt   int64           `json:"closes_at"` // Unix seconds
	NFT1       common.Address  `json:"nft1"`
	NFT2       common.Address  `json:"nft2"`
	NFT1Shares uint64          `json:"nft1_shares"`
	NFT2Shares uint64          `json:"nft2_shares"`
	K          *uint256.Int    `json:"-"` // nft1Shares*nft2Shares at creation, never mutated
	Status     Status          `json:"-"`
	WinningNFT *common.Address `json:"winning_nft,omitempty"` // nil until resolved
	CreatedAt  time.Time       `json:"created_at"`
}

// OutcomeAddress maps a vote choice (1 or 2) to the poll's outcome identifier
func (p *Poll) OutcomeAddress(choice uint8) common.Address {
	if choice == 1 {
		return p.NFT1
	}
	return p.NFT2
}

// PollJSON is the JSON representation of a poll
type PollJSON struct {
	ID         string  `json:"id"`
	Authority  string  `json:"authority"`
	Title      string  `json:"title"`
	TokenMint  string  `json:"token_mint"`
	ClosesAt   int64   `json:"closes_at"`
	NFT1       string  `json:"nft1"`
	NFT2       string  `json:"nft2"`
	NFT1Shares uint64  `json:"nft1_shares"`
	NFT2Shares uint64  `json:"nft2_shares"`
	K          string  `json:"k"`
	Status     string  `json:"status"`
	WinningNFT *string `json:"winning_nft,omitempty"`
	CreatedAt  string  `json:"created_at"`
}

// ToJSON converts a Poll to its JSON representation
func (p *Poll) ToJSON() PollJSON {
	pj := PollJSON{
		ID:         p.ID.String(),
		Authority:  p.Authority.Hex(),
		Title:      p.Title,
		TokenMint:  p.TokenMint.String(),
		ClosesAt:   p.ClosesAt,
		NFT1:       p.NFT1.Hex(),
		NFT2:       p.NFT2.Hex(),
		NFT1Shares: p.NFT1Shares,
		NFT2Shares: p.NFT2Shares,
		K:          p.K.Dec(),
		Status:     p.Status.String(),
		CreatedAt:  p.CreatedAt.Format(time.RFC3339),
	}
	if p.WinningNFT != nil {
		s := p.WinningNFT.Hex()
		pj.WinningNFT = &s
	}
	return pj
}

// Manager owns all poll records and their status transitions
type Manager struct {
	mu    sync.RWMutex
	polls map[uuid.UUID]*Poll
	now   func() time.Time
}

// NewManager creates a new poll manager
func NewManager() *Manager {
	return &Manager{
		polls: make(map[uuid.UUID]*Poll),
		now:   time.Now,
	}
}

// SetClock overrides the manager's clock, for tests
func (m *Manager) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// CreateRequest is the request to create a new poll
type CreateRequest struct {
	Authority  common.Address
	Title      string
	TokenMint  uuid.UUID
	ClosesAt   int64
	NFT1       common.Address
	NFT2       common.Address
	NFT1Shares uint64
	NFT2Shares uint64
}

// Create allocates a new active poll. Validation failures allocate nothing.
func (m *Manager) Create(req CreateRequest) (*Poll, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if req.NFT1Shares == 0 || req.NFT2Shares == 0 {
		return nil, ErrInvalidShares
	}
	if req.NFT1 == req.NFT2 {
		return nil, ErrDuplicateOutcome
	}
	if req.ClosesAt <= m.now().Unix() {
		return nil, ErrClosesAtPast
	}

	title := req.Title
	if len(title) > TitleCapacity {
		title = title[:TitleCapacity]
	}

	k := new(uint256.Int).Mul(
		uint256.NewInt(req.NFT1Shares),
		uint256.NewInt(req.NFT2Shares),
	)

	p := &Poll{
		ID:         uuid.New(),
		Authority:  req.Authority,
		Title:      title,
		TokenMint:  req.TokenMint,
		ClosesAt:   req.ClosesAt,
		NFT1:       req.NFT1,
		NFT2:       req.NFT2,
		NFT1Shares: req.NFT1Shares,
		NFT2Shares: req.NFT2Shares,
		K:          k,
		Status:     StatusActive,
		CreatedAt:  m.now(),
	}

	m.polls[p.ID] = p
	return p, nil
}

// Get retrieves a poll by ID
func (m *Manager) Get(id uuid.UUID) (*Poll, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.polls[id]
	return p, ok
}

// List returns all polls
func (m *Manager) List() []*Poll {
	m.mu.RLock()
	defer m.mu.RUnlock()

	polls := make([]*Poll, 0, len(m.polls))
	for _, p := range m.polls {
		polls = append(polls, p)
	}
	return polls
}

// ApplySwap installs post-vote reserves on an active poll. The voting engine
// computes the new reserves under its per-poll lock; k is untouched.
func (m *Manager) ApplySwap(id uuid.UUID, nft1Shares, nft2Shares uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.polls[id]
	if !ok {
		return ErrPollNotFound
	}
	if p.Status != StatusActive {
		return ErrPollNotActive
	}

	p.NFT1Shares = nft1Shares
	p.NFT2Shares = nft2Shares
	return nil
}

// Close transitions an active poll to closed once its deadline has passed
func (m *Manager) Close(id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.polls[id]
	if !ok {
		return ErrPollNotFound
	}
	if p.Status != StatusActive {
		return ErrPollNotActive
	}

	p.Status = StatusClosed
	return nil
}
