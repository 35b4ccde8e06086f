package engine

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

// Vote is one user's stake on one outcome of one poll. It is immutable after
// creation except for Claimed, which a successful claim flips exactly once.
type Vote struct {
	ID             uuid.UUID      `json:"id"`
	Poll           uuid.UUID      `json:"poll"`
	User           common.Address `json:"user"`
	VotedForNFT    uint8          `json:"voted_for_nft"`   // 1 -> nft1, 2 -> nft2
	AmountWagered  uint64         `json:"amount_wagered"`  // gross deposit
	SharesAcquired uint64         `json:"shares_acquired"` // targeted-reserve delta at vote time
	PriceAtVote    uint64         `json:"price_at_vote"`   // basis points, post-swap
	Claimed        bool           `json:"claimed"`
	Timestamp      time.Time      `json:"timestamp"`
}

// newVote creates a vote record for a just-executed stake
func newVote(pollID uuid.UUID, user common.Address, choice uint8, amount, acquired, price uint64) *Vote {
	return &Vote{
		ID:             uuid.New(),
		Poll:           pollID,
		User:           user,
		VotedForNFT:    choice,
		AmountWagered:  amount,
		SharesAcquired: acquired,
		PriceAtVote:    price,
		Timestamp:      time.Now(),
	}
}
