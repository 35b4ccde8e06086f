package engine

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"pollmarket-backend/internal/poll"
)

// Settlement freezes the figures claims are paid against: the pool vault
// balance and the total winning shares at the moment of resolution. Flooring
// each payout against these fixed totals guarantees the sum of all payouts
// never exceeds the balance the vault held when the poll resolved.
type Settlement struct {
	PollID             uuid.UUID `json:"poll_id"`
	PoolBalance        uint64    `json:"pool_balance"`
	TotalWinningShares uint64    `json:"total_winning_shares"`
	WinningVotes       int       `json:"winning_votes"`
}

// snapshotSettlement records settlement figures for a just-resolved poll.
// Caller must hold the poll lock.
func (e *Engine) snapshotSettlement(p *poll.Poll) {
	vaults := e.pollVaults(p.ID)

	s := &Settlement{PollID: p.ID}
	if vaults != nil {
		s.PoolBalance = vaults.PoolBalance(e.tokens)
	}

	e.mu.Lock()
	for _, v := range e.byPoll[p.ID] {
		if p.OutcomeAddress(v.VotedForNFT) == *p.WinningNFT {
			s.TotalWinningShares += v.SharesAcquired
			s.WinningVotes++
		}
	}
	e.settlements[p.ID] = s
	e.mu.Unlock()
}

// GetSettlement returns the settlement snapshot of a resolved poll
func (e *Engine) GetSettlement(pollID uuid.UUID) (*Settlement, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	s, ok := e.settlements[pollID]
	return s, ok
}

// Claim pays out a single winning vote, exactly once. The payout is the
// vote's pro-rata slice of the pool vault balance frozen at resolution,
// proportional to shares acquired on the winning side.
func (e *Engine) Claim(pollID, voteID uuid.UUID, user common.Address, userAccount uuid.UUID) (uint64, error) {
	lk := e.pollLock(pollID)
	lk.Lock()
	defer lk.Unlock()

	p, ok := e.polls.Get(pollID)
	if !ok {
		return 0, poll.ErrPollNotFound
	}
	if p.Status != poll.StatusResolved || p.WinningNFT == nil {
		return 0, poll.ErrPollNotResolved
	}

	e.mu.RLock()
	v, ok := e.votes[voteID]
	e.mu.RUnlock()
	if !ok {
		return 0, ErrVoteNotFound
	}
	if v.Poll != pollID {
		return 0, ErrVoteMismatch
	}
	if v.User != user {
		return 0, poll.ErrUnauthorized
	}

	if p.OutcomeAddress(v.VotedForNFT) != *p.WinningNFT {
		return 0, ErrVoteDidNotWin
	}
	if v.Claimed {
		return 0, ErrAlreadyClaimed
	}

	e.mu.RLock()
	s := e.settlements[pollID]
	e.mu.RUnlock()
	if s == nil {
		return 0, poll.ErrPollNotResolved
	}

	payout := ProRata(v.SharesAcquired, s.PoolBalance, s.TotalWinningShares)

	vaults := e.pollVaults(pollID)
	if remaining := vaults.PoolBalance(e.tokens); payout > remaining {
		// A payout the vault cannot cover means the settlement accounting is
		// broken, not that the caller did anything wrong. Halt.
		panic(fmt.Sprintf("escrow invariant violated: poll %s payout %d exceeds pool balance %d", pollID, payout, remaining))
	}

	if payout > 0 {
		if err := vaults.PayOut(e.tokens, userAccount, payout); err != nil {
			return 0, err
		}
	}

	v.Claimed = true
	e.emit(EventWinningsClaimed, map[string]interface{}{
		"poll":   pollID.String(),
		"vote":   voteID.String(),
		"user":   user.Hex(),
		"amount": payout,
	})
	return payout, nil
}
