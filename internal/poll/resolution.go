package poll

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

// ResolveRequest is the request to resolve a poll
type ResolveRequest struct {
	PollID     uuid.UUID
	Caller     common.Address
	Admin      *common.Address // optional second identity; must match the authority
	WinningNFT common.Address
}

// Resolve sets a poll's winning outcome, exactly once. Only the poll's
// authority may resolve; a resolved or canceled poll never transitions again.
func (m *Manager) Resolve(req ResolveRequest) (*Poll, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.polls[req.PollID]
	if !ok {
		return nil, ErrPollNotFound
	}

	if !Authorized(req.Caller, req.Admin, p) {
		return nil, ErrUnauthorized
	}

	switch p.Status {
	case StatusResolved:
		return nil, ErrAlreadyResolved
	case StatusCanceled:
		return nil, ErrPollCanceled
	}

	if req.WinningNFT != p.NFT1 && req.WinningNFT != p.NFT2 {
		return nil, ErrInvalidOutcome
	}

	winning := req.WinningNFT
	p.Status = StatusResolved
	p.WinningNFT = &winning

	return p, nil
}

// CancelRequest is the request to void a poll
type CancelRequest struct {
	PollID uuid.UUID
	Caller common.Address
	Admin  *common.Address
}

// Cancel voids an unresolved poll. Authorization follows the same rule as
// Resolve; resolved and already-canceled polls cannot be canceled.
func (m *Manager) Cancel(req CancelRequest) (*Poll, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.polls[req.PollID]
	if !ok {
		return nil, ErrPollNotFound
	}

	if !Authorized(req.Caller, req.Admin, p) {
		return nil, ErrUnauthorized
	}

	switch p.Status {
	case StatusResolved:
		return nil, ErrAlreadyResolved
	case StatusCanceled:
		return nil, ErrPollCanceled
	}

	p.Status = StatusCanceled
	return p, nil
}
