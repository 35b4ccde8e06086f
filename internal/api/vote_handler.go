package api

import (
	"encoding/json"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"pollmarket-backend/internal/engine"
)

// VoteRequest is the request body for staking on a poll outcome
type VoteRequest struct {
	User      string `json:"user"`
	AccountID string `json:"account_id"` // user's funded token account
	Choice    uint8  `json:"choice"`     // 1 -> nft1, 2 -> nft2
	Amount    uint64 `json:"amount"`     // gross stake, fee included
}

// VoteResponse is the response for a recorded vote
type VoteResponse struct {
	Vote        *engine.Vote `json:"vote"`
	PoolBalance uint64       `json:"pool_balance"`
	FeeBalance  uint64       `json:"fee_balance"`
}

// handleVote handles POST /api/poll/{id}/vote
func (s *Server) handleVote(w http.ResponseWriter, r *http.Request) {
	pollID, ok := pathPollID(w, r)
	if !ok {
		return
	}

	var req VoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if !common.IsHexAddress(req.User) {
		writeError(w, http.StatusBadRequest, "invalid user address")
		return
	}
	account, err := uuid.Parse(req.AccountID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid account_id")
		return
	}

	vote, err := s.engine.Vote(pollID, common.HexToAddress(req.User), account, req.Choice, req.Amount)
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}

	pool, fee := s.engine.VaultBalances(pollID)
	writeJSON(w, http.StatusOK, VoteResponse{
		Vote:        vote,
		PoolBalance: pool,
		FeeBalance:  fee,
	})
}

// handleGetVotes handles GET /api/poll/{id}/votes
func (s *Server) handleGetVotes(w http.ResponseWriter, r *http.Request) {
	pollID, ok := pathPollID(w, r)
	if !ok {
		return
	}

	if _, found := s.polls.Get(pollID); !found {
		writeError(w, http.StatusNotFound, "poll not found")
		return
	}

	writeJSON(w, http.StatusOK, s.engine.Votes(pollID))
}
