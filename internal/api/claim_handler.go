package api

import (
	"encoding/json"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

// ClaimRequest is the request body for claiming winnings on a vote
type ClaimRequest struct {
	User      string `json:"user"`
	AccountID string `json:"account_id"` // token account receiving the payout
	VoteID    string `json:"vote_id"`
}

// ClaimResponse is the response for a settled claim
type ClaimResponse struct {
	VoteID  string `json:"vote_id"`
	Amount  uint64 `json:"amount"`
	Balance uint64 `json:"balance"` // receiving account balance after payout
}

// handleClaim handles POST /api/poll/{id}/claim
func (s *Server) handleClaim(w http.ResponseWriter, r *http.Request) {
	pollID, ok := pathPollID(w, r)
	if !ok {
		return
	}

	var req ClaimRequest
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
	voteID, err := uuid.Parse(req.VoteID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid vote_id")
		return
	}

	payout, err := s.engine.Claim(pollID, voteID, common.HexToAddress(req.User), account)
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}

	balance, _ := s.tokens.Balance(account)
	writeJSON(w, http.StatusOK, ClaimResponse{
		VoteID:  voteID.String(),
		Amount:  payout,
		Balance: balance,
	})
}
