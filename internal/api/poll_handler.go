package api

import (
	"encoding/json"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"pollmarket-backend/internal/identity"
	"pollmarket-backend/internal/poll"
)

// CreatePollRequest is the request to create a new poll
type CreatePollRequest struct {
	Authority  string `json:"authority"`
	Title      string `json:"title"`
	TokenMint  string `json:"token_mint"`
	ClosesAt   int64  `json:"closes_at"` // Unix seconds
	NFT1       string `json:"nft1"`
	NFT2       string `json:"nft2"`
	NFT1Shares uint64 `json:"nft1_shares"`
	NFT2Shares uint64 `json:"nft2_shares"`
}

// handleCreatePoll handles POST /api/poll
func (s *Server) handleCreatePoll(w http.ResponseWriter, r *http.Request) {
	var req CreatePollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	if !common.IsHexAddress(req.Authority) {
		writeError(w, http.StatusBadRequest, "invalid authority address")
		return
	}
	if !common.IsHexAddress(req.NFT1) || !common.IsHexAddress(req.NFT2) {
		writeError(w, http.StatusBadRequest, "invalid outcome identifiers")
		return
	}
	mint, err := uuid.Parse(req.TokenMint)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid token_mint")
		return
	}

	p, err := s.engine.CreatePoll(poll.CreateRequest{
		Authority:  common.HexToAddress(req.Authority),
		Title:      req.Title,
		TokenMint:  mint,
		ClosesAt:   req.ClosesAt,
		NFT1:       common.HexToAddress(req.NFT1),
		NFT2:       common.HexToAddress(req.NFT2),
		NFT1Shares: req.NFT1Shares,
		NFT2Shares: req.NFT2Shares,
	})
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, p.ToJSON())
}

// handleListPolls handles GET /api/polls
func (s *Server) handleListPolls(w http.ResponseWriter, r *http.Request) {
	polls := s.polls.List()

	result := make([]poll.PollJSON, 0, len(polls))
	for _, p := range polls {
		result = append(result, p.ToJSON())
	}

	writeJSON(w, http.StatusOK, result)
}

// handleGetPoll handles GET /api/poll/{id}
func (s *Server) handleGetPoll(w http.ResponseWriter, r *http.Request) {
	pollID, ok := pathPollID(w, r)
	if !ok {
		return
	}

	p, found := s.polls.Get(pollID)
	if !found {
		writeError(w, http.StatusNotFound, "poll not found")
		return
	}

	writeJSON(w, http.StatusOK, p.ToJSON())
}

// ResolvePollRequest is the request to resolve a poll. The authority attests
// the decision by signing the canonical resolve message; the signature must
// recover to the authority address.
type ResolvePollRequest struct {
	WinningNFT string `json:"winning_nft"`
	Authority  string `json:"authority"`
	Admin      string `json:"admin,omitempty"`
	Signature  string `json:"signature"`
}

// handleResolvePoll handles POST /api/poll/{id}/resolve
func (s *Server) handleResolvePoll(w http.ResponseWriter, r *http.Request) {
	pollID, ok := pathPollID(w, r)
	if !ok {
		return
	}

	var req ResolvePollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !common.IsHexAddress(req.WinningNFT) {
		writeError(w, http.StatusBadRequest, "invalid winning_nft")
		return
	}
	winning := common.HexToAddress(req.WinningNFT)

	caller, admin, ok := s.verifyAttestation(w, "resolve", pollID, winning.Hex(), req.Authority, req.Admin, req.Signature)
	if !ok {
		return
	}

	p, err := s.engine.Resolve(pollID, caller, admin, winning)
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, p.ToJSON())
}

// CancelPollRequest is the request to void a poll
type CancelPollRequest struct {
	Authority string `json:"authority"`
	Admin     string `json:"admin,omitempty"`
	Signature string `json:"signature"`
}

// handleCancelPoll handles POST /api/poll/{id}/cancel
func (s *Server) handleCancelPoll(w http.ResponseWriter, r *http.Request) {
	pollID, ok := pathPollID(w, r)
	if !ok {
		return
	}

	var req CancelPollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	caller, admin, ok := s.verifyAttestation(w, "cancel", pollID, "", req.Authority, req.Admin, req.Signature)
	if !ok {
		return
	}

	p, err := s.engine.Cancel(pollID, caller, admin)
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, p.ToJSON())
}

// verifyAttestation checks that a privileged request carries a signature
// recovering to the claimed authority address. It writes the error response
// itself and reports success through the bool.
func (s *Server) verifyAttestation(w http.ResponseWriter, action string, pollID uuid.UUID, payload, authority, adminHex, signature string) (common.Address, *common.Address, bool) {
	if !common.IsHexAddress(authority) {
		writeError(w, http.StatusBadRequest, "invalid authority address")
		return common.Address{}, nil, false
	}
	caller := common.HexToAddress(authority)

	var admin *common.Address
	if adminHex != "" {
		if !common.IsHexAddress(adminHex) {
			writeError(w, http.StatusBadRequest, "invalid admin address")
			return common.Address{}, nil, false
		}
		a := common.HexToAddress(adminHex)
		admin = &a
	}

	msg := identity.AttestationMessage(action, pollID, payload)
	valid, err := identity.VerifySignature(msg, signature, caller)
	if err != nil || !valid {
		writeError(w, http.StatusForbidden, "signature does not attest the claimed authority")
		return common.Address{}, nil, false
	}

	return caller, admin, true
}

// pathPollID parses the {id} path value as a poll identifier
func pathPollID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid poll id")
		return uuid.Nil, false
	}
	return id, true
}
