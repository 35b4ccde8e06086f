package api

import (
	"encoding/json"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

// handleCreateMint handles POST /api/mint
func (s *Server) handleCreateMint(w http.ResponseWriter, r *http.Request) {
	mint := s.tokens.CreateMint()
	writeJSON(w, http.StatusCreated, map[string]string{
		"mint_id": mint.String(),
	})
}

// CreateAccountRequest is the request to open a token account
type CreateAccountRequest struct {
	Owner  string `json:"owner"`
	MintID string `json:"mint_id"`
}

// handleCreateAccount handles POST /api/account
func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if !common.IsHexAddress(req.Owner) {
		writeError(w, http.StatusBadRequest, "invalid owner address")
		return
	}
	mint, err := uuid.Parse(req.MintID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid mint_id")
		return
	}

	account, err := s.tokens.CreateAccount(common.HexToAddress(req.Owner), mint)
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"account_id": account.String(),
	})
}

// handleGetAccount handles GET /api/account/{id}
func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid account id")
		return
	}

	acct, err := s.tokens.GetAccount(id)
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, acct)
}

// FaucetRequest is the request to airdrop tokens onto an account
type FaucetRequest struct {
	AccountID string `json:"account_id"`
	Amount    uint64 `json:"amount"`
}

// handleFaucet handles POST /api/faucet
func (s *Server) handleFaucet(w http.ResponseWriter, r *http.Request) {
	var req FaucetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Amount == 0 {
		writeError(w, http.StatusBadRequest, "amount must be greater than 0")
		return
	}
	account, err := uuid.Parse(req.AccountID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid account_id")
		return
	}

	if err := s.tokens.MintTo(account, req.Amount); err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}

	balance, _ := s.tokens.Balance(account)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"account_id": account.String(),
		"balance":    balance,
	})
}
