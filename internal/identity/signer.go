package identity

import (
	"crypto/ecdsa"
	"encoding/hex"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
)

// Signer holds a secp256k1 key and produces EIP-191 personal-sign signatures
// over attestation messages. Poll authorities use it to attest resolution and
// cancellation decisions.
type Signer struct {
	privateKey *ecdsa.PrivateKey
	address    common.Address
}

// NewSigner creates a signer from a hex-encoded private key
func NewSigner(hexKey string) (*Signer, error) {
	if len(hexKey) >= 2 && hexKey[:2] == "0x" {
		hexKey = hexKey[2:]
	}

	keyBytes, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("invalid hex key: %w", err)
	}

	privateKey, err := crypto.ToECDSA(keyBytes)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}

	return &Signer{
		privateKey: privateKey,
		address:    crypto.PubkeyToAddress(privateKey.PublicKey),
	}, nil
}

// GenerateSigner creates a signer with a fresh random key
func GenerateSigner() (*Signer, error) {
	privateKey, err := crypto.GenerateKey()
	if err != nil {
		return nil, err
	}
	return &Signer{
		privateKey: privateKey,
		address:    crypto.PubkeyToAddress(privateKey.PublicKey),
	}, nil
}

// Address returns the signer's address
func (s *Signer) Address() common.Address {
	return s.address
}

// AddressHex returns the signer's address as a hex string
func (s *Signer) AddressHex() string {
	return s.address.Hex()
}

// SignMessage signs a message with the EIP-191 personal-sign prefix
func (s *Signer) SignMessage(message []byte) ([]byte, error) {
	hash := accounts.TextHash(message)
	sig, err := crypto.Sign(hash, s.privateKey)
	if err != nil {
		return nil, err
	}

	// Adjust v value for Ethereum (27 or 28)
	if sig[64] < 27 {
		sig[64] += 27
	}

	return sig, nil
}

// SignMessageHex signs a message and returns the hex-encoded signature
func (s *Signer) SignMessageHex(message []byte) (string, error) {
	sig, err := s.SignMessage(message)
	if err != nil {
		return "", err
	}
	return "0x" + hex.EncodeToString(sig), nil
}

// AttestationMessage builds the canonical byte message an authority signs to
// attest a privileged action on a poll. payload carries the action arguments,
// e.g. the winning outcome for a resolution.
func AttestationMessage(action string, pollID uuid.UUID, payload string) []byte {
	return []byte(fmt.Sprintf("pollmarket|%s|%s|%s", action, pollID, payload))
}

// VerifySignature recovers the signer of a hex signature over message and
// compares it against the expected address.
func VerifySignature(message []byte, sigHex string, expectedAddr common.Address) (bool, error) {
	if len(sigHex) >= 2 && sigHex[:2] == "0x" {
		sigHex = sigHex[2:]
	}

	sig, err := hex.DecodeString(sigHex)
	if err != nil {
		return false, err
	}

	if len(sig) != 65 {
		return false, fmt.Errorf("invalid signature length: %d", len(sig))
	}

	// Adjust v value back
	if sig[64] >= 27 {
		sig[64] -= 27
	}

	hash := accounts.TextHash(message)
	pubKey, err := crypto.SigToPub(hash, sig)
	if err != nil {
		return false, err
	}

	return crypto.PubkeyToAddress(*pubKey) == expectedAddr, nil
}
