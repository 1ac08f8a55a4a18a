// Package wallet proves control of an Ethereum account through a signed,
// nonce-bound sign-in message.
//
// The client asks for a nonce, signs GenerateAuthMessage(nonce) with
// personal_sign (EIP-191) and sends back the address, signature and nonce.
// The server recomputes the same message, recovers the signer and compares
// it to the claimed address.
package wallet

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dmitrijs2005/slothapp/internal/common"
	"github.com/ethereum/go-ethereum/accounts"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// messageTemplate is part of the signing contract with the web client; any
// change here breaks every outstanding sign-in.
const messageTemplate = "Welcome to Sloth.app!\n\n" +
	"Sign this message to verify you own this wallet.\n\n" +
	"This request will not trigger a blockchain transaction or cost any gas fees.\n\n" +
	"Nonce: %s"

const signatureLength = 65

var (
	addressPattern   = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)
	signaturePattern = regexp.MustCompile(`^0x[0-9a-fA-F]{130}$`)
)

// GenerateAuthNonce returns a fresh random token for one sign-in attempt.
func GenerateAuthNonce() (string, error) {
	return common.MakeRandHexString(16)
}

// GenerateAuthMessage renders the message the wallet must sign.
func GenerateAuthMessage(nonce string) string {
	return fmt.Sprintf(messageTemplate, nonce)
}

// IsValidAddress reports whether address is 0x followed by 40 hex characters.
func IsValidAddress(address string) bool {
	return addressPattern.MatchString(address)
}

// NormalizeAddress returns the canonical lower-case form used for storage.
func NormalizeAddress(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

// VerifyWalletSignature reports whether signature is a personal_sign of
// GenerateAuthMessage(nonce) by address. It returns false for any malformed
// input instead of failing.
func VerifyWalletSignature(address, signature, nonce string) bool {
	if !IsValidAddress(address) || nonce == "" {
		return false
	}
	signer, err := RecoverSigner(GenerateAuthMessage(nonce), signature)
	if err != nil {
		return false
	}
	return signer == ethcommon.HexToAddress(address)
}

// RecoverSigner returns the address that produced a personal_sign signature
// over message. Both 0/1 and 27/28 recovery ids are accepted.
func RecoverSigner(message, signature string) (ethcommon.Address, error) {
	raw, err := hexutil.Decode(signature)
	if err != nil {
		return ethcommon.Address{}, fmt.Errorf("decode signature: %w", err)
	}
	if len(raw) != signatureLength {
		return ethcommon.Address{}, fmt.Errorf("signature must be %d bytes, got %d", signatureLength, len(raw))
	}

	sig := make([]byte, signatureLength)
	copy(sig, raw)
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}
	if sig[crypto.RecoveryIDOffset] > 1 {
		return ethcommon.Address{}, fmt.Errorf("invalid recovery id %d", raw[crypto.RecoveryIDOffset])
	}

	pub, err := crypto.SigToPub(accounts.TextHash([]byte(message)), sig)
	if err != nil {
		return ethcommon.Address{}, fmt.Errorf("recover public key: %w", err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// FailureReason explains why a detailed verification failed.
type FailureReason string

const (
	ReasonNone                   FailureReason = ""
	ReasonInvalidAddress         FailureReason = "invalid_address"
	ReasonMissingSignature       FailureReason = "missing_signature"
	ReasonInvalidSignatureFormat FailureReason = "invalid_signature_format"
	ReasonMissingNonce           FailureReason = "missing_nonce"
	ReasonSignatureMismatch      FailureReason = "signature_mismatch"
)

// Verification is the outcome of VerifyWalletWithDetails.
type Verification struct {
	Valid   bool
	Reason  FailureReason
	Message string
}

// VerifyWalletWithDetails runs the same check as VerifyWalletSignature after
// validating each input, and explains failures for display.
func VerifyWalletWithDetails(address, signature, nonce string) Verification {
	switch {
	case !IsValidAddress(address):
		return Verification{Reason: ReasonInvalidAddress, Message: "Wallet address must be 0x followed by 40 hex characters"}
	case signature == "":
		return Verification{Reason: ReasonMissingSignature, Message: "Signature is required"}
	case !strings.HasPrefix(signature, "0x"):
		return Verification{Reason: ReasonInvalidSignatureFormat, Message: "Signature must be 0x-prefixed hex"}
	case nonce == "":
		return Verification{Reason: ReasonMissingNonce, Message: "Nonce is required"}
	}
	if !signaturePattern.MatchString(signature) {
		return Verification{Reason: ReasonInvalidSignatureFormat, Message: "Signature must be 65 bytes of hex"}
	}
	if !VerifyWalletSignature(address, signature, nonce) {
		return Verification{Reason: ReasonSignatureMismatch, Message: "Signature does not match this wallet"}
	}
	return Verification{Valid: true}
}
