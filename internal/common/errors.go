// Package common defines shared constants, helpers and the coded error type
// used across Sloth.app server layers. Callers should use errors.Is to match
// these values; matching is by Code, so a wrapped or re-messaged error still
// matches its sentinel.
package common

import (
	"errors"
	"fmt"
)

// Repository-level errors.
var (
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")
)

// Code is the finite, machine-readable identifier of a failure condition.
type Code string

const (
	CodeInvalidEmail         Code = "invalid_email"
	CodeInvalidWalletAddress Code = "invalid_wallet_address"
	CodeInvalidSignature     Code = "invalid_signature"
	CodeInvalidNonce         Code = "invalid_nonce"
	CodeInvalidAPIKey        Code = "invalid_api_key"
	CodeAPIKeyMissing        Code = "api_key_missing"
	CodeInvalidInput         Code = "invalid_input"
	CodeSelfInvite           Code = "self_invite"
	CodeWalletExists         Code = "wallet_already_registered"
	CodeEmailExists          Code = "email_already_registered"
	CodeAlreadyCollaborator  Code = "already_collaborator"
	CodeWalletNotRegistered  Code = "wallet_not_registered"
	CodeNotFound             Code = "not_found"
	CodeUserNotFound         Code = "user_not_found"
	CodeProjectNotFound      Code = "project_not_found"
	CodeInvitationNotFound   Code = "invitation_not_found"
	CodeUnauthorized         Code = "unauthorized"
	CodeNoSession            Code = "no_session"
	CodeInvitationExpired    Code = "invitation_expired"
	CodeUnknown              Code = "unknown_error"
)

// Kind groups codes by how a caller should react to them.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindConflict     Kind = "conflict"
	KindNotFound     Kind = "not_found"
	KindUnauthorized Kind = "unauthorized"
	KindExpired      Kind = "expired"
	KindUnknown      Kind = "unknown"
)

// Kind reports the category of c. Only KindUnknown is worth retrying.
func (c Code) Kind() Kind {
	switch c {
	case CodeInvalidEmail, CodeInvalidWalletAddress, CodeInvalidSignature, CodeInvalidNonce,
		CodeInvalidAPIKey, CodeAPIKeyMissing, CodeInvalidInput, CodeSelfInvite:
		return KindValidation
	case CodeWalletExists, CodeEmailExists, CodeAlreadyCollaborator:
		return KindConflict
	case CodeWalletNotRegistered, CodeNotFound, CodeUserNotFound, CodeProjectNotFound, CodeInvitationNotFound:
		return KindNotFound
	case CodeUnauthorized, CodeNoSession:
		return KindUnauthorized
	case CodeInvitationExpired:
		return KindExpired
	default:
		return KindUnknown
	}
}

// Error is a failure with a stable code and a message fit for end users.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error carrying the same code.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// NewError builds a coded error.
func NewError(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap returns a copy of e carrying cause for logs. The code and message are kept.
func (e *Error) Wrap(cause error) *Error {
	return &Error{Code: e.Code, Message: e.Message, Err: cause}
}

// CodeOf extracts the code of err, or CodeUnknown when err carries none.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}

// MessageOf extracts the user-facing message of err.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return ErrUnknown.Message
}

// Service-level sentinels.
var (
	ErrInvalidEmail         = NewError(CodeInvalidEmail, "Please enter a valid email address")
	ErrInvalidWalletAddress = NewError(CodeInvalidWalletAddress, "Invalid wallet address format")
	ErrInvalidSignature     = NewError(CodeInvalidSignature, "Wallet signature verification failed")
	ErrInvalidNonce         = NewError(CodeInvalidNonce, "Sign-in request expired, please try again")
	ErrInvalidAPIKey        = NewError(CodeInvalidAPIKey, "API key format looks invalid")
	ErrAPIKeyMissing        = NewError(CodeAPIKeyMissing, "Configure your API key to use the assistant")
	ErrInvalidInput         = NewError(CodeInvalidInput, "Invalid input")
	ErrSelfInvite           = NewError(CodeSelfInvite, "You cannot invite yourself")
	ErrWalletExists         = NewError(CodeWalletExists, "This wallet is already registered")
	ErrEmailExists          = NewError(CodeEmailExists, "This email is already registered")
	ErrAlreadyCollaborator  = NewError(CodeAlreadyCollaborator, "This user already has access to the project")
	ErrWalletNotRegistered  = NewError(CodeWalletNotRegistered, "No account found for this wallet, please sign up first")
	ErrNotFound             = NewError(CodeNotFound, "Not found")
	ErrUserNotFound         = NewError(CodeUserNotFound, "User not found")
	ErrProjectNotFound      = NewError(CodeProjectNotFound, "Project not found")
	ErrInvitationNotFound   = NewError(CodeInvitationNotFound, "Invitation not found")
	ErrInvitationUsed       = NewError(CodeInvitationNotFound, "This invitation has already been used")
	ErrUnauthorized         = NewError(CodeUnauthorized, "You do not have permission to perform this action")
	ErrNoSession            = NewError(CodeNoSession, "You are not signed in")
	ErrInvitationExpired    = NewError(CodeInvitationExpired, "This invitation has expired")
	ErrUnknown              = NewError(CodeUnknown, "An unexpected error occurred, please try again")
)

// Invalid returns a validation error with a custom message.
func Invalid(message string) *Error {
	return NewError(CodeInvalidInput, message)
}
