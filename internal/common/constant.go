package common

import "time"

// AuthorizationHeaderName carries the session bearer token on HTTP requests
// and the gRPC metadata equivalent.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the token in the Authorization header.
const BearerPrefix = "Bearer "

const (
	// SessionValidity is how long a freshly issued session stays valid.
	SessionValidity = 7 * 24 * time.Hour
	// InvitationValidity is the expiry window of a new invitation.
	InvitationValidity = 7 * 24 * time.Hour
	// NonceValidity bounds how long a sign-in nonce may wait to be used.
	NonceValidity = 5 * time.Minute
	// DocumentURLValidity is the lifetime of presigned download URLs.
	DocumentURLValidity = time.Hour
	// MinAPIKeyLength is the shortest third-party key accepted as plausible.
	MinAPIKeyLength = 20
)
