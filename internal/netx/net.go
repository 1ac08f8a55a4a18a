package netx

import (
	"net/http"
	"strings"

	"github.com/dmitrijs2005/slothapp/internal/common"
)

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header. The scheme is matched case-insensitively.
func BearerToken(h http.Header) (string, bool) {
	v := strings.TrimSpace(h.Get(common.AuthorizationHeaderName))
	prefix := common.BearerPrefix
	if len(v) <= len(prefix) || !strings.EqualFold(v[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(v[len(prefix):])
	return token, token != ""
}

// SetBearerToken is the client-side counterpart of BearerToken.
func SetBearerToken(h http.Header, token string) {
	h.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
}
