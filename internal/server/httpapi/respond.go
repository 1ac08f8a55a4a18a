package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dmitrijs2005/slothapp/internal/common"
)

const maxJSONBody = 1 << 20

type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{Success: true, Data: data})
}

func writeDataMessage(w http.ResponseWriter, status int, data any, message string) {
	writeJSON(w, status, envelope{Success: true, Data: data, Message: message})
}

func writeOK(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, envelope{Success: true})
}

// statusFor maps a coded error to its HTTP status.
func statusFor(code common.Code) int {
	if code == common.CodeNoSession {
		return http.StatusUnauthorized
	}
	switch code.Kind() {
	case common.KindValidation:
		return http.StatusBadRequest
	case common.KindNotFound:
		return http.StatusNotFound
	case common.KindUnauthorized:
		return http.StatusForbidden
	case common.KindExpired:
		return http.StatusGone
	case common.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	code := common.CodeOf(err)
	writeJSON(w, statusFor(code), envelope{
		Success: false,
		Error:   string(code),
		Message: common.MessageOf(err),
	})
}

var errEmptyBody = errors.New("empty body")

// decodeJSON reads a single JSON object into dst. Failures are reported to
// the client as invalid_input and false is returned.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			err = errEmptyBody
		}
		writeError(w, common.Invalid("Invalid request body").Wrap(err))
		return false
	}
	return true
}
