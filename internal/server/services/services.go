// Package services contains the server-side business logic. Each service
// returns values plus a *common.Error for every known failure; unexpected
// repository failures are logged and folded into common.ErrUnknown.
package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/slothapp/internal/common"
	"github.com/dmitrijs2005/slothapp/internal/logging"
	"github.com/google/uuid"
)

// newID is a seam for tests.
var newID = func() string { return uuid.NewString() }

// unknown logs err and returns the generic retry-worthy failure. Errors that
// already carry a code pass through unchanged.
func unknown(ctx context.Context, log logging.Logger, op string, err error) error {
	var ce *common.Error
	if errors.As(err, &ce) {
		return ce
	}
	log.Error(ctx, "unexpected failure", "op", op, "error", err)
	return common.ErrUnknown.Wrap(err)
}

// notFoundOr maps the repository not-found sentinel to nf and anything else
// through unknown.
func notFoundOr(ctx context.Context, log logging.Logger, op string, err error, nf *common.Error) error {
	if errors.Is(err, common.ErrorNotFound) {
		return nf
	}
	return unknown(ctx, log, op, err)
}
