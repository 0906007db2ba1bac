package token

import (
	"context"
	"errors"
	"strings"

	"voicelock-go/internal/domain/token/store"
	"voicelock-go/internal/platform/logging"
)

// Source reads one code line from the physical reader. Implementations own
// the open/settle/read/close cycle so a half-unplugged board never leaks a
// held port across attempts.
type Source interface {
	ReadCode(ctx context.Context) (string, error)
}

// Verifier runs one possession-factor attempt against the authorization
// table.
type Verifier struct {
	source Source
	store  store.Store
	logger *logging.Logger
}

func NewVerifier(source Source, s store.Store, logger *logging.Logger) *Verifier {
	return &Verifier{
		source: source,
		store:  s,
		logger: logger,
	}
}

// Verify reads exactly one code and resolves it to a username. The raw line
// is decoded permissively and trimmed before lookup; a code that decodes to
// nothing is treated as invalid, not as a device failure.
func (v *Verifier) Verify(ctx context.Context) (string, error) {
	raw, err := v.source.ReadCode(ctx)
	if err != nil {
		v.logger.WarnTag("TOKEN", "reader unavailable: %v", err)
		return "", ErrDeviceUnavailable
	}

	code := strings.TrimSpace(strings.ToValidUTF8(raw, "�"))
	if code == "" {
		v.logger.InfoTag("TOKEN", "empty code read")
		return "", ErrInvalidToken
	}

	username, err := v.store.Lookup(ctx, code)
	if err != nil {
		if errors.Is(err, store.ErrCodeNotFound) {
			v.logger.InfoTag("TOKEN", "unauthorized code presented")
			return "", ErrInvalidToken
		}
		v.logger.ErrorTag("TOKEN", "authorization table lookup failed: %v", err)
		return "", err
	}

	v.logger.InfoTag("TOKEN", "code accepted for %s", username)
	return username, nil
}
