// Package serialport reads card codes from a serial board.
package serialport

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"go.bug.st/serial"

	"voicelock-go/internal/platform/logging"
)

// Config mirrors the board wiring: port name, line speed, how long to wait
// for a card and how long the board needs after open before it emits sane
// data.
type Config struct {
	PortName    string
	BaudRate    int
	ReadTimeout time.Duration
	SettleDelay time.Duration
}

// Reader opens the port fresh for every attempt. The board resets on open,
// so the settle delay is mandatory; reading earlier yields boot noise.
type Reader struct {
	cfg    Config
	logger *logging.Logger
}

func New(cfg Config, logger *logging.Logger) *Reader {
	if cfg.BaudRate <= 0 {
		cfg.BaudRate = 9600
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 5 * time.Second
	}
	if cfg.SettleDelay < 0 {
		cfg.SettleDelay = 0
	}
	return &Reader{cfg: cfg, logger: logger}
}

// ReadCode performs one open-settle-read-close cycle and returns the first
// line the board emits, or an error when no line arrives in time.
func (r *Reader) ReadCode(ctx context.Context) (string, error) {
	port, err := serial.Open(r.cfg.PortName, &serial.Mode{BaudRate: r.cfg.BaudRate})
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", r.cfg.PortName, err)
	}
	defer port.Close()

	if r.cfg.SettleDelay > 0 {
		select {
		case <-time.After(r.cfg.SettleDelay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
		// Drop anything the board printed while settling.
		if err := port.ResetInputBuffer(); err != nil {
			r.logger.DebugTag("TOKEN", "input buffer reset failed: %v", err)
		}
	}

	if err := port.SetReadTimeout(r.cfg.ReadTimeout); err != nil {
		return "", fmt.Errorf("setting read timeout: %w", err)
	}

	deadline := time.Now().Add(r.cfg.ReadTimeout)
	var line bytes.Buffer
	buf := make([]byte, 64)
	for {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		n, err := port.Read(buf)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", r.cfg.PortName, err)
		}
		if n == 0 {
			// Timeout expired with no bytes at all.
			if line.Len() == 0 {
				return "", fmt.Errorf("no code within %v", r.cfg.ReadTimeout)
			}
			return line.String(), nil
		}
		for _, b := range buf[:n] {
			if b == '\n' || b == '\r' {
				if line.Len() > 0 {
					return line.String(), nil
				}
				continue
			}
			line.WriteByte(b)
		}
		if time.Now().After(deadline) {
			if line.Len() > 0 {
				return line.String(), nil
			}
			return "", fmt.Errorf("no code within %v", r.cfg.ReadTimeout)
		}
	}
}
