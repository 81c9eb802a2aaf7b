//go:build !linux

package kiosk

import (
	"context"
	"errors"
)

// Run is only available on Linux.
func Run(ctx context.Context, cfg Config) error {
	return errors.New("kiosk: framebuffer output requires linux")
}
