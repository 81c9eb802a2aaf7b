//go:build linux

package kiosk

import (
	"context"
	"fmt"

	fb "github.com/gonutz/framebuffer"
	"github.com/plus3/blockfall/input"
	"go.uber.org/zap"
)

// eventBuffer bounds key events queued between frames.
const eventBuffer = 64

// Run opens the framebuffer and keyboards, plays one game and restores the
// console.
func Run(ctx context.Context, cfg Config) error {
	cfg.defaults()
	log := cfg.Log

	dev, err := fb.Open(cfg.FBPath)
	if err != nil {
		return fmt.Errorf("open framebuffer %s: %w", cfg.FBPath, err)
	}
	defer dev.Close()
	b := dev.Bounds()
	log.Info("framebuffer open", zap.String("path", cfg.FBPath), zap.Int("width", b.Dx()), zap.Int("height", b.Dy()))

	if err := setConsoleMode(kdGraphics); err != nil {
		log.Warn("console graphics mode", zap.Error(err))
	} else {
		defer func() {
			if err := setConsoleMode(kdText); err != nil {
				log.Warn("console text mode", zap.Error(err))
			}
		}()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan input.Event, eventBuffer)
	readKeyboards(ctx, cfg.InputGlob, events, cancel, log)

	k, err := New(cfg, dev, events)
	if err != nil {
		return err
	}
	return k.Run(ctx)
}
