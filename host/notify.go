package host

import (
	"github.com/plus3/blockfall/frame"
	"github.com/sqweek/dialog"
	"go.uber.org/zap"
)

// Notifier announces the end of a game.
type Notifier interface {
	GameOver(r frame.Result)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(r frame.Result)

func (f NotifierFunc) GameOver(r frame.Result) { f(r) }

// DialogNotifier shows a native message box. The box is modal, so it runs
// on its own goroutine and never blocks the frame loop.
type DialogNotifier struct {
	Log *zap.Logger
}

func (n DialogNotifier) GameOver(r frame.Result) {
	go func() {
		dialog.Message("Game Over!\n\nScore: %d\nLines: %d", r.Score, r.Lines).Title("blockfall").Info()
		if n.Log != nil {
			n.Log.Debug("game over dialog dismissed")
		}
	}()
}

// LogNotifier records the result.
type LogNotifier struct {
	Log *zap.Logger
}

func (n LogNotifier) GameOver(r frame.Result) {
	n.Log.Info("Game Over!", zap.Uint32("score", r.Score), zap.Uint32("lines", r.Lines), zap.Int64("frames", r.Frames))
}
