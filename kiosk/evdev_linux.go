//go:build linux

package kiosk

import (
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"sync"

	"github.com/plus3/blockfall/input"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

// readKeyboards starts one reader goroutine per evdev device matching glob.
// Key events are sent on out; Esc or F4 calls quit once. Readers exit when
// ctx is done. It returns the number of devices opened.
func readKeyboards(ctx context.Context, glob string, out chan<- input.Event, quit func(), log *zap.Logger) int {
	tvSize := binary.Size(unix.Timeval{})

	paths, err := filepath.Glob(glob)
	if err != nil || len(paths) == 0 {
		log.Warn("no evdev devices found", zap.String("glob", glob))
		return 0
	}

	var once sync.Once
	opened := 0
	for _, path := range paths {
		fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NONBLOCK, 0)
		if err != nil {
			log.Debug("skipping input device", zap.String("path", path), zap.Error(err))
			continue
		}
		opened++
		go func(path string, fd int) {
			f := os.NewFile(uintptr(fd), path)
			defer f.Close()

			buf := make([]byte, 4096)
			var records []keyEvent
			for {
				select {
				case <-ctx.Done():
					return
				default:
				}

				pollFds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
				if _, err := unix.Poll(pollFds, 250); err != nil {
					if err == unix.EINTR {
						continue
					}
					log.Debug("input device gone", zap.String("path", path), zap.Error(err))
					return
				}
				if pollFds[0].Revents&unix.POLLIN == 0 {
					continue
				}

				n, err := unix.Read(fd, buf)
				if err != nil {
					if err == unix.EAGAIN || err == unix.EINTR {
						continue
					}
					return
				}

				records = decodeKeyEvents(buf[:n], tvSize, records[:0])
				for _, rec := range records {
					if isQuit(rec) {
						once.Do(quit)
						continue
					}
					ev, ok := translate(rec)
					if !ok {
						continue
					}
					select {
					case out <- ev:
					case <-ctx.Done():
						return
					}
				}
			}
		}(path, fd)
	}
	log.Info("reading keyboards", zap.Int("devices", opened))
	return opened
}
