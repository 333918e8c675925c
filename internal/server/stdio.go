package server

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// MaxMessageSize bounds a single newline-delimited stdio message.
const MaxMessageSize = 10 * 1024 * 1024

// MessageHandler answers one raw JSON-RPC message; nil means no reply.
type MessageHandler interface {
	HandleMessage(ctx context.Context, raw []byte) []byte
}

// ServeStdio reads newline-delimited messages from in and writes replies to
// out, one line each. Messages are handled concurrently; replies are written
// whole and in completion order. It returns when in reaches EOF or ctx is
// cancelled, after every in-flight message has been answered.
func ServeStdio(ctx context.Context, h MessageHandler, in io.Reader, out io.Writer, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	var (
		wg      sync.WaitGroup
		writeMu sync.Mutex
	)
	write := func(resp []byte) {
		writeMu.Lock()
		defer writeMu.Unlock()
		if _, err := out.Write(append(resp, '\n')); err != nil {
			logger.Error("Failed to write response", slog.Any("error", err))
		}
	}

	lines := make(chan []byte)
	readErr := make(chan error, 1)
	go func() {
		var err error
		defer func() {
			readErr <- err
			close(lines)
		}()

		scanner := bufio.NewScanner(in)
		scanner.Buffer(make([]byte, 0, 64*1024), MaxMessageSize)
		for scanner.Scan() {
			line := bytes.TrimSpace(scanner.Bytes())
			if len(line) == 0 {
				continue
			}
			msg := make([]byte, len(line))
			copy(msg, line)
			select {
			case lines <- msg:
			case <-ctx.Done():
				return
			}
		}
		err = scanner.Err()
	}()

	defer wg.Wait()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-lines:
			if !ok {
				wg.Wait()
				if err := <-readErr; err != nil {
					return fmt.Errorf("failed to read input: %w", err)
				}
				return nil
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				if resp := h.HandleMessage(ctx, msg); resp != nil {
					write(resp)
				}
			}()
		}
	}
}
