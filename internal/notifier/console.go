package notifier

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"strings"
)

// CommandHandler is called when a user command is received.
type CommandHandler func(command string) string

// StartConsole reads one command per line from r and writes replies to w.
// Blocks until ctx is cancelled or r is exhausted.
func StartConsole(ctx context.Context, r io.Reader, w io.Writer, handler CommandHandler) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		if err := sc.Err(); err != nil {
			log.Printf("[WARN] console read: %v", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			log.Println("[INFO] console stopped")
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			text := strings.TrimSpace(line)
			if text == "" {
				continue
			}
			if reply := handler(text); reply != "" {
				fmt.Fprintln(w, reply)
			}
		}
	}
}
