package anthropic

import (
	"bufio"
	"context"
	"io"
	"strings"
)

const maxSSELineBytes = 1024 * 1024

// consumeSSE reads a Server-Sent Events stream line by line and invokes fn
// once per event with its name and accumulated data payload. Chunks arrive
// and are delivered strictly in order; comment lines are dropped.
func consumeSSE(ctx context.Context, r io.Reader, fn func(event, data string) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxSSELineBytes)

	var event string
	var data []string

	emit := func() error {
		if len(data) == 0 {
			event = ""
			return nil
		}
		name := event
		payload := strings.Join(data, "\n")
		event, data = "", data[:0]
		return fn(name, payload)
	}

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := scanner.Text()
		switch {
		case line == "":
			if err := emit(); err != nil {
				return err
			}
		case strings.HasPrefix(line, ":"):
			// comment / keepalive
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data = append(data, strings.TrimSpace(strings.TrimPrefix(line, "data:")))
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return emit()
}
