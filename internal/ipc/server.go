package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"
)

const maxRequestBytes = 4 << 10

// requestReadTimeout bounds how long a connected client may take to send its
// command line.
var requestReadTimeout = 2 * time.Second

// Handler answers one owner-session command.
type Handler interface {
	Handle(context.Context, Request) Response
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(context.Context, Request) Response

func (f HandlerFunc) Handle(ctx context.Context, req Request) Response {
	return f(ctx, req)
}

// Serve answers one command per connection until ctx ends or the listener
// closes, then waits for replies still being written.
func Serve(ctx context.Context, listener net.Listener, handler Handler) error {
	release := context.AfterFunc(ctx, func() { _ = listener.Close() })
	defer release()

	var replies sync.WaitGroup
	defer replies.Wait()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) || ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("accept IPC connection: %w", err)
		}
		replies.Go(func() { answer(ctx, conn, handler) })
	}
}

func answer(ctx context.Context, conn net.Conn, handler Handler) {
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(requestReadTimeout))

	req, err := readRequest(conn)
	resp := Response{OK: false}
	if err != nil {
		resp.Error = err.Error()
	} else {
		resp = handler.Handle(ctx, req)
	}
	_ = json.NewEncoder(conn).Encode(resp)
}

func readRequest(r io.Reader) (Request, error) {
	line, err := bufio.NewReader(io.LimitReader(r, maxRequestBytes)).ReadBytes('\n')
	if err != nil {
		return Request{}, fmt.Errorf("read request: %w", err)
	}
	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		return Request{}, fmt.Errorf("decode request: %w", err)
	}
	return req, nil
}
