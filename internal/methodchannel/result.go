package methodchannel

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Result answers a MethodCall. Exactly one of its methods should be called.
type Result interface {
	Success(value any)
	Error(code, message string, details any)
	NotImplemented()
}

// ErrNotImplemented is returned by clients when the channel has no handler
// for the method.
var ErrNotImplemented = errors.New("method not implemented")

// Error is an error reply: a short code token, a human message and an
// optional details payload.
type Error struct {
	Code    string
	Message string
	Details any
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// ReplyKind tells which Result method produced a Reply.
type ReplyKind int

const (
	ReplySuccess ReplyKind = iota
	ReplyError
	ReplyNotImplemented
)

// Reply is a captured answer to a call.
type Reply struct {
	Kind  ReplyKind
	Value any
	Err   *Error
}

// Capture is a Result that records the first reply it receives and
// ignores the rest.
type Capture struct {
	once  sync.Once
	done  chan struct{}
	reply Reply
}

var _ Result = (*Capture)(nil)

// NewCapture returns an empty Capture.
func NewCapture() *Capture {
	return &Capture{done: make(chan struct{})}
}

func (c *Capture) Success(value any) {
	c.set(Reply{Kind: ReplySuccess, Value: value})
}

func (c *Capture) Error(code, message string, details any) {
	c.set(Reply{Kind: ReplyError, Err: &Error{Code: code, Message: message, Details: details}})
}

func (c *Capture) NotImplemented() {
	c.set(Reply{Kind: ReplyNotImplemented})
}

func (c *Capture) set(r Reply) {
	c.once.Do(func() {
		c.reply = r
		close(c.done)
	})
}

// Done is closed once a reply has been recorded.
func (c *Capture) Done() <-chan struct{} {
	return c.done
}

// Reply returns the recorded reply. It is only meaningful after Done.
func (c *Capture) Reply() Reply {
	<-c.done
	return c.reply
}

// Wait blocks until a reply is recorded or ctx ends.
func (c *Capture) Wait(ctx context.Context) (Reply, error) {
	select {
	case <-c.done:
		return c.reply, nil
	case <-ctx.Done():
		return Reply{}, ctx.Err()
	}
}
