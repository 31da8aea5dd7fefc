package methodchannel

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Envelopes follow the framework's JSON method codec: a success reply is a
// one-element array, an error reply is [code, message, details], and a
// method without a handler gets an empty reply.

// EncodeReply renders r as an envelope. NotImplemented encodes to nil.
func EncodeReply(r Reply) ([]byte, error) {
	switch r.Kind {
	case ReplySuccess:
		return json.Marshal([]any{r.Value})
	case ReplyError:
		if r.Err == nil {
			return nil, fmt.Errorf("error reply without error")
		}
		return json.Marshal([]any{r.Err.Code, r.Err.Message, r.Err.Details})
	case ReplyNotImplemented:
		return nil, nil
	}
	return nil, fmt.Errorf("unknown reply kind %d", r.Kind)
}

// DecodeReply parses an envelope. An empty body yields ErrNotImplemented and
// an error envelope yields *Error.
func DecodeReply(b []byte) (any, error) {
	if len(bytes.TrimSpace(b)) == 0 {
		return nil, ErrNotImplemented
	}

	var parts []any
	if err := json.Unmarshal(b, &parts); err != nil {
		return nil, fmt.Errorf("invalid reply envelope: %w", err)
	}

	switch len(parts) {
	case 1:
		return parts[0], nil
	case 3:
		code, ok := parts[0].(string)
		if !ok {
			return nil, fmt.Errorf("invalid error envelope: code is %T", parts[0])
		}
		msg, _ := parts[1].(string)
		return nil, &Error{Code: code, Message: msg, Details: parts[2]}
	}
	return nil, fmt.Errorf("invalid reply envelope: %d elements", len(parts))
}
