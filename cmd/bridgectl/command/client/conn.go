package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Event is one message received from the bridge.
type Event struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value,omitempty"`
}

// Conn is an attached content session, over websocket or TCP.
type Conn interface {
	Send(msgType string, value json.RawMessage) error
	Receive() (*Event, error)
	Close() error
}

type outbound struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value,omitempty"`
}

// ParseLine splits "<type> [json value]" as typed at the prompt.
func ParseLine(line string) (string, json.RawMessage, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", nil, errors.New("empty command")
	}

	msgType, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return msgType, nil, nil
	}
	if !json.Valid([]byte(rest)) {
		return "", nil, fmt.Errorf("value for %s is not valid JSON", msgType)
	}
	return msgType, json.RawMessage(rest), nil
}
