package bridge

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// Message protocol shared by both directions: {"type": ..., "value": ...}.
// Replies reuse the request type with a Success or Fail suffix.

// CommandType is the "type" tag of a message.
type CommandType string

// inbound commands (content -> bridge)
const (
	CmdProductList      CommandType = "productList"
	CmdGetUserMachin    CommandType = "getUserMachin"
	CmdGetFirebaseToken CommandType = "getFirebaseToken"
	CmdGetVersion       CommandType = "getVersion"
	CmdSaveUserInfo     CommandType = "saveUserInfo"
	CmdEditUserInfo     CommandType = "editUserInfo"
	CmdGetSetting       CommandType = "getSetting"
	CmdSaveSetting      CommandType = "saveSetting"
	CmdBGMStart         CommandType = "bgmStart"
	CmdBGMStop          CommandType = "bgmStop"
	CmdBGMPause         CommandType = "bgmPause"
	CmdBGMResume        CommandType = "bgmResume"
	CmdSoundStart       CommandType = "soundStart"
	CmdVibrateStart     CommandType = "vibrateStart"
	CmdAdmobCall        CommandType = "admobCall"
	CmdRequestPurchase  CommandType = "requestPurchase"
	CmdConnectWallet    CommandType = "connectWallet"
	CmdDisconnectWallet CommandType = "disconnectWallet"
	CmdExitApp          CommandType = "exitApp"
)

// spontaneous outbound events (no matching request)
const (
	EventBackKeyPress CommandType = "backKeyPress"
)

// Success returns the reply tag for a successful command.
func (c CommandType) Success() CommandType { return c + "Success" }

// Fail returns the reply tag for a failed command.
func (c CommandType) Fail() CommandType { return c + "Fail" }

var ErrMissingType = errors.New("message has no type")

// Message is one unit of the bridge protocol.
type Message struct {
	Type  CommandType     `json:"type"`
	Value json.RawMessage `json:"value,omitempty"`
}

// NewMessage builds a message, encoding value. A nil value is omitted on the wire.
func NewMessage(t CommandType, value any) (*Message, error) {
	msg := &Message{Type: t}
	if value == nil {
		return msg, nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s value: %w", t, err)
	}
	msg.Value = raw
	return msg, nil
}

// ToJSON: marshal Message struct to JSON
func (m *Message) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// HasValue reports whether the message carries a non-null value.
func (m *Message) HasValue() bool {
	return !absent(m.Value)
}

// DecodeValue unmarshals the value into target.
func (m *Message) DecodeValue(target any) error {
	if absent(m.Value) {
		return fmt.Errorf("%s: value is required", m.Type)
	}
	if err := json.Unmarshal(m.Value, target); err != nil {
		return fmt.Errorf("%s: invalid value: %w", m.Type, err)
	}
	return nil
}

// MessageFromJSON: unmarshal JSON data to Message struct.
// Fails on malformed JSON and on a missing or empty type.
func MessageFromJSON(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("invalid message: %w", err)
	}
	if msg.Type == "" {
		return nil, ErrMissingType
	}
	return &msg, nil
}

func absent(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// flexString accepts a JSON string or number. The content sends member ids
// and points either way depending on the page.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case nil:
		*f = ""
	case string:
		*f = flexString(t)
	case float64:
		*f = flexString(strconv.FormatFloat(t, 'f', -1, 64))
	case bool:
		*f = flexString(strconv.FormatBool(t))
	default:
		return fmt.Errorf("unsupported value %s", string(data))
	}
	return nil
}

func (f flexString) String() string { return string(f) }
