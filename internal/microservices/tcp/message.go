package tcp

import "encoding/json"

// Control frames of the dev transport. Everything else on an attached
// connection is a bridge message and is passed through untouched.
const (
	TypeAttach        = "attach"
	TypeAttachSuccess = "attachSuccess"
	TypeAttachFail    = "attachFail"
	TypeError         = "error"
	TypeSystem        = "system"
)

type Message struct {
	Type  string          `json:"type"`            // basic routing based on type field
	Value json.RawMessage `json:"value,omitempty"` // left raw for the bridge
}

type attachValue struct {
	Token string `json:"token"`
}

// frame encodes a control frame.
func frame(t string, value any) []byte {
	msg := map[string]any{"type": t}
	if value != nil {
		msg["value"] = value
	}
	data, _ := json.Marshal(msg)
	return data
}
