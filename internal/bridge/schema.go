package bridge

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// JSON schemas for command values. Commands not listed here take no value
// or accept anything.
var payloadSchemas = map[CommandType]string{
	CmdProductList: `{
		"type": "object",
		"required": ["item_uid"],
		"properties": {"item_uid": {"type": "string"}}
	}`,
	CmdSaveUserInfo: userInfoSchema,
	CmdEditUserInfo: userInfoSchema,
	CmdSaveSetting: `{
		"type": "object",
		"properties": {
			"bgm":     {"enum": ["0", "1"]},
			"sound":   {"enum": ["0", "1"]},
			"vibrate": {"enum": ["0", "1"]},
			"push":    {"enum": ["0", "1"]}
		}
	}`,
	CmdBGMStart:   fileSchema,
	CmdSoundStart: fileSchema,
	CmdVibrateStart: `{
		"type": "object",
		"properties": {"pattern": {"type": "string"}}
	}`,
	CmdAdmobCall: `{
		"type": "object",
		"properties": {
			"mb_id":      {"type": ["string", "number", "null"]},
			"ad_type":    {"type": ["string", "number", "null"]},
			"fullscreen": {"type": ["string", "boolean", "null"]}
		}
	}`,
	CmdRequestPurchase: `{
		"type": "object",
		"required": ["item_id"],
		"properties": {
			"item_id": {"type": "string", "minLength": 1},
			"mb_id":   {"type": ["string", "number", "null"]}
		}
	}`,
}

const userInfoSchema = `{
	"type": "object",
	"properties": {
		"mb_id":    {"type": ["string", "number", "null"]},
		"mb_point": {"type": ["string", "number", "null"]}
	}
}`

const fileSchema = `{
	"type": "object",
	"required": ["file"],
	"properties": {"file": {"type": "string", "minLength": 1}}
}`

// commands whose value may be absent even though a schema exists
var optionalValue = map[CommandType]bool{
	CmdVibrateStart: true,
}

var compiledSchemas = compileSchemas()

func compileSchemas() map[CommandType]*gojsonschema.Schema {
	out := make(map[CommandType]*gojsonschema.Schema, len(payloadSchemas))
	for cmd, src := range payloadSchemas {
		schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
		if err != nil {
			panic(fmt.Sprintf("invalid schema for %s: %v", cmd, err))
		}
		out[cmd] = schema
	}
	return out
}

// PayloadError describes a command value that failed validation.
type PayloadError struct {
	Command CommandType
	Details []string
}

func (e *PayloadError) Error() string {
	return fmt.Sprintf("invalid %s payload: %s", e.Command, strings.Join(e.Details, "; "))
}

// validatePayload checks msg.Value against the command's schema.
func validatePayload(msg *Message) error {
	schema, ok := compiledSchemas[msg.Type]
	if !ok {
		return nil
	}
	if !msg.HasValue() {
		if optionalValue[msg.Type] {
			return nil
		}
		return &PayloadError{Command: msg.Type, Details: []string{"value is required"}}
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(msg.Value))
	if err != nil {
		return &PayloadError{Command: msg.Type, Details: []string{err.Error()}}
	}
	if result.Valid() {
		return nil
	}
	details := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		details = append(details, desc.String())
	}
	return &PayloadError{Command: msg.Type, Details: details}
}
