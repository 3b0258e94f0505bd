package mcp

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// decodeArgs maps tool arguments onto out. JSON numbers arrive as float64,
// so weak typing lets them fill int fields.
func decodeArgs(args map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
		TagName:          "mapstructure",
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(args); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}
