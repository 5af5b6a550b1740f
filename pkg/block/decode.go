package block

import (
	"fmt"
)

type Format string

const (
	Format_JSON   Format = "json"
	Format_Binary Format = "binary"
)

func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case Format_JSON, Format_Binary:
		return Format(s), nil
	}
	return "", fmt.Errorf("invalid block format %q", s)
}

// DecodeMode selects between the fully validated and the field-lookup JSON decoder.
type DecodeMode string

const (
	DecodeMode_Checked   DecodeMode = "checked"
	DecodeMode_Unchecked DecodeMode = "unchecked"
)

func ParseDecodeMode(s string) (DecodeMode, error) {
	switch DecodeMode(s) {
	case DecodeMode_Checked, DecodeMode_Unchecked:
		return DecodeMode(s), nil
	}
	return "", fmt.Errorf("invalid decode mode %q", s)
}

// Decode decodes raw block bytes. The binary format is always fully checked.
func Decode(data []byte, format Format, mode DecodeMode) (*Block, error) {
	switch format {
	case Format_Binary:
		return DecodeBinary(data)
	case Format_JSON:
		if mode == DecodeMode_Unchecked {
			return DecodeJSONUnchecked(data)
		}
		return DecodeJSON(data)
	default:
		return nil, fmt.Errorf("invalid block format %q", format)
	}
}
