package utils

import (
	"encoding/hex"
	"strings"
)

func ConvertBytesToString(b []byte) string {
	return "0x" + hex.EncodeToString(b)
}

// ConvertStringToBytes decodes a hex string with or without the 0x prefix.
func ConvertStringToBytes(s string) ([]byte, error) {
	return hex.DecodeString(strings.TrimPrefix(s, "0x"))
}
