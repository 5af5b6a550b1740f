package mappings

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/NethermindEth/staking-sidecar/pkg/aleo"
	"github.com/NethermindEth/staking-sidecar/pkg/values"
	"github.com/buger/jsonparser"
)

// plaintextSpace is the whitespace the plaintext parser allows around a value.
const plaintextSpace = " \t\n\r"

var (
	validatorPattern    = regexp.MustCompile(`validator\s*:\s*(aleo1[0-9a-z]+)`)
	microcreditsPattern = regexp.MustCompile(`microcredits\s*:\s*([0-9]+)u64`)
	heightPattern       = regexp.MustCompile(`height\s*:\s*([0-9]+)u32`)
)

// fieldReader extracts one named member from a mapping value, either a JSON object
// of member strings or the struct text.
type fieldReader struct {
	value    []byte
	dataType jsonparser.ValueType
}

func (f fieldReader) text() (string, error) {
	s, err := jsonparser.ParseString(f.value)
	if err != nil {
		return "", values.NewDecodeError("json", "%v", err)
	}
	return s, nil
}

func (f fieldReader) member(name string, pattern *regexp.Regexp) (string, error) {
	if f.dataType == jsonparser.Object {
		s, err := jsonparser.GetString(f.value, name)
		if err != nil {
			return "", values.NewDecodeError(name, "%v", err)
		}
		return strings.Trim(s, plaintextSpace), nil
	}
	s, err := f.text()
	if err != nil {
		return "", err
	}
	match := pattern.FindStringSubmatch(s)
	if match == nil {
		return "", values.NewDecodeError(name, "member not found")
	}
	return match[1], nil
}

func (f fieldReader) address(name string) (aleo.Address, error) {
	s, err := f.member(name, validatorPattern)
	if err != nil {
		return aleo.Address{}, err
	}
	a, err := aleo.ParseAddress(s)
	if err != nil {
		return aleo.Address{}, values.NewDecodeError(name, "%v", err)
	}
	return a, nil
}

func (f fieldReader) uint(name string, pattern *regexp.Regexp, suffix string, bits int) (uint64, error) {
	s, err := f.member(name, pattern)
	if err != nil {
		return 0, err
	}
	if f.dataType == jsonparser.Object {
		if len(s) <= len(suffix) || s[len(s)-len(suffix):] != suffix {
			return 0, values.NewDecodeError(name, "expected %s literal, found %q", suffix, s)
		}
		s = s[:len(s)-len(suffix)]
	}
	n, err := strconv.ParseUint(s, 10, bits)
	if err != nil {
		return 0, values.NewDecodeError(name, "%v", err)
	}
	return n, nil
}

// DecodeBondedJSONUnchecked extracts bonded entries with precompiled patterns instead
// of the full plaintext parser.
func DecodeBondedJSONUnchecked(data []byte) (*BondedMapping, error) {
	return decodeJSONUnchecked(data, aleo.MappingBonded, func(f fieldReader) (BondState, error) {
		validator, err := f.address(memberValidator)
		if err != nil {
			return BondState{}, err
		}
		amount, err := f.uint(memberMicrocredits, microcreditsPattern, "u64", 64)
		if err != nil {
			return BondState{}, err
		}
		return BondState{Validator: validator, Microcredits: amount}, nil
	})
}

func DecodeUnbondingJSONUnchecked(data []byte) (*UnbondingMapping, error) {
	return decodeJSONUnchecked(data, aleo.MappingUnbonding, func(f fieldReader) (UnbondState, error) {
		amount, err := f.uint(memberMicrocredits, microcreditsPattern, "u64", 64)
		if err != nil {
			return UnbondState{}, err
		}
		height, err := f.uint(memberHeight, heightPattern, "u32", 32)
		if err != nil {
			return UnbondState{}, err
		}
		return UnbondState{Microcredits: amount, Height: uint32(height)}, nil
	})
}

func DecodeWithdrawJSONUnchecked(data []byte) (*WithdrawMapping, error) {
	return decodeJSONUnchecked(data, aleo.MappingWithdraw, func(f fieldReader) (aleo.Address, error) {
		s, err := f.text()
		if err != nil {
			return aleo.Address{}, err
		}
		a, err := aleo.ParseAddress(strings.Trim(s, plaintextSpace))
		if err != nil {
			return aleo.Address{}, values.NewDecodeError("value", "%v", err)
		}
		return a, nil
	})
}

func decodeJSONUnchecked[V any](data []byte, name string, read func(fieldReader) (V, error)) (*Mapping[V], error) {
	m := NewMapping[V]()
	index := 0
	var entryErr error
	_, err := jsonparser.ArrayEach(data, func(pair []byte, dataType jsonparser.ValueType, offset int, err error) {
		if entryErr != nil {
			return
		}
		context := fmt.Sprintf("%s[%d]", name, index)
		index++
		if err != nil {
			entryErr = values.NewDecodeError(context, "%v", err)
			return
		}
		keyText, err := jsonparser.GetString(pair, "[0]")
		if err != nil {
			entryErr = values.NewDecodeError(context+".key", "%v", err)
			return
		}
		key, err := aleo.ParseAddress(keyText)
		if err != nil {
			entryErr = values.NewDecodeError(context+".key", "%v", err)
			return
		}
		raw, valueType, _, err := jsonparser.Get(pair, "[1]")
		if err != nil {
			entryErr = values.NewDecodeError(context+".value", "%v", err)
			return
		}
		v, err := read(fieldReader{value: raw, dataType: valueType})
		if err != nil {
			entryErr = values.WithContext(err, context+".value")
			return
		}
		if !m.insert(key, v) {
			entryErr = values.NewDecodeError(context, "duplicate key %s", keyText)
		}
	})
	if err != nil {
		return nil, values.NewDecodeError(name, "invalid json: %v", err)
	}
	if entryErr != nil {
		return nil, entryErr
	}
	return m, nil
}
