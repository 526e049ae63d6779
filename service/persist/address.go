package persist

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Address is a lowercased, 0x-prefixed 20-byte hex address. Construct one
// with ToAddress so downstream code can assume normalized storage form.
type Address string

// ErrInvalidAddress is returned when an input is not a well-formed hex address.
type ErrInvalidAddress struct {
	Input string
}

func (e ErrInvalidAddress) Error() string {
	return fmt.Sprintf("invalid address: %s", e.Input)
}

// ToAddress validates and normalizes a raw address string.
func ToAddress(raw string) (Address, error) {
	raw = strings.TrimSpace(raw)
	if !common.IsHexAddress(raw) {
		return "", ErrInvalidAddress{Input: raw}
	}
	return Address(strings.ToLower(common.HexToAddress(raw).Hex())), nil
}

// MustAddress is a test and seed-data helper; it panics on malformed input.
func MustAddress(raw string) Address {
	a, err := ToAddress(raw)
	if err != nil {
		panic(err)
	}
	return a
}

func (a Address) String() string {
	return string(a)
}

// Address returns the go-ethereum form of the address.
func (a Address) Address() common.Address {
	return common.HexToAddress(string(a))
}
