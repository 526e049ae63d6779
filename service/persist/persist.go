package persist

import (
	"fmt"
)

// TokenKind enumerates the NFT contract families the token cache knows about.
type TokenKind string

const (
	TokenKindHeroes  TokenKind = "heroes"
	TokenKindWeapons TokenKind = "weapons"
)

// ContractKind describes the on-chain interface a configured contract exposes.
type ContractKind string

const (
	ContractKindERC721Enumerable ContractKind = "erc721-enumerable"
	ContractKindERC1155          ContractKind = "erc1155"
	ContractKindERC20            ContractKind = "erc20"
)

// Logical contract names seeded in the contracts table.
const (
	ContractNameHeroes  = "heroes"
	ContractNameWeapons = "weapons"
	ContractNameLands   = "lands"
	ContractNameMOH     = "moh"
	ContractNameMedaLLC = "medallc"
)

// ErrUnknownTokenKind is returned when a TokenKind is not one of the two cached families.
type ErrUnknownTokenKind struct {
	Kind TokenKind
}

func (e ErrUnknownTokenKind) Error() string {
	return fmt.Sprintf("unknown token kind: %s", e.Kind)
}

// ErrContractNotFound is returned when no active contract exists for a logical name.
type ErrContractNotFound struct {
	Name string
}

func (e ErrContractNotFound) Error() string {
	return fmt.Sprintf("no active contract configured for %s", e.Name)
}

func (k TokenKind) Valid() bool {
	return k == TokenKindHeroes || k == TokenKindWeapons
}

func (k TokenKind) String() string {
	return string(k)
}
