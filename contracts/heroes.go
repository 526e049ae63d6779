package contracts

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
)

// MedaHeroesABI covers the read surface of the hero collection: the
// enumerable ownership query plus the immutable attribute and info getters.
const MedaHeroesABI = `[
	{"inputs":[{"internalType":"address","name":"owner","type":"address"}],"name":"tokensOfOwner","outputs":[{"internalType":"uint256[]","name":"","type":"uint256[]"}],"stateMutability":"view","type":"function"},
	{"inputs":[{"internalType":"uint256","name":"tokenId","type":"uint256"}],"name":"getAttribs","outputs":[{"internalType":"uint256","name":"sec","type":"uint256"},{"internalType":"uint256","name":"ano","type":"uint256"},{"internalType":"uint256","name":"inn","type":"uint256"}],"stateMutability":"view","type":"function"},
	{"inputs":[{"internalType":"uint256","name":"tokenId","type":"uint256"}],"name":"getTokenInfo","outputs":[{"internalType":"uint256","name":"seasonCardId","type":"uint256"},{"internalType":"uint256","name":"serialNumber","type":"uint256"}],"stateMutability":"view","type":"function"}
]`

// MedaHeroesCaller is a read-only binding to the hero collection contract.
type MedaHeroesCaller struct {
	contract *bind.BoundContract
}

// MedaHeroesTokenInfo is the decoded getTokenInfo tuple.
type MedaHeroesTokenInfo struct {
	SeasonCardID *big.Int
	SerialNumber *big.Int
}

// NewMedaHeroesCaller creates a read-only binding at the given address.
func NewMedaHeroesCaller(address common.Address, caller bind.ContractCaller) (*MedaHeroesCaller, error) {
	parsed, err := abi.JSON(strings.NewReader(MedaHeroesABI))
	if err != nil {
		return nil, err
	}
	return &MedaHeroesCaller{contract: bind.NewBoundContract(address, parsed, caller, nil, nil)}, nil
}

// TokensOfOwner returns the ids owned by owner, in contract order.
func (c *MedaHeroesCaller) TokensOfOwner(opts *bind.CallOpts, owner common.Address) ([]*big.Int, error) {
	var out []interface{}
	err := c.contract.Call(opts, &out, "tokensOfOwner", owner)
	if err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new([]*big.Int)).(*[]*big.Int), nil
}

// GetAttribs returns the immutable (sec, ano, inn) triple for a token.
func (c *MedaHeroesCaller) GetAttribs(opts *bind.CallOpts, tokenID *big.Int) (*big.Int, *big.Int, *big.Int, error) {
	var out []interface{}
	err := c.contract.Call(opts, &out, "getAttribs", tokenID)
	if err != nil {
		return nil, nil, nil, err
	}
	sec := *abi.ConvertType(out[0], new(*big.Int)).(**big.Int)
	ano := *abi.ConvertType(out[1], new(*big.Int)).(**big.Int)
	inn := *abi.ConvertType(out[2], new(*big.Int)).(**big.Int)
	return sec, ano, inn, nil
}

// GetTokenInfo returns the immutable type descriptor for a token.
func (c *MedaHeroesCaller) GetTokenInfo(opts *bind.CallOpts, tokenID *big.Int) (MedaHeroesTokenInfo, error) {
	var out []interface{}
	err := c.contract.Call(opts, &out, "getTokenInfo", tokenID)
	if err != nil {
		return MedaHeroesTokenInfo{}, err
	}
	return MedaHeroesTokenInfo{
		SeasonCardID: *abi.ConvertType(out[0], new(*big.Int)).(**big.Int),
		SerialNumber: *abi.ConvertType(out[1], new(*big.Int)).(**big.Int),
	}, nil
}
