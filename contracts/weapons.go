package contracts

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
)

// MedaWeaponsABI covers the read surface of the weapon collection.
const MedaWeaponsABI = `[
	{"inputs":[{"internalType":"address","name":"owner","type":"address"}],"name":"tokensOfOwner","outputs":[{"internalType":"uint256[]","name":"","type":"uint256[]"}],"stateMutability":"view","type":"function"},
	{"inputs":[{"internalType":"uint256","name":"tokenId","type":"uint256"}],"name":"getAttribs","outputs":[{"internalType":"uint256","name":"security","type":"uint256"},{"internalType":"uint256","name":"anonymity","type":"uint256"},{"internalType":"uint256","name":"innovation","type":"uint256"}],"stateMutability":"view","type":"function"},
	{"inputs":[{"internalType":"uint256","name":"tokenId","type":"uint256"}],"name":"getTokenInfo","outputs":[{"internalType":"uint256","name":"weaponTier","type":"uint256"},{"internalType":"uint256","name":"weaponType","type":"uint256"},{"internalType":"uint256","name":"weaponSubtype","type":"uint256"},{"internalType":"uint256","name":"category","type":"uint256"},{"internalType":"uint256","name":"serialNumber","type":"uint256"}],"stateMutability":"view","type":"function"}
]`

// MedaWeaponsCaller is a read-only binding to the weapon collection contract.
type MedaWeaponsCaller struct {
	contract *bind.BoundContract
}

// MedaWeaponsTokenInfo is the decoded getTokenInfo tuple.
type MedaWeaponsTokenInfo struct {
	WeaponTier    *big.Int
	WeaponType    *big.Int
	WeaponSubtype *big.Int
	Category      *big.Int
	SerialNumber  *big.Int
}

// NewMedaWeaponsCaller creates a read-only binding at the given address.
func NewMedaWeaponsCaller(address common.Address, caller bind.ContractCaller) (*MedaWeaponsCaller, error) {
	parsed, err := abi.JSON(strings.NewReader(MedaWeaponsABI))
	if err != nil {
		return nil, err
	}
	return &MedaWeaponsCaller{contract: bind.NewBoundContract(address, parsed, caller, nil, nil)}, nil
}

// TokensOfOwner returns the ids owned by owner, in contract order.
func (c *MedaWeaponsCaller) TokensOfOwner(opts *bind.CallOpts, owner common.Address) ([]*big.Int, error) {
	var out []interface{}
	err := c.contract.Call(opts, &out, "tokensOfOwner", owner)
	if err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new([]*big.Int)).(*[]*big.Int), nil
}

// GetAttribs returns the immutable (security, anonymity, innovation) triple.
func (c *MedaWeaponsCaller) GetAttribs(opts *bind.CallOpts, tokenID *big.Int) (*big.Int, *big.Int, *big.Int, error) {
	var out []interface{}
	err := c.contract.Call(opts, &out, "getAttribs", tokenID)
	if err != nil {
		return nil, nil, nil, err
	}
	security := *abi.ConvertType(out[0], new(*big.Int)).(**big.Int)
	anonymity := *abi.ConvertType(out[1], new(*big.Int)).(**big.Int)
	innovation := *abi.ConvertType(out[2], new(*big.Int)).(**big.Int)
	return security, anonymity, innovation, nil
}

// GetTokenInfo returns the immutable type descriptor for a token.
func (c *MedaWeaponsCaller) GetTokenInfo(opts *bind.CallOpts, tokenID *big.Int) (MedaWeaponsTokenInfo, error) {
	var out []interface{}
	err := c.contract.Call(opts, &out, "getTokenInfo", tokenID)
	if err != nil {
		return MedaWeaponsTokenInfo{}, err
	}
	return MedaWeaponsTokenInfo{
		WeaponTier:    *abi.ConvertType(out[0], new(*big.Int)).(**big.Int),
		WeaponType:    *abi.ConvertType(out[1], new(*big.Int)).(**big.Int),
		WeaponSubtype: *abi.ConvertType(out[2], new(*big.Int)).(**big.Int),
		Category:      *abi.ConvertType(out[3], new(*big.Int)).(**big.Int),
		SerialNumber:  *abi.ConvertType(out[4], new(*big.Int)).(**big.Int),
	}, nil
}
