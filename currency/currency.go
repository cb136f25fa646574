// Package currency identifies the currencies traded on the exchange. The identifier is what routes
// and query strings carry: the native currency has a fixed sentinel, tokens use their checksummed
// contract address.
package currency

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/popswap/popswap-interface/chain"
)

// NativeID identifies the native currency of the chain.
const NativeID = "BROCK"

var ErrInvalidCurrency = errors.New("invalid currency")

// Currency is anything that can be traded: the native currency or a token.
type Currency interface {
	Symbol() string
	Name() string
	Decimals() uint8
}

// Native is the chain's native currency.
type Native struct{}

// BROCK is the native currency.
var BROCK = Native{}

func (Native) Symbol() string  { return NativeID }
func (Native) Name() string    { return "Brock" }
func (Native) Decimals() uint8 { return 18 }

// Token is an ERC-20 token on a chain.
type Token struct {
	chainID  uint64
	address  common.Address
	decimals uint8
	symbol   string
	name     string
}

func NewToken(chainID uint64, address common.Address, decimals uint8, symbol, name string) *Token {
	return &Token{chainID: chainID, address: address, decimals: decimals, symbol: symbol, name: name}
}

func (t *Token) ChainID() uint64         { return t.chainID }
func (t *Token) Address() common.Address { return t.address }
func (t *Token) Symbol() string          { return t.symbol }
func (t *Token) Name() string            { return t.name }
func (t *Token) Decimals() uint8         { return t.decimals }

// Equal reports whether both tokens are the same contract on the same chain.
func (t *Token) Equal(o *Token) bool {
	return o != nil && t.chainID == o.chainID && t.address == o.address
}

func (t *Token) String() string {
	if t.symbol != "" {
		return fmt.Sprintf("%s (%s on %s)", t.symbol, t.address.Hex(), chain.Name(t.chainID))
	}

	return fmt.Sprintf("%s on %s", t.address.Hex(), chain.Name(t.chainID))
}

// ID returns the identifier of c: NativeID for the native currency, the checksummed contract address
// for a token. Anything else is ErrInvalidCurrency.
func ID(c Currency) (string, error) {
	switch v := c.(type) {
	case Native, *Native:
		return NativeID, nil
	case *Token:
		if v == nil {
			return "", ErrInvalidCurrency
		}

		return v.address.Hex(), nil
	default:
		return "", ErrInvalidCurrency
	}
}

// Parse resolves an identifier produced by ID. Tokens come back with their chain and address only;
// their symbol, name and decimals are unknown to the identifier.
func Parse(chainID uint64, id string) (Currency, error) {
	id = strings.TrimSpace(id)
	if strings.EqualFold(id, NativeID) {
		return BROCK, nil
	}
	if !common.IsHexAddress(id) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCurrency, id)
	}
	address := common.HexToAddress(id)
	if address == (common.Address{}) {
		return nil, fmt.Errorf("%w: zero address", ErrInvalidCurrency)
	}

	return NewToken(chainID, address, 0, "", ""), nil
}

// MulticallAddress returns the multicall contract used to batch balance reads on the chain.
func MulticallAddress(chainID uint64) (common.Address, error) {
	return chain.MulticallAddress(chainID)
}
