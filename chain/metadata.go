package chain

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	chainsel "github.com/smartcontractkit/chain-selectors"
)

// PopcateumMainnet is the chain the exchange is deployed on.
const PopcateumMainnet uint64 = 1213

var ErrUnknownChain = errors.New("unknown chain")

// Metadata describes an EVM chain the interface can talk to.
type Metadata struct {
	ChainID uint64
	Name    string
	// RPCURL is the public endpoint used when configuration does not provide one.
	RPCURL    string
	Multicall common.Address
}

// String returns chain name and id "<name> (<id>)"
func (m Metadata) String() string {
	return fmt.Sprintf("%s (%d)", m.Name, m.ChainID)
}

var known = map[uint64]Metadata{
	PopcateumMainnet: {
		ChainID:   PopcateumMainnet,
		Name:      "popcateum-mainnet",
		RPCURL:    "https://dataseed.popcateum.org",
		Multicall: common.HexToAddress("0xFfdE59FCbe1AE8B2a5015C24d954a3C1bD14DFA4"),
	},
}

// Lookup returns the metadata of a chain. Chains the exchange is deployed on are answered from the
// built-in table; any other EVM chain is resolved through chain-selectors and carries a name only.
func Lookup(chainID uint64) (Metadata, error) {
	if m, ok := known[chainID]; ok {
		return m, nil
	}

	details, err := chainsel.GetChainDetailsByChainIDAndFamily(strconv.FormatUint(chainID, 10), chainsel.FamilyEVM)
	if err != nil {
		return Metadata{}, fmt.Errorf("%w: %d", ErrUnknownChain, chainID)
	}

	return Metadata{ChainID: chainID, Name: details.ChainName}, nil
}

// Name returns the name of the chain, falling back to the decimal chain id.
func Name(chainID uint64) string {
	m, err := Lookup(chainID)
	if err != nil || m.Name == "" {
		return strconv.FormatUint(chainID, 10)
	}

	return m.Name
}

// MulticallAddress returns the multicall contract deployed on the chain.
func MulticallAddress(chainID uint64) (common.Address, error) {
	m, ok := known[chainID]
	if !ok || m.Multicall == (common.Address{}) {
		return common.Address{}, fmt.Errorf("no multicall contract on chain %d", chainID)
	}

	return m.Multicall, nil
}
