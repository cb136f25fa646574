/*
Package chain describes the EVM chains the exchange interface talks to.

# Overview

The chain the exchange is deployed on, [PopcateumMainnet], is described by a built-in table holding
its display name, its public RPC endpoint and its multicall contract. Any other EVM chain id is
resolved through chain-selectors and carries a name only:

	m, err := chain.Lookup(1213)
	fmt.Println(m)                 // "popcateum-mainnet (1213)"
	fmt.Println(chain.Name(1))     // "ethereum-mainnet"
	fmt.Println(chain.Name(424242)) // "424242"

[Name] never fails and is what log lines and CLI output use. [MulticallAddress] fails for chains
without a known multicall deployment.
*/
package chain
