// Package web3 holds the connection contexts of the exchange interface: a Manager per context, and
// the resolver that picks the context the rest of the application reads from.
package web3

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"

	"github.com/popswap/popswap-interface/connector"
)

// NetworkContextName names the read-only network fallback context.
const NetworkContextName = "NETWORK"

// State is a snapshot of a connection context.
type State struct {
	Connector connector.Connector
	Provider  connector.Caller
	ChainID   uint64
	// Account is nil for read-only connections.
	Account *common.Address
	// Err is the error of the last failed activation or an unsupported chain switch.
	Err    error
	Active bool
}

// ActiveState returns user when it is active, otherwise network.
func ActiveState(user, network State) State {
	if user.Active {
		return user
	}

	return network
}

// Resolver resolves the active connection from the user-wallet and network managers.
type Resolver struct {
	user    *Manager
	network *Manager
}

// NewResolver creates a Resolver over the user-wallet and network managers.
func NewResolver(user, network *Manager) *Resolver {
	return &Resolver{user: user, network: network}
}

// State returns the user-wallet context when active, otherwise the network fallback.
func (r *Resolver) State() State {
	return ActiveState(r.user.State(), r.network.State())
}

func (r *Resolver) User() *Manager { return r.user }

func (r *Resolver) Network() *Manager { return r.network }

// IsUnsupportedChain reports whether the state failed because of the chain the wallet is on.
func (s State) IsUnsupportedChain() bool {
	return errors.Is(s.Err, connector.ErrUnsupportedChainID)
}
