// Package eip1193 holds the JSON-RPC calls shared by the wallet connectors.
package eip1193

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/popswap/popswap-interface/connector"
)

// CodeUserRejected is the EIP-1193 error code a wallet returns when the user refuses a request.
const CodeUserRejected = 4001

const (
	MethodAccounts        = "eth_accounts"
	MethodRequestAccounts = "eth_requestAccounts"
	MethodChainID         = "eth_chainId"
	// MethodEnable is the pre EIP-1102 way of requesting accounts, still served by older wallets.
	MethodEnable = "eth_enable"
)

// Accounts returns the accounts the wallet already exposes, without prompting.
func Accounts(ctx context.Context, c connector.Caller) ([]common.Address, error) {
	var accounts []common.Address
	if err := c.CallContext(ctx, &accounts, MethodAccounts); err != nil {
		return nil, fmt.Errorf("%s: %w", MethodAccounts, Classify(err))
	}

	return accounts, nil
}

// RequestAccounts asks the wallet for access. Wallets that do not know eth_requestAccounts are asked
// through eth_enable instead.
func RequestAccounts(ctx context.Context, c connector.Caller) ([]common.Address, error) {
	var accounts []common.Address
	err := c.CallContext(ctx, &accounts, MethodRequestAccounts)
	if isMethodNotFound(err) {
		err = c.CallContext(ctx, &accounts, MethodEnable)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", MethodRequestAccounts, Classify(err))
	}
	if len(accounts) == 0 {
		return nil, connector.ErrNoAccounts
	}

	return accounts, nil
}

// ChainID returns the chain the wallet is currently connected to.
func ChainID(ctx context.Context, c connector.Caller) (uint64, error) {
	var id hexutil.Uint64
	if err := c.CallContext(ctx, &id, MethodChainID); err != nil {
		return 0, fmt.Errorf("%s: %w", MethodChainID, Classify(err))
	}

	return uint64(id), nil
}

// Connect requests accounts and the chain id, and checks the chain against the connector's
// supported list.
func Connect(ctx context.Context, conn connector.Connector, c connector.Caller) (connector.Update, error) {
	accounts, err := RequestAccounts(ctx, c)
	if err != nil {
		return connector.Update{}, err
	}

	chainID, err := ChainID(ctx, c)
	if err != nil {
		return connector.Update{}, err
	}

	if !connector.Supports(conn, chainID) {
		return connector.Update{}, fmt.Errorf("%w: %d", connector.ErrUnsupportedChainID, chainID)
	}

	account := accounts[0]

	return connector.Update{Provider: c, ChainID: chainID, Account: &account}, nil
}

// Classify maps a wallet JSON-RPC error onto the connector sentinel errors.
func Classify(err error) error {
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) && rpcErr.ErrorCode() == CodeUserRejected {
		return fmt.Errorf("%w: %w", connector.ErrUserRejected, err)
	}

	return err
}

func isMethodNotFound(err error) bool {
	var rpcErr rpc.Error
	return errors.As(err, &rpcErr) && rpcErr.ErrorCode() == -32601
}
