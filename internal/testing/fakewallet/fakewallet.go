// Package fakewallet serves a wallet-shaped JSON-RPC endpoint for tests. It answers eth_accounts,
// eth_requestAccounts and eth_chainId the way a browser or desktop wallet would, and lets the test
// change the chain and accounts while connectors are attached.
package fakewallet

import (
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
)

// Wallet is the state behind the fake endpoint.
type Wallet struct {
	URL string

	mu         sync.Mutex
	chainID    uint64
	accounts   []common.Address
	authorized bool
	reject     bool
	calls      map[string]int
}

// New starts a fake wallet on an httptest server. The server is closed when the test ends.
func New(t *testing.T, chainID uint64, accounts ...common.Address) *Wallet {
	t.Helper()

	w := &Wallet{
		chainID:  chainID,
		accounts: accounts,
		calls:    make(map[string]int),
	}

	srv := rpc.NewServer()
	if err := srv.RegisterName("eth", &ethService{w: w}); err != nil {
		t.Fatalf("register fake wallet: %v", err)
	}

	hs := httptest.NewServer(srv)
	t.Cleanup(func() {
		hs.Close()
		srv.Stop()
	})
	w.URL = hs.URL

	return w
}

// Authorize marks the site as already connected, as a wallet does after a previous approval.
func (w *Wallet) Authorize() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.authorized = true
}

// Revoke disconnects the site.
func (w *Wallet) Revoke() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.authorized = false
}

// RejectRequests makes eth_requestAccounts fail with the EIP-1193 user rejection code.
func (w *Wallet) RejectRequests(reject bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.reject = reject
}

// SetChainID switches the wallet to another chain.
func (w *Wallet) SetChainID(id uint64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.chainID = id
}

// SetAccounts replaces the wallet accounts.
func (w *Wallet) SetAccounts(accounts ...common.Address) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.accounts = accounts
}

// Calls returns how many times method was served.
func (w *Wallet) Calls(method string) int {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.calls[method]
}

func (w *Wallet) record(method string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.calls[method]++
}

type rejectedError struct{}

func (rejectedError) Error() string  { return "User rejected the request." }
func (rejectedError) ErrorCode() int { return 4001 }

type ethService struct {
	w *Wallet
}

func (s *ethService) Accounts() []common.Address {
	s.w.record("eth_accounts")

	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	if !s.w.authorized {
		return []common.Address{}
	}

	return append([]common.Address{}, s.w.accounts...)
}

func (s *ethService) RequestAccounts() ([]common.Address, error) {
	s.w.record("eth_requestAccounts")

	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	if s.w.reject {
		return nil, rejectedError{}
	}
	s.w.authorized = true

	return append([]common.Address{}, s.w.accounts...), nil
}

func (s *ethService) ChainId() hexutil.Uint64 { //nolint:revive,stylecheck // JSON-RPC method name is eth_chainId
	s.w.record("eth_chainId")

	s.w.mu.Lock()
	defer s.w.mu.Unlock()

	return hexutil.Uint64(s.w.chainID)
}
