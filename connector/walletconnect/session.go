package walletconnect

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/popswap/popswap-interface/connector/internal/eip1193"
	"github.com/popswap/popswap-interface/pkg/logger"
)

// walletMethods are always forwarded to the paired wallet, since only the wallet holds the keys.
var walletMethods = []string{
	"eth_sendTransaction",
	"eth_signTransaction",
	"eth_sign",
	"personal_sign",
	"eth_signTypedData",
	"eth_signTypedData_v4",
}

// session is one pairing with a wallet over the bridge.
type session struct {
	bridge   *bridge
	key      []byte
	clientID string
	rpcs     map[uint64]string
	lggr     logger.Logger

	mu       sync.Mutex
	peerID   string
	chainID  uint64
	accounts []common.Address
	clients  map[uint64]*rpc.Client
	pending  map[int64]chan rpcMessage

	done      chan struct{}
	closeOnce sync.Once
}

func newSession(b *bridge, key []byte, clientID string, rpcs map[uint64]string, lggr logger.Logger) *session {
	return &session{
		bridge:   b,
		key:      key,
		clientID: clientID,
		rpcs:     rpcs,
		lggr:     lggr,
		clients:  make(map[uint64]*rpc.Client),
		pending:  make(map[int64]chan rpcMessage),
		done:     make(chan struct{}),
	}
}

func (s *session) alive() bool {
	select {
	case <-s.done:
		return false
	default:
		return true
	}
}

// send encrypts msg and publishes it on topic. Requests get a channel that receives the wallet
// response.
func (s *session) send(topic string, msg rpcMessage) (<-chan rpcMessage, error) {
	plaintext, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}
	payload, err := encrypt(s.key, plaintext)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	var ch chan rpcMessage
	if msg.isRequest() {
		ch = make(chan rpcMessage, 1)
		s.mu.Lock()
		s.pending[msg.ID] = ch
		s.mu.Unlock()
	}

	if err := s.bridge.publish(topic, string(raw), msg.Method == methodSessionUpdate); err != nil {
		s.forget(msg.ID)
		return nil, fmt.Errorf("failed to publish %s: %w", msg.Method, err)
	}

	return ch, nil
}

func (s *session) wait(ctx context.Context, id int64, ch <-chan rpcMessage) (rpcMessage, error) {
	select {
	case resp := <-ch:
		return resp, nil
	case <-s.done:
		return rpcMessage{}, errBridgeClosed
	case <-ctx.Done():
		s.forget(id)
		return rpcMessage{}, ctx.Err()
	}
}

func (s *session) forget(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, id)
}

// callWallet forwards a JSON-RPC request to the paired wallet and waits for its answer.
func (s *session) callWallet(ctx context.Context, result any, method string, args ...any) error {
	req, err := newRequest(method, args...)
	if err != nil {
		return err
	}

	s.mu.Lock()
	peer := s.peerID
	s.mu.Unlock()

	ch, err := s.send(peer, req)
	if err != nil {
		return err
	}
	resp, err := s.wait(ctx, req.ID, ch)
	if err != nil {
		return err
	}
	if resp.Error != nil {
		return resp.Error
	}
	if result == nil || len(resp.Result) == 0 {
		return nil
	}

	return json.Unmarshal(resp.Result, result)
}

// readLoop decrypts messages addressed to this client, resolving pending requests and passing
// wallet-initiated requests to onRequest. It returns when the bridge connection ends.
func (s *session) readLoop(onRequest func(rpcMessage)) {
	defer s.close()

	for msg := range s.bridge.incoming {
		if msg.Topic != s.clientID {
			continue
		}

		var payload encryptedPayload
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			s.lggr.Warnw("Dropping undecodable bridge message", "err", err)
			continue
		}
		plaintext, err := decrypt(s.key, payload)
		if err != nil {
			s.lggr.Warnw("Dropping undecryptable bridge message", "err", err)
			continue
		}
		var m rpcMessage
		if err := json.Unmarshal(plaintext, &m); err != nil {
			s.lggr.Warnw("Dropping malformed bridge message", "err", err)
			continue
		}

		if m.isRequest() {
			onRequest(m)
			continue
		}

		s.mu.Lock()
		ch, ok := s.pending[m.ID]
		delete(s.pending, m.ID)
		s.mu.Unlock()
		if ok {
			ch <- m
		}
	}
}

// apply records an approved session status and reports what changed.
func (s *session) apply(status sessionStatus) (chainChanged, accountsChanged bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if status.PeerID != "" {
		s.peerID = status.PeerID
	}
	chainChanged = status.ChainID != 0 && status.ChainID != s.chainID
	if chainChanged {
		s.chainID = status.ChainID
	}
	accountsChanged = !slices.Equal(status.Accounts, s.accounts)
	if accountsChanged {
		s.accounts = slices.Clone(status.Accounts)
	}

	return chainChanged, accountsChanged
}

func (s *session) snapshot() (uint64, []common.Address) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.chainID, slices.Clone(s.accounts)
}

// close ends the session. It is safe to call more than once.
func (s *session) close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.mu.Lock()
		for id := range s.pending {
			delete(s.pending, id)
		}
		for id, c := range s.clients {
			c.Close()
			delete(s.clients, id)
		}
		s.mu.Unlock()
	})
}

func (s *session) client(ctx context.Context, chainID uint64) (*rpc.Client, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.clients[chainID]; ok {
		return c, true, nil
	}
	u, ok := s.rpcs[chainID]
	if !ok {
		return nil, false, nil
	}
	c, err := rpc.DialContext(ctx, u)
	if err != nil {
		return nil, false, fmt.Errorf("failed to dial RPC for chain %d: %w", chainID, err)
	}
	s.clients[chainID] = c

	return c, true, nil
}

// sessionCaller is the provider handed out on activation. Account and chain queries are answered from
// the session; signing goes to the wallet; everything else goes to the RPC endpoint of the current
// chain, or to the wallet when no endpoint is configured.
type sessionCaller struct {
	s *session
}

func (c sessionCaller) CallContext(ctx context.Context, result any, method string, args ...any) error {
	chainID, accounts := c.s.snapshot()

	switch method {
	case eip1193.MethodAccounts, eip1193.MethodRequestAccounts, eip1193.MethodEnable:
		return assign(result, accounts)
	case eip1193.MethodChainID:
		return assign(result, hexutil.Uint64(chainID))
	}

	if !c.s.alive() {
		return errBridgeClosed
	}
	if slices.Contains(walletMethods, method) {
		return c.s.callWallet(ctx, result, method, args...)
	}

	client, ok, err := c.s.client(ctx, chainID)
	if err != nil {
		return err
	}
	if !ok {
		return c.s.callWallet(ctx, result, method, args...)
	}

	return client.CallContext(ctx, result, method, args...)
}

func assign(result, v any) error {
	if result == nil {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}

	return json.Unmarshal(raw, result)
}
