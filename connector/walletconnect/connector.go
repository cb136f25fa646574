// Package walletconnect implements the QR-code bridge connector (WalletConnect v1). The exchange and
// the wallet exchange AES encrypted JSON-RPC messages through a websocket relay; pairing starts with
// a wc: URI the wallet scans from a QR code.
package walletconnect

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/event"
	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"

	"github.com/popswap/popswap-interface/connector"
	"github.com/popswap/popswap-interface/pkg/logger"
)

const (
	// DefaultBridge is used when no bridge is configured.
	DefaultBridge = "https://bridge.walletconnect.org"
	// DefaultPollInterval is the keep-alive interval of the bridge connection.
	DefaultPollInterval = 15 * time.Second
)

// URIHandler receives the pairing URI once the session request is published.
type URIHandler func(uri string)

// Config holds the configuration of the bridge connector.
type Config struct {
	// Required: RPC endpoint per supported chain. The keys are the supported chain ids.
	RPCs map[uint64]string
	// Optional: relay URL. Empty selects DefaultBridge.
	Bridge string
	// Optional: render the pairing URI as a QR code on QRWriter.
	QRCode   bool
	QRWriter io.Writer
	// Optional: keep-alive interval of the bridge connection. Defaults to DefaultPollInterval.
	PollInterval time.Duration
	// Optional: application metadata shown in the wallet.
	Meta PeerMeta
	// Optional: called with the pairing URI.
	URIHandler URIHandler
	// Optional: Logger, defaults to a no-op logger.
	Logger logger.Logger
}

func (c Config) validate() error {
	if len(c.RPCs) == 0 {
		return errors.New("at least one RPC URL is required")
	}
	for id, u := range c.RPCs {
		if u == "" {
			return fmt.Errorf("empty RPC URL for chain %d", id)
		}
	}
	if c.QRCode && c.QRWriter == nil {
		return errors.New("QR writer is required when QR code output is enabled")
	}
	if _, err := websocketURL(c.Bridge); err != nil {
		return err
	}

	return nil
}

// Connector pairs with a wallet through a bridge.
type Connector struct {
	cfg  Config
	lggr logger.Logger

	mu      sync.Mutex
	session *session

	chainFeed    event.Feed
	accountsFeed event.Feed
	scope        event.SubscriptionScope
}

var (
	_ connector.Connector   = (*Connector)(nil)
	_ connector.EventSource = (*Connector)(nil)
)

// New creates the bridge connector. Nothing is dialed until Activate.
func New(cfg Config) (*Connector, error) {
	if cfg.Bridge == "" {
		cfg.Bridge = DefaultBridge
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid walletconnect config: %w", err)
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}
	cfg.RPCs = maps.Clone(cfg.RPCs)

	return &Connector{cfg: cfg, lggr: cfg.Logger}, nil
}

func (c *Connector) Name() string { return "WalletConnect" }

func (c *Connector) Kind() connector.Kind { return connector.KindWalletConnect }

func (c *Connector) SupportedChainIDs() []uint64 {
	return slices.Sorted(maps.Keys(c.cfg.RPCs))
}

// Bridge returns the relay URL in use.
func (c *Connector) Bridge() string { return c.cfg.Bridge }

// Activate opens a session: it publishes an encrypted session request on a fresh handshake topic,
// hands out the pairing URI and waits for the wallet to approve. An existing live session is reused.
func (c *Connector) Activate(ctx context.Context) (connector.Update, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session != nil && c.session.alive() {
		chainID, accounts := c.session.snapshot()
		if len(accounts) > 0 {
			return c.update(c.session, chainID, accounts), nil
		}
	}

	key, err := newKey()
	if err != nil {
		return connector.Update{}, err
	}
	clientID := uuid.NewString()
	handshakeTopic := uuid.NewString()

	b, err := dialBridge(ctx, c.cfg.Bridge, c.cfg.PollInterval, c.lggr)
	if err != nil {
		return connector.Update{}, err
	}
	s := newSession(b, key, clientID, c.cfg.RPCs, c.lggr)
	go s.readLoop(func(m rpcMessage) { c.handleRequest(s, m) })

	fail := func(err error) (connector.Update, error) {
		b.close()
		s.close()

		return connector.Update{}, err
	}

	if err := b.subscribe(clientID); err != nil {
		return fail(fmt.Errorf("failed to subscribe to bridge: %w", err))
	}

	req, err := newRequest(methodSessionRequest, sessionRequest{PeerID: clientID, PeerMeta: c.cfg.Meta})
	if err != nil {
		return fail(err)
	}
	ch, err := s.send(handshakeTopic, req)
	if err != nil {
		return fail(err)
	}

	uri := URI{Topic: handshakeTopic, Bridge: c.cfg.Bridge, Key: key}.String()
	if err := c.present(uri); err != nil {
		return fail(err)
	}

	resp, err := s.wait(ctx, req.ID, ch)
	if err != nil {
		return fail(fmt.Errorf("waiting for session approval: %w", err))
	}
	if resp.Error != nil {
		return fail(fmt.Errorf("%w: %w", connector.ErrUserRejected, resp.Error))
	}

	var status sessionStatus
	if err := json.Unmarshal(resp.Result, &status); err != nil {
		return fail(fmt.Errorf("invalid session response: %w", err))
	}
	if !status.Approved {
		return fail(connector.ErrUserRejected)
	}
	if len(status.Accounts) == 0 {
		return fail(connector.ErrNoAccounts)
	}
	if !connector.Supports(c, status.ChainID) {
		return fail(fmt.Errorf("%w: %d", connector.ErrUnsupportedChainID, status.ChainID))
	}

	s.apply(status)
	if c.session != nil {
		c.endLocked()
	}
	c.session = s
	c.lggr.Infow("Wallet paired", "chainID", status.ChainID, "peer", status.PeerID)

	return c.update(s, status.ChainID, status.Accounts), nil
}

// Deactivate tells the wallet the session is over and closes the bridge connection.
func (c *Connector) Deactivate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.endLocked()
}

// SubscribeChainChanged delivers the chain id every time the wallet switches network.
func (c *Connector) SubscribeChainChanged(ch chan<- uint64) (event.Subscription, error) {
	return c.track(c.chainFeed.Subscribe(ch)), nil
}

// SubscribeAccountsChanged delivers the accounts every time the wallet changes them. An empty slice
// means the wallet ended the session.
func (c *Connector) SubscribeAccountsChanged(ch chan<- []common.Address) (event.Subscription, error) {
	return c.track(c.accountsFeed.Subscribe(ch)), nil
}

// Close deactivates and ends every subscription.
func (c *Connector) Close() {
	c.Deactivate()
	c.scope.Close()
}

func (c *Connector) track(sub event.Subscription) event.Subscription {
	tracked := c.scope.Track(sub)
	if tracked == nil {
		sub.Unsubscribe()
		return event.NewSubscription(func(<-chan struct{}) error { return nil })
	}

	return tracked
}

func (c *Connector) update(s *session, chainID uint64, accounts []common.Address) connector.Update {
	account := accounts[0]

	return connector.Update{Provider: sessionCaller{s: s}, ChainID: chainID, Account: &account}
}

func (c *Connector) present(uri string) error {
	c.lggr.Debugw("Session request published", "uri", uri)
	if c.cfg.URIHandler != nil {
		c.cfg.URIHandler(uri)
	}
	if !c.cfg.QRCode {
		return nil
	}

	qr, err := qrcode.New(uri, qrcode.Medium)
	if err != nil {
		return fmt.Errorf("failed to render pairing QR code: %w", err)
	}
	_, err = io.WriteString(c.cfg.QRWriter, qr.ToSmallString(false))

	return err
}

func (c *Connector) endLocked() {
	s := c.session
	if s == nil {
		return
	}
	c.session = nil

	if s.alive() {
		msg, err := newRequest(methodSessionUpdate, sessionStatus{Approved: false})
		if err == nil {
			s.mu.Lock()
			peer := s.peerID
			s.mu.Unlock()
			if _, err := s.send(peer, msg); err != nil {
				c.lggr.Debugw("Failed to notify wallet of session end", "err", err)
			}
			s.forget(msg.ID)
		}
	}
	s.bridge.close()
	s.close()
}

// handleRequest processes wallet-initiated session updates.
func (c *Connector) handleRequest(s *session, m rpcMessage) {
	if m.Method != methodSessionUpdate {
		c.lggr.Debugw("Ignoring wallet request", "method", m.Method)
		return
	}

	var params []sessionStatus
	if err := json.Unmarshal(m.Params, &params); err != nil || len(params) == 0 {
		c.lggr.Warnw("Malformed session update", "err", err)
		return
	}
	status := params[0]

	if !status.Approved {
		c.lggr.Infow("Wallet ended the session")
		s.close()
		s.bridge.close()
		c.accountsFeed.Send([]common.Address{})

		return
	}

	chainChanged, accountsChanged := s.apply(status)
	if chainChanged {
		c.lggr.Debugw("Wallet switched chain", "chainID", status.ChainID)
		c.chainFeed.Send(status.ChainID)
	}
	if accountsChanged {
		c.lggr.Debugw("Wallet accounts changed", "accounts", len(status.Accounts))
		c.accountsFeed.Send(slices.Clone(status.Accounts))
	}
}
