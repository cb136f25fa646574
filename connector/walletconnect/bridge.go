package walletconnect

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/popswap/popswap-interface/pkg/logger"
)

const (
	messagePub = "pub"
	messageSub = "sub"
)

var errBridgeClosed = errors.New("bridge connection closed")

// socketMessage is the frame exchanged with a WalletConnect v1 bridge.
type socketMessage struct {
	Topic   string `json:"topic"`
	Type    string `json:"type"`
	Payload string `json:"payload"`
	Silent  bool   `json:"silent"`
}

// bridge is a websocket connection to a relay. Published messages for subscribed topics are
// delivered on incoming until the connection drops or close is called.
type bridge struct {
	conn *websocket.Conn
	lggr logger.Logger

	writeMu sync.Mutex

	incoming chan socketMessage
	quit     chan struct{}
	done     chan struct{}

	closeOnce sync.Once
	err       error
}

// websocketURL maps an http(s) bridge URL to its ws(s) equivalent.
func websocketURL(bridgeURL string) (string, error) {
	u, err := url.Parse(bridgeURL)
	if err != nil {
		return "", fmt.Errorf("invalid bridge URL: %w", err)
	}
	switch strings.ToLower(u.Scheme) {
	case "https", "wss":
		u.Scheme = "wss"
	case "http", "ws":
		u.Scheme = "ws"
	default:
		return "", fmt.Errorf("invalid bridge URL scheme %q", u.Scheme)
	}

	return u.String(), nil
}

func dialBridge(ctx context.Context, bridgeURL string, pingInterval time.Duration, lggr logger.Logger) (*bridge, error) {
	wsURL, err := websocketURL(bridgeURL)
	if err != nil {
		return nil, err
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to dial bridge %s: %w", bridgeURL, err)
	}

	b := &bridge{
		conn:     conn,
		lggr:     lggr,
		incoming: make(chan socketMessage, 16),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go b.readLoop()
	if pingInterval > 0 {
		go b.pingLoop(pingInterval)
	}

	return b, nil
}

func (b *bridge) subscribe(topic string) error {
	return b.write(socketMessage{Topic: topic, Type: messageSub, Silent: true})
}

func (b *bridge) publish(topic, payload string, silent bool) error {
	return b.write(socketMessage{Topic: topic, Type: messagePub, Payload: payload, Silent: silent})
}

func (b *bridge) write(msg socketMessage) error {
	b.writeMu.Lock()
	defer b.writeMu.Unlock()

	select {
	case <-b.done:
		return errBridgeClosed
	default:
	}

	return b.conn.WriteJSON(msg)
}

func (b *bridge) readLoop() {
	defer close(b.done)
	defer close(b.incoming)

	for {
		var msg socketMessage
		if err := b.conn.ReadJSON(&msg); err != nil {
			select {
			case <-b.quit:
			default:
				b.err = err
				b.lggr.Warnw("Bridge connection dropped", "err", err)
			}

			return
		}
		if msg.Type != messagePub {
			continue
		}

		select {
		case b.incoming <- msg:
		case <-b.quit:
			return
		}
	}
}

func (b *bridge) pingLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			b.writeMu.Lock()
			err := b.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(interval))
			b.writeMu.Unlock()
			if err != nil {
				return
			}
		case <-b.done:
			return
		}
	}
}

// close shuts the connection down and waits for the read loop to exit.
func (b *bridge) close() {
	b.closeOnce.Do(func() {
		close(b.quit)
		b.writeMu.Lock()
		_ = b.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		b.writeMu.Unlock()
		_ = b.conn.Close()
	})
	<-b.done
}
