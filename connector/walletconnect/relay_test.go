package walletconnect

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

// relay is an in-memory bridge. Messages published on a topic nobody subscribed to yet are queued
// until the first subscriber arrives, as the hosted bridge does.
type relay struct {
	URL string

	mu     sync.Mutex
	subs   map[string][]*relayConn
	queued map[string][]socketMessage
}

type relayConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *relayConn) send(msg socketMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.WriteJSON(msg)
}

func newRelay(t *testing.T) *relay {
	t.Helper()

	r := &relay{
		subs:   make(map[string][]*relayConn),
		queued: make(map[string][]socketMessage),
	}
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		conn, err := upgrader.Upgrade(w, req, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		r.serve(&relayConn{conn: conn})
	}))
	t.Cleanup(srv.Close)
	r.URL = srv.URL

	return r
}

func (r *relay) serve(c *relayConn) {
	for {
		var msg socketMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}

		r.mu.Lock()
		switch msg.Type {
		case messageSub:
			r.subs[msg.Topic] = append(r.subs[msg.Topic], c)
			queued := r.queued[msg.Topic]
			delete(r.queued, msg.Topic)
			r.mu.Unlock()
			for _, m := range queued {
				c.send(m)
			}
		case messagePub:
			subs := r.subs[msg.Topic]
			if len(subs) == 0 {
				r.queued[msg.Topic] = append(r.queued[msg.Topic], msg)
			}
			r.mu.Unlock()
			for _, s := range subs {
				s.send(msg)
			}
		default:
			r.mu.Unlock()
		}
	}
}

// peer is the wallet side of a pairing.
type peer struct {
	t    *testing.T
	id   string
	key  []byte
	conn *websocket.Conn
	msgs chan rpcMessage
}

// pair plays a wallet scanning uri: it joins the handshake topic and returns the session request.
func pair(t *testing.T, uri string) (*peer, rpcMessage, sessionRequest) {
	t.Helper()

	u, err := ParseURI(uri)
	require.NoError(t, err)
	wsURL, err := websocketURL(u.Bridge)
	require.NoError(t, err)
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	p := &peer{t: t, id: uuid.NewString(), key: u.Key, conn: conn, msgs: make(chan rpcMessage, 16)}
	require.NoError(t, conn.WriteJSON(socketMessage{Topic: u.Topic, Type: messageSub}))
	require.NoError(t, conn.WriteJSON(socketMessage{Topic: p.id, Type: messageSub}))
	go p.read()

	req := p.next()
	require.Equal(t, methodSessionRequest, req.Method)
	var params []sessionRequest
	require.NoError(t, json.Unmarshal(req.Params, &params))
	require.Len(t, params, 1)

	return p, req, params[0]
}

func (p *peer) read() {
	defer close(p.msgs)
	for {
		var msg socketMessage
		if err := p.conn.ReadJSON(&msg); err != nil {
			return
		}
		var payload encryptedPayload
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			continue
		}
		plaintext, err := decrypt(p.key, payload)
		if err != nil {
			continue
		}
		var m rpcMessage
		if err := json.Unmarshal(plaintext, &m); err != nil {
			continue
		}
		p.msgs <- m
	}
}

func (p *peer) next() rpcMessage {
	p.t.Helper()

	select {
	case m, ok := <-p.msgs:
		require.True(p.t, ok, "wallet connection closed")
		return m
	case <-time.After(5 * time.Second):
		require.FailNow(p.t, "timed out waiting for a bridge message")
		return rpcMessage{}
	}
}

func (p *peer) publish(topic string, m rpcMessage) {
	p.t.Helper()

	plaintext, err := json.Marshal(m)
	require.NoError(p.t, err)
	payload, err := encrypt(p.key, plaintext)
	require.NoError(p.t, err)
	raw, err := json.Marshal(payload)
	require.NoError(p.t, err)
	require.NoError(p.t, p.conn.WriteJSON(socketMessage{Topic: topic, Type: messagePub, Payload: string(raw)}))
}

func (p *peer) respond(to string, id int64, result any) {
	p.t.Helper()

	raw, err := json.Marshal(result)
	require.NoError(p.t, err)
	p.publish(to, rpcMessage{ID: id, JSONRPC: "2.0", Result: raw})
}

func (p *peer) update(to string, status sessionStatus) {
	p.t.Helper()

	req, err := newRequest(methodSessionUpdate, status)
	require.NoError(p.t, err)
	p.publish(to, req)
}
