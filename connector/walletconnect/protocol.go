package walletconnect

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/url"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

const (
	protocolVersion = 1

	methodSessionRequest = "wc_sessionRequest"
	methodSessionUpdate  = "wc_sessionUpdate"
)

// PeerMeta describes the application to the wallet during pairing.
type PeerMeta struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	URL         string   `json:"url"`
	Icons       []string `json:"icons"`
}

type rpcMessage struct {
	ID      int64           `json:"id"`
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

func (m rpcMessage) isRequest() bool { return m.Method != "" }

// rpcError is a JSON-RPC error returned by the wallet. It implements go-ethereum's rpc.Error so the
// shared EIP-1193 classification applies.
type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string  { return e.Message }
func (e *rpcError) ErrorCode() int { return e.Code }

type sessionRequest struct {
	PeerID   string   `json:"peerId"`
	PeerMeta PeerMeta `json:"peerMeta"`
	ChainID  *uint64  `json:"chainId"`
}

type sessionStatus struct {
	Approved  bool             `json:"approved"`
	ChainID   uint64           `json:"chainId"`
	NetworkID uint64           `json:"networkId,omitempty"`
	Accounts  []common.Address `json:"accounts"`
	PeerID    string           `json:"peerId,omitempty"`
	PeerMeta  *PeerMeta        `json:"peerMeta,omitempty"`
}

// payloadID returns a JSON-RPC id in the millisecond-timestamp-plus-entropy form wallets expect.
func payloadID() int64 {
	n, err := rand.Int(rand.Reader, big.NewInt(1000))
	if err != nil {
		return time.Now().UnixMilli() * 1000
	}

	return time.Now().UnixMilli()*1000 + n.Int64()
}

func newRequest(method string, params ...any) (rpcMessage, error) {
	raw, err := json.Marshal(params)
	if err != nil {
		return rpcMessage{}, fmt.Errorf("failed to encode %s params: %w", method, err)
	}

	return rpcMessage{ID: payloadID(), JSONRPC: "2.0", Method: method, Params: raw}, nil
}

// URI is a pairing URI of the form wc:{topic}@1?bridge={url}&key={hex}.
type URI struct {
	Topic  string
	Bridge string
	Key    []byte
}

func (u URI) String() string {
	q := url.Values{}
	q.Set("bridge", u.Bridge)
	q.Set("key", hex.EncodeToString(u.Key))

	return fmt.Sprintf("wc:%s@%d?%s", u.Topic, protocolVersion, q.Encode())
}

// ParseURI parses a pairing URI, as a wallet does after scanning the QR code.
func ParseURI(s string) (URI, error) {
	rest, ok := strings.CutPrefix(s, "wc:")
	if !ok {
		return URI{}, fmt.Errorf("invalid pairing URI %q: missing wc: prefix", s)
	}
	path, query, _ := strings.Cut(rest, "?")
	topic, version, ok := strings.Cut(path, "@")
	if !ok || topic == "" {
		return URI{}, fmt.Errorf("invalid pairing URI %q: missing topic", s)
	}
	if version != fmt.Sprint(protocolVersion) {
		return URI{}, fmt.Errorf("unsupported pairing URI version %q", version)
	}

	q, err := url.ParseQuery(query)
	if err != nil {
		return URI{}, fmt.Errorf("invalid pairing URI query: %w", err)
	}
	key, err := hex.DecodeString(q.Get("key"))
	if err != nil || len(key) != keySize {
		return URI{}, errors.New("invalid pairing URI key")
	}
	if q.Get("bridge") == "" {
		return URI{}, errors.New("invalid pairing URI: missing bridge")
	}

	return URI{Topic: topic, Bridge: q.Get("bridge"), Key: key}, nil
}
