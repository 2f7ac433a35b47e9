package entity

import (
	"bytes"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// WalletInfo holds the wallet-held tokens of one chain.
type WalletInfo struct {
	USDValue *string        `json:"usd_value"`
	Tokens   []TokenHolding `json:"tokens"`
}

// EmptyWalletInfo is the wallet of a chain that renders no holdings table.
func EmptyWalletInfo() WalletInfo {
	return WalletInfo{Tokens: []TokenHolding{}}
}

// ChainData is everything extracted while one chain was active.
type ChainData struct {
	Name        string     `json:"name"`
	WalletInfo  WalletInfo `json:"wallet_info"`
	ProjectInfo []Project  `json:"project_info"`
}

// ProfileSnapshot maps chain name to ChainData and remembers the order in which
// chains were first encountered. It serializes as a JSON object in that order.
type ProfileSnapshot struct {
	order  []string
	chains map[string]ChainData
}

// NewProfileSnapshot returns an empty snapshot.
func NewProfileSnapshot() *ProfileSnapshot {
	return &ProfileSnapshot{chains: make(map[string]ChainData)}
}

// Put stores chain data under its name. An existing entry is overwritten in place
// and keeps its original position. It reports whether an entry was replaced.
func (s *ProfileSnapshot) Put(chain ChainData) bool {
	if _, exists := s.chains[chain.Name]; exists {
		s.chains[chain.Name] = chain
		return true
	}
	s.order = append(s.order, chain.Name)
	s.chains[chain.Name] = chain
	return false
}

// Get returns the chain stored under name.
func (s *ProfileSnapshot) Get(name string) (ChainData, bool) {
	chain, ok := s.chains[name]
	return chain, ok
}

// Len returns the number of chains.
func (s *ProfileSnapshot) Len() int {
	return len(s.order)
}

// Names returns chain names in encounter order.
func (s *ProfileSnapshot) Names() []string {
	names := make([]string, len(s.order))
	copy(names, s.order)
	return names
}

// Chains returns chain data in encounter order.
func (s *ProfileSnapshot) Chains() []ChainData {
	chains := make([]ChainData, 0, len(s.order))
	for _, name := range s.order {
		chains = append(chains, s.chains[name])
	}
	return chains
}

// MarshalJSON writes the snapshot as an object keyed by chain name, in encounter order.
func (s *ProfileSnapshot) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range s.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(s.chains[name])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
