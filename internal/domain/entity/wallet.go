package entity

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Wallet is an EVM wallet whose profile page is scraped.
type Wallet struct {
	Address string `json:"address" yaml:"address"`
}

// ParseWalletAddress validates a hex address and returns the wallet with its
// EIP-55 checksummed form.
func ParseWalletAddress(raw string) (Wallet, error) {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "0x") && !strings.HasPrefix(trimmed, "0X") {
		return Wallet{}, fmt.Errorf("%w: %q lacks 0x prefix", ErrInvalidAddress, raw)
	}
	if !common.IsHexAddress(trimmed) {
		return Wallet{}, fmt.Errorf("%w: %q", ErrInvalidAddress, raw)
	}
	return Wallet{Address: common.HexToAddress(trimmed).Hex()}, nil
}

// CacheKey is the case-insensitive identity of the wallet.
func (w Wallet) CacheKey() string {
	return strings.ToLower(w.Address)
}
