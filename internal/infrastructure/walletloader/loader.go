package walletloader

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"portfolio_scraper/internal/app/port"
	"portfolio_scraper/internal/domain/entity"
)

// DefaultWalletFilePath is the address list used when none is configured.
const DefaultWalletFilePath = "data/wallets.txt"

// WalletFileLoader implements the port.WalletProvider interface by loading wallets from a file.
// One address per line; blank lines and "#" comments are ignored.
type WalletFileLoader struct {
	filePath string
	logger   port.Logger
}

// NewWalletFileLoader creates a new WalletFileLoader.
func NewWalletFileLoader(filePath string, logger port.Logger) port.WalletProvider {
	if filePath == "" {
		filePath = DefaultWalletFilePath
	}
	return &WalletFileLoader{
		filePath: filePath,
		logger:   logger,
	}
}

// GetWallets reads wallet addresses from the configured file path. Invalid and
// repeated addresses are skipped.
func (l *WalletFileLoader) GetWallets() ([]entity.Wallet, error) {
	file, err := os.Open(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open wallet file %s: %w", l.filePath, err)
	}
	defer file.Close()

	var wallets []entity.Wallet
	seen := make(map[string]bool)
	scanner := bufio.NewScanner(file)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		wallet, err := entity.ParseWalletAddress(line)
		if err != nil {
			l.logger.Warn("Skipping invalid wallet address", "file", l.filePath, "line_number", lineNum, "address", line)
			continue
		}
		if seen[wallet.CacheKey()] {
			l.logger.Debug("Skipping duplicate wallet address", "file", l.filePath, "line_number", lineNum, "address", wallet.Address)
			continue
		}
		seen[wallet.CacheKey()] = true
		wallets = append(wallets, wallet)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error scanning wallet file %s: %w", l.filePath, err)
	}

	l.logger.Info("Wallets loaded successfully from file", "count", len(wallets), "path", l.filePath)
	return wallets, nil
}
