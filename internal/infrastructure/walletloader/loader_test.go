package walletloader

import (
	"os"
	"path/filepath"
	"testing"

	"portfolio_scraper/internal/domain/entity"
	"portfolio_scraper/internal/pkg/logger"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestGetWallets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wallets.txt")
	content := "# watched wallets\n" +
		"0xd8da6bf26964af9d7eed9e03e53415d37aa96045\n" +
		"\n" +
		"not-an-address\n" +
		"0x123\n" +
		"  0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed  \n" +
		"0xD8DA6BF26964AF9D7EED9E03E53415D37AA96045\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	wallets, err := NewWalletFileLoader(path, logger.NewSlogAdapter()).GetWallets()
	require.NoError(t, err)

	want := []entity.Wallet{
		{Address: "0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045"},
		{Address: "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"},
	}
	if diff := cmp.Diff(want, wallets); diff != "" {
		t.Errorf("GetWallets() mismatch (-want +got):\n%s", diff)
	}
}

func TestGetWalletsMissingFile(t *testing.T) {
	_, err := NewWalletFileLoader(filepath.Join(t.TempDir(), "absent.txt"), logger.NewSlogAdapter()).GetWallets()
	require.Error(t, err)
}
