package main

import (
	"fmt"
	"os"

	"portfolio_scraper/internal/infrastructure/walletloader"
	"portfolio_scraper/internal/pkg/utils"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
)

const defaultAddress = "0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	scrapeOutput    string
	scrapeWallets   string
	scrapeRecordDir string
	scrapeReplayDir string
)

func init() {
	scrapeCmd.Flags().StringVar(&scrapeOutput, "output", "profile_output.json", "File the snapshot JSON is written to.")
	scrapeCmd.Flags().StringVar(&scrapeWallets, "wallets", "", "Scrape every address listed in this file instead of a single one.")
	scrapeCmd.Flags().StringVar(&scrapeRecordDir, "record-dir", "", "Record page frames of each session under this directory.")
	scrapeCmd.Flags().StringVar(&scrapeReplayDir, "replay-dir", "", "Replay the frames stored in this directory instead of a live browser.")
	rootCmd.AddCommand(scrapeCmd)
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape [address]",
	Short: "Scrapes one profile (or a wallet list) and writes the snapshot as JSON.",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runScrape(cmd, args); err != nil {
			failJSON(err)
		}
	},
}

func runScrape(cmd *cobra.Command, args []string) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.zap.Sync()

	sessions, closeSessions := a.sessionFactory(scrapeRecordDir, scrapeReplayDir)
	defer closeSessions()
	svc := a.profileService(sessions)
	ctx := cmd.Context()

	if scrapeWallets != "" {
		wallets, err := walletloader.NewWalletFileLoader(scrapeWallets, a.logger).GetWallets()
		if err != nil {
			return err
		}
		addresses := make([]string, 0, len(wallets))
		for _, w := range wallets {
			addresses = append(addresses, w.Address)
		}
		profiles, scrapeErrors := svc.FetchProfiles(ctx, addresses)
		result := struct {
			Profiles any `json:"profiles"`
			Errors   any `json:"errors"`
		}{Profiles: profiles, Errors: scrapeErrors}
		if err := utils.WriteJSONFile(scrapeOutput, result); err != nil {
			return err
		}
		a.logger.Info("Batch scrape written", "output", scrapeOutput, "profiles", len(profiles), "errors", len(scrapeErrors))
		if len(profiles) == 0 && len(scrapeErrors) > 0 {
			return fmt.Errorf("all %d wallets failed", len(scrapeErrors))
		}
		return nil
	}

	address := defaultAddress
	if len(args) == 1 {
		address = args[0]
	}
	snapshot, err := svc.FetchProfile(ctx, address, true)
	if err != nil {
		return err
	}
	if err := utils.WriteJSONFile(scrapeOutput, snapshot); err != nil {
		return err
	}
	out, err := utils.MarshalIndent(snapshot, "  ")
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	a.logger.Info("Snapshot written", "output", scrapeOutput, "chains", snapshot.Len())
	return nil
}

// failJSON reports err as {"error": "..."} on stderr and exits with status 2.
func failJSON(err error) {
	out, _ := json.Marshal(map[string]string{"error": err.Error()})
	fmt.Fprintln(os.Stderr, string(out))
	os.Exit(2)
}
