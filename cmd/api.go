package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/nepochemu/ytm/internal/config"
	"github.com/nepochemu/ytm/internal/credential"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var apiCmd = &cobra.Command{
	Use:   "api [key]",
	Short: "Store the YouTube Data API key",
	Long: `Store the YouTube Data API key used for searches.

Without an argument you are prompted for the key. By default the key is
written to ~/.config/ytm/config.yaml; with --keyring it goes to the system
keyring and only the choice of store is written to the config file.

You can create a key at https://console.cloud.google.com/apis/credentials`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAPI,
}

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().Bool("keyring", false, "Store the key in the system keyring")
	apiCmd.Flags().Bool("delete", false, "Remove the stored key")
}

func runAPI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if useKeyring, _ := cmd.Flags().GetBool("keyring"); useKeyring {
		cfg.CredentialStore = config.StoreKeyring
	}

	store, err := credential.ForConfig(cfg)
	if err != nil {
		return err
	}

	if del, _ := cmd.Flags().GetBool("delete"); del {
		if err := store.Delete(); err != nil {
			return fmt.Errorf("failed to delete API key: %w", err)
		}
		fmt.Println("API key removed.")
		return nil
	}

	var key string
	if len(args) == 1 {
		key = strings.TrimSpace(args[0])
	} else {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return fmt.Errorf("no key given and stdin is not a terminal")
		}
		key, err = promptAPIKey()
		if err != nil {
			return err
		}
	}
	if key == "" {
		return fmt.Errorf("API key must not be empty")
	}

	if err := store.Set(key); err != nil {
		return fmt.Errorf("failed to store API key: %w", err)
	}

	logger.Info().Str("store", cfg.CredentialStore).Msg("Stored API key")
	fmt.Printf("API key saved (%s).\n", cfg.CredentialStore)
	return nil
}
