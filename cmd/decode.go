package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/qtix/ticket-gateway/internal/config"
	"github.com/qtix/ticket-gateway/internal/credential"
	"github.com/spf13/cobra"
)

// decodeCmd does what a venue scanner does, minus the camera: decrypt a
// credential payload (the hex string inside the QR code) with the
// configured key and print the ticket data. Useful for checking a deployed
// key against issued tickets.
var decodeCmd = &cobra.Command{
	Use:   "decode <hex-payload>",
	Short: "Decrypt a ticket credential payload offline",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		enc, err := credential.NewEncoder(
			cfg.Credential.Key,
			cfg.Credential.IV,
			cfg.Credential.Mode,
			cfg.Credential.QRSize,
		)
		if err != nil {
			return err
		}

		payload, err := enc.DecryptPayload(args[0])
		if err != nil {
			return fmt.Errorf("decrypt credential: %w", err)
		}

		out, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))

		return nil
	},
}
