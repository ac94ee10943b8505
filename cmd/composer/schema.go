package main

import (
	"encoding/json"
	"fmt"

	"github.com/pthm/composer/lib/protocol"
	"github.com/spf13/cobra"
)

var schemaEnvelope bool

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the component catalog",
	Long: `Print the catalog the composer publishes to hosts, as indented JSON.

With --envelope the output is the full handshake message:
  {"type": "component-composer-schema", "payload": {...}}

Examples:
  composer schema
  composer schema --envelope --config catalog.yaml`,
	RunE: runSchema,
}

func init() {
	rootCmd.AddCommand(schemaCmd)

	schemaCmd.Flags().BoolVar(&schemaEnvelope, "envelope", false, "wrap the catalog in a handshake message")
}

func runSchema(cmd *cobra.Command, args []string) error {
	rt, err := loadRuntime(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	var v any = rt.composer.Catalog()
	if schemaEnvelope {
		v = protocol.SchemaMessage(rt.composer.Catalog())
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
