package main

import (
	"fmt"
	"io"
	"os"

	"github.com/pthm/composer"
	"github.com/pthm/composer/lib/encoding"
	"github.com/pthm/composer/lib/protocol"
	"github.com/spf13/cobra"
)

var renderMessage bool

var renderCmd = &cobra.Command{
	Use:   "render [file]",
	Short: "Render one component description to HTML",
	Long: `Render a JSON component description and print the HTML.

The description is read from file, or from stdin when file is "-" or
omitted. With --message the input is a full render command:
  {"type": "component-composer-ui", "payload": {...}}

A description of an unknown type prints nothing.

Examples:
  echo '{"type":"Text","attributes":{"text":"Hi"}}' | composer render
  composer render --message command.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().BoolVar(&renderMessage, "message", false, "input is a render command envelope")
}

func runRender(cmd *cobra.Command, args []string) error {
	rt, err := loadRuntime(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	var in io.Reader = cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		in = f
	}

	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	desc, err := decodeDescription(data, renderMessage)
	if err != nil {
		return err
	}

	html, err := composer.RenderString(cmd.Context(), rt.composer.Render(desc, rt.cfg.Render.RootKey))
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), html)
	return nil
}

func decodeDescription(data []byte, message bool) (composer.Description, error) {
	if message {
		desc, err := protocol.Decode(encoding.JSON(), data)
		if err != nil {
			return composer.Description{}, fmt.Errorf("decode message: %w", err)
		}
		return desc, nil
	}

	var v any
	if err := encoding.JSON().Unmarshal(data, &v); err != nil {
		return composer.Description{}, fmt.Errorf("decode description: %w", err)
	}
	obj, ok := composer.AsObject(v)
	if !ok {
		return composer.Description{}, fmt.Errorf("decode description: %w", protocol.ErrInvalidPayload)
	}
	return composer.DescriptionFromMap(obj), nil
}
