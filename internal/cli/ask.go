package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "ask [message]",
		Short: "Send a message to the assistant and print its response",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runAsk,
	}
	RootCmd.AddCommand(cmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}
	defer a.Close()

	result, err := a.Dispatcher.Submit(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if !textFormat() {
		return writeJSON(out, result)
	}
	fmt.Fprintln(out, result.Message.Content)
	if result.Navigation != "" {
		fmt.Fprintf(out, "-> %s\n", result.Navigation)
	}
	return nil
}
