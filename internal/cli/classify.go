package cli

import (
	"fmt"
	"sort"
	"strings"

	"telar-chat-api/pkg/intent"
	"telar-chat-api/pkg/models"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "classify [message]",
		Short: "Classify a message with the local keyword classifier",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runClassify,
	}
	RootCmd.AddCommand(cmd)
}

func runClassify(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, " ")
	got := intent.Classify(text)
	scores := intent.Score(text)
	dest, hasDest := intent.ResolveDestination(text)

	out := cmd.OutOrStdout()
	if !textFormat() {
		result := map[string]any{"intent": got, "scores": scores}
		if hasDest {
			result["destination"] = dest
		}
		return writeJSON(out, result)
	}

	fmt.Fprintf(out, "%s (%.2f)\n", got.Type, got.Confidence)
	if hasDest {
		fmt.Fprintf(out, "destination: %s -> %s\n", dest.Name, dest.Path)
	}
	keys := make([]models.IntentType, 0, len(scores))
	for k := range scores {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	for _, k := range keys {
		fmt.Fprintf(out, "  %-14s %.3f\n", k, scores[k])
	}
	return nil
}
