package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var removeCmd = &cobra.Command{
	Use:   "remove [document-id]",
	Short: "Remove a document from the vault",
	Long: `Deletes the document, its chunks, and its index vectors. The
document ID is printed by ingest and query --json.`,
	Args: cobra.ExactArgs(1),
	RunE: runRemove,
}

func init() {
	rootCmd.AddCommand(removeCmd)
}

func runRemove(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	v, err := openVault(ctx)
	if err != nil {
		return err
	}

	if err := v.Remove(ctx, args[0]); err != nil {
		return fmt.Errorf("remove failed: %w", err)
	}
	cmd.Printf("Removed document %s.\n", args[0])
	return nil
}
