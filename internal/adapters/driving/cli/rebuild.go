package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the vector index from the document store",
	Long: `Re-derives the whole index from the stored documents and chunks and
atomically swaps it in. Useful after changing the index kind or when a
snapshot was lost. Stored embeddings are reused where possible;
anything else is re-embedded.`,
	RunE: runRebuild,
}

func init() {
	rootCmd.AddCommand(rebuildCmd)
}

func runRebuild(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	v, err := openVault(ctx)
	if err != nil {
		return err
	}

	if err := v.Rebuild(ctx); err != nil {
		return fmt.Errorf("rebuild failed: %w", err)
	}
	if err := v.Save(ctx); err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}

	status, err := v.Status(ctx)
	if err != nil {
		return fmt.Errorf("status failed: %w", err)
	}
	cmd.Printf("Rebuilt index with %d vectors from %d documents.\n",
		status.Vectors, status.Documents)
	return nil
}
