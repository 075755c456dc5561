package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/arkive-labs/arkive-cli/internal/core/domain"
	"github.com/arkive-labs/arkive-cli/internal/producers/filesystem"
)

// ingester is the slice of the vault surface the watch loop needs.
type ingester interface {
	Ingest(ctx context.Context, doc *domain.Document) (string, error)
}

var ingestWatch bool

var ingestCmd = &cobra.Command{
	Use:   "ingest [path]",
	Short: "Ingest documents from a directory",
	Long: `Walks the given directory, ingesting every plain-text and Markdown
file into the vault. Each file is chunked, embedded, and indexed.
Re-ingesting an unchanged file is a no-op; a changed file replaces its
previous chunks and vectors.

With --watch, keeps running and ingests files as they are created or
modified, until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVarP(&ingestWatch, "watch", "w", false,
		"keep watching the directory for changes")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	v, err := openVault(ctx)
	if err != nil {
		return err
	}

	producer, err := filesystem.New(args[0])
	if err != nil {
		return err
	}

	docs, err := producer.Produce(ctx)
	if err != nil {
		return fmt.Errorf("collecting documents: %w", err)
	}
	if len(docs) == 0 && !ingestWatch {
		cmd.Println("No ingestible files found.")
		return nil
	}

	report, err := v.IngestAll(ctx, docs)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	cmd.Printf("Ingested %d document(s).\n", len(report.Ingested))
	for _, failure := range report.Failed {
		cmd.Printf("  skipped %s: %v\n", failure.DocumentID, failure.Err)
	}

	if !ingestWatch {
		return nil
	}
	return watchAndIngest(ctx, cmd, v, producer)
}

// watchAndIngest ingests documents as the producer emits them, until
// the user interrupts.
func watchAndIngest(ctx context.Context, cmd *cobra.Command, v ingester, producer *filesystem.Producer) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	events, err := producer.Watch(ctx)
	if err != nil {
		return err
	}

	cmd.Println("Watching for changes. Press Ctrl+C to stop.")
	for doc := range events {
		id, err := v.Ingest(ctx, &doc)
		if err != nil {
			cmd.Printf("  skipped %s: %v\n", doc.Origin, err)
			continue
		}
		cmd.Printf("  ingested %s (%s)\n", doc.Title, id)
	}
	return nil
}
