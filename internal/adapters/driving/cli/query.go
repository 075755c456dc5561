package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arkive-labs/arkive-cli/internal/core/domain"
)

var (
	queryLimit       int
	queryJSON        bool
	queryKinds       []string
	queryDocuments   []string
	queryPerDocument int
	queryMinScore    float64
)

var queryCmd = &cobra.Command{
	Use:   "query [text]",
	Short: "Search the vault by semantic similarity",
	Long: `Embeds the query text and returns the most similar chunks from the
vault, each paired with its owning document and similarity score.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().IntVarP(&queryLimit, "limit", "n", 10, "maximum number of results")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output results as JSON")
	queryCmd.Flags().StringSliceVar(&queryKinds, "kind", nil,
		"restrict to source kinds (web, pdf, note, trend, other)")
	queryCmd.Flags().StringSliceVar(&queryDocuments, "document", nil,
		"restrict to specific document IDs")
	queryCmd.Flags().IntVar(&queryPerDocument, "per-document", 0,
		"maximum results per document (0 = unlimited)")
	queryCmd.Flags().Float64Var(&queryMinScore, "min-score", 0,
		"minimum similarity score (0 = no threshold)")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	v, err := openVault(ctx)
	if err != nil {
		return err
	}

	opts := domain.QueryOptions{
		K:           queryLimit,
		DocumentIDs: queryDocuments,
		PerDocument: queryPerDocument,
		MinScore:    queryMinScore,
	}
	for _, k := range queryKinds {
		kind := domain.SourceKind(strings.ToLower(strings.TrimSpace(k)))
		if !kind.IsValid() {
			return fmt.Errorf("%w: unknown source kind %q", domain.ErrQuery, k)
		}
		opts.Kinds = append(opts.Kinds, kind)
	}
	// Settings supply defaults for anything not set on the command line.
	if !cmd.Flags().Changed("per-document") {
		opts.PerDocument = vaultSettings.PerDocument
	}
	if !cmd.Flags().Changed("min-score") {
		opts.MinScore = vaultSettings.MinScore
	}

	results, err := v.Query(ctx, args[0], opts)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if queryJSON {
		return outputQueryJSON(cmd, results)
	}
	return outputQueryText(cmd, results)
}

// queryResultJSON is the stable JSON output shape.
type queryResultJSON struct {
	Score      float64 `json:"score"`
	ChunkID    string  `json:"chunk_id"`
	DocumentID string  `json:"document_id"`
	Title      string  `json:"title"`
	Kind       string  `json:"kind"`
	Origin     string  `json:"origin,omitempty"`
	Position   int     `json:"position"`
	Content    string  `json:"content"`
}

func outputQueryJSON(cmd *cobra.Command, results []domain.QueryResult) error {
	out := make([]queryResultJSON, len(results))
	for i, r := range results {
		out[i] = queryResultJSON{
			Score:      r.Score,
			ChunkID:    r.Chunk.ID,
			DocumentID: r.Document.ID,
			Title:      r.Document.Title,
			Kind:       r.Document.Kind.String(),
			Origin:     r.Document.Origin,
			Position:   r.Chunk.Position,
			Content:    r.Chunk.Content,
		}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputQueryText(cmd *cobra.Command, results []domain.QueryResult) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	for i, r := range results {
		title := r.Document.Title
		if title == "" {
			title = r.Document.ID
		}
		cmd.Printf("  [%d] %s (%.3f)\n", i+1, title, r.Score)
		cmd.Printf("      %s · chunk %d\n", r.Document.Kind, r.Chunk.Position)
		cmd.Printf("      %s\n", snippet(r.Chunk.Content, 160))
		cmd.Println()
	}
	return nil
}

// snippet collapses whitespace and truncates at a rune boundary.
func snippet(text string, max int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "…"
}
