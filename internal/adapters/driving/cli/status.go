package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arkive-labs/arkive-cli/internal/core/domain"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the vault's index state and contents",
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "output status as JSON")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	v, err := openVault(ctx)
	if err != nil {
		return err
	}

	status, err := v.Status(ctx)
	if err != nil {
		return fmt.Errorf("status failed: %w", err)
	}

	if statusJSON {
		return outputStatusJSON(cmd, status)
	}
	return outputStatusText(cmd, status)
}

type statusOutput struct {
	Profile   string   `json:"profile"`
	State     string   `json:"state"`
	Metric    string   `json:"metric"`
	Dimension int      `json:"dimension"`
	Documents int      `json:"documents"`
	Chunks    int      `json:"chunks"`
	Vectors   int      `json:"vectors"`
	Titles    []string `json:"titles"`
}

func outputStatusJSON(cmd *cobra.Command, status *domain.Status) error {
	data, err := json.MarshalIndent(statusOutput{
		Profile:   vaultSettings.Profile,
		State:     status.State.String(),
		Metric:    status.Metric.String(),
		Dimension: status.Dimension,
		Documents: status.Documents,
		Chunks:    status.Chunks,
		Vectors:   status.Vectors,
		Titles:    status.Titles,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding status: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputStatusText(cmd *cobra.Command, status *domain.Status) error {
	cmd.Printf("Profile:   %s\n", vaultSettings.Profile)
	cmd.Printf("State:     %s\n", status.State)
	cmd.Printf("Metric:    %s\n", status.Metric)
	cmd.Printf("Dimension: %d\n", status.Dimension)
	cmd.Printf("Documents: %d\n", status.Documents)
	cmd.Printf("Chunks:    %d (indexed vectors: %d)\n", status.Chunks, status.Vectors)

	if len(status.Titles) > 0 {
		cmd.Println("\nDocuments:")
		for _, title := range status.Titles {
			if title == "" {
				title = "(untitled)"
			}
			cmd.Printf("  - %s\n", title)
		}
	}
	return nil
}
