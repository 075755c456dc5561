// Command arkive is a local-first personal knowledge vault.
// It ingests documents, embeds them into vectors, and answers
// semantic similarity queries without requiring network access.
package main

import "github.com/arkive-labs/arkive-cli/internal/adapters/driving/cli"

func main() {
	cli.Execute()
}
