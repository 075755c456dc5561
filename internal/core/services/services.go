// Package services implements the core use cases: ingestion, querying,
// and vault lifecycle. Services depend only on the ports; adapters are
// injected at startup.
package services

import (
	"errors"

	"github.com/arkive-labs/arkive-cli/internal/core/domain"
)

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
