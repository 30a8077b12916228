package repository

import (
	"context"

	"github.com/user/html5-auditor/internal/entity"
)

// ValidatorRepository checks markup against the HTML conformance checker.
// Validate never fails; problems are reported inside the result.
type ValidatorRepository interface {
	Validate(ctx context.Context, html string) entity.ValidationResult
}

// ValidatorInstaller manages the one-time download of the checker archive.
type ValidatorInstaller interface {
	Installed() bool
	Install(ctx context.Context, progress func(downloaded, total int64)) error
}
