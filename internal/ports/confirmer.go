package ports

import "github.com/aalvaropc/topcontainers/internal/domain"

// Confirmer asks the operator to approve a data-modifying run.
type Confirmer interface {
	Confirm(prompt string) (domain.Confirmation, error)
}
