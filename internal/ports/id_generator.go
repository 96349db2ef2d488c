package ports

import "github.com/bnema/neuroledger/internal/domain"

// IDGenerator allocates account identifiers.
type IDGenerator interface {
	NewAccountID() domain.AccountID
}
