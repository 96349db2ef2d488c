package ids

import (
	"github.com/bnema/neuroledger/internal/domain"
	"github.com/bnema/neuroledger/internal/ports"
	"github.com/google/uuid"
)

// UUIDGenerator issues random (version 4) account ids in canonical 8-4-4-4-12 form.
type UUIDGenerator struct{}

var _ ports.IDGenerator = UUIDGenerator{}

func (UUIDGenerator) NewAccountID() domain.AccountID {
	return domain.AccountID(uuid.NewString())
}
