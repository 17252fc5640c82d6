package persistence

import (
	"context"
	"fmt"

	"github.com/helixml/byteserve/domain/transfer"
	"github.com/helixml/byteserve/internal/database"
	"gorm.io/gorm"
)

// TransferStore implements transfer.Store using GORM.
type TransferStore struct {
	database.Repository[transfer.Transfer, TransferModel]
}

// NewTransferStore creates a new TransferStore.
func NewTransferStore(db database.Database) TransferStore {
	return TransferStore{
		Repository: database.NewRepository[transfer.Transfer, TransferModel](db, TransferMapper{}, "transfer"),
	}
}

// Save creates or updates a transfer.
func (s TransferStore) Save(ctx context.Context, t transfer.Transfer) (transfer.Transfer, error) {
	model := s.Mapper().ToModel(t)

	var result *gorm.DB
	if t.ID() == 0 {
		result = s.DB(ctx).Create(&model)
	} else {
		result = s.DB(ctx).Save(&model)
	}

	if result.Error != nil {
		return transfer.Transfer{}, fmt.Errorf("save transfer: %w", result.Error)
	}
	return s.Mapper().ToDomain(model), nil
}

var _ transfer.Store = TransferStore{}
