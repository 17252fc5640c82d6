package persistence

import "github.com/helixml/byteserve/domain/transfer"

// TransferMapper maps between domain Transfer and persistence TransferModel.
type TransferMapper struct{}

// ToDomain converts a TransferModel to a domain Transfer.
func (m TransferMapper) ToDomain(e TransferModel) transfer.Transfer {
	return transfer.ReconstructTransfer(
		e.ID,
		e.StorageID,
		e.RepositoryID,
		e.Path,
		e.RangeHeader,
		e.Status,
		e.BytesSent,
		e.RemoteAddress,
		e.CreatedAt,
	)
}

// ToModel converts a domain Transfer to a TransferModel.
func (m TransferMapper) ToModel(t transfer.Transfer) TransferModel {
	return TransferModel{
		ID:            t.ID(),
		StorageID:     t.StorageID(),
		RepositoryID:  t.RepositoryID(),
		Path:          t.Path(),
		RangeHeader:   t.RangeHeader(),
		Status:        t.Status(),
		BytesSent:     t.BytesSent(),
		RemoteAddress: t.RemoteAddress(),
		CreatedAt:     t.CreatedAt(),
	}
}
