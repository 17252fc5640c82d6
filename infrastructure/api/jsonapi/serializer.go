package jsonapi

import (
	"strconv"

	"github.com/helixml/byteserve/domain/transfer"
)

// TypeTransfer is the resource type of transfer log entries.
const TypeTransfer = "transfer"

// TransfersPath is where transfer resources live.
const TransfersPath = "/api/v1/transfers"

// TransferAttributes represents transfer attributes in JSON:API format.
type TransferAttributes struct {
	StorageID     string   `json:"storage_id"`
	RepositoryID  string   `json:"repository_id"`
	Path          string   `json:"path"`
	Range         string   `json:"range,omitempty"`
	Status        int      `json:"status"`
	BytesSent     int64    `json:"bytes_sent"`
	RemoteAddress string   `json:"remote_address,omitempty"`
	CreatedAt     DateTime `json:"created_at"`
}

// TransferResource converts a transfer into a JSON:API resource with a self
// link.
func TransferResource(t transfer.Transfer) *Resource {
	id := strconv.FormatInt(t.ID(), 10)
	resource := NewResource(TypeTransfer, id, TransferAttributes{
		StorageID:     t.StorageID(),
		RepositoryID:  t.RepositoryID(),
		Path:          t.Path(),
		Range:         t.RangeHeader(),
		Status:        t.Status(),
		BytesSent:     t.BytesSent(),
		RemoteAddress: t.RemoteAddress(),
		CreatedAt:     DateTime(t.CreatedAt()),
	})
	resource.Links = &Links{Self: TransfersPath + "/" + id}
	return resource
}

// TransferResources converts transfers into JSON:API resources.
func TransferResources(transfers []transfer.Transfer) []*Resource {
	resources := make([]*Resource, 0, len(transfers))
	for _, t := range transfers {
		resources = append(resources, TransferResource(t))
	}
	return resources
}
