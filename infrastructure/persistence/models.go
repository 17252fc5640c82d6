package persistence

import "time"

// TransferModel represents a served download in the database.
type TransferModel struct {
	ID            int64     `gorm:"column:id;primaryKey;autoIncrement"`
	StorageID     string    `gorm:"column:storage_id;type:varchar(255);index;not null"`
	RepositoryID  string    `gorm:"column:repository_id;type:varchar(255);index;not null"`
	Path          string    `gorm:"column:path;type:text;not null"`
	RangeHeader   string    `gorm:"column:range_header;type:varchar(1024)"`
	Status        int       `gorm:"column:status;index;not null"`
	BytesSent     int64     `gorm:"column:bytes_sent;not null"`
	RemoteAddress string    `gorm:"column:remote_address;type:varchar(255)"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime;index"`
}

// TableName returns the table name.
func (TransferModel) TableName() string {
	return "transfers"
}
