package media

import (
	"time"

	"github.com/google/uuid"
)

// StorageType says where an item's bytes live.
type StorageType string

const (
	StorageCloud StorageType = "cloud"
	StorageLocal StorageType = "local"
)

// Item is the unified media representation attached to modern-system
// listings. Exactly one of URL and LocalKey is meaningful: cloud items carry
// a URL, local videos awaiting upload carry a LocalKey.
type Item struct {
	ID           string      `json:"id"`
	Type         Kind        `json:"type"`
	StorageType  StorageType `json:"storage_type"`
	URL          string      `json:"url,omitempty"`
	LocalKey     string      `json:"local_key,omitempty"`
	ThumbnailURL string      `json:"thumbnail_url,omitempty"`
	IsCover      bool        `json:"is_cover"`
	UploadedAt   time.Time   `json:"uploaded_at"`
	FileName     string      `json:"file_name"`
	FileSize     int64       `json:"file_size"`
	FileType     string      `json:"file_type"`
}

// NewItem builds a media item with a fresh ID and upload timestamp. The kind
// is classified from the file name.
func NewItem(fileName, fileType string, fileSize int64) Item {
	return Item{
		ID:         uuid.NewString(),
		Type:       Classify(fileName),
		UploadedAt: time.Now().UTC(),
		FileName:   fileName,
		FileSize:   fileSize,
		FileType:   fileType,
	}
}

// Stored reports whether the item's bytes are reachable for this storage
// type: cloud items need a URL, local items need a key.
func (it Item) Stored() bool {
	switch it.StorageType {
	case StorageCloud:
		return it.URL != ""
	case StorageLocal:
		return it.LocalKey != ""
	default:
		return false
	}
}
