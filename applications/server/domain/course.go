package domain

// StorageKind tells whether a path lives on local disk or on a cloud-synced mount.
type StorageKind string

const (
	StorageLocal        StorageKind = "local"
	StorageCloudMounted StorageKind = "cloud_mounted"
)

type Video struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Path     string      `json:"path"`
	URI      string      `json:"uri"`
	BaseName string      `json:"baseName"`
	Size     int64       `json:"size"`
	Order    int         `json:"order"`
	Subtitle *Subtitle   `json:"subtitle"`
	Storage  StorageKind `json:"storage"`
}

type Subtitle struct {
	Path string `json:"path"`
	URI  string `json:"uri"`
}

type Resource struct {
	Name      string      `json:"name"`
	Path      string      `json:"path"`
	URI       string      `json:"uri"`
	Type      string      `json:"type"`
	Size      int64       `json:"size"`
	HumanSize string      `json:"humanSize"`
	Storage   StorageKind `json:"storage"`
}

// Listing is the result of scanning one course directory.
type Listing struct {
	Dir       string     `json:"dir"`
	Videos    []Video    `json:"videos"`
	Resources []Resource `json:"resources"`
}
