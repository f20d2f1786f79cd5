package shared

// MetadataSuffix is appended to the name of a packed file to name its metadata sidecar.
const MetadataSuffix = ".meta"

// MetadataVersion is the current version of the metadata format.
const MetadataVersion = 1

// StreamMetadata describes a packed file of fixed-width fields, persisted next to it.
type StreamMetadata struct {
	Version int `json:",omitempty"`

	Width     uint   `json:"width"`
	Count     uint64 `json:"count"`
	Bits      uint64 `json:"bits"`
	Finalized bool   `json:"finalized"`
}
