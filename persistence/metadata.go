package persistence

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spacemeshos/packio/shared"
)

// MetadataPath returns the path of the metadata sidecar of the packed file at path.
func MetadataPath(path string) string {
	return path + shared.MetadataSuffix
}

// SaveMetadata atomically writes the metadata sidecar of the packed file at path.
func SaveMetadata(path string, meta *shared.StreamMetadata) error {
	meta.Version = shared.MetadataVersion
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}
	return SaveFile(MetadataPath(path), data)
}

// LoadMetadata reads the metadata sidecar of the packed file at path.
func LoadMetadata(path string) (*shared.StreamMetadata, error) {
	filename := MetadataPath(path)
	data, err := os.ReadFile(filename)
	switch {
	case os.IsNotExist(err):
		return nil, shared.ErrMetadataFileMissing
	case err != nil:
		return nil, fmt.Errorf("could not read metadata file: %w", err)
	}

	meta := &shared.StreamMetadata{}
	if err := json.Unmarshal(data, meta); err != nil {
		return nil, fmt.Errorf("failed to decode metadata: %w", err)
	}
	if meta.Version > shared.MetadataVersion {
		return nil, fmt.Errorf("metadata version %d is newer than the latest supported version %d", meta.Version, shared.MetadataVersion)
	}
	return meta, nil
}
