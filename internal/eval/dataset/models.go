package dataset

import (
	"fmt"
	"os"
	"path/filepath"
)

// XRayRecord is one labeled example from an evaluation dataset such as
// the COVID-19 Radiography Database. Records carry either embedded
// image bytes (parquet) or a path relative to the dataset file (JSONL).
type XRayRecord struct {
	ID        string `json:"id" parquet:"id"`
	Label     string `json:"label" parquet:"label"`
	ImagePath string `json:"image_path,omitempty" parquet:"image_path"`
	Image     []byte `json:"image,omitempty" parquet:"image"`
}

// ImageBytes returns the record's image, reading from ImagePath
// (resolved against baseDir) when the bytes are not embedded.
func (r *XRayRecord) ImageBytes(baseDir string) ([]byte, error) {
	if len(r.Image) > 0 {
		return r.Image, nil
	}
	if r.ImagePath == "" {
		return nil, fmt.Errorf("record %s has no image data or path", r.ID)
	}

	path := r.ImagePath
	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image for record %s: %w", r.ID, err)
	}
	return data, nil
}
