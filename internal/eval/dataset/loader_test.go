package dataset

import (
	"os"
	"path/filepath"
	"testing"
)

func writeJSONL(t *testing.T, lines string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dataset.jsonl")
	if err := os.WriteFile(path, []byte(lines), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadJSONL(t *testing.T) {
	path := writeJSONL(t, `{"id":"r1","label":"Normal","image_path":"images/r1.png"}
{"id":"r2","label":"COVID-19","image_path":"images/r2.png"}

{"id":"r3","label":"Lung Opacity","image_path":"images/r3.png"}
`)

	loader := NewLoader(path)
	records, err := loader.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(records))
	}
	if records[0].ID != "r1" || records[0].Label != "Normal" {
		t.Errorf("Unexpected first record: %+v", records[0])
	}
}

func TestLoadSampleLimits(t *testing.T) {
	path := writeJSONL(t, `{"id":"r1","label":"Normal"}
{"id":"r2","label":"Normal"}
{"id":"r3","label":"Normal"}
`)

	loader := NewLoader(path)
	records, err := loader.LoadSample(2)
	if err != nil {
		t.Fatalf("LoadSample failed: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("Expected 2 records, got %d", len(records))
	}
}

func TestLoadMalformedJSONL(t *testing.T) {
	path := writeJSONL(t, `{"id":"r1","label":"Normal"}
{broken json
`)

	loader := NewLoader(path)
	if _, err := loader.Load(); err == nil {
		t.Error("Expected error for malformed JSONL")
	}
}

func TestLoadUnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dataset.csv")
	if err := os.WriteFile(path, []byte("id,label\n"), 0644); err != nil {
		t.Fatal(err)
	}

	loader := NewLoader(path)
	if _, err := loader.Load(); err == nil {
		t.Error("Expected error for unsupported format")
	}
}

func TestImageBytesEmbedded(t *testing.T) {
	record := XRayRecord{ID: "r1", Image: []byte{1, 2, 3}}

	data, err := record.ImageBytes("/nonexistent")
	if err != nil {
		t.Fatalf("ImageBytes failed: %v", err)
	}
	if len(data) != 3 {
		t.Errorf("Expected embedded bytes, got %v", data)
	}
}

func TestImageBytesFromPath(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "img.png"), []byte("pngdata"), 0644); err != nil {
		t.Fatal(err)
	}

	record := XRayRecord{ID: "r1", ImagePath: "img.png"}
	data, err := record.ImageBytes(dir)
	if err != nil {
		t.Fatalf("ImageBytes failed: %v", err)
	}
	if string(data) != "pngdata" {
		t.Errorf("Unexpected data: %q", data)
	}
}

func TestImageBytesMissing(t *testing.T) {
	record := XRayRecord{ID: "r1"}
	if _, err := record.ImageBytes("."); err == nil {
		t.Error("Expected error for record without image data or path")
	}
}
