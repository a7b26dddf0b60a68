package dataset

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCSVRoundTrip(t *testing.T) {
	f := New()
	if err := f.AddColumn("price", []float64{6.5, 7.25, 5}); err != nil {
		t.Fatalf("AddColumn failed: %v", err)
	}
	if err := f.AddColumn("sales", []float64{210, 180.5, 260}); err != nil {
		t.Fatalf("AddColumn failed: %v", err)
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "data.csv")
	if err := f.WriteCSV(path); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	loaded, err := LoadCSV(path)
	if err != nil {
		t.Fatalf("LoadCSV failed: %v", err)
	}

	if loaded.Len() != f.Len() {
		t.Fatalf("Expected %d rows, got %d", f.Len(), loaded.Len())
	}

	names := loaded.Columns()
	if names[0] != "price" || names[1] != "sales" {
		t.Errorf("Column order not preserved: %v", names)
	}

	for _, name := range names {
		want, _ := f.Column(name)
		got, _ := loaded.Column(name)
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("Column %q row %d: expected %v, got %v", name, i, want[i], got[i])
			}
		}
	}
}

func TestLoadCSVRejectsNonNumeric(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.csv")
	content := "a,b\n1.5,2.5\n3.0,oops\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if _, err := LoadCSV(path); err == nil {
		t.Error("Non-numeric cell should fail to load")
	}
}

func TestLoadCSVRejectsRaggedRows(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ragged.csv")
	content := "a,b\n1,2\n3\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if _, err := LoadCSV(path); err == nil {
		t.Error("Ragged row should fail to load")
	}
}

func TestLoadCSVHeaderOnly(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.csv")
	if err := os.WriteFile(path, []byte("a,b\n"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	f, err := LoadCSV(path)
	if err != nil {
		t.Fatalf("Header-only CSV should load: %v", err)
	}
	if f.Len() != 0 {
		t.Errorf("Expected 0 rows, got %d", f.Len())
	}
	if !f.HasColumn("a") || !f.HasColumn("b") {
		t.Error("Header columns should exist")
	}
}

func TestLoadCSVMissingFile(t *testing.T) {
	if _, err := LoadCSV("/nonexistent/path.csv"); err == nil {
		t.Error("Missing file should fail")
	}
}
