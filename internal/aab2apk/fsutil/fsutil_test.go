package fsutil

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestValidateAAB(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name string
		file string
		data []byte
		want bool
	}{
		{"Valid Bundle", "app.aab", []byte("PK\x03\x04rest"), true},
		{"Wrong Magic", "app.aab", []byte("XX\x03\x04"), false},
		{"Too Short", "app.aab", []byte("P"), false},
		{"Empty", "app.aab", []byte{}, false},
		{"Wrong Extension", "app.zip", []byte("PK\x03\x04"), false},
		{"Upper Extension", "app.AAB", []byte("PK\x03\x04"), false},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := filepath.Join(tmpDir, strings.Repeat("d", i+1))
			path := filepath.Join(dir, tt.file)
			writeFile(t, path, tt.data)
			if got := ValidateAAB(path); got != tt.want {
				t.Errorf("ValidateAAB(%s) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}

	if ValidateAAB(filepath.Join(tmpDir, "missing.aab")) {
		t.Error("Expected missing file to be invalid")
	}

	dirAAB := filepath.Join(tmpDir, "folder.aab")
	os.Mkdir(dirAAB, 0755)
	if ValidateAAB(dirAAB) {
		t.Error("Expected directory to be invalid")
	}
}

func TestValidateKeystore(t *testing.T) {
	tmpDir := t.TempDir()

	ks := filepath.Join(tmpDir, "release.jks")
	writeFile(t, ks, []byte{0xfe, 0xed})
	if !ValidateKeystore(ks) {
		t.Error("Expected non-empty keystore to be valid")
	}

	empty := filepath.Join(tmpDir, "empty.jks")
	writeFile(t, empty, nil)
	if ValidateKeystore(empty) {
		t.Error("Expected empty keystore to be invalid")
	}

	if ValidateKeystore(tmpDir) {
		t.Error("Expected directory to be invalid")
	}
}

func TestCreateDirectories_Idempotent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b", "c")

	if err := CreateDirectories(dir); err != nil {
		t.Fatalf("First CreateDirectories failed: %v", err)
	}
	if err := CreateDirectories(dir); err != nil {
		t.Fatalf("Second CreateDirectories failed: %v", err)
	}
	if !IsDirectory(dir) {
		t.Error("Expected directory to exist")
	}
}

func TestCreateDirectories_FileInTheWay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file")
	writeFile(t, path, []byte("x"))

	if err := CreateDirectories(path); err == nil {
		t.Error("Expected error when a file occupies the path")
	}
}

func TestTempDirectoryLifecycle(t *testing.T) {
	root := t.TempDir()

	first, err := CreateTempDirectory(root)
	if err != nil {
		t.Fatalf("CreateTempDirectory failed: %v", err)
	}
	if !strings.HasPrefix(filepath.Base(first), tempPrefix) {
		t.Errorf("Unexpected temp dir name: %s", first)
	}
	if filepath.Dir(first) != root {
		t.Errorf("Expected temp dir under %s, got %s", root, first)
	}

	// A second directory in the same second must not collide with the first.
	second, err := CreateTempDirectory(root)
	if err != nil {
		t.Fatalf("Second CreateTempDirectory failed: %v", err)
	}
	if second == first {
		t.Errorf("Expected distinct temp dirs, both are %s", first)
	}

	writeFile(t, filepath.Join(first, "nested", "file.txt"), []byte("data"))
	RemoveTempDirectory(first)
	RemoveTempDirectory(second)

	if FileExists(first) || FileExists(second) {
		t.Error("Expected temp dirs to be removed")
	}

	// Removing twice or removing nothing is silent.
	RemoveTempDirectory(first)
	RemoveTempDirectory("")
}

func TestMoveAndCopyFile(t *testing.T) {
	tmpDir := t.TempDir()
	src := filepath.Join(tmpDir, "src.apk")
	payload := []byte("apk-bytes")
	writeFile(t, src, payload)

	copied := filepath.Join(tmpDir, "copy.apk")
	writeFile(t, copied, []byte("old content that is longer"))
	if err := CopyFile(src, copied); err != nil {
		t.Fatalf("CopyFile failed: %v", err)
	}
	got, _ := os.ReadFile(copied)
	if !bytes.Equal(got, payload) {
		t.Errorf("Expected overwritten copy %q, got %q", payload, got)
	}

	moved := filepath.Join(tmpDir, "moved.apk")
	if err := MoveFile(src, moved); err != nil {
		t.Fatalf("MoveFile failed: %v", err)
	}
	if FileExists(src) {
		t.Error("Expected source to be gone after move")
	}
	got, _ = os.ReadFile(moved)
	if !bytes.Equal(got, payload) {
		t.Errorf("Expected moved content %q, got %q", payload, got)
	}

	if err := MoveFile(filepath.Join(tmpDir, "missing"), moved); err == nil {
		t.Error("Expected error moving a missing file")
	}
}

func TestFindFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "splits", "base-master.apk"), []byte("a"))
	writeFile(t, filepath.Join(root, "splits", "base-xxhdpi.apk"), []byte("b"))
	writeFile(t, filepath.Join(root, "toc.pb"), []byte("c"))
	writeFile(t, filepath.Join(root, "universal.apk"), []byte("d"))
	os.MkdirAll(filepath.Join(root, "dir.apk"), 0755)

	found, err := FindFiles(root, ".apk")
	if err != nil {
		t.Fatalf("FindFiles failed: %v", err)
	}
	if len(found) != 3 {
		t.Fatalf("Expected 3 APKs, got %d: %v", len(found), found)
	}
	if filepath.Base(found[0]) != "base-master.apk" {
		t.Errorf("Expected lexical order, got %v", found)
	}
}
