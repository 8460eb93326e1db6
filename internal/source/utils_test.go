package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRelativePathOutsideBaseFallsBackToAbsolute(t *testing.T) {
	tmp := t.TempDir()

	baseDir := filepath.Join(tmp, "base")
	otherDir := filepath.Join(tmp, "other")

	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		t.Fatalf("failed to create base dir: %v", err)
	}
	if err := os.MkdirAll(otherDir, 0o755); err != nil {
		t.Fatalf("failed to create other dir: %v", err)
	}

	target := filepath.Join(otherDir, "model")

	got, err := RelativePath(target, baseDir)
	if err != nil {
		t.Fatalf("RelativePath returned error: %v", err)
	}

	want := normalizePath(target)
	if got != want {
		t.Fatalf("expected absolute fallback %q, got %q", want, got)
	}
}

func TestRelativePathInsideBaseStaysRelative(t *testing.T) {
	tmp := t.TempDir()

	baseDir := filepath.Join(tmp, "base")
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		t.Fatalf("failed to create base dir: %v", err)
	}

	target := filepath.Join(baseDir, "nested", "model")
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		t.Fatalf("failed to create nested dir: %v", err)
	}

	got, err := RelativePath(target, baseDir)
	if err != nil {
		t.Fatalf("RelativePath returned error: %v", err)
	}

	want := normalizePath(filepath.Join("nested", "model"))
	if got != want {
		t.Fatalf("expected relative path %q, got %q", want, got)
	}
}

func TestNormalizeCRLF(t *testing.T) {
	original := []byte("a\r\nb\rc\r\n")
	normalized, changed := normalizeCRLF(original)
	if !changed {
		t.Fatal("Expected CRLF normalization to be detected")
	}
	if want := "a\nb\rc\n"; string(normalized) != want {
		t.Fatalf("Expected normalized content %q, got %q", want, string(normalized))
	}

	plain := []byte("a\nb\n")
	if out, changed := normalizeCRLF(plain); changed || string(out) != "a\nb\n" {
		t.Fatalf("Expected untouched content, got %q (changed=%v)", out, changed)
	}
}

func TestDecodeUTF8BOM(t *testing.T) {
	raw := []byte{0xEF, 0xBB, 0xBF, 'x', '\n'}
	out, flags, err := decodeUTF8(raw)
	if err != nil {
		t.Fatalf("decodeUTF8: %v", err)
	}
	if flags&FileHadBOM == 0 || flags&FileTranscoded != 0 {
		t.Fatalf("unexpected flags %b", flags)
	}
	if string(out) != "x\n" {
		t.Fatalf("Expected content without BOM %q, got %q", "x\n", string(out))
	}
}

func TestDecodeUTF16LE(t *testing.T) {
	// BOM + "a\n" in UTF-16LE.
	raw := []byte{0xFF, 0xFE, 'a', 0x00, '\n', 0x00}
	out, flags, err := decodeUTF8(raw)
	if err != nil {
		t.Fatalf("decodeUTF8: %v", err)
	}
	if flags&FileTranscoded == 0 {
		t.Fatalf("Expected FileTranscoded flag, got %b", flags)
	}
	if string(out) != "a\n" {
		t.Fatalf("Expected %q, got %q", "a\n", string(out))
	}
}

func TestDecodeWithoutBOMIsUntouched(t *testing.T) {
	raw := []byte("caf\xc3\xa9  [x]\n")
	out, flags, err := decodeUTF8(raw)
	if err != nil {
		t.Fatalf("decodeUTF8: %v", err)
	}
	if flags != 0 || string(out) != string(raw) {
		t.Fatalf("Expected untouched content, got %q (flags %b)", out, flags)
	}
}
