package source

import (
	"crypto/sha256"
	"fmt"
	"os"

	"fortio.org/safecast"
)

// maxFileSize bounds what Load accepts; the whole file is held in memory.
const maxFileSize = 1 << 30

// Load reads a file from disk and normalizes BOM and CRLF.
func Load(path string) (*File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s: is a directory", path)
	}
	size, err := safecast.Conv[uint64](info.Size())
	if err != nil {
		return nil, fmt.Errorf("%s: bad file size: %w", path, err)
	}
	if size > maxFileSize {
		return nil, fmt.Errorf("%s: file too large (%d bytes)", path, size)
	}

	// #nosec G304 -- path is provided by the caller
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := newFile(path, raw, 0)
	if err != nil {
		return nil, err
	}
	f.Mode = info.Mode()
	return f, nil
}

// FromBytes wraps in-memory content (stdin, tests) as a virtual file.
func FromBytes(name string, raw []byte) (*File, error) {
	return newFile(name, raw, FileVirtual)
}

func newFile(path string, raw []byte, flags FileFlags) (*File, error) {
	content, decodeFlags, err := decodeUTF8(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	flags |= decodeFlags

	content, hadCRLF := normalizeCRLF(content)
	if hadCRLF {
		flags |= FileNormalizedCRLF
	}

	return &File{
		Path:    normalizePath(path),
		Raw:     raw,
		Content: content,
		Hash:    sha256.Sum256(raw),
		Flags:   flags,
		Mode:    0o644,
	}, nil
}
