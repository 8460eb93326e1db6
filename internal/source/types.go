package source

import "io/fs"

// FileFlags encodes metadata about a loaded file.
type FileFlags uint8 // метаданные

const (
	// FileVirtual indicates the file was added from memory (test, stdin, etc.).
	FileVirtual FileFlags = 1 << iota // добавлен не с диска (тест, stdin)
	// FileHadBOM means a byte order mark was decoded away.
	FileHadBOM
	// FileNormalizedCRLF means "\r\n" terminators were rewritten to "\n".
	FileNormalizedCRLF
	// FileTranscoded means the input was UTF-16 and was converted to UTF-8.
	FileTranscoded
)

// File is the content of one model file, normalized to UTF-8 with "\n"
// terminators. Raw keeps the bytes exactly as read so callers can tell
// whether a rewrite is needed.
type File struct {
	Path    string
	Raw     []byte
	Content []byte
	Hash    [32]byte // sha256 of Raw
	Flags   FileFlags
	Mode    fs.FileMode
}
