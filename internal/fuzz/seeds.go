package fuzztests

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

const (
	maxSeedBytes = 64 << 10 // 64 KiB, ограничение для тестового корпуса
	maxFuzzInput = 256 << 10
)

var builtinSeeds = []string{
	"",
	"\n",
	"# comment\n\nModel A  desc\n",
	"Model A  [x]  a\nModel B  b\n",
	"a\r\nb  [c]  d\r\n",
	"\xef\xbb\xbfModel  [bom]  x\n",
	"\xff\xfeM\x00 \x00 \x00x\x00\n\x00",
	"x  [a]\ny  [bb]  z  extra  columns  here\n",
}

func addCorpusSeeds(f *testing.F) {
	for _, seed := range builtinSeeds {
		f.Add([]byte(seed))
	}
	addTestdataSeeds(f)
}

func addTestdataSeeds(f *testing.F) {
	root := filepath.Join("..", "..", "testdata")
	if _, err := os.Stat(root); err != nil {
		return
	}
	// проходим по дереву testdata, добавляем все файлы model
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() || d.Name() != "model" {
			return nil
		}
		// #nosec G304 -- path comes from repository testdata walk
		src, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		f.Add(clampSeed(src))
		return nil
	})
}

func clampSeed(src []byte) []byte {
	if len(src) <= maxSeedBytes {
		return append([]byte(nil), src...)
	}
	return append([]byte(nil), src[:maxSeedBytes]...)
}
