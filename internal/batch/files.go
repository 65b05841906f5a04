package batch

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Scan lists the documents directly inside dir whose extension matches one
// of exts, case-insensitively, in lexical order. Dotfiles and directories
// are ignored.
func Scan(dir string, exts []string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input folder %s: %w", dir, err)
	}
	var docs []string
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") || !e.Type().IsRegular() {
			continue
		}
		if hasExtension(name, exts) {
			docs = append(docs, filepath.Join(dir, name))
		}
	}
	sort.Strings(docs)
	return docs, nil
}

func hasExtension(name string, exts []string) bool {
	ext := filepath.Ext(name)
	for _, want := range exts {
		if strings.EqualFold(ext, want) {
			return true
		}
	}
	return false
}

// SplitIdentifiers derives the target identifiers encoded in a document's
// file name. Segments are trimmed and empty ones dropped.
func SplitIdentifiers(path, delimiter string) []string {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	var ids []string
	for _, part := range strings.Split(stem, delimiter) {
		if part = strings.TrimSpace(part); part != "" {
			ids = append(ids, part)
		}
	}
	return ids
}

// MoveUnique moves src into dir, creating dir when needed. A name collision
// is resolved by appending _1, _2, ... before the extension; an existing
// file is never overwritten. It returns the destination path.
func MoveUnique(src, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}
	base := filepath.Base(src)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	dst := filepath.Join(dir, base)
	for n := 1; ; n++ {
		_, err := os.Lstat(dst)
		if errors.Is(err, fs.ErrNotExist) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to check %s: %w", dst, err)
		}
		dst = filepath.Join(dir, stem+"_"+strconv.Itoa(n)+ext)
	}
	if err := os.Rename(src, dst); err != nil {
		return "", fmt.Errorf("failed to move %s to %s: %w", src, dst, err)
	}
	return dst, nil
}
