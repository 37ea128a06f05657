// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package document

import (
	"fmt"
	"os"
	"path/filepath"
)

// MemoryBuffer is an in-memory Buffer.
type MemoryBuffer struct {
	text       string
	start, end int

	// Scrolled counts ScrollToSelection calls.
	Scrolled int
}

// NewMemoryBuffer returns a buffer holding text with the caret at the end.
func NewMemoryBuffer(text string) *MemoryBuffer {
	return &MemoryBuffer{text: text, start: len(text), end: len(text)}
}

func (b *MemoryBuffer) Text() string { return b.text }

// SetText replaces the text and clamps the selection to it.
func (b *MemoryBuffer) SetText(text string) error {
	b.text = text
	b.SetSelection(b.start, b.end)
	return nil
}

func (b *MemoryBuffer) SetSelection(start, end int) {
	b.start = clamp(start, 0, len(b.text))
	b.end = clamp(end, b.start, len(b.text))
}

func (b *MemoryBuffer) Selection() (int, int) { return b.start, b.end }

func (b *MemoryBuffer) Caret() int { return b.start }

func (b *MemoryBuffer) ScrollToSelection() { b.Scrolled++ }

// FileBuffer is a Buffer backed by a file. SetText writes the file
// atomically through a temporary file in the same directory.
type FileBuffer struct {
	MemoryBuffer
	path string
	perm os.FileMode
}

// OpenFile reads path into a buffer. The caret starts at the end.
func OpenFile(path string) (*FileBuffer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	perm := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}
	return &FileBuffer{MemoryBuffer: *NewMemoryBuffer(string(data)), path: path, perm: perm}, nil
}

// Path returns the backing file path.
func (b *FileBuffer) Path() string { return b.path }

// SetText writes text to the file and updates the buffer. The buffer is
// unchanged when the write fails.
func (b *FileBuffer) SetText(text string) error {
	if err := writeAtomic(b.path, []byte(text), b.perm); err != nil {
		return err
	}
	return b.MemoryBuffer.SetText(text)
}

func writeAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("setting mode on %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
