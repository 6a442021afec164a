package mmu

import (
	"fmt"
	"io"
	"os"

	"github.com/sarchlab/vmsim/mem/vm"
)

// A BackingStore is the random-access image that pages are loaded from. Page
// p starts at byte offset p * vm.PageSize.
type BackingStore interface {
	ReadAt(p []byte, off int64) (n int, err error)
}

// ExpectedBackingStoreSize is the number of bytes needed to hold every page of
// the address space.
const ExpectedBackingStoreSize = vm.NumPages * vm.PageSize

// A FileBackingStore is a BackingStore that reads an image file.
type FileBackingStore struct {
	file *os.File
	size int64
}

// OpenBackingStore opens the image file at path.
func OpenBackingStore(path string) (*FileBackingStore, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open backing store: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat backing store: %w", err)
	}

	return &FileBackingStore{file: f, size: info.Size()}, nil
}

// ReadAt reads from the image file.
func (s *FileBackingStore) ReadAt(p []byte, off int64) (int, error) {
	return s.file.ReadAt(p, off)
}

// Size returns the size of the image in bytes.
func (s *FileBackingStore) Size() int64 {
	return s.size
}

// Close closes the image file.
func (s *FileBackingStore) Close() error {
	return s.file.Close()
}

func readPage(
	store BackingStore,
	page vm.PageNumber,
	buf []byte,
) error {
	offset := int64(page) * vm.PageSize

	n, err := store.ReadAt(buf, offset)
	if n == len(buf) {
		return nil
	}

	if err == nil || err == io.EOF {
		err = io.ErrUnexpectedEOF
	}

	return &BackingStoreError{Page: page, Offset: offset, Err: err}
}

var _ io.ReaderAt = (*FileBackingStore)(nil)
