package service

import (
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
)

// FileSource is one selected file. Its content is only read by the job that analyzes it.
type FileSource interface {
	Name() string
	Size() int64
	Open() (io.ReadCloser, error)
}

type multipartSource struct {
	header *multipart.FileHeader
}

// NewMultipartSource wraps an uploaded form file
func NewMultipartSource(header *multipart.FileHeader) FileSource {
	return multipartSource{header: header}
}

func (s multipartSource) Name() string { return s.header.Filename }
func (s multipartSource) Size() int64  { return s.header.Size }

func (s multipartSource) Open() (io.ReadCloser, error) {
	return s.header.Open()
}

type pathSource struct {
	path string
	size int64
}

// NewPathSource wraps a file on disk; the record is named after its base name
func NewPathSource(path string) (FileSource, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	return pathSource{path: path, size: info.Size()}, nil
}

func (s pathSource) Name() string { return filepath.Base(s.path) }
func (s pathSource) Size() int64  { return s.size }

func (s pathSource) Open() (io.ReadCloser, error) {
	return os.Open(s.path)
}
