package document

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

const (
	gzipSuffix = ".gz"
	zstdSuffix = ".zst"
)

// decompress wraps rd according to the suffix of name.
func decompress(rd io.Reader, name string) (io.ReadCloser, error) {
	switch {
	case strings.HasSuffix(name, gzipSuffix):
		return gzip.NewReader(rd)
	case strings.HasSuffix(name, zstdSuffix):
		dec, err := zstd.NewReader(rd)
		if err != nil {
			return nil, err
		}
		return dec.IOReadCloser(), nil
	default:
		return io.NopCloser(rd), nil
	}
}

// fileWriter flushes the compressor, if any, before closing the file.
type fileWriter struct {
	io.Writer
	compressor io.Closer
	file       *os.File
}

func (w *fileWriter) Close() error {
	if w.compressor != nil {
		if err := w.compressor.Close(); err != nil {
			w.file.Close()
			return err
		}
	}
	return w.file.Close()
}

// Create opens path for writing a document, compressing the stream when
// the name ends in .gz or .zst.
func Create(path string) (io.WriteCloser, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("cannot create output %s: %w", path, err)
	}
	switch {
	case strings.HasSuffix(path, gzipSuffix):
		gz := gzip.NewWriter(f)
		return &fileWriter{Writer: gz, compressor: gz, file: f}, nil
	case strings.HasSuffix(path, zstdSuffix):
		enc, err := zstd.NewWriter(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		return &fileWriter{Writer: enc, compressor: enc, file: f}, nil
	default:
		return &fileWriter{Writer: f, file: f}, nil
	}
}
