package healthexport

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
)

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zipMagic  = []byte("PK\x03\x04")
)

const readBufferSize = 256 << 10

// Open opens an export file for streaming. The format is chosen from the
// leading bytes: gzip, zip (the Health app's export.zip) or plain XML.
func Open(name string, opts ...Option) (*Reader, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("opening export: %w", err)
	}

	br := bufio.NewReaderSize(f, readBufferSize)
	magic, err := br.Peek(len(zipMagic))
	if err != nil && err != io.EOF {
		f.Close()
		return nil, fmt.Errorf("reading export header: %w", err)
	}

	switch {
	case bytes.HasPrefix(magic, gzipMagic):
		gz, err := gzip.NewReader(br)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("opening gzip export: %w", err)
		}
		r := NewReader(gz, opts...)
		r.closers = []io.Closer{gz, f}
		return r, nil

	case bytes.HasPrefix(magic, zipMagic):
		rc, err := openZipEntry(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		r := NewReader(bufio.NewReaderSize(rc, readBufferSize), opts...)
		r.closers = []io.Closer{rc, f}
		return r, nil

	default:
		r := NewReader(br, opts...)
		r.closers = []io.Closer{f}
		return r, nil
	}
}

// openZipEntry finds export.xml inside the archive. The Health app nests it
// under apple_health_export/ next to export_cda.xml, which is ignored.
func openZipEntry(f *os.File) (io.ReadCloser, error) {
	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat export archive: %w", err)
	}
	zr, err := zip.NewReader(f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedArchive, err)
	}

	var entry *zip.File
	for _, zf := range zr.File {
		if zf.FileInfo().IsDir() || !strings.EqualFold(path.Base(zf.Name), "export.xml") {
			continue
		}
		// Prefer the shallowest match.
		if entry == nil || strings.Count(zf.Name, "/") < strings.Count(entry.Name, "/") {
			entry = zf
		}
	}
	if entry == nil {
		return nil, fmt.Errorf("%w: no export.xml entry", ErrUnsupportedArchive)
	}

	rc, err := entry.Open()
	if err != nil {
		return nil, fmt.Errorf("opening %s in archive: %w", entry.Name, err)
	}
	return rc, nil
}
