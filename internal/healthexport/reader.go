package healthexport

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"

	"github.com/fyrsmithlabs/stepwrap/internal/logging"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
)

var (
	// ErrMalformedDocument reports XML that is not well-formed: an empty or
	// truncated document, or markup or text outside the single root element.
	ErrMalformedDocument = errors.New("malformed export document")

	// ErrUnsupportedArchive reports a zip without an export.xml entry.
	ErrUnsupportedArchive = errors.New("unsupported export archive")
)

var utf8BOM = []byte("\ufeff")

// Option configures a Reader.
type Option func(*Reader)

// WithStepType overrides the Record type attribute that is extracted.
func WithStepType(t string) Option {
	return func(r *Reader) {
		if t != "" {
			r.stepType = t
		}
	}
}

// WithMetrics attaches Prometheus counters.
func WithMetrics(m *Metrics) Option {
	return func(r *Reader) { r.metrics = m }
}

// WithLogger sets the logger used for skipped-record trace entries.
func WithLogger(l *logging.Logger) Option {
	return func(r *Reader) {
		if l != nil {
			r.logger = l
		}
	}
}

// Stats summarizes a reader's progress.
type Stats struct {
	Scanned int
	Matched int
	Skipped int
}

// Reader is a forward-only iterator over step records. It is not safe for
// concurrent use.
type Reader struct {
	dec     *xml.Decoder
	closers []io.Closer

	stepType string
	metrics  *Metrics
	logger   *logging.Logger

	sawRoot    bool
	rootClosed bool
	depth      int
	done       bool
	closed  bool
	err     error
	stats   Stats
}

// NewReader reads step records from an uncompressed XML stream.
func NewReader(r io.Reader, opts ...Option) *Reader {
	rd := &Reader{
		stepType: DefaultStepType,
		logger:   logging.Nop(),
	}
	for _, opt := range opts {
		opt(rd)
	}
	rd.dec = xml.NewDecoder(&countingReader{r: r, m: rd.metrics})
	rd.dec.CharsetReader = charset.NewReaderLabel
	return rd
}

// Next returns the next valid step record, or io.EOF once the document ends.
// Any other error is a document-level failure and is returned again on every
// later call.
func (r *Reader) Next() (Record, error) {
	if r.err != nil {
		return Record{}, r.err
	}
	if r.done {
		return Record{}, io.EOF
	}

	for {
		tok, err := r.dec.Token()
		if errors.Is(err, io.EOF) {
			if !r.sawRoot {
				return Record{}, r.fail(fmt.Errorf("%w: no root element", ErrMalformedDocument))
			}
			r.done = true
			return Record{}, io.EOF
		}
		if err != nil {
			return Record{}, r.fail(r.wrap(err))
		}

		var start xml.StartElement
		switch t := tok.(type) {
		case xml.StartElement:
			if r.rootClosed {
				return Record{}, r.fail(fmt.Errorf("%w: content after root element", ErrMalformedDocument))
			}
			start = t
		case xml.EndElement:
			r.depth--
			if r.depth == 0 {
				r.rootClosed = true
			}
			continue
		case xml.CharData:
			if r.depth == 0 && len(bytes.TrimSpace(bytes.TrimPrefix(t, utf8BOM))) > 0 {
				return Record{}, r.fail(fmt.Errorf("%w: text outside root element", ErrMalformedDocument))
			}
			continue
		default:
			continue
		}

		r.sawRoot = true
		if start.Name.Local != "Record" {
			r.depth++
			continue
		}

		r.stats.Scanned++
		r.metrics.recordScanned()

		if typ, _ := attrValue(start.Attr, "type"); typ != r.stepType {
			r.depth++
			continue
		}

		// Only this element's attributes are held; children are consumed
		// unread up to the matching end tag.
		if err := r.dec.Skip(); err != nil {
			return Record{}, r.fail(r.wrap(err))
		}
		if r.depth == 0 {
			r.rootClosed = true
		}
		rec, reason := parseRecord(start.Attr)

		if reason != "" {
			r.stats.Skipped++
			r.metrics.recordSkipped(reason)
			if r.logger.Enabled(logging.TraceLevel) {
				line, _ := r.dec.InputPos()
				r.logger.Trace(context.Background(), "skipping step record",
					zap.String("reason", reason),
					zap.Int("line", line),
				)
			}
			continue
		}

		r.stats.Matched++
		r.metrics.recordMatched()
		return rec, nil
	}
}

// Stats returns counts so far.
func (r *Reader) Stats() Stats {
	return r.stats
}

// Close releases the underlying file and decompressors. It is safe to call
// more than once.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	r.done = true

	var errs []error
	for _, c := range r.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	r.closers = nil
	return errors.Join(errs...)
}

func (r *Reader) fail(err error) error {
	r.err = err
	return err
}

func (r *Reader) wrap(err error) error {
	var syntax *xml.SyntaxError
	if errors.As(err, &syntax) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	return fmt.Errorf("reading export: %w", err)
}

// countingReader feeds the bytes-read counter.
type countingReader struct {
	r io.Reader
	m *Metrics
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.m.addBytes(n)
	return n, err
}
