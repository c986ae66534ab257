package csvimport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

var (
	// ErrNoFile is returned when an upload has no body.
	ErrNoFile = errors.New("no file provided")

	// ErrUnsupportedFile is returned for file types other than .csv and .xlsx.
	ErrUnsupportedFile = errors.New("unsupported file type")
)

// Upload is one user-selected file.
type Upload struct {
	Name string
	Body io.Reader
}

// Batch is the parsed content of one upload.
// Normalized is nil when no template headers were supplied.
type Batch struct {
	FileName   string
	Raw        []RawRow
	Normalized []NormalizedRow
}

// IsNormalized reports whether the rows were re-keyed to a template.
func (b Batch) IsNormalized() bool {
	return b.Normalized != nil
}

// Len returns the number of data rows.
func (b Batch) Len() int {
	return len(b.Raw)
}

// Rows returns the normalized rows when present, otherwise the raw rows.
func (b Batch) Rows() []Fields {
	out := make([]Fields, 0, len(b.Raw))
	if b.IsNormalized() {
		for _, r := range b.Normalized {
			out = append(out, r.Fields)
		}
		return out
	}
	for _, r := range b.Raw {
		out = append(out, r.Fields)
	}
	return out
}

// Consumer receives the rows of one upload.
type Consumer func(Batch) error

// Adapter reads uploads and hands their rows to a consumer.
// Each call handles a single file independently; no state is kept between calls.
type Adapter struct {
	opts ReadOptions
}

// NewAdapter creates an Adapter with the given read options.
func NewAdapter(opts ReadOptions) *Adapter {
	return &Adapter{opts: opts}
}

// Load reads and parses the upload. Rows are normalized only when template is non-empty.
func (a *Adapter) Load(ctx context.Context, up Upload, template []string) (Batch, error) {
	if up.Body == nil {
		return Batch{}, ErrNoFile
	}
	if err := ctx.Err(); err != nil {
		return Batch{}, err
	}

	var (
		rows []RawRow
		err  error
	)

	switch ext := strings.ToLower(filepath.Ext(up.Name)); ext {
	case "", ".csv", ".txt":
		rows, err = a.loadCSV(up.Body)
	case ".xlsx":
		rows, err = ReadXLSX(up.Body, "", a.opts)
	default:
		return Batch{}, fmt.Errorf("%w: %s", ErrUnsupportedFile, ext)
	}
	if err != nil {
		return Batch{}, err
	}

	batch := Batch{FileName: up.Name, Raw: rows}
	if len(template) > 0 {
		batch.Normalized = NormalizeAll(rows, template)
	}
	return batch, nil
}

func (a *Adapter) loadCSV(r io.Reader) ([]RawRow, error) {
	text, err := ReadText(r, a.opts)
	if err != nil {
		return nil, err
	}
	if a.opts.Strict {
		return ParseStrict(text)
	}
	return Parse(text), nil
}

// Read loads the upload and passes the batch to consume.
// consume is not called when reading fails.
func (a *Adapter) Read(ctx context.Context, up Upload, template []string, consume Consumer) error {
	batch, err := a.Load(ctx, up, template)
	if err != nil {
		return err
	}
	return consume(batch)
}

// TemplateFile returns the download name and content of a template seed file.
func (a *Adapter) TemplateFile(template []string) (string, []byte) {
	return TemplateFileName, []byte(SerializeTemplate(template))
}
