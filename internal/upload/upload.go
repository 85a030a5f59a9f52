// Package upload checks resume files locally before they are sent for parsing.
package upload

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"

	"github.com/spigell/skillsight/internal/backend"
)

// DefaultMaxBytes is the default upload size limit.
const DefaultMaxBytes int64 = 10 << 20

const (
	extPDF  = ".pdf"
	extDOCX = ".docx"
	extTXT  = ".txt"

	unsupportedFormat = "Unsupported file format. Please upload PDF, DOCX, or TXT."
)

// File is a resume that passed the checks.
type File struct {
	Name string
	Data []byte
	// Pages is set for PDF files.
	Pages int
}

func (f *File) Reader() io.Reader {
	return bytes.NewReader(f.Data)
}

// Preflight reads path and checks it can be uploaded. maxBytes <= 0 uses
// DefaultMaxBytes. Failures are *backend.ParseError.
func Preflight(path string, maxBytes int64) (*File, error) {
	name := filepath.Base(path)

	if err := checkExtension(name); err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, &backend.ParseError{File: name, Message: fmt.Sprintf("cannot read file: %v", err)}
	}
	if info.IsDir() {
		return nil, &backend.ParseError{File: name, Message: "is a directory"}
	}
	if err := checkSize(name, info.Size(), maxBytes); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &backend.ParseError{File: name, Message: fmt.Sprintf("cannot read file: %v", err)}
	}

	return Check(name, data, maxBytes)
}

// Check validates the content of a file named name.
func Check(name string, data []byte, maxBytes int64) (*File, error) {
	if err := checkExtension(name); err != nil {
		return nil, err
	}
	if err := checkSize(name, int64(len(data)), maxBytes); err != nil {
		return nil, err
	}

	f := &File{Name: name, Data: data}

	switch strings.ToLower(filepath.Ext(name)) {
	case extPDF:
		pages, err := countPages(name, data)
		if err != nil {
			return nil, err
		}
		f.Pages = pages
	case extDOCX:
		doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			return nil, &backend.ParseError{File: name, Message: fmt.Sprintf("The DOCX file could not be read: %v", err)}
		}
		doc.Close()
	}

	return f, nil
}

// countPages opens a PDF. The reader panics on some malformed object
// bodies, so panics are reported as read failures.
func countPages(name string, data []byte) (pages int, err error) {
	defer func() {
		if r := recover(); r != nil {
			pages = 0
			err = &backend.ParseError{File: name, Message: fmt.Sprintf("The PDF file could not be read: %v", r)}
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, &backend.ParseError{File: name, Message: fmt.Sprintf("The PDF file could not be read: %v", err)}
	}
	if pages = reader.NumPage(); pages == 0 {
		return 0, &backend.ParseError{File: name, Message: "The PDF file has no pages."}
	}

	return pages, nil
}

func checkExtension(name string) error {
	switch strings.ToLower(filepath.Ext(name)) {
	case extPDF, extDOCX, extTXT:
		return nil
	default:
		return &backend.ParseError{File: name, Message: unsupportedFormat}
	}
}

func checkSize(name string, size, maxBytes int64) error {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}

	switch {
	case size == 0:
		return &backend.ParseError{File: name, Message: "The file is empty."}
	case size > maxBytes:
		return &backend.ParseError{
			File:    name,
			Message: fmt.Sprintf("File is too large (%s). The limit is %s.", humanSize(size), humanSize(maxBytes)),
		}
	}
	return nil
}

func humanSize(n int64) string {
	const unit = 1024
	switch {
	case n >= unit*unit:
		return fmt.Sprintf("%.1f MB", float64(n)/(unit*unit))
	case n >= unit:
		return fmt.Sprintf("%.1f KB", float64(n)/unit)
	default:
		return fmt.Sprintf("%d B", n)
	}
}
