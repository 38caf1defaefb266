// Package source reads statement exports and spreadsheets from disk or
// uploads and hands decoded text or grids to the importer.
package source

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// ErrSourceRead matches every failure to read or decode an input.
var ErrSourceRead = errors.New("source read failure")

// ReadError describes a file that could not be read or decoded.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("reading %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrSourceRead) true for every ReadError.
func (e *ReadError) Is(target error) bool { return target == ErrSourceRead }

const utf8BOM = "\ufeff"

// ReadStatement reads and decodes a statement export.
func ReadStatement(path, enc string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", &ReadError{Path: path, Err: err}
	}
	defer f.Close()
	return DecodeStatement(f, path, enc)
}

// DecodeStatement decodes a statement export from r. name is used in errors.
func DecodeStatement(r io.Reader, name, enc string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", &ReadError{Path: name, Err: err}
	}
	text, err := DecodeText(data, enc)
	if err != nil {
		return "", &ReadError{Path: name, Err: err}
	}
	return text, nil
}

// DecodeText converts data to a UTF-8 string. enc is "utf-8",
// "iso-8859-1", "windows-1252", or "auto" (UTF-8 when valid, otherwise
// ISO-8859-1, the usual encoding of Portuguese bank exports).
func DecodeText(data []byte, enc string) (string, error) {
	var dec *encoding.Decoder
	switch strings.ToLower(strings.TrimSpace(enc)) {
	case "utf-8", "utf8":
		if !utf8.Valid(data) {
			return "", errors.New("input is not valid UTF-8")
		}
		return strings.TrimPrefix(string(data), utf8BOM), nil
	case "", "auto":
		if utf8.Valid(data) {
			return strings.TrimPrefix(string(data), utf8BOM), nil
		}
		dec = charmap.ISO8859_1.NewDecoder()
	case "iso-8859-1", "latin1", "latin-1":
		dec = charmap.ISO8859_1.NewDecoder()
	case "windows-1252", "cp1252":
		dec = charmap.Windows1252.NewDecoder()
	default:
		return "", fmt.Errorf("unsupported encoding %q", enc)
	}

	out, err := dec.Bytes(data)
	if err != nil {
		return "", fmt.Errorf("decoding %s: %w", enc, err)
	}
	return string(out), nil
}

// FileInfo describes a statement export found by Scan.
type FileInfo struct {
	Name string
	Path string
	Size int64
}

// Scan returns the statement exports (.csv, .txt) directly inside dir, sorted by name.
func Scan(dir string) ([]FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &ReadError{Path: dir, Err: err}
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".csv", ".txt":
		default:
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, &ReadError{Path: filepath.Join(dir, e.Name()), Err: err}
		}
		files = append(files, FileInfo{
			Name: e.Name(),
			Path: filepath.Join(dir, e.Name()),
			Size: info.Size(),
		})
	}
	return files, nil
}
