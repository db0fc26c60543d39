package lark

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
)

type inputKind int

const (
	kindInvalid inputKind = iota
	kindFile
	kindReader
	kindBytes
	kindBase64
)

// Input is one representation of binary content to upload. The zero value is
// invalid; construct inputs with FileInput, ReaderInput, BytesInput or
// Base64Input so the active variant is fixed when the value is built.
type Input struct {
	kind        inputKind
	path        string
	reader      io.Reader
	data        []byte
	encoded     string
	contentType string
}

// FileInput uploads the contents of a local file. The content type is derived
// from the file extension.
func FileInput(path string) Input {
	return Input{kind: kindFile, path: path}
}

// ReaderInput uploads bytes from r. The content type must be supplied by the
// caller; the reader is consumed as-is.
func ReaderInput(r io.Reader, contentType string) Input {
	return Input{kind: kindReader, reader: r, contentType: contentType}
}

// BytesInput uploads an in-memory buffer with an explicit content type.
func BytesInput(data []byte, contentType string) Input {
	return Input{kind: kindBytes, data: data, contentType: contentType}
}

// Base64Input uploads the standard-base64 decoding of encoded with an
// explicit content type.
func Base64Input(encoded, contentType string) Input {
	return Input{kind: kindBase64, encoded: encoded, contentType: contentType}
}

// Media is a normalized byte source plus its content type, ready to be
// written into a multipart upload.
type Media struct {
	Reader      io.Reader
	ContentType string
}

// Normalize resolves an input to a single byte stream and content type.
// The file form reads the whole file into memory and looks the type up from
// the extension; every other form carries its content type explicitly.
func Normalize(in Input) (Media, error) {
	switch in.kind {
	case kindFile:
		data, err := os.ReadFile(in.path)
		if err != nil {
			return Media{}, fmt.Errorf("read %s: %w", in.path, err)
		}
		ct := contentTypeByExtension(filepath.Ext(in.path))
		if ct == "" {
			return Media{}, &InvalidInputError{Reason: fmt.Sprintf("unknown content type for %q", in.path)}
		}
		return Media{Reader: bytes.NewReader(data), ContentType: ct}, nil

	case kindReader:
		if in.reader == nil {
			return Media{}, &InvalidInputError{Reason: "nil reader"}
		}
		if in.contentType == "" {
			return Media{}, &InvalidInputError{Reason: "content type is required for reader input"}
		}
		return Media{Reader: in.reader, ContentType: in.contentType}, nil

	case kindBytes:
		if in.contentType == "" {
			return Media{}, &InvalidInputError{Reason: "content type is required for buffer input"}
		}
		return Media{Reader: bytes.NewReader(in.data), ContentType: in.contentType}, nil

	case kindBase64:
		if in.contentType == "" {
			return Media{}, &InvalidInputError{Reason: "content type is required for base64 input"}
		}
		data, err := base64.StdEncoding.DecodeString(in.encoded)
		if err != nil {
			return Media{}, &InvalidInputError{Reason: fmt.Sprintf("decode base64: %v", err)}
		}
		return Media{Reader: bytes.NewReader(data), ContentType: in.contentType}, nil

	default:
		return Media{}, &InvalidInputError{Reason: "unsupported file format"}
	}
}

// contentTypeByExtension strips any parameters from the looked-up type
// ("text/plain; charset=utf-8" becomes "text/plain").
func contentTypeByExtension(ext string) string {
	ct := mime.TypeByExtension(ext)
	if idx := strings.Index(ct, ";"); idx >= 0 {
		ct = ct[:idx]
	}
	return strings.TrimSpace(ct)
}
