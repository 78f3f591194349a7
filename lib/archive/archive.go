// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/zeebo/blake3"
)

// Compression identifies the stream compression of an archive file.
type Compression string

const (
	// CompressionNone stores the CBOR sequence as is.
	CompressionNone Compression = "none"

	// CompressionLZ4 stores an LZ4 frame stream.
	CompressionLZ4 Compression = "lz4"

	// CompressionZstd stores a zstd stream at the default level.
	CompressionZstd Compression = "zstd"
)

// ParseCompression parses a compression name.
func ParseCompression(name string) (Compression, error) {
	switch compression := Compression(name); compression {
	case CompressionNone, CompressionLZ4, CompressionZstd:
		return compression, nil
	default:
		return "", fmt.Errorf("unknown archive compression: %q", name)
	}
}

// Writer is an open archive file. Writes are compressed and hashed;
// Close flushes the compressor and closes the file.
type Writer struct {
	path       string
	file       *os.File
	compressor io.WriteCloser
	hasher     *blake3.Hasher
	written    int64
	closed     bool
}

// Create truncates or creates the file at path.
func Create(path string, compression Compression) (*Writer, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating archive: %w", err)
	}

	var compressor io.WriteCloser
	switch compression {
	case CompressionNone:
		compressor = nopCloser{file}
	case CompressionLZ4:
		compressor = lz4.NewWriter(file)
	case CompressionZstd:
		encoder, err := zstd.NewWriter(file, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("zstd encoder: %w", err)
		}
		compressor = encoder
	default:
		file.Close()
		return nil, fmt.Errorf("unsupported archive compression: %q", compression)
	}

	return &Writer{
		path:       path,
		file:       file,
		compressor: compressor,
		hasher:     blake3.New(),
	}, nil
}

// Write appends p to the archive.
func (w *Writer) Write(p []byte) (int, error) {
	if w.closed {
		return 0, fmt.Errorf("archive %s: write after close", w.path)
	}
	n, err := w.compressor.Write(p)
	w.hasher.Write(p[:n])
	w.written += int64(n)
	if err != nil {
		return n, fmt.Errorf("writing archive %s: %w", w.path, err)
	}
	return n, nil
}

// Close flushes buffered data and closes the file. Closing twice is a
// no-op.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if err := w.compressor.Close(); err != nil {
		w.file.Close()
		return fmt.Errorf("flushing archive %s: %w", w.path, err)
	}
	if err := w.file.Close(); err != nil {
		return fmt.Errorf("closing archive %s: %w", w.path, err)
	}
	return nil
}

// Path returns the archive's file path.
func (w *Writer) Path() string { return w.path }

// Written returns the number of uncompressed bytes written.
func (w *Writer) Written() int64 { return w.written }

// Digest returns the hex BLAKE3 digest of the uncompressed bytes
// written so far.
func (w *Writer) Digest() string {
	return hex.EncodeToString(w.hasher.Sum(nil))
}

// Open returns a reader over the uncompressed contents of the archive
// at path.
func Open(path string, compression Compression) (io.ReadCloser, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}

	switch compression {
	case CompressionNone:
		return file, nil
	case CompressionLZ4:
		return readCloser{Reader: lz4.NewReader(file), close: file.Close}, nil
	case CompressionZstd:
		decoder, err := zstd.NewReader(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("zstd decoder: %w", err)
		}
		return readCloser{Reader: decoder, close: func() error {
			decoder.Close()
			return file.Close()
		}}, nil
	default:
		file.Close()
		return nil, fmt.Errorf("unsupported archive compression: %q", compression)
	}
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

type readCloser struct {
	io.Reader
	close func() error
}

func (r readCloser) Close() error { return r.close() }
