// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"bytes"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zeebo/blake3"
)

func TestWriteAndOpen(t *testing.T) {
	payload := []byte(strings.Repeat("2013-02-04 17:12:03.000042 :1.5 gabble DEBUG: connecting\n", 200))
	sum := blake3.Sum256(payload)
	wantDigest := hex.EncodeToString(sum[:])

	for _, compression := range []Compression{CompressionNone, CompressionLZ4, CompressionZstd} {
		t.Run(string(compression), func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "records.cbor")
			writer, err := Create(path, compression)
			if err != nil {
				t.Fatalf("Create: %v", err)
			}
			// Two writes, to cover streaming across calls.
			half := len(payload) / 2
			if _, err := writer.Write(payload[:half]); err != nil {
				t.Fatalf("Write: %v", err)
			}
			if _, err := writer.Write(payload[half:]); err != nil {
				t.Fatalf("Write: %v", err)
			}
			if err := writer.Close(); err != nil {
				t.Fatalf("Close: %v", err)
			}

			if writer.Written() != int64(len(payload)) {
				t.Errorf("Written = %d, want %d", writer.Written(), len(payload))
			}
			if writer.Digest() != wantDigest {
				t.Errorf("Digest = %s, want %s", writer.Digest(), wantDigest)
			}

			info, err := os.Stat(path)
			if err != nil {
				t.Fatalf("Stat: %v", err)
			}
			if compression != CompressionNone && info.Size() >= int64(len(payload)) {
				t.Errorf("%s archive is %d bytes for %d bytes of input", compression, info.Size(), len(payload))
			}

			reader, err := Open(path, compression)
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			defer reader.Close()
			got, err := io.ReadAll(reader)
			if err != nil {
				t.Fatalf("ReadAll: %v", err)
			}
			if !bytes.Equal(got, payload) {
				t.Errorf("round trip returned %d bytes, want %d", len(got), len(payload))
			}
		})
	}
}

func TestWriteAfterClose(t *testing.T) {
	writer, err := Create(filepath.Join(t.TempDir(), "records.cbor"), CompressionZstd)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	if _, err := writer.Write([]byte("late")); err == nil {
		t.Error("Write after Close succeeded")
	}
}

func TestCreateInMissingDirectory(t *testing.T) {
	_, err := Create(filepath.Join(t.TempDir(), "absent", "records.cbor"), CompressionNone)
	if err == nil {
		t.Fatal("Create in a missing directory succeeded")
	}
}

func TestParseCompression(t *testing.T) {
	for _, name := range []string{"none", "lz4", "zstd"} {
		if _, err := ParseCompression(name); err != nil {
			t.Errorf("ParseCompression(%q): %v", name, err)
		}
	}
	if _, err := ParseCompression("gzip"); err == nil {
		t.Error("ParseCompression accepted gzip")
	}
}
