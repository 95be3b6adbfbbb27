package emitter

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// NDJSONEmitter writes one JSON document per line to a single writer.
type NDJSONEmitter struct {
	mu  sync.Mutex
	w   *bufio.Writer
	enc *json.Encoder
}

// NewNDJSONEmitter wraps a writer. The caller keeps ownership of the
// underlying writer; Close only flushes.
func NewNDJSONEmitter(w io.Writer) *NDJSONEmitter {
	bw := bufio.NewWriter(w)
	return &NDJSONEmitter{w: bw, enc: json.NewEncoder(bw)}
}

// Emit writes each document in the batch as one line.
func (e *NDJSONEmitter) Emit(ctx context.Context, batch Batch) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, doc := range batch.Docs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.enc.Encode(doc); err != nil {
			return fmt.Errorf("encode document %s: %w", doc.Type, err)
		}
	}
	return e.w.Flush()
}

// Close flushes buffered output.
func (e *NDJSONEmitter) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.w.Flush()
}

// FileEmitter writes NDJSON lines to a file it owns.
type FileEmitter struct {
	*NDJSONEmitter
	f *os.File
}

// NewFileEmitter creates or truncates the file at path.
func NewFileEmitter(path string) (*FileEmitter, error) {
	f, err := os.Create(path) // #nosec G304 -- path is intentional user input
	if err != nil {
		return nil, fmt.Errorf("create output file %s: %w", path, err)
	}
	return &FileEmitter{NDJSONEmitter: NewNDJSONEmitter(f), f: f}, nil
}

// Close flushes buffered output and closes the file.
func (e *FileEmitter) Close() error {
	if err := e.NDJSONEmitter.Close(); err != nil {
		_ = e.f.Close()
		return err
	}
	return e.f.Close()
}

// DirEmitter writes one NDJSON file per kind under a directory.
type DirEmitter struct {
	mu    sync.Mutex
	dir   string
	files map[string]*os.File
}

// NewDirEmitter creates the directory if needed.
func NewDirEmitter(dir string) (*DirEmitter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory %s: %w", dir, err)
	}
	return &DirEmitter{dir: dir, files: make(map[string]*os.File)}, nil
}

// Emit appends the batch to its kind's file.
func (e *DirEmitter) Emit(ctx context.Context, batch Batch) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	f, err := e.fileFor(batch.Kind)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(f)
	for _, doc := range batch.Docs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode document %s: %w", doc.Type, err)
		}
	}
	return nil
}

func (e *DirEmitter) fileFor(kind string) (*os.File, error) {
	if f, ok := e.files[kind]; ok {
		return f, nil
	}

	name := fileName(kind)
	f, err := os.OpenFile(filepath.Join(e.dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open output file for %s: %w", kind, err)
	}
	e.files[kind] = f
	return f, nil
}

// fileName flattens a type name into a filesystem-safe NDJSON name,
// AWS::EC2::Instance becomes aws-ec2-instance.ndjson.
func fileName(kind string) string {
	flat := strings.ToLower(strings.ReplaceAll(kind, "::", "-"))
	flat = strings.ReplaceAll(flat, string(filepath.Separator), "-")
	return flat + ".ndjson"
}

// Close closes every per-kind file.
func (e *DirEmitter) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	var firstErr error
	for _, f := range e.files {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	e.files = make(map[string]*os.File)
	return firstErr
}
