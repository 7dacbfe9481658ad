package upload

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// MaxFileSize is the per-file limit of the image host (32 MiB).
const MaxFileSize = 32 * 1024 * 1024

// File is a locally selected image pending upload.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Rejected reports a file that failed local screening. Rejections are not
// fatal to the batch; the valid subset still proceeds.
type Rejected struct {
	Name   string
	Reason string
}

// ProgressFunc receives per-file progress updates. The index is the file's
// position in the submitted batch, rejections included, reported at 100 once
// that file has been fully accepted by the host.
type ProgressFunc func(index, percent int)

// Uploader sends image files to an external host and returns their public
// URLs in submission order, one per accepted file. A host-side failure aborts
// the batch with an upload error; URLs collected before the failure are still
// returned so the caller can decide what to keep.
type Uploader interface {
	Upload(ctx context.Context, files []File, progress ProgressFunc) ([]string, []Rejected, error)
}

// screen validates files before any network traffic: MIME type must be an
// image and size must not exceed the host limit. Invalid files are rejected
// individually. indexes maps each valid file back to its position in the
// submitted batch, so progress attaches to the right entry.
func screen(files []File) ([]File, []int, []Rejected) {
	valid := make([]File, 0, len(files))
	indexes := make([]int, 0, len(files))
	var rejected []Rejected
	for i, f := range files {
		if !strings.HasPrefix(f.ContentType, "image/") {
			rejected = append(rejected, Rejected{Name: f.Name, Reason: fmt.Sprintf("%s is not a valid image file", f.Name)})
			continue
		}
		if len(f.Data) > MaxFileSize {
			rejected = append(rejected, Rejected{Name: f.Name, Reason: fmt.Sprintf("%s is too large (max 32MB)", f.Name)})
			continue
		}
		valid = append(valid, f)
		indexes = append(indexes, i)
	}
	return valid, indexes, rejected
}

// FromMultipart reads an uploaded form file into a File, sniffing the content
// type from the first bytes rather than trusting the client header.
func FromMultipart(fh *multipart.FileHeader) (File, error) {
	src, err := fh.Open()
	if err != nil {
		return File{}, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return File{}, fmt.Errorf("failed to read uploaded file: %w", err)
	}

	return File{
		Name:        fh.Filename,
		ContentType: detectContentType(data),
		Data:        data,
	}, nil
}

// FromPath reads a local file into a File. Used by the CLI.
func FromPath(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return File{
		Name:        filepath.Base(path),
		ContentType: detectContentType(data),
		Data:        data,
	}, nil
}

func detectContentType(data []byte) string {
	probe := data
	if len(probe) > 512 {
		probe = probe[:512]
	}
	return http.DetectContentType(probe)
}
