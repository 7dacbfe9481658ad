package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"boltadmin/internal/apperr"
)

// pngHeader is enough for content sniffing to report image/png.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func imageFile(name string, size int) File {
	data := make([]byte, size)
	copy(data, pngHeader)
	return File{Name: name, ContentType: "image/png", Data: data}
}

func TestScreen(t *testing.T) {
	files := []File{
		imageFile("a.png", 10),
		{Name: "notes.txt", ContentType: "text/plain; charset=utf-8", Data: []byte("hi")},
		imageFile("huge.png", MaxFileSize+1),
		imageFile("b.png", 10),
	}

	valid, indexes, rejected := screen(files)
	if len(valid) != 2 || valid[0].Name != "a.png" || valid[1].Name != "b.png" {
		t.Errorf("valid = %v", valid)
	}
	if len(indexes) != 2 || indexes[0] != 0 || indexes[1] != 3 {
		t.Errorf("indexes = %v, expected the original batch positions [0 3]", indexes)
	}
	if len(rejected) != 2 {
		t.Fatalf("rejected = %v", rejected)
	}
	if rejected[0].Reason != "notes.txt is not a valid image file" {
		t.Errorf("rejected[0].Reason = %q", rejected[0].Reason)
	}
	if rejected[1].Reason != "huge.png is too large (max 32MB)" {
		t.Errorf("rejected[1].Reason = %q", rejected[1].Reason)
	}
}

func imgbbServer(t *testing.T, respond func(n int, w http.ResponseWriter)) (*httptest.Server, *int) {
	t.Helper()
	count := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		count++
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, expected POST", r.Method)
		}
		if r.URL.Query().Get("key") == "" {
			t.Error("missing key query parameter")
		}
		if err := r.ParseMultipartForm(64 << 20); err != nil {
			t.Errorf("bad multipart body: %v", err)
		}
		if _, _, err := r.FormFile("image"); err != nil {
			t.Errorf("missing image form file: %v", err)
		}
		respond(count, w)
	}))
	t.Cleanup(srv.Close)
	return srv, &count
}

func TestUploadSequentialOrder(t *testing.T) {
	srv, count := imgbbServer(t, func(n int, w http.ResponseWriter) {
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    map[string]string{"display_url": fmt.Sprintf("https://i.ibb.co/img%d.png", n)},
		})
	})

	c := NewImgBBClient(srv.URL, "test-key")
	files := []File{imageFile("a.png", 10), imageFile("b.png", 10), imageFile("c.png", 10)}

	var progressed []int
	urls, rejected, err := c.Upload(context.Background(), files, func(index, percent int) {
		if percent == 100 {
			progressed = append(progressed, index)
		}
	})
	if err != nil {
		t.Fatalf("Upload() = %v", err)
	}
	if len(rejected) != 0 {
		t.Errorf("rejected = %v", rejected)
	}
	want := []string{"https://i.ibb.co/img1.png", "https://i.ibb.co/img2.png", "https://i.ibb.co/img3.png"}
	if len(urls) != 3 {
		t.Fatalf("urls = %v", urls)
	}
	for i := range want {
		if urls[i] != want[i] {
			t.Errorf("urls[%d] = %q, expected %q", i, urls[i], want[i])
		}
	}
	if len(progressed) != 3 || progressed[0] != 0 || progressed[1] != 1 || progressed[2] != 2 {
		t.Errorf("progress indexes = %v, expected [0 1 2]", progressed)
	}
	if *count != 3 {
		t.Errorf("server saw %d uploads, expected 3", *count)
	}
}

func TestUploadSkipsRejectedFiles(t *testing.T) {
	srv, count := imgbbServer(t, func(n int, w http.ResponseWriter) {
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    map[string]string{"display_url": fmt.Sprintf("https://i.ibb.co/img%d.png", n)},
		})
	})

	c := NewImgBBClient(srv.URL, "test-key")
	files := []File{
		imageFile("a.png", 10),
		imageFile("huge.png", MaxFileSize+1),
		imageFile("b.png", 10),
	}

	var progressed []int
	urls, rejected, err := c.Upload(context.Background(), files, func(index, percent int) {
		progressed = append(progressed, index)
	})
	if err != nil {
		t.Fatalf("Upload() = %v", err)
	}
	if len(urls) != 2 || *count != 2 {
		t.Errorf("urls=%v serverCalls=%d, expected the 2 valid files only", urls, *count)
	}
	if len(rejected) != 1 || rejected[0].Name != "huge.png" {
		t.Errorf("rejected = %v", rejected)
	}
	// Progress keeps the original batch positions, skipping the rejected file.
	if len(progressed) != 2 || progressed[0] != 0 || progressed[1] != 2 {
		t.Errorf("progress indexes = %v, expected [0 2]", progressed)
	}
}

func TestUploadHostFailureAbortsBatch(t *testing.T) {
	srv, count := imgbbServer(t, func(n int, w http.ResponseWriter) {
		if n == 2 {
			json.NewEncoder(w).Encode(map[string]any{
				"success": false,
				"error":   map[string]string{"message": "Rate limit reached"},
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    map[string]string{"display_url": "https://i.ibb.co/first.png"},
		})
	})

	c := NewImgBBClient(srv.URL, "test-key")
	files := []File{imageFile("a.png", 10), imageFile("b.png", 10), imageFile("c.png", 10)}

	urls, _, err := c.Upload(context.Background(), files, nil)
	if !apperr.IsKind(err, apperr.Upload) {
		t.Fatalf("Upload() = %v, expected upload error", err)
	}
	if apperr.PublicMessage(err) != "Image host rejected b.png: Rate limit reached" {
		t.Errorf("message = %q", apperr.PublicMessage(err))
	}
	if len(urls) != 1 || urls[0] != "https://i.ibb.co/first.png" {
		t.Errorf("urls = %v, expected the URL collected before the failure", urls)
	}
	// The failing file is the second request; the third never goes out.
	if *count != 2 {
		t.Errorf("server saw %d uploads, expected 2", *count)
	}
}

func TestUploadMissingKey(t *testing.T) {
	c := NewImgBBClient("https://api.imgbb.com/1/upload", "")
	_, _, err := c.Upload(context.Background(), []File{imageFile("a.png", 10)}, nil)
	if !apperr.IsKind(err, apperr.Upload) {
		t.Fatalf("Upload() = %v, expected upload error", err)
	}
	if apperr.PublicMessage(err) != "Image host API key is not configured" {
		t.Errorf("message = %q", apperr.PublicMessage(err))
	}
}

func TestUploadEmptyBatchWithoutKey(t *testing.T) {
	c := NewImgBBClient("https://api.imgbb.com/1/upload", "")
	urls, rejected, err := c.Upload(context.Background(), nil, nil)
	if err != nil || len(urls) != 0 || len(rejected) != 0 {
		t.Errorf("empty batch: urls=%v rejected=%v err=%v", urls, rejected, err)
	}
}

func TestFromPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "photo.png")
	if err := os.WriteFile(path, pngHeader, 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	f, err := FromPath(path)
	if err != nil {
		t.Fatalf("FromPath() = %v", err)
	}
	if f.Name != "photo.png" {
		t.Errorf("Name = %q", f.Name)
	}
	if f.ContentType != "image/png" {
		t.Errorf("ContentType = %q, expected image/png", f.ContentType)
	}
	if !bytes.Equal(f.Data, pngHeader) {
		t.Error("Data does not match the file contents")
	}
}

func TestDetectContentType(t *testing.T) {
	if got := detectContentType([]byte("plain text")); got != "text/plain; charset=utf-8" {
		t.Errorf("detectContentType(text) = %q", got)
	}
	if got := detectContentType(pngHeader); got != "image/png" {
		t.Errorf("detectContentType(png) = %q", got)
	}
}
