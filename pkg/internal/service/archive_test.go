package service_test

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/lostyway/cloud-file-storage/pkg/internal/service"
)

func TestArchiveStream(t *testing.T) {
	store := newMemStore()
	svc := service.NewResourceServiceWith(store)
	ctx := context.Background()

	files := map[string]string{
		"a.txt":      "alpha",
		"sub/b.txt":  "bravo",
		"sub/c.docx": "charlie",
	}

	for p, body := range files {
		folder := ""
		name := p

		if idx := strings.LastIndexByte(p, '/'); idx >= 0 {
			folder, name = "test/"+p[:idx], p[idx+1:]
		} else {
			folder = "test"
		}

		if _, err := svc.Upload(ctx, 1, folder, name, strings.NewReader(body), int64(len(body)), ""); err != nil {
			t.Fatalf("Upload(%s): %v", p, err)
		}
	}

	var buf bytes.Buffer

	streamer := service.NewArchiveStreamer(store)
	if err := streamer.Stream(ctx, "user-1-files/test/", &buf); err != nil {
		t.Fatalf("Stream: %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("zip.NewReader: %v", err)
	}

	if len(zr.File) != len(files) {
		t.Fatalf("expected %d entries, got %d", len(files), len(zr.File))
	}

	for _, f := range zr.File {
		want, ok := files[f.Name]
		if !ok {
			t.Errorf("unexpected entry %s", f.Name)
			continue
		}

		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open entry %s: %v", f.Name, err)
		}

		got, err := io.ReadAll(rc)
		_ = rc.Close()

		if err != nil {
			t.Fatalf("read entry %s: %v", f.Name, err)
		}

		if string(got) != want {
			t.Errorf("entry %s = %q, want %q", f.Name, got, want)
		}
	}
}

// brokenReadStore 的 Open 成功但指定键的读取失败，
// 模拟对象存储延迟建连、错误在首次 Read 暴露的行为.
type brokenReadStore struct {
	*memStore
	brokenKey string
	readErr   error
}

func (s *brokenReadStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if key == s.brokenKey {
		return io.NopCloser(&failingReader{err: s.readErr}), nil
	}

	return s.memStore.Open(ctx, key)
}

type failingReader struct {
	err error
}

func (r *failingReader) Read([]byte) (int, error) { return 0, r.err }

func TestArchiveStreamSkipsUnreadableEntry(t *testing.T) {
	store := newMemStore()
	svc := service.NewResourceServiceWith(store)
	ctx := context.Background()

	for name, body := range map[string]string{"good.txt": "keep me", "bad.txt": "lost"} {
		if _, err := svc.Upload(ctx, 1, "test", name, strings.NewReader(body), int64(len(body)), ""); err != nil {
			t.Fatalf("Upload(%s): %v", name, err)
		}
	}

	broken := &brokenReadStore{
		memStore:  store,
		brokenKey: "user-1-files/test/bad.txt",
		readErr:   errors.New("connection reset"),
	}

	var buf bytes.Buffer

	streamer := service.NewArchiveStreamer(broken)
	if err := streamer.Stream(ctx, "user-1-files/test/", &buf); err != nil {
		t.Fatalf("Stream must survive a read failure on one entry: %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("zip.NewReader: %v", err)
	}

	if len(zr.File) != 1 || zr.File[0].Name != "good.txt" {
		names := make([]string, 0, len(zr.File))
		for _, f := range zr.File {
			names = append(names, f.Name)
		}

		t.Fatalf("expected only good.txt in archive, got %v", names)
	}

	rc, err := zr.File[0].Open()
	if err != nil {
		t.Fatalf("open entry: %v", err)
	}

	got, err := io.ReadAll(rc)
	_ = rc.Close()

	if err != nil || string(got) != "keep me" {
		t.Errorf("entry body = %q (err %v), want %q", got, err, "keep me")
	}
}

func TestArchiveStreamEmptyFolder(t *testing.T) {
	store := newMemStore()
	svc := service.NewResourceServiceWith(store)
	ctx := context.Background()

	if _, err := svc.CreateFolder(ctx, 1, "empty"); err != nil {
		t.Fatalf("CreateFolder: %v", err)
	}

	var buf bytes.Buffer

	streamer := service.NewArchiveStreamer(store)
	if err := streamer.Stream(ctx, "user-1-files/empty/", &buf); err != nil {
		t.Fatalf("Stream: %v", err)
	}

	// 只有 marker 的文件夹得到合法的空归档
	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("zip.NewReader: %v", err)
	}

	if len(zr.File) != 0 {
		t.Errorf("expected empty archive, got %d entries", len(zr.File))
	}
}
