package service_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/lostyway/cloud-file-storage/pkg/internal/apperr"
	"github.com/lostyway/cloud-file-storage/pkg/internal/service"
	"github.com/lostyway/cloud-file-storage/pkg/internal/types"
)

func TestCreateFolderNested(t *testing.T) {
	store := newMemStore()
	svc := service.NewResourceServiceWith(store)
	ctx := context.Background()

	res, err := svc.CreateFolder(ctx, 1, "test")
	if err != nil {
		t.Fatalf("CreateFolder(test): %v", err)
	}

	if res.Path != "user-1-files/" || res.Name != "test" || res.Type != types.ResourceDirectory {
		t.Errorf("unexpected resource: %+v", res)
	}

	res, err = svc.CreateFolder(ctx, 1, "test/test2")
	if err != nil {
		t.Fatalf("CreateFolder(test/test2): %v", err)
	}

	if res.Path != "user-1-files/test/" || res.Name != "test2" {
		t.Errorf("unexpected nested resource: %+v", res)
	}

	if !store.has("user-1-files/test/test2/") {
		t.Error("folder marker not materialized")
	}
}

func TestCreateFolderInvalidPath(t *testing.T) {
	svc := service.NewResourceServiceWith(newMemStore())

	if _, err := svc.CreateFolder(context.Background(), 1, "test//test2"); !apperr.Is(err, apperr.KindInvalidPath) {
		t.Errorf("expected InvalidPath, got %v", err)
	}
}

func TestCreateFolderParentMissing(t *testing.T) {
	svc := service.NewResourceServiceWith(newMemStore())

	if _, err := svc.CreateFolder(context.Background(), 1, "test/test2"); !apperr.Is(err, apperr.KindParentNotFound) {
		t.Errorf("expected ParentNotFound, got %v", err)
	}
}

func TestCreateFolderConflict(t *testing.T) {
	svc := service.NewResourceServiceWith(newMemStore())
	ctx := context.Background()

	if _, err := svc.CreateFolder(ctx, 1, "test"); err != nil {
		t.Fatalf("CreateFolder: %v", err)
	}

	if _, err := svc.CreateFolder(ctx, 1, "test"); !apperr.Is(err, apperr.KindAlreadyExists) {
		t.Errorf("expected AlreadyExists, got %v", err)
	}
}

func TestUploadAndGetInfo(t *testing.T) {
	store := newMemStore()
	svc := service.NewResourceServiceWith(store)
	ctx := context.Background()

	if _, err := svc.CreateFolder(ctx, 1, "test"); err != nil {
		t.Fatalf("CreateFolder: %v", err)
	}

	body := "Hello, World"

	res, err := svc.Upload(ctx, 1, "test", "test.txt", strings.NewReader(body), int64(len(body)), "text/plain")
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	if res.Path != "user-1-files/test/" || res.Name != "test.txt" || res.Type != types.ResourceFile {
		t.Errorf("unexpected resource: %+v", res)
	}

	if res.Size == nil || *res.Size != 12 {
		t.Errorf("unexpected size: %v", res.Size)
	}

	info, err := svc.GetInfo(ctx, 1, "test/test.txt")
	if err != nil {
		t.Fatalf("GetInfo: %v", err)
	}

	if info.Type != types.ResourceFile || *info.Size != 12 {
		t.Errorf("unexpected info: %+v", info)
	}

	// 重复上传同一路径冲突
	if _, err := svc.Upload(ctx, 1, "test", "test.txt", strings.NewReader(body), int64(len(body)), "text/plain"); !apperr.Is(err, apperr.KindAlreadyExists) {
		t.Errorf("expected AlreadyExists, got %v", err)
	}
}

func TestUploadCreatesAncestors(t *testing.T) {
	store := newMemStore()
	svc := service.NewResourceServiceWith(store)
	ctx := context.Background()

	if _, err := svc.Upload(ctx, 1, "a/b", "f.txt", strings.NewReader("x"), 1, ""); err != nil {
		t.Fatalf("Upload: %v", err)
	}

	for _, marker := range []string{"user-1-files/a/", "user-1-files/a/b/"} {
		if !store.has(marker) {
			t.Errorf("missing ancestor marker %s", marker)
		}
	}
}

func TestUploadMissingFileName(t *testing.T) {
	svc := service.NewResourceServiceWith(newMemStore())

	if _, err := svc.Upload(context.Background(), 1, "", "", strings.NewReader(""), 0, ""); !apperr.Is(err, apperr.KindInvalidArgument) {
		t.Errorf("expected InvalidArgument, got %v", err)
	}
}

func TestGetInfoParentPrecedence(t *testing.T) {
	svc := service.NewResourceServiceWith(newMemStore())

	// 父级不存在的文件路径优先报 ParentNotFound
	if _, err := svc.GetInfo(context.Background(), 1, "nope/file.txt"); !apperr.Is(err, apperr.KindParentNotFound) {
		t.Errorf("expected ParentNotFound, got %v", err)
	}
}

func TestDeleteFile(t *testing.T) {
	store := newMemStore()
	svc := service.NewResourceServiceWith(store)
	ctx := context.Background()

	if _, err := svc.Upload(ctx, 1, "test", "test.txt", strings.NewReader("x"), 1, ""); err != nil {
		t.Fatalf("Upload: %v", err)
	}

	if err := svc.Delete(ctx, 1, "test/test.txt"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if store.has("user-1-files/test/test.txt") {
		t.Error("object survived delete")
	}

	if err := svc.Delete(ctx, 1, "test/test.txt"); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("expected NotFound on second delete, got %v", err)
	}
}

func TestDeleteFolderRecursive(t *testing.T) {
	store := newMemStore()
	svc := service.NewResourceServiceWith(store)
	ctx := context.Background()

	if _, err := svc.Upload(ctx, 1, "test/deep", "a.txt", strings.NewReader("x"), 1, ""); err != nil {
		t.Fatalf("Upload: %v", err)
	}

	if err := svc.Delete(ctx, 1, "test"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	for _, k := range []string{"user-1-files/test/", "user-1-files/test/deep/", "user-1-files/test/deep/a.txt"} {
		if store.has(k) {
			t.Errorf("key %s survived recursive delete", k)
		}
	}

	if err := svc.Delete(ctx, 1, "missing"); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("expected NotFound, got %v", err)
	}
}

func TestListDirectory(t *testing.T) {
	svc := service.NewResourceServiceWith(newMemStore())
	ctx := context.Background()

	if _, err := svc.CreateFolder(ctx, 1, "test"); err != nil {
		t.Fatalf("CreateFolder: %v", err)
	}

	if _, err := svc.CreateFolder(ctx, 1, "test/sub"); err != nil {
		t.Fatalf("CreateFolder: %v", err)
	}

	if _, err := svc.Upload(ctx, 1, "test", "a.txt", strings.NewReader("xy"), 2, ""); err != nil {
		t.Fatalf("Upload: %v", err)
	}

	items, err := svc.ListDirectory(ctx, 1, "test")
	if err != nil {
		t.Fatalf("ListDirectory: %v", err)
	}

	if len(items) != 2 {
		t.Fatalf("expected 2 entries, got %d: %+v", len(items), items)
	}

	byName := map[string]types.Resource{}
	for _, it := range items {
		byName[it.Name] = it
	}

	if byName["sub"].Type != types.ResourceDirectory {
		t.Errorf("sub should be a directory: %+v", byName["sub"])
	}

	if byName["a.txt"].Type != types.ResourceFile || *byName["a.txt"].Size != 2 {
		t.Errorf("a.txt should be a 2-byte file: %+v", byName["a.txt"])
	}
}

func TestListDirectoryMissing(t *testing.T) {
	svc := service.NewResourceServiceWith(newMemStore())

	if _, err := svc.ListDirectory(context.Background(), 1, "missing"); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("expected NotFound, got %v", err)
	}
}

func TestListDirectoryRootEmpty(t *testing.T) {
	svc := service.NewResourceServiceWith(newMemStore())

	items, err := svc.ListDirectory(context.Background(), 1, "")
	if err != nil {
		t.Fatalf("ListDirectory(root): %v", err)
	}

	if len(items) != 0 {
		t.Errorf("expected empty listing, got %+v", items)
	}
}

func TestMoveFolder(t *testing.T) {
	store := newMemStore()
	svc := service.NewResourceServiceWith(store)
	ctx := context.Background()

	if _, err := svc.Upload(ctx, 1, "test", "test.txt", strings.NewReader("Hello, World"), 12, ""); err != nil {
		t.Fatalf("Upload: %v", err)
	}

	res, err := svc.Move(ctx, 1, "test", "test2")
	if err != nil {
		t.Fatalf("Move: %v", err)
	}

	if res.Path != "user-1-files/" || res.Name != "test2" || res.Type != types.ResourceDirectory {
		t.Errorf("unexpected resource: %+v", res)
	}

	if _, err := svc.GetInfo(ctx, 1, "test2/test.txt"); err != nil {
		t.Errorf("moved file not found: %v", err)
	}

	if _, err := svc.GetInfo(ctx, 1, "test/test.txt"); !apperr.Is(err, apperr.KindParentNotFound) && !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("old path should be gone, got %v", err)
	}
}

func TestMoveFileRecreatesSourceFolder(t *testing.T) {
	store := newMemStore()
	svc := service.NewResourceServiceWith(store)
	ctx := context.Background()

	if _, err := svc.Upload(ctx, 1, "src", "only.txt", strings.NewReader("x"), 1, ""); err != nil {
		t.Fatalf("Upload: %v", err)
	}

	if _, err := svc.CreateFolder(ctx, 1, "dst"); err != nil {
		t.Fatalf("CreateFolder: %v", err)
	}

	if _, err := svc.Move(ctx, 1, "src/only.txt", "dst/only.txt"); err != nil {
		t.Fatalf("Move: %v", err)
	}

	// 源文件夹不能因为搬走唯一的文件而消失
	if !store.has("user-1-files/src/") {
		t.Error("source folder marker missing after move")
	}
}

func TestMoveErrors(t *testing.T) {
	svc := service.NewResourceServiceWith(newMemStore())
	ctx := context.Background()

	if _, err := svc.Move(ctx, 1, "a", "a"); !apperr.Is(err, apperr.KindSameResource) {
		t.Errorf("expected SameResource, got %v", err)
	}

	if _, err := svc.Move(ctx, 1, "a", "b.txt"); !apperr.Is(err, apperr.KindTypeMismatch) {
		t.Errorf("expected TypeMismatch, got %v", err)
	}

	if _, err := svc.Move(ctx, 1, "a", "a/b"); !apperr.Is(err, apperr.KindInvalidArgument) {
		t.Errorf("expected InvalidArgument for self-nested move, got %v", err)
	}

	if _, err := svc.Move(ctx, 1, "missing.txt", "dst.txt"); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("expected NotFound, got %v", err)
	}
}

func TestSearch(t *testing.T) {
	svc := service.NewResourceServiceWith(newMemStore())
	ctx := context.Background()

	if _, err := svc.Upload(ctx, 1, "docs", "report.txt", strings.NewReader("x"), 1, ""); err != nil {
		t.Fatalf("Upload: %v", err)
	}

	if _, err := svc.CreateFolder(ctx, 1, "reports"); err != nil {
		t.Fatalf("CreateFolder: %v", err)
	}

	results, err := svc.Search(ctx, 1, "report")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d: %+v", len(results), results)
	}

	// 区分大小写
	results, err = svc.Search(ctx, 1, "REPORT")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if len(results) != 0 {
		t.Errorf("case-sensitive search should miss, got %+v", results)
	}

	if _, err := svc.Search(ctx, 1, ""); !apperr.Is(err, apperr.KindInvalidPath) && !apperr.Is(err, apperr.KindInvalidArgument) {
		t.Errorf("empty query should fail validation, got %v", err)
	}
}

func TestTenantIsolation(t *testing.T) {
	store := newMemStore()
	svc := service.NewResourceServiceWith(store)
	ctx := context.Background()

	if _, err := svc.Upload(ctx, 1, "shared", "secret.txt", strings.NewReader("x"), 1, ""); err != nil {
		t.Fatalf("Upload: %v", err)
	}

	// 另一个租户看不到同名路径
	if _, err := svc.GetInfo(ctx, 2, "shared/secret.txt"); err == nil {
		t.Error("tenant 2 should not see tenant 1 objects")
	}

	results, err := svc.Search(ctx, 2, "secret")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if len(results) != 0 {
		t.Errorf("cross-tenant search leak: %+v", results)
	}
}

func TestPrepareDownload(t *testing.T) {
	svc := service.NewResourceServiceWith(newMemStore())
	ctx := context.Background()

	if _, err := svc.Upload(ctx, 1, "test", "test.txt", strings.NewReader("Hello, World"), 12, ""); err != nil {
		t.Fatalf("Upload: %v", err)
	}

	target, err := svc.PrepareDownload(ctx, 1, "test/test.txt")
	if err != nil {
		t.Fatalf("PrepareDownload(file): %v", err)
	}

	if target.IsDir || target.Name != "test.txt" {
		t.Errorf("unexpected target: %+v", target)
	}

	rc, err := svc.OpenFile(ctx, target.Key)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}

	defer func() { _ = rc.Close() }()

	body, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	if string(body) != "Hello, World" {
		t.Errorf("unexpected body %q", body)
	}

	dir, err := svc.PrepareDownload(ctx, 1, "test")
	if err != nil {
		t.Fatalf("PrepareDownload(folder): %v", err)
	}

	if !dir.IsDir || dir.Name != "test" {
		t.Errorf("unexpected folder target: %+v", dir)
	}

	if _, err := svc.PrepareDownload(ctx, 1, "missing/file.txt"); err == nil {
		t.Error("expected error for missing download target")
	}
}
