package filestore

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	return New(Config{
		PlanRoot:   filepath.Join(dir, "plan"),
		SubmitRoot: filepath.Join(dir, "submit"),
	})
}

func TestWriteExclusiveKeepsSingleGeneration(t *testing.T) {
	store := newTestStore(t)
	dir := store.PlanDir(1)

	if err := store.WriteExclusive(dir, "v1.txt", strings.NewReader("first")); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := store.WriteExclusive(dir, "v2.txt", strings.NewReader("second")); err != nil {
		t.Fatalf("second write: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "v2.txt" {
		t.Fatalf("directory entries = %v", entries)
	}
	data, err := os.ReadFile(filepath.Join(dir, "v2.txt"))
	if err != nil || string(data) != "second" {
		t.Errorf("content = %q, %v", data, err)
	}
}

func TestOpenReturnsSize(t *testing.T) {
	store := newTestStore(t)
	dir := store.SubmitDir(1, "user-1")
	if err := store.WriteExclusive(dir, "report.pdf", strings.NewReader("payload")); err != nil {
		t.Fatal(err)
	}

	body, size, err := store.Open(filepath.Join(dir, "report.pdf"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer body.Close()
	if size != int64(len("payload")) {
		t.Errorf("size = %d", size)
	}
	data, _ := io.ReadAll(body)
	if string(data) != "payload" {
		t.Errorf("body = %q", data)
	}
}

func TestRemoveDirToleratesMissing(t *testing.T) {
	store := newTestStore(t)
	store.RemoveDir(store.PlanDir(99))

	dir := store.PlanDir(1)
	if err := store.WriteExclusive(dir, "a.txt", strings.NewReader("a")); err != nil {
		t.Fatal(err)
	}
	store.RemoveDir(dir)
	if store.Exists(dir) {
		t.Error("directory survived RemoveDir")
	}
}

func TestBuildArchive(t *testing.T) {
	store := newTestStore(t)
	first := store.SubmitDir(1, "user-1")
	second := store.SubmitDir(1, "user-2")
	if err := store.WriteExclusive(first, "a.txt", strings.NewReader("alpha")); err != nil {
		t.Fatal(err)
	}
	if err := store.WriteExclusive(second, "b.txt", strings.NewReader("beta")); err != nil {
		t.Fatal(err)
	}

	dest := filepath.Join(store.ScratchDir("admin-1", 1700000000), "files.zip")
	err := store.BuildArchive(dest, []ArchiveEntry{
		{Path: filepath.Join(first, "a.txt"), Name: "a.txt"},
		{Path: filepath.Join(second, "b.txt"), Name: "b.txt"},
	})
	if err != nil {
		t.Fatalf("BuildArchive: %v", err)
	}

	reader, err := zip.OpenReader(dest)
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	defer reader.Close()

	want := map[string]string{"a.txt": "alpha", "b.txt": "beta"}
	if len(reader.File) != len(want) {
		t.Fatalf("archive holds %d files", len(reader.File))
	}
	for _, f := range reader.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open member %s: %v", f.Name, err)
		}
		data, _ := io.ReadAll(rc)
		rc.Close()
		if string(data) != want[f.Name] {
			t.Errorf("member %s = %q", f.Name, data)
		}
	}
}

func TestBuildArchiveMissingSource(t *testing.T) {
	store := newTestStore(t)
	dest := filepath.Join(store.ScratchDir("admin-1", 1700000000), "files.zip")
	err := store.BuildArchive(dest, []ArchiveEntry{{Path: filepath.Join(store.PlanDir(1), "gone.txt"), Name: "gone.txt"}})
	if err == nil {
		t.Fatal("missing source must fail the archive")
	}
}
