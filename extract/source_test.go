package extract_test

import (
	"archive/zip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap/zaptest"

	"tmplgen/common"
	"tmplgen/extract"
)

func writePackage(t *testing.T, dir string, files [][2]string) string {
	t.Helper()
	name := filepath.Join(dir, "package.zip")
	f, err := os.Create(name)
	if err != nil {
		t.Fatal(err)
	}
	w := zip.NewWriter(f)
	for _, file := range files {
		fw, err := w.Create(file[0])
		if err != nil {
			t.Fatal(err)
		}
		if _, err := fw.Write([]byte(file[1])); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	return name
}

func TestReadSource(t *testing.T) {
	dir := t.TempDir()
	page := filepath.Join(dir, "page.html")
	if err := os.WriteFile(page, []byte("plain"), 0644); err != nil {
		t.Fatal(err)
	}
	pkg := writePackage(t, dir, [][2]string{
		{"readme.txt", "readme"},
		{"cert/style.css", "css"},
		{"cert/index.html", "cert index"},
		{"cert/alt.htm", "cert alt"},
		{"other/page.html", "other page"},
	})

	tests := []struct {
		name  string
		src   string
		data  string
		entry string
	}{
		{"file", page, "plain", ""},
		{"first page", pkg, "cert index", "cert/index.html"},
		{"exact entry", filepath.Join(pkg, "cert", "alt.htm"), "cert alt", "cert/alt.htm"},
		{"directory", filepath.Join(pkg, "other"), "other page", "other/page.html"},
		{"non page entry", filepath.Join(pkg, "readme.txt"), "readme", "readme.txt"},
	}

	log := zaptest.NewLogger(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := extract.ReadSource(context.Background(), tt.src, log)
			if err != nil {
				t.Fatalf("ReadSource failed: %v", err)
			}
			if string(src.Data) != tt.data {
				t.Errorf("data = %q, want %q", src.Data, tt.data)
			}
			if src.Archive != (tt.entry != "") || src.Entry != tt.entry {
				t.Errorf("archive %v entry %q, want entry %q", src.Archive, src.Entry, tt.entry)
			}
		})
	}
}

func TestReadSource_NotFound(t *testing.T) {
	dir := t.TempDir()
	page := filepath.Join(dir, "page.html")
	if err := os.WriteFile(page, []byte("plain"), 0644); err != nil {
		t.Fatal(err)
	}
	pkg := writePackage(t, dir, [][2]string{{"assets/bg.png", "png"}})

	log := zaptest.NewLogger(t)
	for _, src := range []string{
		filepath.Join(dir, "missing.html"),
		filepath.Join(page, "inner.html"),
		dir,
		pkg,
		filepath.Join(pkg, "missing.html"),
	} {
		if _, err := extract.ReadSource(context.Background(), src, log); !errors.Is(err, common.ErrInputNotFound) {
			t.Errorf("ReadSource(%q) = %v, want input not found", src, err)
		}
	}
}
