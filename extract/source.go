package extract

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
	"go.uber.org/zap"

	"tmplgen/archive"
	"tmplgen/common"
)

const maxSourceSize = 32 << 20

// Source is a page read for extraction.
type Source struct {
	Data    []byte
	Path    string // file or archive path
	Archive bool
	Entry   string // page name inside archive
}

// ReadSource reads page from a file or from a template package given as
// "package.zip/path/in/package". When path in package is empty or names a
// directory, the first html page under it is used.
func ReadSource(ctx context.Context, src string, log *zap.Logger) (*Source, error) {
	var head string
	for head = src; len(head) != 0; head, _ = filepath.Split(head) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		head = strings.TrimSuffix(head, string(filepath.Separator))

		fi, err := os.Stat(head)
		if err != nil {
			// does not exist, probably path in archive
			continue
		}
		tail := strings.TrimPrefix(strings.TrimPrefix(src, head), string(filepath.Separator))

		if !fi.Mode().IsRegular() {
			return nil, fmt.Errorf("%w: not a file (%s) => (%s)", common.ErrInputNotFound, head, tail)
		}

		zipped, err := isArchive(head)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", common.ErrInputNotFound, err)
		}
		if zipped {
			return readFromArchive(ctx, head, filepath.ToSlash(tail), log)
		}
		if len(tail) != 0 {
			// regular file cannot have a tail
			break
		}

		if fi.Size() > maxSourceSize {
			return nil, fmt.Errorf("%w: source is too large (%d bytes)", common.ErrInputNotFound, fi.Size())
		}
		data, err := os.ReadFile(head)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", common.ErrInputNotFound, err)
		}
		return &Source{Data: data, Path: head}, nil
	}
	return nil, fmt.Errorf("%w: input source was not found (%s)", common.ErrInputNotFound, src)
}

func isArchive(name string) (bool, error) {
	f, err := os.Open(name)
	if err != nil {
		return false, err
	}
	defer f.Close()

	// filetype needs no more than 262 bytes to detect type
	head := make([]byte, 262)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return false, err
	}
	return filetype.Is(head[:n], "zip"), nil
}

func isPage(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".html", ".htm", ".xhtml":
		return true
	}
	return false
}

func readFromArchive(ctx context.Context, arc, entry string, log *zap.Logger) (*Source, error) {
	var src *Source
	err := archive.Walk(ctx, arc, entry, func(_ string, f *zip.File) error {
		name := f.FileHeader.Name
		under := len(entry) == 0 || strings.HasSuffix(entry, "/") || strings.HasPrefix(name, entry+"/")
		if name != entry && !(under && isPage(name)) {
			log.Debug("Skipping file in archive", zap.String("archive", arc), zap.String("file", name))
			return nil
		}
		data, err := archive.ReadFile(f, maxSourceSize)
		if err != nil {
			return err
		}
		src = &Source{Data: data, Path: arc, Archive: true, Entry: name}
		return archive.ErrStop
	})
	if err != nil {
		return nil, fmt.Errorf("%w: unable to read archive: %w", common.ErrInputNotFound, err)
	}
	if src == nil {
		return nil, fmt.Errorf("%w: no page found in archive (%s) => (%s)", common.ErrInputNotFound, arc, entry)
	}
	log.Debug("Page found in archive", zap.String("archive", arc), zap.String("page", src.Entry))
	return src, nil
}
