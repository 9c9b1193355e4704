package common

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"tmplgen/misc"
)

// WriteFileAtomic calls fill with a writer backed by temporary file created
// next to name and renames it to name only when fill succeeded. Destination
// is never left partially written.
func WriteFileAtomic(name string, fill func(w io.Writer) error) (err error) {
	dir := filepath.Dir(name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}

	f, err := os.CreateTemp(dir, "."+misc.GetAppName()+"-*.tmp")
	if err != nil {
		return fmt.Errorf("unable to create temporary file: %w", err)
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			// we are not interested in errors here
			_ = os.Remove(tmp)
		}
	}()

	if err = fill(f); err != nil {
		return multierr.Append(err, f.Close())
	}
	if err = f.Sync(); err != nil {
		return multierr.Append(err, f.Close())
	}
	if err = f.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmp, 0644); err != nil {
		return err
	}
	if err = os.Rename(tmp, name); err != nil {
		return fmt.Errorf("unable to write '%s': %w", name, err)
	}
	return nil
}

// CheckOutput refuses to replace existing file unless overwrite is requested.
func CheckOutput(name string, overwrite bool, log *zap.Logger) error {
	_, err := os.Stat(name)
	switch {
	case os.IsNotExist(err):
		return nil
	case err != nil:
		return err
	case !overwrite:
		return fmt.Errorf("output file already exists: %s", name)
	}
	log.Warn("Overwriting existing file", zap.String("file", name))
	return nil
}
