package gen

import (
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/spf13/afero"
)

// defaultFileMode is the mode of files written without a previous version.
const defaultFileMode fs.FileMode = 0o644

// writeFile atomically replaces filename with data: it writes a temporary
// file in the same directory, gives it the mode of the original, and
// renames it over the original. Readers observe either the old or the new
// content, never a partial write.
func writeFile(afs afero.Fs, filename string, data []byte) (err error) {
	mode := defaultFileMode
	if info, err := afs.Stat(filename); err == nil {
		mode = info.Mode().Perm()
	}
	dir, base := filepath.Split(filename)
	if dir == "" {
		dir = "."
	}
	tmp, err := afero.TempFile(afs, dir, "."+base+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temporary file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = afs.Remove(tmp.Name())
		}
	}()
	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", tmp.Name(), err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync %s: %w", tmp.Name(), err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err = afs.Chmod(tmp.Name(), mode); err != nil {
		return fmt.Errorf("chmod %s: %w", tmp.Name(), err)
	}
	if err = afs.Rename(tmp.Name(), filename); err != nil {
		return fmt.Errorf("replace %s: %w", filename, err)
	}
	return nil
}
