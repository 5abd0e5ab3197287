package utils

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
	"github.com/spf13/afero"
)

var (
	zipMagic  = []byte{'P', 'K', 0x03, 0x04}
	gzipMagic = []byte{0x1f, 0x8b}
)

// ExtractArchive detects the archive format from its magic bytes and
// extracts the file at path into dir. Zip and tar archives are
// supported, the latter optionally gzip compressed.
func ExtractArchive(fs Fs, path, dir string) error {
	file, err := fs.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	magic := make([]byte, 4)
	if _, err := file.ReadAt(magic, 0); err != nil {
		return fmt.Errorf("%w: %s is not an archive", ErrParse, path)
	}

	switch {
	case bytes.HasPrefix(magic, zipMagic):
		return Unzip(fs, path, dir)

	case bytes.HasPrefix(magic, gzipMagic):
		gz, err := gzip.NewReader(file)
		if err != nil {
			return fmt.Errorf("Archive read error: %v", err)
		}
		defer gz.Close()
		return Untar(fs, gz, dir)

	default:
		// Plain tar has no leading magic, look for the ustar tag at
		// its fixed header offset instead.
		tag := make([]byte, 5)
		if _, err := file.ReadAt(tag, 257); err == nil && string(tag) == "ustar" {
			return Untar(fs, file, dir)
		}
	}

	return fmt.Errorf("%w: unknown archive format: %s", ErrParse, path)
}

// Untar unpacks a tar stream into dir, creating parent directories
// on demand for entries that arrive before their directory.
func Untar(fs Fs, r io.Reader, dir string) error {
	madeDir := map[string]bool{}

	tr := tar.NewReader(r)

	for {
		f, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("Archive read error: %v", err)
		}

		rel := filepath.FromSlash(f.Name)
		abs := filepath.Join(dir, rel)

		mode := f.FileInfo().Mode()
		switch f.Typeflag {
		case tar.TypeReg:
			parent := filepath.Dir(abs)
			if !madeDir[parent] {
				if err := fs.MkdirAll(parent, 0755); err != nil {
					return err
				}
				madeDir[parent] = true
			}
			wf, err := fs.OpenFile(abs, os.O_RDWR|os.O_CREATE|os.O_TRUNC, mode.Perm())
			if err != nil {
				return err
			}
			n, err := io.Copy(wf, tr)
			if closeErr := wf.Close(); closeErr != nil && err == nil {
				err = closeErr
			}
			if err != nil {
				return fmt.Errorf("Error writing to %s: %v", abs, err)
			}
			if n != f.Size {
				return fmt.Errorf("Only wrote %d bytes to %s; expected %d", n, abs, f.Size)
			}
		case tar.TypeDir:
			if err := fs.MkdirAll(abs, mode.Perm()); err != nil {
				return err
			}
			madeDir[abs] = true
		case tar.TypeSymlink:
			linker, ok := fs.(afero.Symlinker)
			if !ok {
				return fmt.Errorf("Archive entry %s is a symlink, unsupported by the filesystem", f.Name)
			}
			if err := linker.SymlinkIfPossible(f.Linkname, abs); err != nil {
				return err
			}
		default:
			return fmt.Errorf("Archive entry %s contained unsupported file type %v", f.Name, mode)
		}
	}
	return nil
}

// Unzip unpacks the zip archive at path into dir.
func Unzip(fs Fs, path, dir string) error {
	file, err := fs.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return err
	}

	reader, err := zip.NewReader(file, info.Size())
	if err != nil {
		return fmt.Errorf("Archive read error: %v", err)
	}

	for _, entry := range reader.File {
		abs := filepath.Join(dir, filepath.FromSlash(entry.Name))

		if entry.FileInfo().IsDir() {
			if err := fs.MkdirAll(abs, 0755); err != nil {
				return err
			}
			continue
		}

		if err := fs.MkdirAll(filepath.Dir(abs), 0755); err != nil {
			return err
		}

		src, err := entry.Open()
		if err != nil {
			return fmt.Errorf("Archive read error: %v", err)
		}

		dst, err := fs.Create(abs)
		if err != nil {
			src.Close()
			return err
		}

		_, err = io.Copy(dst, src)
		src.Close()
		if closeErr := dst.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
		if err != nil {
			return fmt.Errorf("Error writing to %s: %v", abs, err)
		}
	}

	return nil
}
