package cache

import (
	"archive/tar"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
)

// pack writes the given paths under dir into w as a gzip compressed tarball.
// Entry names are stored relative to dir. Paths that do not exist are skipped
// so a build that never produced its cache directory still saves cleanly.
func pack(w io.Writer, dir string, paths []string) error {
	gz := gzip.NewWriter(w)
	tw := tar.NewWriter(gz)

	for _, p := range paths {
		root := filepath.Join(dir, p)
		if _, err := os.Lstat(root); os.IsNotExist(err) {
			continue
		}

		err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			rel, err := filepath.Rel(dir, path)
			if err != nil {
				return err
			}

			link := ""
			if info.Mode()&os.ModeSymlink != 0 {
				if link, err = os.Readlink(path); err != nil {
					return err
				}
			}

			hdr, err := tar.FileInfoHeader(info, link)
			if err != nil {
				return err
			}
			hdr.Name = filepath.ToSlash(rel)

			if err := tw.WriteHeader(hdr); err != nil {
				return err
			}
			if !info.Mode().IsRegular() {
				return nil
			}

			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()

			_, err = io.Copy(tw, f)
			return err
		})
		if err != nil {
			return goerr.Wrap(err, "failed to archive cache path", goerr.V("path", p))
		}
	}

	if err := tw.Close(); err != nil {
		return goerr.Wrap(err, "failed to finalize tar stream")
	}
	if err := gz.Close(); err != nil {
		return goerr.Wrap(err, "failed to finalize gzip stream")
	}

	return nil
}

// unpack extracts a gzip compressed tarball from r into dir. Entries that
// would escape dir are rejected.
func unpack(r io.Reader, dir string) error {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return goerr.Wrap(err, "failed to open gzip stream")
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return goerr.Wrap(err, "failed to read tar stream")
		}

		name := filepath.FromSlash(hdr.Name)
		if !filepath.IsLocal(name) {
			return goerr.New("tar entry escapes restore directory", goerr.V("name", hdr.Name))
		}
		dst := filepath.Join(dir, name)

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(dst, os.FileMode(hdr.Mode)&os.ModePerm); err != nil {
				return goerr.Wrap(err, "failed to create directory", goerr.V("path", dst))
			}

		case tar.TypeSymlink:
			if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
				return goerr.Wrap(err, "failed to create parent directory", goerr.V("path", dst))
			}
			if err := os.Symlink(hdr.Linkname, dst); err != nil && !os.IsExist(err) {
				return goerr.Wrap(err, "failed to create symlink", goerr.V("path", dst))
			}

		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
				return goerr.Wrap(err, "failed to create parent directory", goerr.V("path", dst))
			}
			f, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.FileMode(hdr.Mode)&os.ModePerm)
			if err != nil {
				return goerr.Wrap(err, "failed to create file", goerr.V("path", dst))
			}
			if _, err := io.Copy(f, tr); err != nil {
				_ = f.Close()
				return goerr.Wrap(err, "failed to extract file", goerr.V("path", dst))
			}
			if err := f.Close(); err != nil {
				return goerr.Wrap(err, "failed to close file", goerr.V("path", dst))
			}
		}
	}

	return nil
}
