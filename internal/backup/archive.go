package backup

import (
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zip"
	"github.com/pkg/errors"
)

// zipFile packs src into a new archive at dst and returns the archive size.
func zipFile(src, dst string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, errors.Wrap(err, "failed to open dump")
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return 0, errors.Wrap(err, "failed to stat dump")
	}

	out, err := os.Create(dst)
	if err != nil {
		return 0, errors.Wrap(err, "failed to create archive")
	}

	zw := zip.NewWriter(out)

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		_ = out.Close()

		return 0, errors.Wrap(err, "failed to build archive header")
	}

	header.Name = filepath.Base(src)
	header.Method = zip.Deflate

	w, err := zw.CreateHeader(header)
	if err == nil {
		_, err = io.Copy(w, in)
	}

	if err == nil {
		err = zw.Close()
	}

	if errClose := out.Close(); err == nil {
		err = errClose
	}

	if err != nil {
		_ = os.Remove(dst)

		return 0, errors.Wrap(err, "failed to write archive")
	}

	st, err := os.Stat(dst)
	if err != nil {
		return 0, errors.Wrap(err, "failed to stat archive")
	}

	return st.Size(), nil
}
