package bundle

import (
	"bufio"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/goopsie/texforge/pkg/dds"
	"github.com/goopsie/texforge/pkg/texture"
)

// ScannedFile is a texture queued for a bundle. Either Path or Resource
// supplies the data.
type ScannedFile struct {
	// Name is the key the texture is stored under.
	Name string
	Path string
	Size uint32
	Info *dds.Info

	Resource *texture.Resource
}

// ScanFiles walks inputDir and returns every .dds file below it, named by
// its slash-separated path relative to inputDir. Headers are parsed so a
// corrupt file fails the scan rather than the build.
func ScanFiles(inputDir string) ([]ScannedFile, error) {
	var files []ScannedFile

	err := filepath.WalkDir(inputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".dds") {
			return nil
		}

		relPath, err := filepath.Rel(inputDir, path)
		if err != nil {
			return errors.Wrap(err, "relative path")
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.Size() > math.MaxUint32 {
			return errors.Newf("file too large: %s (%d bytes)", path, info.Size())
		}

		header, err := readInfo(path)
		if err != nil {
			return err
		}

		files = append(files, ScannedFile{
			Name: filepath.ToSlash(relPath),
			Path: path,
			Size: uint32(info.Size()),
			Info: header,
		})
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "bundle: scan %s", inputDir)
	}

	return files, nil
}

func readInfo(path string) (*dds.Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := dds.DecodeHeader(bufio.NewReader(f))
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	return info, nil
}
