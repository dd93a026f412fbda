// Package bundle packs generated documents into zip archives and unpacks
// archives back onto disk.
package bundle

import (
	"bytes"
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/mholt/archives"
	"github.com/pkg/errors"
)

// Pack writes files (archive name to content) into a zip archive.
func Pack(ctx context.Context, files map[string][]byte) ([]byte, error) {
	stage, err := os.MkdirTemp("", "bundle-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(stage)

	names := make(map[string]string, len(files))
	for name, data := range files {
		path := filepath.Join(stage, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return nil, err
		}
		names[path] = name
	}

	infos, err := archives.FilesFromDisk(ctx, nil, names)
	if err != nil {
		return nil, errors.Wrap(err, "collect bundle files")
	}
	var buf bytes.Buffer
	if err := (archives.Zip{}).Archive(ctx, &buf, infos); err != nil {
		return nil, errors.Wrap(err, "write zip archive")
	}
	return buf.Bytes(), nil
}

// Unpack extracts the contents of a ZIP or RAR archive to a temporary directory.
func Unpack(ctx context.Context, archivePath string) ([]string, string, error) {
	destDir, err := os.MkdirTemp("", "extract-*")
	if err != nil {
		return nil, "", err
	}

	fsys, err := archives.FileSystem(ctx, archivePath, nil)
	if err != nil {
		os.RemoveAll(destDir)
		return nil, "", err
	}

	var files []string
	err = fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		reader, err := fsys.Open(path)
		if err != nil {
			return err
		}
		defer reader.Close()

		destPath := filepath.Join(destDir, path)
		if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
			return err
		}

		outFile, err := os.Create(destPath)
		if err != nil {
			return err
		}
		defer outFile.Close()

		if _, err := io.Copy(outFile, reader); err != nil {
			return err
		}

		files = append(files, destPath)
		return nil
	})
	if err != nil {
		os.RemoveAll(destDir)
		return nil, "", err
	}

	return files, destDir, nil
}
