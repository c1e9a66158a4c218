// Package packager stages rendered artifacts on disk and streams them as a zip archive.
package packager

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zip"
	"github.com/rs/zerolog/log"

	"admin_codegen/internal/render"
)

type Packager struct {
	baseDir string
}

// New returns a packager staging under baseDir, or the system temp dir when empty.
func New(baseDir string) *Packager {
	if baseDir == "" {
		baseDir = os.TempDir()
	}
	return &Packager{baseDir: baseDir}
}

// StageAndArchive writes files into a fresh staging directory, zips that directory
// into w and removes it again. Every call gets its own directory.
func (p *Packager) StageAndArchive(ctx context.Context, files []render.File, w io.Writer) error {
	if err := os.MkdirAll(p.baseDir, 0o755); err != nil {
		return fmt.Errorf("failed to create staging base %s: %w", p.baseDir, err)
	}
	dir := filepath.Join(p.baseDir, "gen-"+uuid.NewString())
	if err := os.Mkdir(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create staging dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			log.Warn().Err(err).Str("dir", dir).Msg("failed to remove staging dir")
		}
	}()

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		target, err := stagedPath(dir, f.Path)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("failed to create dir for %s: %w", f.Path, err)
		}
		if err := os.WriteFile(target, []byte(f.Content), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", f.Path, err)
		}
	}

	log.Debug().Str("dir", dir).Int("files", len(files)).Msg("staged generated files")
	return zipDir(ctx, dir, w)
}

// Archive zips files straight from memory.
func Archive(files []render.File, w io.Writer) error {
	zw := zip.NewWriter(w)
	for _, f := range files {
		name, err := archiveName(f.Path)
		if err != nil {
			return err
		}
		entry, err := zw.Create(name)
		if err != nil {
			return fmt.Errorf("failed to add %s: %w", name, err)
		}
		if _, err := io.WriteString(entry, f.Content); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
	}
	return zw.Close()
}

func zipDir(ctx context.Context, dir string, w io.Writer) error {
	zw := zip.NewWriter(w)
	err := filepath.WalkDir(dir, func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, name)
		if err != nil {
			return err
		}
		src, err := os.Open(name)
		if err != nil {
			return err
		}
		defer src.Close()

		entry, err := zw.Create(filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		_, err = io.Copy(entry, src)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to archive %s: %w", dir, err)
	}
	return zw.Close()
}

// archiveName cleans a relative artifact path and rejects paths leaving the archive root.
func archiveName(p string) (string, error) {
	clean := path.Clean(filepath.ToSlash(p))
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") || strings.HasPrefix(clean, "/") {
		return "", fmt.Errorf("invalid artifact path %q", p)
	}
	return clean, nil
}

func stagedPath(dir, p string) (string, error) {
	name, err := archiveName(p)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, filepath.FromSlash(name)), nil
}
