package mirror

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/gdmirror/gdmirror/internal/utils"
)

// Scan walks the input directory and returns every regular file to mirror,
// sorted by relative path. The pattern is a shell glob matched against base
// names; an empty pattern matches everything. Symlinks and special files are
// skipped, directories are always descended.
func Scan(ctx context.Context, root, pattern string) ([]LocalEntry, error) {
	if pattern != "" {
		if _, err := path.Match(pattern, "probe"); err != nil {
			return nil, utils.NewAppError(utils.NewCLIError(utils.ErrCodeInvalidArgument,
				fmt.Sprintf("invalid filter pattern %q", pattern)).Build())
		}
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, scanError(fmt.Sprintf("cannot access input directory %s: %s", root, err))
	}
	if !info.IsDir() {
		return nil, scanError(fmt.Sprintf("input path is not a directory: %s", root))
	}

	var entries []LocalEntry
	err = filepath.WalkDir(root, func(current string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if d.Type()&os.ModeSymlink != 0 {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		fileInfo, err := d.Info()
		if err != nil {
			return err
		}
		if !fileInfo.Mode().IsRegular() {
			return nil
		}

		if pattern != "" {
			matched, _ := path.Match(pattern, d.Name())
			if !matched {
				return nil
			}
		}

		rel, err := filepath.Rel(root, current)
		if err != nil {
			return err
		}
		entries = append(entries, LocalEntry{
			RelPath: path.Clean(filepath.ToSlash(rel)),
			AbsPath: current,
			Size:    fileInfo.Size(),
			ModTime: fileInfo.ModTime(),
		})
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		return nil, scanError(fmt.Sprintf("failed to scan %s: %s", root, err))
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].RelPath < entries[j].RelPath
	})
	return entries, nil
}

func scanError(message string) error {
	return utils.NewAppError(utils.NewCLIError(utils.ErrCodeScanError, message).Build())
}
