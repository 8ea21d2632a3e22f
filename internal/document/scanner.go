package document

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"bookbot/internal/contextutil"
)

// Scan returns every supported document under dir, sorted by path.
// Hidden directories are skipped. Unreadable entries below dir are logged and
// skipped; only an unreadable dir fails the scan.
func Scan(ctx context.Context, dir string) ([]string, error) {
	logger := contextutil.LoggerFromContext(ctx)

	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to access folder %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a folder", dir)
	}
	if _, err := os.ReadDir(dir); err != nil {
		return nil, fmt.Errorf("failed to list folder %s: %w", dir, err)
	}

	var paths []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			logger.WarnContext(ctx, "skipping unreadable path", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(d.Name(), ".") || !Supported(path) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(paths)
	return paths, nil
}
