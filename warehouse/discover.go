package warehouse

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

var workbookExts = map[string]bool{".xlsx": true, ".xlsm": true, ".xltx": true}

// lockPrefix marks the lock files spreadsheet editors leave next to an open
// workbook.
const lockPrefix = "~$"

// walkFiles lists the files under root accepted by keep, sorted. A missing
// root yields no files. Directories in skip are not entered.
func walkFiles(root string, skip []string, keep func(name string) bool) ([]string, error) {
	skipped := make(map[string]bool, len(skip))
	for _, s := range skip {
		if strings.TrimSpace(s) != "" {
			skipped[filepath.Clean(s)] = true
		}
	}
	var out []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == root && errors.Is(err, fs.ErrNotExist) {
				return fs.SkipAll
			}
			return err
		}
		if d.IsDir() {
			if p != root && skipped[filepath.Clean(p)] {
				return fs.SkipDir
			}
			return nil
		}
		if keep(d.Name()) {
			out = append(out, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(out)
	return out, nil
}

// DiscoverWorkbooks lists the workbooks of src. The clean and error
// directories are skipped when they sit inside the raw directory.
func DiscoverWorkbooks(src Source) ([]string, error) {
	return walkFiles(src.RawDir, []string{src.CleanDir, src.ErrorDir}, func(name string) bool {
		return !strings.HasPrefix(name, lockPrefix) && workbookExts[strings.ToLower(filepath.Ext(name))]
	})
}

// DiscoverClean lists the clean files of src.
func DiscoverClean(src Source) ([]string, error) {
	return walkFiles(src.CleanDir, nil, func(name string) bool {
		return strings.EqualFold(filepath.Ext(name), ".csv")
	})
}

// discoverAll runs find for every source concurrently. The walks only read
// the file system; results are keyed by category.
func discoverAll(ctx context.Context, sources []Source, find func(Source) ([]string, error)) (map[string][]string, error) {
	var mu sync.Mutex
	out := make(map[string][]string, len(sources))
	g, ctx := errgroup.WithContext(ctx)
	for _, src := range sources {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			files, err := find(src)
			if err != nil {
				return err
			}
			mu.Lock()
			out[src.Category] = files
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// pending drops files whose base name is already in loaded.
func pending(files []string, loaded map[string]struct{}) []string {
	var out []string
	for _, f := range files {
		if _, ok := loaded[filepath.Base(f)]; !ok {
			out = append(out, f)
		}
	}
	return out
}
