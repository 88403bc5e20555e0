package devices

import (
	"context"
	"fmt"
	"github.com/shimmeringbee/logwrap"
	"github.com/shimmeringbee/logwrap/impl/discard"
	"golang.org/x/sync/errgroup"
	"io/fs"
	"path"
	"strings"
)

const DefaultLoadConcurrency = 4

// Loader builds a Registry from a tree of device configuration files.
type Loader struct {
	Logger      logwrap.Logger
	Concurrency int
}

func NewLoader() *Loader {
	return &Loader{Logger: logwrap.New(discard.Discard()), Concurrency: DefaultLoadConcurrency}
}

// Load parses every .yaml or .yml file under fsys and builds a registry. Files are parsed
// concurrently, but the registry's canonical order is always by file path then position in
// file. Any malformed file fails the load, a partial registry is never returned.
func (l *Loader) Load(pctx context.Context, fsys fs.FS) (*Registry, error) {
	ctx, end := l.Logger.Segment(pctx, "Loading device configuration registry.")
	defer end()

	files, err := configFiles(fsys)
	if err != nil {
		l.Logger.LogError(ctx, "Failed to enumerate device configuration files.", logwrap.Err(err))
		return nil, err
	}

	parsed := make([][]Entry, len(files))

	g, gctx := errgroup.WithContext(ctx)

	if l.Concurrency > 0 {
		g.SetLimit(l.Concurrency)
	}

	for i, file := range files {
		i, file := i, file

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			data, err := fs.ReadFile(fsys, file)
			if err != nil {
				return fmt.Errorf("reading %s: %w", file, err)
			}

			entries, err := decodeFile(file, data)
			if err != nil {
				return err
			}

			l.Logger.LogTrace(gctx, "Parsed device configuration file.", logwrap.Datum("File", file), logwrap.Datum("Entries", len(entries)))
			parsed[i] = entries

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		l.Logger.LogError(ctx, "Failed to parse device configuration registry.", logwrap.Err(err))
		return nil, err
	}

	var entries []Entry
	for _, e := range parsed {
		entries = append(entries, e...)
	}

	r, err := Build(entries)
	if err != nil {
		l.Logger.LogError(ctx, "Failed to build device configuration registry.", logwrap.Err(err))
		return nil, err
	}

	l.Logger.LogInfo(ctx, "Loaded device configuration registry.", logwrap.Datum("Files", len(files)), logwrap.Datum("Entries", r.Len()))

	return r, nil
}

func configFiles(fsys fs.FS) ([]string, error) {
	var files []string

	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			return nil
		}

		switch strings.ToLower(path.Ext(p)) {
		case ".yaml", ".yml":
			files = append(files, p)
		}

		return nil
	})

	return files, err
}
