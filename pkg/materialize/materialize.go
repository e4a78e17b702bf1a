package materialize

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/tuxinal/packwiz-parent-pack/pkg/hashfmt"
	"github.com/tuxinal/packwiz-parent-pack/pkg/packwiz"
	"github.com/tuxinal/packwiz-parent-pack/pkg/paths"
)

// MaxConcurrent bounds in-flight fetch/copy operations.
const MaxConcurrent = 8

type LocalSource interface {
	Exists(rel string) (bool, error)
	Read(rel string) ([]byte, error)
}

type RemoteSource interface {
	Fetch(
		ctx context.Context,
		rel, hash string,
		format hashfmt.Format,
	) ([]byte, error)
}

type Options struct {
	Local  LocalSource
	Remote RemoteSource
	// DefaultFormat applies to remote entries without their own format.
	DefaultFormat hashfmt.Format
	OutputDir     string
	Logger        *slog.Logger
}

type Stats struct {
	Copied     int
	Downloaded int
}

// Run writes every entry under opts.OutputDir. Entries present in the
// local source are copied as-is; the rest are fetched remotely and
// verified. The first failure stops new work and is returned; files
// already written stay in place.
func Run(
	ctx context.Context,
	entries []packwiz.File,
	opts Options,
) (Stats, error) {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	for _, e := range entries {
		if err := paths.ValidateRelPath(e.File); err != nil {
			return Stats{}, fmt.Errorf("invalid path %q: %w", e.File, err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(MaxConcurrent)

	results := make([]source, len(entries))
	for i, e := range entries {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			src, err := materializeOne(ctx, e, opts)
			if err != nil {
				return err
			}
			results[i] = src
			log.Debug("materialized",
				"path", e.File,
				"source", src,
			)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Stats{}, err
	}

	var stats Stats
	for _, src := range results {
		switch src {
		case sourceLocal:
			stats.Copied++
		case sourceRemote:
			stats.Downloaded++
		}
	}
	return stats, nil
}

type source string

const (
	sourceLocal  source = "local"
	sourceRemote source = "remote"
)

func materializeOne(
	ctx context.Context,
	e packwiz.File,
	opts Options,
) (source, error) {
	local, err := opts.Local.Exists(e.File)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", e.File, err)
	}

	var (
		data []byte
		src  source
	)
	if local {
		src = sourceLocal
		data, err = opts.Local.Read(e.File)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", e.File, err)
		}
	} else {
		src = sourceRemote
		data, err = opts.Remote.Fetch(
			ctx, e.File, e.Hash, e.Format(opts.DefaultFormat),
		)
		if err != nil {
			return "", err
		}
	}

	if err := writeFile(opts.OutputDir, e.File, data); err != nil {
		return "", err
	}
	return src, nil
}

func writeFile(dir, rel string, data []byte) error {
	target, err := paths.Join(dir, rel)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("mkdir parent: %w", err)
	}
	if err := os.WriteFile(target, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", rel, err)
	}
	return nil
}
