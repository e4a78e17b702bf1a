package derive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/tuxinal/packwiz-parent-pack/pkg/fetch"
	"github.com/tuxinal/packwiz-parent-pack/pkg/materialize"
	"github.com/tuxinal/packwiz-parent-pack/pkg/packwiz"
	"github.com/tuxinal/packwiz-parent-pack/pkg/paths"
)

type Config struct {
	// PackPath is pack.toml or the directory holding it. Empty means
	// the working directory.
	PackPath  string
	OutputDir string
	Getter    fetch.Getter
	Logger    *slog.Logger
}

// ResolvePackPath turns a user-supplied path into the path of a
// pack.toml.
func ResolvePackPath(p string) (string, error) {
	if p == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		p = wd
	}
	if filepath.Base(p) != packwiz.PackFile {
		p = filepath.Join(p, packwiz.PackFile)
	}
	return p, nil
}

// PrepareOutput creates dir if needed and fails unless it is an empty
// directory.
func PrepareOutput(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	f, err := os.Open(dir)
	if err != nil {
		return fmt.Errorf("open output: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat output: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	if _, err := f.Readdirnames(1); !errors.Is(err, io.EOF) {
		if err != nil {
			return fmt.Errorf("read output: %w", err)
		}
		return fmt.Errorf("%s: %w", dir, ErrOutputNotEmpty)
	}
	return nil
}

type childPack struct {
	path  string
	dir   string
	raw   []byte
	pack  *packwiz.Pack
	index *packwiz.Index
}

func loadChild(packPath string) (*childPack, error) {
	raw, err := readManifest(packPath)
	if err != nil {
		return nil, err
	}
	pack, err := packwiz.DecodePack(packPath, raw)
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(packPath)
	indexPath, err := paths.Join(dir, pack.Index.File)
	if err != nil {
		return nil, fmt.Errorf("index.file: %w", err)
	}
	indexRaw, err := readManifest(indexPath)
	if err != nil {
		return nil, err
	}
	index, err := packwiz.DecodeIndex(indexPath, indexRaw)
	if err != nil {
		return nil, err
	}
	return &childPack{
		path:  packPath,
		dir:   dir,
		raw:   raw,
		pack:  pack,
		index: index,
	}, nil
}

func readManifest(p string) ([]byte, error) {
	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", p, ErrManifestMissing)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", p, err)
	}
	return data, nil
}

type parentPack struct {
	remote *fetch.Remote
	index  *packwiz.Index
}

func loadParent(
	ctx context.Context,
	getter fetch.Getter,
	rawURL string,
	log *slog.Logger,
) (*parentPack, error) {
	base, err := fetch.ParseBase(rawURL)
	if err != nil {
		return nil, err
	}
	remote := &fetch.Remote{Getter: getter, Base: base}

	raw, err := getter.Get(ctx, base.String())
	if err != nil {
		return nil, fmt.Errorf("parent pack: %w", err)
	}
	pack, err := packwiz.DecodePack(base.String(), raw)
	if err != nil {
		return nil, err
	}

	indexRaw, err := remote.Fetch(
		ctx, pack.Index.File, pack.Index.Hash, pack.Index.HashFormat,
	)
	if err != nil {
		return nil, fmt.Errorf("parent index: %w", err)
	}
	indexURL, _ := remote.URL(pack.Index.File)
	index, err := packwiz.DecodeIndex(indexURL, indexRaw)
	if err != nil {
		return nil, err
	}
	log.Debug("parent index",
		"url", indexURL,
		"count", len(index.Files),
		"hash-format", index.HashFormat,
	)
	return &parentPack{remote: remote, index: index}, nil
}

// Run builds a standalone pack in cfg.OutputDir from the child pack at
// cfg.PackPath and its parent.
func Run(ctx context.Context, cfg Config) error {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	getter := cfg.Getter
	if getter == nil {
		getter = fetch.New()
	}

	packPath, err := ResolvePackPath(cfg.PackPath)
	if err != nil {
		return err
	}
	if _, err := os.Stat(packPath); err != nil {
		return fmt.Errorf("%s: %w", packPath, ErrManifestMissing)
	}
	if err := PrepareOutput(cfg.OutputDir); err != nil {
		return err
	}

	child, err := loadChild(packPath)
	if err != nil {
		return err
	}
	log.Debug("child index",
		"path", child.path,
		"count", len(child.index.Files),
		"hash-format", child.index.HashFormat,
	)

	parentURL := child.pack.Parent()
	if parentURL == "" {
		return fmt.Errorf("%s: %w", packPath, ErrNoParent)
	}
	parent, err := loadParent(ctx, getter, parentURL, log)
	if err != nil {
		return err
	}

	merged := packwiz.Merge(*parent.index, *child.index)

	stats, err := materialize.Run(ctx, merged.Files, materialize.Options{
		Local:         &fetch.Local{Dir: child.dir},
		Remote:        parent.remote,
		DefaultFormat: parent.index.HashFormat,
		OutputDir:     cfg.OutputDir,
		Logger:        log,
	})
	if err != nil {
		return err
	}

	if err := writeOutput(cfg.OutputDir, child, &merged); err != nil {
		return err
	}
	log.Info("pack generated",
		"output", cfg.OutputDir,
		"files", len(merged.Files),
		"copied", stats.Copied,
		"downloaded", stats.Downloaded,
	)
	return nil
}

func writeOutput(
	dir string, child *childPack, merged *packwiz.Index,
) error {
	indexData, err := merged.Encode()
	if err != nil {
		return err
	}

	doc, err := packwiz.DecodeDocument(child.path, child.raw)
	if err != nil {
		return err
	}
	doc, _, err = packwiz.Assemble(doc, indexData)
	if err != nil {
		return err
	}
	packData, err := doc.Encode()
	if err != nil {
		return err
	}

	indexPath, err := paths.Join(dir, child.pack.Index.File)
	if err != nil {
		return fmt.Errorf("index.file: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(indexPath), 0755); err != nil {
		return fmt.Errorf("mkdir index dir: %w", err)
	}
	if err := os.WriteFile(indexPath, indexData, 0644); err != nil {
		return fmt.Errorf("write index: %w", err)
	}
	packPath := filepath.Join(dir, packwiz.PackFile)
	if err := os.WriteFile(packPath, packData, 0644); err != nil {
		return fmt.Errorf("write pack: %w", err)
	}
	return nil
}
