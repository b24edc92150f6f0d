package shader

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/hubastard/forge/engine/errs"
	"github.com/hubastard/forge/engine/fsys"
	"github.com/hubastard/forge/engine/logx"
)

// Extensions of a cache entry: the intermediate binary and the stage source
// it was compiled from.
const (
	binaryExt = ".spv"
	sourceExt = ".wgsl"
)

// Cache stores compiled stage binaries under Root, keyed by shader name and
// stage, each next to the source that produced it. The key carries no source
// hash by default: an edited shader keeps loading its old binary and old
// source until the entry is removed (Invalidate) or ContentHash is turned on.
type Cache struct {
	Root string

	// ContentHash adds a hash of the stage source to the file name, so a
	// changed source misses the cache instead of reusing a stale binary.
	ContentHash bool

	Logger *slog.Logger
}

func NewCache(root string, logger *slog.Logger) *Cache {
	return &Cache{Root: root, Logger: logx.Or(logger)}
}

// Path returns the artifact path for (name, kind); src is only used when
// ContentHash is on.
func (c *Cache) Path(name string, kind StageKind, src string) string {
	return c.key(name, kind, src) + binaryExt
}

// SourcePath returns the path of the source stored with the artifact.
func (c *Cache) SourcePath(name string, kind StageKind, src string) string {
	return c.key(name, kind, src) + sourceExt
}

func (c *Cache) key(name string, kind StageKind, src string) string {
	file := name + "." + kind.String()
	if c.ContentHash {
		sum := sha256.Sum256([]byte(src))
		file += "." + hex.EncodeToString(sum[:4])
	}
	return filepath.Join(c.Root, name, file)
}

func (c *Cache) checkName(op, name string) error {
	if name == "" {
		return errs.New(errs.InvalidArgument, op, "empty shader name")
	}
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return errs.New(errs.InvalidArgument, op, "shader name %q is not a file name", name)
	}
	return nil
}

// Load returns the cached binary for (name, kind). A missing artifact is a
// miss (ok == false, err == nil), not an error.
func (c *Cache) Load(name string, kind StageKind, src string) (Binary, bool, error) {
	if err := c.checkName("cache.Load", name); err != nil {
		return nil, false, err
	}
	path := c.Path(name, kind, src)
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, &errs.Error{Code: errs.FileAccessDenied, Op: "cache.Load", Path: path, Err: err}
	}
	bin, err := BinaryFromBytes(b)
	if err != nil {
		return nil, false, &errs.Error{Code: errs.InvalidShaderModule, Op: "cache.Load", Path: path, Err: err}
	}
	logx.Trace(logx.Or(c.Logger), "shader cache hit", "shader", name, "stage", kind, "bytes", bin.Len())
	return bin, true, nil
}

// LoadSource returns the source stored with the artifact for (name, kind).
// For a stale entry it differs from src.
func (c *Cache) LoadSource(name string, kind StageKind, src string) (string, bool, error) {
	if err := c.checkName("cache.LoadSource", name); err != nil {
		return "", false, err
	}
	path := c.SourcePath(name, kind, src)
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, &errs.Error{Code: errs.FileAccessDenied, Op: "cache.LoadSource", Path: path, Err: err}
	}
	return string(b), true, nil
}

// Store writes bin verbatim for (name, kind) together with src, creating
// directories as needed. A half-written entry is removed. Callers treat a
// failure as non-fatal.
func (c *Cache) Store(name string, kind StageKind, src string, bin Binary) error {
	if err := c.checkName("cache.Store", name); err != nil {
		return err
	}
	path := c.Path(name, kind, src)
	if err := fsys.WriteFile(path, bin.Bytes()); err != nil {
		return err
	}
	if err := fsys.WriteFile(c.SourcePath(name, kind, src), []byte(src)); err != nil {
		_ = os.Remove(path)
		return err
	}
	logx.Trace(logx.Or(c.Logger), "shader cache store", "shader", name, "stage", kind, "path", path)
	return nil
}

// Invalidate removes every cached stage of one shader.
func (c *Cache) Invalidate(name string) error {
	if err := c.checkName("cache.Invalidate", name); err != nil {
		return err
	}
	dir := filepath.Join(c.Root, name)
	if err := os.RemoveAll(dir); err != nil {
		return &errs.Error{Code: errs.FileAccessDenied, Op: "cache.Invalidate", Path: dir, Err: err}
	}
	logx.Or(c.Logger).Debug("shader cache invalidated", "shader", name)
	return nil
}
