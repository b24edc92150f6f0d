// Package fsys resolves the per-application directories (data, cache,
// shader cache, config, logs, resources) and wraps the small file helpers
// built on top of them.
package fsys

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"

	"github.com/hubastard/forge/engine/errs"
	"github.com/mitchellh/go-homedir"
)

// Paths holds the resolved base directories of one application.
type Paths struct {
	AppName string
	Data    string // per-user writable data dir
	Exec    string // directory of the running executable
}

// Resolve computes the paths for appName. A non-empty dataDir overrides the
// platform data location (it may start with ~).
func Resolve(appName, dataDir string) (Paths, error) {
	if appName == "" {
		return Paths{}, errs.New(errs.InvalidArgument, "fsys.Resolve", "empty application name")
	}
	p := Paths{AppName: appName}

	if exe, err := os.Executable(); err == nil {
		p.Exec = filepath.Dir(exe)
	}

	if dataDir != "" {
		d, err := homedir.Expand(dataDir)
		if err != nil {
			return Paths{}, errs.Wrap(errs.InvalidFilePath, "fsys.Resolve", err)
		}
		p.Data = d
		return p, nil
	}

	base, err := platformDataDir()
	if err != nil {
		return Paths{}, errs.Wrap(errs.InvalidFilePath, "fsys.Resolve", err)
	}
	p.Data = filepath.Join(base, appName)
	return p, nil
}

func platformDataDir() (string, error) {
	switch runtime.GOOS {
	case "windows":
		if d := os.Getenv("APPDATA"); d != "" {
			return d, nil
		}
	case "darwin":
		home, err := homedir.Dir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, "Library", "Application Support"), nil
	default:
		if d := os.Getenv("XDG_DATA_HOME"); d != "" {
			return d, nil
		}
	}
	home, err := homedir.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share"), nil
}

func (p Paths) Cache() string       { return filepath.Join(p.Data, "cache") }
func (p Paths) ShaderCache() string { return filepath.Join(p.Cache(), "shaders") }
func (p Paths) Config() string      { return filepath.Join(p.Data, "config") }
func (p Paths) Logs() string        { return filepath.Join(p.Data, "logs") }
func (p Paths) Resources() string   { return filepath.Join(p.Exec, "resources") }
func (p Paths) Shaders() string     { return filepath.Join(p.Resources(), "shaders") }

// Ensure creates the writable directories.
func (p Paths) Ensure() error {
	for _, dir := range []string{p.Cache(), p.ShaderCache(), p.Config(), p.Logs()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errs.Wrap(errs.FileAccessDenied, "fsys.Ensure", err)
		}
	}
	return nil
}

// Exists reports whether path exists.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ReadFile reads path, mapping the failure to FileNotFound,
// FileAccessDenied or the generic SystemBase code.
func ReadFile(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, &errs.Error{Code: classify(err), Op: "read", Path: path, Err: err}
	}
	return b, nil
}

// WriteFile writes b to path through a temporary file in the same
// directory, creating parents as needed. Readers never see a torn file.
func WriteFile(path string, b []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &errs.Error{Code: classify(err), Op: "mkdir", Path: dir, Err: err}
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return &errs.Error{Code: classify(err), Op: "write", Path: path, Err: err}
	}
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return &errs.Error{Code: errs.SystemBase, Op: "write", Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return &errs.Error{Code: errs.SystemBase, Op: "write", Path: path, Err: err}
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return &errs.Error{Code: classify(err), Op: "write", Path: path, Err: err}
	}
	return nil
}

func classify(err error) errs.Code {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return errs.FileNotFound
	case errors.Is(err, fs.ErrPermission):
		return errs.FileAccessDenied
	default:
		var pe *fs.PathError
		if errors.As(err, &pe) && pe.Op == "open" {
			return errs.FileAccessDenied
		}
		return errs.SystemBase
	}
}

func (p Paths) String() string {
	return fmt.Sprintf("%s (data %s)", p.AppName, p.Data)
}
