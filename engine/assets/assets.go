// Package assets locates engine assets on disk.
package assets

import (
	"path/filepath"
	"strings"

	"github.com/hubastard/forge/engine/errs"
	"github.com/hubastard/forge/engine/fsys"
)

// SearchPath is an ordered list of directories an asset name is looked up in.
type SearchPath []string

// Shaders searches ./assets/shaders first, then the resources next to the
// executable.
func Shaders(p fsys.Paths) SearchPath {
	s := SearchPath{filepath.Join("assets", "shaders")}
	if p.Exec != "" {
		s = append(s, p.Shaders())
	}
	return s
}

// Find returns the path of name. A name that already exists as given (an
// absolute path, or one relative to the working directory) is returned
// unchanged; otherwise the directories are tried in order.
func (s SearchPath) Find(name string) (string, error) {
	if name == "" {
		return "", errs.New(errs.InvalidArgument, "assets.Find", "empty asset name")
	}
	if fsys.Exists(name) {
		return name, nil
	}
	tried := make([]string, 0, len(s))
	for _, dir := range s {
		path := filepath.Join(dir, name)
		if fsys.Exists(path) {
			return path, nil
		}
		tried = append(tried, path)
	}
	return "", &errs.Error{
		Code: errs.FileNotFound,
		Op:   "assets.Find",
		Path: name,
		Log:  "tried " + strings.Join(tried, ", "),
	}
}
