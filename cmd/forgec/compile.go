package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/muesli/termenv"
	"golang.org/x/sync/errgroup"

	"github.com/hubastard/forge/engine/errs"
	"github.com/hubastard/forge/engine/fsys"
	"github.com/hubastard/forge/engine/shader"
)

type options struct {
	mode         shader.Mode
	major, minor int
	cacheDir     string // "" disables the cache
	contentHash  bool
	validate     bool
	outDir       string
	jobs         int
}

type result struct {
	path     string
	prepared *shader.Prepared
	err      error
}

// parseGLVersion reads "4.1" style versions.
func parseGLVersion(s string) (major, minor int, err error) {
	if _, err := fmt.Sscanf(s, "%d.%d", &major, &minor); err != nil {
		return 0, 0, errs.New(errs.InvalidArgument, "forgec", "bad OpenGL version %q, want e.g. 4.1", s)
	}
	if major < 3 || major > 4 || (major == 3 && minor < 3) || minor > 6 {
		return 0, 0, errs.New(errs.InvalidArgument, "forgec", "OpenGL %d.%d is outside 3.3 to 4.6", major, minor)
	}
	return major, minor, nil
}

// jobsFor returns the number of files compiled at once. Profiler scopes
// only nest within one goroutine, so a profiled run compiles serially.
func jobsFor(jobs int, profile bool) int {
	if profile || jobs < 1 {
		return 1
	}
	return jobs
}

func newPipeline(opts options, log *slog.Logger) *shader.Pipeline {
	copts := shader.DefaultCompilerOptions()
	copts.Validate = opts.validate
	compiler := shader.NewCompiler(copts)

	var cache *shader.Cache
	if opts.cacheDir != "" {
		cache = shader.NewCache(opts.cacheDir, log)
		cache.ContentHash = opts.contentHash
	}
	return &shader.Pipeline{
		Compiler:   compiler,
		Cache:      cache,
		Translator: shader.TranslatorFor(opts.major, opts.minor, compiler),
		Mode:       opts.mode,
		Logger:     log,
	}
}

// compileAll prepares every file, at most jobs at a time. Results keep the
// order of paths; a failing file does not stop the others.
func compileAll(p *shader.Pipeline, paths []string, jobs int) []result {
	results := make([]result, len(paths))
	var g errgroup.Group
	if jobs > 0 {
		g.SetLimit(jobs)
	}
	for i, path := range paths {
		g.Go(func() error {
			prep, err := p.Prepare(path, shader.FromFile)
			results[i] = result{path: path, prepared: prep, err: err}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// writeOutputs writes <name>.<stage>.glsl for translated or direct stages
// and <name>.<stage>.spv for compiled ones.
func writeOutputs(dir string, prep *shader.Prepared) ([]string, error) {
	var written []string
	for _, code := range prep.Stages {
		base := filepath.Join(dir, prep.Name+"."+strings.ToLower(code.Kind.String()))
		if code.Source != "" {
			if err := fsys.WriteFile(base+".glsl", []byte(code.Source)); err != nil {
				return written, err
			}
			written = append(written, base+".glsl")
		}
		if len(code.Binary) > 0 {
			if err := fsys.WriteFile(base+".spv", code.Binary.Bytes()); err != nil {
				return written, err
			}
			written = append(written, base+".spv")
		}
	}
	return written, nil
}

// report prints one block per file and returns the number of failures.
func report(w io.Writer, results []result) int {
	out := termenv.NewOutput(w)
	ok := out.String("ok").Foreground(termenv.ANSIGreen).Bold().String()
	failed := 0

	for _, r := range results {
		if r.err != nil {
			failed++
			fmt.Fprintf(w, "%s %s\n", out.String("FAILED").Foreground(termenv.ANSIRed).Bold(), r.path)
			fmt.Fprintf(w, "  %v\n", r.err)
			var e *errs.Error
			if errors.As(r.err, &e) && e.Log != "" {
				for _, line := range strings.Split(strings.TrimSpace(e.Log), "\n") {
					fmt.Fprintf(w, "    %s\n", line)
				}
			}
			continue
		}

		prep := r.prepared
		fmt.Fprintf(w, "%s %s (%s)\n", ok, prep.Name, r.path)
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "  STAGE\tSPIR-V\tENTRY\tGLSL")
		for _, code := range prep.Stages {
			spv, entry := "-", "-"
			if len(code.Binary) > 0 {
				major, minor := code.Binary.Version()
				spv = fmt.Sprintf("%d.%d %dB", major, minor, code.Binary.Len())
				if name, err := shader.EntryPoint(code.Binary, code.Kind); err == nil {
					entry = name
				}
			}
			glsl := "-"
			if code.Source != "" {
				glsl = fmt.Sprintf("%d lines", strings.Count(code.Source, "\n"))
			}
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", code.Kind, spv, entry, glsl)
		}
		tw.Flush()

		if res := prep.Reflection.All(); len(res) > 0 {
			tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "  RESOURCE\tKIND\tSET\tBINDING\tLOCATION\tSIZE\tMEMBERS")
			for _, res := range res {
				fmt.Fprintf(tw, "  %s\t%s\t%d\t%d\t%d\t%d\t%d\n",
					res.Name, res.Kind, res.Set, res.Binding, res.Location, res.Size, res.MemberCount)
			}
			tw.Flush()
		}
	}
	return failed
}
