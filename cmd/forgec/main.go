// Command forgec runs annotated shader files through the shader pipeline
// without a GPU: it compiles and caches every stage, reflects the
// resources and prints or writes the backend output.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/hubastard/forge/engine/fsys"
	"github.com/hubastard/forge/engine/logx"
	"github.com/hubastard/forge/engine/profiler"
	"github.com/hubastard/forge/engine/shader"
)

func main() {
	var (
		mode        = flag.String("mode", "translate", "translate, binary or direct")
		glVersion   = flag.String("gl", "4.1", "OpenGL version the GLSL output targets")
		cacheDir    = flag.String("cache", "", "shader cache directory (default the per-user forge cache)")
		noCache     = flag.Bool("no-cache", false, "always compile, never read or write the cache")
		contentHash = flag.Bool("hash", false, "key cache entries by source hash")
		validate    = flag.Bool("validate", true, "validate the IR before generating SPIR-V")
		outDir      = flag.String("out", "", "write <name>.<stage>.glsl/.spv files into this directory")
		jobs        = flag.Int("j", runtime.NumCPU(), "files compiled in parallel (1 with -profile)")
		verbose     = flag.Bool("v", false, "debug logging")
		profile     = flag.Bool("profile", false, "print pipeline step timings")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: forgec [flags] file.shader...\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	log := logx.New(os.Stderr, level)

	opts := options{contentHash: *contentHash, validate: *validate, outDir: *outDir, jobs: jobsFor(*jobs, *profile)}
	var err error
	if opts.mode, err = shader.ParseMode(*mode); err != nil {
		fatal(err)
	}
	if opts.major, opts.minor, err = parseGLVersion(*glVersion); err != nil {
		fatal(err)
	}
	if !*noCache {
		opts.cacheDir = *cacheDir
		if opts.cacheDir == "" {
			paths, err := fsys.Resolve("forge", "")
			if err != nil {
				fatal(err)
			}
			opts.cacheDir = paths.ShaderCache()
		}
	}

	if *profile {
		profiler.Init(1 << 16)
	}

	results := compileAll(newPipeline(opts, log), flag.Args(), opts.jobs)
	failed := report(os.Stdout, results)

	if opts.outDir != "" {
		for _, r := range results {
			if r.err != nil {
				continue
			}
			files, err := writeOutputs(opts.outDir, r.prepared)
			if err != nil {
				fatal(err)
			}
			for _, f := range files {
				log.Debug("wrote", "file", f)
			}
		}
	}

	if *profile {
		for _, s := range profiler.Summary() {
			fmt.Printf("%-16s %4d× total %-10v mean %-10v max %v\n", s.Name, s.Count, s.Total, s.Mean(), s.Max)
		}
	}
	if failed > 0 {
		os.Exit(1)
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "forgec:", err)
	os.Exit(1)
}
