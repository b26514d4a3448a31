package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"
)

// batchInputs lists the input extensions each batch mode converts.
var batchInputs = map[string][]string{
	"decode": {".dds"},
	"encode": {".png", ".bmp", ".tif", ".tiff", ".tga"},
}

func runBatch(args []string) error {
	var verbose bool
	var jobs int
	var outExt string
	var out outputFlags
	flags := newFlagSet("batch", &verbose)
	flags.IntVar(&jobs, "j", runtime.NumCPU(), "Number of files converted concurrently")
	flags.StringVar(&outExt, "ext", ".png", "Output extension for decode mode")
	out.register(flags)
	pos, err := parseArgs(flags, args, 3)
	if err != nil {
		return err
	}
	mode, inputDir, outputDir := pos[0], pos[1], pos[2]

	inputs, ok := batchInputs[mode]
	if !ok {
		return errors.Newf("unknown batch mode: %s (want decode or encode)", mode)
	}
	opts, err := out.options()
	if err != nil {
		return err
	}
	if !strings.HasPrefix(outExt, ".") {
		outExt = "." + outExt
	}

	convert := func(src, dst string) error {
		if mode == "decode" {
			img, err := loadImage(src)
			if err != nil {
				return err
			}
			return saveImage(dst, img, opts)
		}
		return encodeFile(src, dst, opts, NewLogger(os.Stdout, false))
	}

	log := NewLogger(os.Stdout, verbose)
	log.Step("scan", inputDir)
	files, err := collectFiles(inputDir, inputs)
	if err != nil {
		return err
	}
	log.Done(fmt.Sprintf("%d files", len(files)))
	log.Info("%d workers, output format %s", max(jobs, 1), opts.format.Name())

	var (
		converted atomic.Int64
		mu        sync.Mutex
		failed    []string
	)
	var g errgroup.Group
	g.SetLimit(max(jobs, 1))
	for _, rel := range files {
		rel := rel
		g.Go(func() error {
			src := filepath.Join(inputDir, rel)
			dst := filepath.Join(outputDir, strings.TrimSuffix(rel, filepath.Ext(rel)))
			if mode == "decode" {
				dst += outExt
			} else {
				dst += ".dds"
			}

			if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
				return errors.Wrapf(err, "mkdir %s", filepath.Dir(dst))
			}
			if err := convert(src, dst); err != nil {
				fmt.Fprintf(os.Stderr, "convert %s: %v\n", src, err)
				mu.Lock()
				failed = append(failed, rel)
				mu.Unlock()
				return nil
			}
			converted.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	log.Total()

	fmt.Printf("Converted %d files, %d failed\n", converted.Load(), len(failed))
	if len(failed) > 0 {
		return errors.Newf("%d of %d files failed", len(failed), len(files))
	}
	return nil
}

// collectFiles returns the paths under root, relative to root, whose
// extension is one of exts.
func collectFiles(root string, exts []string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		e := ext(path)
		for _, want := range exts {
			if e == want {
				rel, err := filepath.Rel(root, path)
				if err != nil {
					return err
				}
				files = append(files, rel)
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "walk %s", root)
	}
	return files, nil
}
