package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/goopsie/texforge/pkg/archive"
	"github.com/goopsie/texforge/pkg/bundle"
	"github.com/goopsie/texforge/pkg/pixel"
)

func runBundle(args []string) error {
	var verbose bool
	var level, frameSize int
	fs := newFlagSet("bundle", &verbose)
	fs.IntVar(&level, "level", archive.DefaultCompressionLevel, "Zstd compression level")
	fs.IntVar(&frameSize, "frame-size", bundle.DefaultFrameSize, "Uncompressed bytes per frame")
	pos, err := parseArgs(fs, args, 3)
	if err != nil {
		return err
	}
	inputDir, dataDir, name := pos[0], pos[1], pos[2]
	log := NewLogger(os.Stdout, verbose)

	fmt.Println("Scanning input directory...")
	log.Step("scan", inputDir)
	files, err := bundle.ScanFiles(inputDir)
	if err != nil {
		return err
	}
	log.Done(fmt.Sprintf("%d textures", len(files)))

	b := bundle.NewBuilder(dataDir, name)
	b.SetCompressionLevel(level)
	b.SetFrameSize(frameSize)

	log.Step("build", name)
	m, err := b.Build(files)
	if err != nil {
		return err
	}
	log.Done(fmt.Sprintf("%d frames", len(m.Frames)))
	log.Total()

	fmt.Printf("Bundled %d textures into %d packages in %s\n", m.FileCount(), m.PackageCount(), dataDir)
	return nil
}

func runExtract(args []string) error {
	var verbose, list bool
	var formats string
	fs := newFlagSet("extract", &verbose)
	fs.BoolVar(&list, "list", false, "List the bundle contents instead of extracting")
	fs.StringVar(&formats, "formats", "", "Comma-separated pixel formats to extract (default: all)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	want := 3
	if list {
		want = 2
	}
	pos, err := parseArgs(fs, fs.Args(), want)
	if err != nil {
		return err
	}
	dataDir, name := pos[0], pos[1]
	log := NewLogger(os.Stdout, verbose)

	pkg, err := bundle.Open(dataDir, name)
	if err != nil {
		return err
	}
	defer pkg.Close()

	m := pkg.Manifest()
	fmt.Printf("Manifest loaded: %d textures in %d packages\n", m.FileCount(), m.PackageCount())

	if list {
		for i, e := range m.Entries {
			fmt.Printf("%-40s %-20s %-12s mips=%d arrays=%d\n",
				m.Names[i], e.Tag(), e.TextureSize(), e.MipLevels, e.ArraySize)
		}
		return nil
	}

	var tags []pixel.Tag
	if formats != "" {
		for _, f := range strings.Split(formats, ",") {
			format, err := pixel.Lookup(strings.TrimSpace(f))
			if err != nil {
				return err
			}
			tags = append(tags, format.Tag())
		}
	}

	outputDir := pos[2]
	log.Step("extract", outputDir)
	if err := pkg.Extract(outputDir, bundle.WithFormatFilter(tags...)); err != nil {
		return err
	}
	log.Done("ok")
	log.Total()

	fmt.Printf("Extraction complete. Files written to %s\n", outputDir)
	return nil
}
