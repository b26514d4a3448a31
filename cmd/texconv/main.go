// texconv converts, resamples and packs DDS textures.
//
// Usage:
//
//	texconv info input.dds                         # Show header and layout
//	texconv decode [-mip n] input.dds output.png   # DDS → png/bmp/tiff
//	texconv encode [-format f] input.png out.dds   # png/bmp/tiff/tga → DDS
//	texconv resize -w 256 -h 256 in out            # Resample an image
//	texconv normalmap [-scale s] height.png out    # Height map → normal map
//	texconv sdf [-metric m] mask.png out           # Signed distance field
//	texconv pack input.dds output.tex              # DDS → compressed container
//	texconv unpack input.tex output.dds            # Container → DDS
//	texconv bundle dir/ data/ textures             # Pack a directory of DDS files
//	texconv extract data/ textures out/            # Unpack a bundle
//	texconv batch [-j n] decode|encode dir out     # Convert a directory
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
)

type command struct {
	name  string
	usage string
	run   func(args []string) error
}

// commands is populated in init to break the initialization cycle through
// newFlagSet, whose usage func reads the table.
var commands []command

func init() {
	commands = []command{
		{"info", "info <input.dds>", runInfo},
		{"decode", "decode [flags] <input.dds> <output.png|bmp|tiff>", runDecode},
		{"encode", "encode [flags] <input> <output.dds>", runEncode},
		{"resize", "resize -w W -h H [flags] <input> <output>", runResize},
		{"normalmap", "normalmap [flags] <height> <output>", runNormalMap},
		{"sdf", "sdf [flags] <mask> <output>", runSDF},
		{"pack", "pack [flags] <input> <output.tex>", runPack},
		{"unpack", "unpack <input.tex> <output.dds>", runUnpack},
		{"bundle", "bundle [flags] <input_dir> <data_dir> <name>", runBundle},
		{"extract", "extract [flags] <data_dir> <name> [output_dir]", runExtract},
		{"batch", "batch [flags] <decode|encode> <input_dir> <output_dir>", runBatch},
	}
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	name := os.Args[1]
	for _, cmd := range commands {
		if cmd.name != name {
			continue
		}
		err := cmd.run(os.Args[2:])
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	fmt.Fprintf(os.Stderr, "Unknown command: %s\n", name)
	printUsage()
	os.Exit(1)
}

func printUsage() {
	fmt.Println("texconv - DDS texture converter")
	fmt.Println()
	fmt.Println("Usage:")
	for _, cmd := range commands {
		fmt.Printf("  texconv %s\n", cmd.usage)
	}
	fmt.Println()
	fmt.Println("Run 'texconv <command> -h' for command flags.")
}

// newFlagSet returns a flag set for the named command with the shared -v
// flag registered.
func newFlagSet(name string, verbose *bool) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.BoolVar(verbose, "v", false, "Print timed progress steps")
	fs.Usage = func() {
		for _, cmd := range commands {
			if cmd.name == name {
				fmt.Fprintf(fs.Output(), "Usage: texconv %s\n", cmd.usage)
			}
		}
		fs.PrintDefaults()
	}
	return fs
}

// parseArgs parses args into fs and checks the positional argument count.
func parseArgs(fs *flag.FlagSet, args []string, want int) ([]string, error) {
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != want {
		fs.Usage()
		return nil, errors.Newf("%s: expected %d arguments, got %d", fs.Name(), want, fs.NArg())
	}
	return fs.Args(), nil
}
