package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"

	"github.com/cockroachdb/errors"

	"github.com/goopsie/texforge/pkg/archive"
	"github.com/goopsie/texforge/pkg/dds"
	"github.com/goopsie/texforge/pkg/pixel"
	"github.com/goopsie/texforge/pkg/raster"
	"github.com/goopsie/texforge/pkg/texture"
)

// outputFlags registers the flags controlling DDS output on fs.
type outputFlags struct {
	format   string
	mips     bool
	filter   string
	extended bool
}

func (o *outputFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&o.format, "format", "R8G8B8A8_UNORM", "Pixel format for DDS output")
	fs.BoolVar(&o.mips, "mips", false, "Generate a full mip chain for DDS output")
	fs.StringVar(&o.filter, "filter", "linear", "Resampling filter: point, linear, cubic, spline")
	fs.BoolVar(&o.extended, "dx10", false, "Always write the DX10 extended header")
}

func (o *outputFlags) options() (outputOptions, error) {
	format, err := pixel.Lookup(o.format)
	if err != nil {
		return outputOptions{}, err
	}
	filter, err := raster.ParseFilter(o.filter)
	if err != nil {
		return outputOptions{}, err
	}
	return outputOptions{format: format, mips: o.mips, filter: filter, extended: o.extended}, nil
}

func runInfo(args []string) error {
	var verbose bool
	fs := newFlagSet("info", &verbose)
	pos, err := parseArgs(fs, args, 1)
	if err != nil {
		return err
	}

	f, err := os.Open(pos[0])
	if err != nil {
		return errors.Wrap(err, "open")
	}
	defer f.Close()

	info, err := dds.DecodeHeader(bufio.NewReader(f))
	if err != nil {
		return err
	}

	fmt.Printf("File:       %s\n", pos[0])
	fmt.Printf("Format:     %s\n", info.Format.Name())
	fmt.Printf("Size:       %s\n", info.Size)
	fmt.Printf("Mip levels: %d\n", info.MipLevels)
	fmt.Printf("Array size: %d\n", info.ArraySize)
	fmt.Printf("Cubemap:    %v\n", info.Cubemap)
	fmt.Printf("Data size:  %d bytes\n", info.DataSize())
	if info.DX10 != nil {
		fmt.Printf("DXGI:       %s (%d)\n", dds.FormatName(info.DX10.DXGIFormat), info.DX10.DXGIFormat)
	} else if cc := info.Header.PixelFormat.FourCC; cc != [4]byte{} {
		fmt.Printf("FourCC:     %q\n", cc[:])
	}
	if verbose {
		fmt.Printf("Flags:      0x%08X\n", info.Header.Flags)
		fmt.Printf("Caps:       0x%08X 0x%08X\n", info.Header.Caps, info.Header.Caps2)
		fmt.Printf("Pitch:      %d\n", info.Header.PitchOrLinearSize)
	}
	return nil
}

func runDecode(args []string) error {
	var verbose bool
	var mip, slice, z int
	fs := newFlagSet("decode", &verbose)
	fs.IntVar(&mip, "mip", 0, "Mip level to extract")
	fs.IntVar(&slice, "slice", 0, "Array slice (or cube face) to extract")
	fs.IntVar(&z, "z", 0, "Depth slice to extract from volume textures")
	pos, err := parseArgs(fs, args, 2)
	if err != nil {
		return err
	}
	log := NewLogger(os.Stdout, verbose)

	log.Step("load", pos[0])
	res, err := loadResource(pos[0])
	if err != nil {
		return err
	}
	log.Done(fmt.Sprintf("%s %s, %d mips", res.Format().Name(), res.Size(), res.MipLevels()))

	log.Step("decode", fmt.Sprintf("mip %d slice %d", mip, slice))
	img, err := raster.FromResource(res, mip, slice)
	if err != nil {
		return err
	}
	log.Done(img.Size().String())

	rgba, err := img.ToNRGBA64(z)
	if err != nil {
		return err
	}

	log.Step("save", pos[1])
	if err := writeImage(pos[1], rgba); err != nil {
		return err
	}
	log.Done("ok")
	log.Total()

	fmt.Printf("Decoded %s → %s\n", pos[0], pos[1])
	return nil
}

func runEncode(args []string) error {
	var verbose bool
	var out outputFlags
	fs := newFlagSet("encode", &verbose)
	out.register(fs)
	pos, err := parseArgs(fs, args, 2)
	if err != nil {
		return err
	}
	opts, err := out.options()
	if err != nil {
		return err
	}
	return encodeFile(pos[0], pos[1], opts, NewLogger(os.Stdout, verbose))
}

func encodeFile(input, output string, opts outputOptions, log *Logger) error {
	log.Step("load", input)
	img, err := loadImage(input)
	if err != nil {
		return err
	}
	log.Done(img.Size().String())

	log.Step("encode", opts.format.Name())
	if err := saveImage(output, img, opts); err != nil {
		return err
	}
	log.Done(output)
	log.Total()

	fmt.Printf("Encoded %s → %s\n", input, output)
	return nil
}

func runResize(args []string) error {
	var verbose bool
	var width, height, depth int
	var out outputFlags
	fs := newFlagSet("resize", &verbose)
	fs.IntVar(&width, "w", 0, "Output width")
	fs.IntVar(&height, "h", 0, "Output height")
	fs.IntVar(&depth, "d", 1, "Output depth")
	out.register(fs)
	pos, err := parseArgs(fs, args, 2)
	if err != nil {
		return err
	}
	opts, err := out.options()
	if err != nil {
		return err
	}
	log := NewLogger(os.Stdout, verbose)

	img, err := loadImage(pos[0])
	if err != nil {
		return err
	}
	size := pixel.Size{Width: width, Height: height, Depth: depth}

	log.Step("scale", fmt.Sprintf("%s → %s (%s)", img.Size(), size, opts.filter))
	scaled, err := raster.Scale(img, size, opts.filter)
	if err != nil {
		return err
	}
	log.Done("ok")

	if err := saveImage(pos[1], scaled, opts); err != nil {
		return err
	}
	log.Total()

	fmt.Printf("Resized %s → %s (%s)\n", pos[0], pos[1], size)
	return nil
}

func runNormalMap(args []string) error {
	var verbose bool
	var scale float64
	var out outputFlags
	fs := newFlagSet("normalmap", &verbose)
	fs.Float64Var(&scale, "scale", 1, "Height scale applied to the slopes")
	out.register(fs)
	pos, err := parseArgs(fs, args, 2)
	if err != nil {
		return err
	}
	opts, err := out.options()
	if err != nil {
		return err
	}
	log := NewLogger(os.Stdout, verbose)

	height, err := loadImage(pos[0])
	if err != nil {
		return err
	}

	log.Step("normalmap", fmt.Sprintf("scale %g", scale))
	normals := raster.NormalMap(height, scale)
	log.Done(normals.Size().String())

	if err := saveImage(pos[1], normals, opts); err != nil {
		return err
	}
	log.Total()

	fmt.Printf("Normal map %s → %s\n", pos[0], pos[1])
	return nil
}

func runSDF(args []string) error {
	var verbose bool
	var metric string
	var threshold float64
	var width, height int
	var out outputFlags
	fs := newFlagSet("sdf", &verbose)
	fs.StringVar(&metric, "metric", "euclidean", "Distance metric: euclidean, manhattan, chebyshev")
	fs.Float64Var(&threshold, "threshold", 0.5, "Red channel value at or above which a texel is inside")
	fs.IntVar(&width, "w", 0, "Output width (default: input width)")
	fs.IntVar(&height, "h", 0, "Output height (default: input height)")
	out.register(fs)
	pos, err := parseArgs(fs, args, 2)
	if err != nil {
		return err
	}
	opts, err := out.options()
	if err != nil {
		return err
	}
	m, err := raster.ParseMetric(metric)
	if err != nil {
		return err
	}
	log := NewLogger(os.Stdout, verbose)

	mask, err := loadImage(pos[0])
	if err != nil {
		return err
	}
	size := mask.Size()
	if width > 0 {
		size.Width = width
	}
	if height > 0 {
		size.Height = height
	}

	log.Step("distance", fmt.Sprintf("%s %s", m, size))
	field, err := raster.DistanceTransform(mask, size, raster.Threshold(threshold), m)
	if err != nil {
		return err
	}
	log.Done("ok")

	if err := saveImage(pos[1], field, opts); err != nil {
		return err
	}
	log.Total()

	fmt.Printf("Distance field %s → %s\n", pos[0], pos[1])
	return nil
}

func runPack(args []string) error {
	var verbose bool
	var level int
	var out outputFlags
	fs := newFlagSet("pack", &verbose)
	fs.IntVar(&level, "level", archive.DefaultCompressionLevel, "Zstd compression level")
	out.register(fs)
	pos, err := parseArgs(fs, args, 2)
	if err != nil {
		return err
	}
	log := NewLogger(os.Stdout, verbose)

	var res *texture.Resource
	log.Step("load", pos[0])
	if ext(pos[0]) == ".dds" {
		res, err = loadResource(pos[0])
	} else {
		var opts outputOptions
		if opts, err = out.options(); err != nil {
			return err
		}
		res, err = imageResource(pos[0], opts)
	}
	if err != nil {
		return err
	}
	log.Done(fmt.Sprintf("%s %s", res.Format().Name(), res.Size()))

	f, err := os.Create(pos[1])
	if err != nil {
		return errors.Wrap(err, "create")
	}
	defer f.Close()

	log.Step("pack", fmt.Sprintf("level %d", level))
	writerOpts := []archive.WriterOption{archive.WithCompressionLevel(level)}
	if out.extended {
		writerOpts = append(writerOpts, archive.WithDDSOptions(dds.WithExtendedHeader()))
	}
	if err := archive.WriteResource(f, res, writerOpts...); err != nil {
		return err
	}
	log.Done("ok")
	log.Total()

	fmt.Printf("Packed %s → %s\n", pos[0], pos[1])
	return f.Close()
}

// imageResource loads a non-DDS image and converts it to a resource.
func imageResource(path string, opts outputOptions) (*texture.Resource, error) {
	img, err := loadImage(path)
	if err != nil {
		return nil, err
	}
	return buildResource(img, opts)
}

func runUnpack(args []string) error {
	var verbose bool
	fs := newFlagSet("unpack", &verbose)
	pos, err := parseArgs(fs, args, 2)
	if err != nil {
		return err
	}
	log := NewLogger(os.Stdout, verbose)

	f, err := os.Open(pos[0])
	if err != nil {
		return errors.Wrap(err, "open")
	}
	defer f.Close()

	log.Step("unpack", pos[0])
	res, err := archive.ReadResource(bufio.NewReader(f))
	if err != nil {
		return err
	}
	log.Done(fmt.Sprintf("%s %s", res.Format().Name(), res.Size()))

	if err := saveResource(pos[1], res); err != nil {
		return err
	}
	log.Total()

	fmt.Printf("Unpacked %s → %s\n", pos[0], pos[1])
	return nil
}
