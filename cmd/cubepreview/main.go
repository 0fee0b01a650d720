// Command cubepreview carves a labyrinth offline and writes every face as a
// color texture and a bump map.
//
// Usage:
//
//	cubepreview --size 21 --steps 4000 --seed 7 --out ./faces
package main

import (
	"fmt"
	"image"
	"image/png"
	"math/rand/v2"
	"os"
	"path/filepath"

	"github.com/beka-birhanu/vinom-labyrinth/labyrinth"
	"github.com/beka-birhanu/vinom-labyrinth/render"
	"github.com/spf13/cobra"
)

type options struct {
	size        int
	steps       int
	fillEvery   int
	seed        uint64
	textureSize int
	palette     []string
	out         string
}

func newRootCmd() *cobra.Command {
	opts := options{}
	cmd := &cobra.Command{
		Use:   "cubepreview",
		Short: "Render a carved cube labyrinth to PNG files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			files, err := run(opts)
			if err != nil {
				return err
			}
			for _, f := range files {
				fmt.Fprintln(cmd.OutOrStdout(), f)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&opts.size, "size", 21, "odd side length of every face")
	cmd.Flags().IntVar(&opts.steps, "steps", 4000, "carving steps to run")
	cmd.Flags().IntVar(&opts.fillEvery, "fill-every", 4, "steps between aging passes, 0 disables aging")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 1, "random seed for carving and plates")
	cmd.Flags().IntVar(&opts.textureSize, "texture", 256, "texture side in pixels")
	cmd.Flags().StringSliceVar(&opts.palette, "palette", nil, "base,light,dark,seam,rivet colours as #rrggbb")
	cmd.Flags().StringVar(&opts.out, "out", ".", "output directory")
	return cmd
}

// run carves the cube and writes two PNGs per face. It returns the paths
// written, in face order.
func run(opts options) ([]string, error) {
	gen, err := labyrinth.New(labyrinth.Config{
		Size: opts.size,
		Rand: rand.New(rand.NewPCG(opts.seed, opts.seed)),
	})
	if err != nil {
		return nil, err
	}
	for n := 1; n <= opts.steps; n++ {
		gen.Step()
		if opts.fillEvery > 0 && n%opts.fillEvery == 0 {
			gen.FillStep()
		}
	}

	if err := os.MkdirAll(opts.out, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	cfg := render.Config{TextureSize: opts.textureSize, Seed: opts.seed}
	if len(opts.palette) > 0 {
		if len(opts.palette) != 5 {
			return nil, fmt.Errorf("palette needs 5 colours, got %d", len(opts.palette))
		}
		p, err := render.ParsePalette(opts.palette[0], opts.palette[1], opts.palette[2], opts.palette[3], opts.palette[4])
		if err != nil {
			return nil, err
		}
		cfg.Palette = &p
	}

	gen.MarkDirty(labyrinth.AllFaces()...)
	r := render.New(cfg)
	surfaces := r.DrawDirty(gen)

	var files []string
	for _, f := range labyrinth.AllFaces() {
		s := surfaces[f]
		for suffix, img := range map[string]image.Image{"color": s.Color, "bump": s.Bump} {
			path := filepath.Join(opts.out, fmt.Sprintf("%s-%s.png", faceName(f), suffix))
			if err := writePNG(path, img); err != nil {
				return nil, err
			}
			files = append(files, path)
		}
	}
	return files, nil
}

// faceName turns "+X" into "px" for file names.
func faceName(f labyrinth.Face) string {
	s := f.String()
	sign := "p"
	if s[0] == '-' {
		sign = "n"
	}
	return sign + string(s[1]+'a'-'A')
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return f.Close()
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
