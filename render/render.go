// Package render rasterizes labyrinth faces into a colour texture and a
// matching bump map for a display layer to wrap onto a cube.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"math/rand/v2"

	"github.com/beka-birhanu/vinom-labyrinth/labyrinth"
	colorful "github.com/lucasb-eyer/go-colorful"
)

const (
	defaultTextureSize = 256

	shadeRatio   = 0.3 // wall shading depth as a share of the cell
	plateMinimum = 4   // plates across a face, at least
	bumpFlat     = 128
	bumpSeam     = 230
	bumpRivet    = 240
)

// Palette holds the colours of a face. Paths stay transparent.
type Palette struct {
	Base      color.RGBA // behind the plates
	WallLight color.RGBA // wall side facing up or left onto a path
	WallDark  color.RGBA // wall side facing down or right onto a path
	Seam      color.RGBA // plate outline
	Rivet     color.RGBA
}

// DefaultPalette is the bronze look.
func DefaultPalette() Palette {
	return Palette{
		Base:      color.RGBA{R: 0x2d, G: 0x1f, B: 0x0e, A: 0xff},
		WallLight: color.RGBA{R: 0x8c, G: 0x6b, B: 0x3a, A: 0xff},
		WallDark:  color.RGBA{R: 0x2b, G: 0x20, B: 0x0e, A: 0xff},
		Seam:      color.RGBA{R: 0x1b, G: 0x13, B: 0x09, A: 0xff},
		Rivet:     color.RGBA{R: 0x5c, G: 0x3f, B: 0x1c, A: 0xff},
	}
}

// ParsePalette builds a palette from "#rrggbb" strings in field order.
func ParsePalette(base, wallLight, wallDark, seam, rivet string) (Palette, error) {
	var p Palette
	for _, f := range []struct {
		dst *color.RGBA
		hex string
	}{
		{&p.Base, base},
		{&p.WallLight, wallLight},
		{&p.WallDark, wallDark},
		{&p.Seam, seam},
		{&p.Rivet, rivet},
	} {
		c, err := colorful.Hex(f.hex)
		if err != nil {
			return Palette{}, fmt.Errorf("palette colour %q: %w", f.hex, err)
		}
		*f.dst = rgba(c)
	}
	return p, nil
}

// Config holds renderer parameters.
type Config struct {
	TextureSize int    // pixels per face side, 256 when zero
	Seed        uint64 // plate jitter and hue variation
	Palette     *Palette
}

// Surface is one rendered face.
type Surface struct {
	Color *image.RGBA
	Bump  *image.Gray
}

// FaceSource is what the renderer reads from a generator.
type FaceSource interface {
	Face(f labyrinth.Face) [][]labyrinth.State
	Seams() []labyrinth.Cell
	DirtyFaces() []labyrinth.Face
	ClearDirty()
}

// Renderer paints faces. It is not safe for concurrent use.
type Renderer struct {
	size    int
	palette Palette
	rng     *rand.Rand
}

// New returns a Renderer for cfg.
func New(cfg Config) *Renderer {
	r := &Renderer{
		size:    cfg.TextureSize,
		palette: DefaultPalette(),
		rng:     rand.New(rand.NewPCG(cfg.Seed, cfg.Seed>>1|1)),
	}
	if r.size <= 0 {
		r.size = defaultTextureSize
	}
	if cfg.Palette != nil {
		r.palette = *cfg.Palette
	}
	return r
}

// DrawDirty redraws every dirty face of src and clears its dirty set.
func (r *Renderer) DrawDirty(src FaceSource) map[labyrinth.Face]Surface {
	faces := src.DirtyFaces()
	if len(faces) == 0 {
		return nil
	}
	seams := src.Seams()
	out := make(map[labyrinth.Face]Surface, len(faces))
	for _, f := range faces {
		out[f] = r.DrawFace(f, src.Face(f), seams)
	}
	src.ClearDirty()
	return out
}

// DrawFace paints grid, indexed [y][x], as face f. Seam cells of f are
// cleared last so corridors read as open across the cube edge.
func (r *Renderer) DrawFace(f labyrinth.Face, grid [][]labyrinth.State, seams []labyrinth.Cell) Surface {
	s := Surface{
		Color: image.NewRGBA(image.Rect(0, 0, r.size, r.size)),
		Bump:  image.NewGray(image.Rect(0, 0, r.size, r.size)),
	}
	n := len(grid)
	if n == 0 {
		return s
	}

	wall := newWallMask(grid, r.size)
	fill(s.Color, s.Bump, wall, image.Rect(0, 0, r.size, r.size), r.palette.Base, bumpFlat)
	r.drawPlates(s, wall, float64(r.size)/float64(n))
	r.shadeWalls(s, grid)

	for _, c := range seams {
		if c.Face != f || c.Y >= n || c.X >= len(grid[c.Y]) {
			continue
		}
		rect := cellRect(c.X, c.Y, n, r.size)
		draw.Draw(s.Color, rect, image.Transparent, image.Point{}, draw.Src)
		draw.Draw(s.Bump, rect, image.Black, image.Point{}, draw.Src)
	}
	return s
}

// drawPlates tiles jittered bronze plates over the wall area, each with an
// outline and corner rivets, and mirrors their relief into the bump map.
func (r *Renderer) drawPlates(s Surface, wall wallMask, cellSize float64) {
	across := max(plateMinimum, int(float64(r.size)/(cellSize*2)))
	plate := float64(r.size) / float64(across)

	for py := 0.0; py < float64(r.size); py += plate {
		for px := 0.0; px < float64(r.size); px += plate {
			x0 := int(math.Floor(px + r.jitter()))
			y0 := int(math.Floor(py + r.jitter()))
			w := int(math.Ceil(plate - 2 + r.rng.Float64()*2))
			h := int(math.Ceil(plate - 2 + r.rng.Float64()*2))
			rect := image.Rect(x0, y0, x0+w, y0+h)

			hue := 30 + r.rng.Float64()*10
			sat := 0.50 + r.rng.Float64()*0.12
			lig := 0.24 + r.rng.Float64()*0.08
			// Darker plates stand out more in relief.
			bump := uint8(math.Round(255 * (1 - math.Pow(lig, 0.6))))
			fill(s.Color, s.Bump, wall, rect, rgba(colorful.Hsl(hue, sat, lig)), bump)

			outline(s.Color, s.Bump, wall, rect, r.palette.Seam, bumpSeam)

			radius := max(1.3, plate*0.06)
			for _, c := range [][2]int{{x0 + 6, y0 + 6}, {x0 + w - 6, y0 + 6}, {x0 + 6, y0 + h - 6}, {x0 + w - 6, y0 + h - 6}} {
				rivet(s, wall, c[0], c[1], radius, r.palette.Rivet)
			}
		}
	}
}

// shadeWalls darkens or lightens the sides of walls that face a path.
func (r *Renderer) shadeWalls(s Surface, grid [][]labyrinth.State) {
	n := len(grid)
	isPath := func(x, y int) bool {
		return x >= 0 && y >= 0 && y < n && x < len(grid[y]) && grid[y][x] == labyrinth.Path
	}
	for y := range grid {
		for x := range grid[y] {
			if grid[y][x] != labyrinth.Wall {
				continue
			}
			cell := cellRect(x, y, n, r.size)
			depth := max(1, int(float64(cell.Dx())*shadeRatio))
			if isPath(x, y-1) {
				draw.Draw(s.Color, image.Rect(cell.Min.X, cell.Min.Y, cell.Max.X, cell.Min.Y+depth), image.NewUniform(r.palette.WallLight), image.Point{}, draw.Src)
			}
			if isPath(x-1, y) {
				draw.Draw(s.Color, image.Rect(cell.Min.X, cell.Min.Y, cell.Min.X+depth, cell.Max.Y), image.NewUniform(r.palette.WallLight), image.Point{}, draw.Src)
			}
			if isPath(x, y+1) {
				draw.Draw(s.Color, image.Rect(cell.Min.X, cell.Max.Y-depth, cell.Max.X, cell.Max.Y), image.NewUniform(r.palette.WallDark), image.Point{}, draw.Src)
			}
			if isPath(x+1, y) {
				draw.Draw(s.Color, image.Rect(cell.Max.X-depth, cell.Min.Y, cell.Max.X, cell.Max.Y), image.NewUniform(r.palette.WallDark), image.Point{}, draw.Src)
			}
		}
	}
}

func (r *Renderer) jitter() float64 {
	return r.rng.Float64()*2 - 1
}

// wallMask answers per pixel whether it lies on a wall cell.
type wallMask struct {
	grid [][]labyrinth.State
	size int
}

func newWallMask(grid [][]labyrinth.State, size int) wallMask {
	return wallMask{grid: grid, size: size}
}

func (m wallMask) at(px, py int) bool {
	if px < 0 || py < 0 || px >= m.size || py >= m.size {
		return false
	}
	n := len(m.grid)
	x, y := px*n/m.size, py*n/m.size
	return m.grid[y][x] == labyrinth.Wall
}

// cellRect returns the pixel bounds of cell (x, y) on an n-cell face.
func cellRect(x, y, n, size int) image.Rectangle {
	return image.Rect(x*size/n, y*size/n, (x+1)*size/n, (y+1)*size/n)
}

func fill(c *image.RGBA, b *image.Gray, wall wallMask, rect image.Rectangle, col color.RGBA, bump uint8) {
	rect = rect.Intersect(c.Bounds())
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			if wall.at(x, y) {
				c.SetRGBA(x, y, col)
				b.SetGray(x, y, color.Gray{Y: bump})
			}
		}
	}
}

func outline(c *image.RGBA, b *image.Gray, wall wallMask, rect image.Rectangle, col color.RGBA, bump uint8) {
	edges := []image.Rectangle{
		image.Rect(rect.Min.X, rect.Min.Y, rect.Max.X, rect.Min.Y+2),
		image.Rect(rect.Min.X, rect.Max.Y-2, rect.Max.X, rect.Max.Y),
		image.Rect(rect.Min.X, rect.Min.Y, rect.Min.X+2, rect.Max.Y),
		image.Rect(rect.Max.X-2, rect.Min.Y, rect.Max.X, rect.Max.Y),
	}
	for _, e := range edges {
		fill(c, b, wall, e, col, bump)
	}
}

// rivet paints a small dome whose bump falls off from the centre.
func rivet(s Surface, wall wallMask, cx, cy int, radius float64, col color.RGBA) {
	ri := int(math.Ceil(radius))
	for y := cy - ri; y <= cy+ri; y++ {
		for x := cx - ri; x <= cx+ri; x++ {
			d := math.Hypot(float64(x-cx), float64(y-cy))
			if d > radius || !wall.at(x, y) {
				continue
			}
			s.Color.SetRGBA(x, y, col)
			falloff := d / radius
			s.Bump.SetGray(x, y, color.Gray{Y: uint8(bumpRivet - falloff*(bumpRivet-100))})
		}
	}
}

func rgba(c colorful.Color) color.RGBA {
	r, g, b := c.Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}
