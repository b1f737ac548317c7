package object

import (
	"sort"

	"github.com/tomz197/orbitclicker/internal/physics"
	"github.com/tomz197/orbitclicker/internal/random"
)

// Planet owns the block grid and the spatial index over block centres.
type Planet struct {
	CenterX    float64
	CenterY    float64
	Radius     float64
	CellSize   float64
	Blocks     []Block
	Generation int

	grid *physics.SpatialGrid
	hits []int // scratch for HitCandidates
	area []int // scratch for BlocksWithin
}

// NewPlanet generates the first block grid.
func NewPlanet(cx, cy, radius, cellSize float64, src random.Source) *Planet {
	p := &Planet{
		CenterX:  cx,
		CenterY:  cy,
		Radius:   radius,
		CellSize: cellSize,
	}
	p.Regenerate(src)
	return p
}

// Regenerate replaces every block with a freshly generated grid.
func (p *Planet) Regenerate(src random.Source) {
	p.Blocks = GenerateBlocks(p.CenterX, p.CenterY, p.Radius, p.CellSize, src)
	p.Generation++
	p.reindex()
}

// RegenerateIfCleared regenerates the grid when no live block remains and
// reports whether it did.
func (p *Planet) RegenerateIfCleared(src random.Source) bool {
	if !IsCleared(p.Blocks) {
		return false
	}
	p.Regenerate(src)
	return true
}

// Cleared reports whether every block is destroyed.
func (p *Planet) Cleared() bool { return IsCleared(p.Blocks) }

// HitReach is the direct-hit distance: half a block edge.
func (p *Planet) HitReach() float64 { return p.blockSize() / 2 }

func (p *Planet) blockSize() float64 {
	if p.CellSize > 0 {
		return p.CellSize
	}
	return BlockSize
}

// Remaining counts live blocks.
func (p *Planet) Remaining() int { return Remaining(p.Blocks) }

// SetBlocks installs an explicit block set and rebuilds the index.
func (p *Planet) SetBlocks(blocks []Block) {
	p.Blocks = blocks
	p.reindex()
}

func (p *Planet) reindex() {
	// The lattice spans the planet radius plus the rotated block extent.
	size := p.blockSize()
	for i := range p.Blocks {
		size = max(size, p.Blocks[i].EdgeLength())
	}
	span := 2 * (p.Radius + 2*size)
	cell := size
	if p.grid == nil {
		p.grid = physics.NewSpatialGridAt(p.CenterX-span/2, p.CenterY-span/2, span, span, cell)
	} else {
		p.grid.Clear()
	}
	for i := range p.Blocks {
		x, y := p.Blocks[i].Center()
		p.grid.Insert(x, y, i)
	}
}

// HitCandidates returns the indices of live blocks whose centre lies strictly
// within reach of (x, y), in block order. The returned slice is reused by the
// next call.
func (p *Planet) HitCandidates(x, y, reach float64) []int {
	p.hits = p.hits[:0]
	p.grid.QueryRadius(x, y, reach, func(i int) bool {
		b := &p.Blocks[i]
		if b.Destroyed {
			return false
		}
		cx, cy := b.Center()
		if physics.PointInCircle(x, y, cx, cy, reach) {
			p.hits = append(p.hits, i)
		}
		return false
	})
	sort.Ints(p.hits)
	return p.hits
}

// BlocksWithin returns the indices of live blocks whose centre lies inside or
// on the circle, in block order. The returned slice is reused by the next call.
func (p *Planet) BlocksWithin(x, y, radius float64) []int {
	p.area = p.area[:0]
	p.grid.QueryRadius(x, y, radius, func(i int) bool {
		b := &p.Blocks[i]
		if b.Destroyed {
			return false
		}
		cx, cy := b.Center()
		if physics.WithinRadius(cx, cy, x, y, radius) {
			p.area = append(p.area, i)
		}
		return false
	})
	sort.Ints(p.area)
	return p.area
}

// Weakest returns the index of the live block with the lowest integrity,
// preferring the earliest block on ties. It returns -1 when none is live.
func (p *Planet) Weakest() int {
	best := -1
	for i := range p.Blocks {
		b := &p.Blocks[i]
		if b.Destroyed {
			continue
		}
		if best < 0 || b.Integrity < p.Blocks[best].Integrity {
			best = i
		}
	}
	return best
}

// RandomLive returns the index of a uniformly chosen live block, or -1.
func (p *Planet) RandomLive(src random.Source) int {
	n := p.Remaining()
	if n == 0 {
		return -1
	}
	k := src.Intn(n)
	for i := range p.Blocks {
		if p.Blocks[i].Destroyed {
			continue
		}
		if k == 0 {
			return i
		}
		k--
	}
	return -1
}
