package object

import (
	"math"

	"github.com/tomz197/orbitclicker/internal/physics"
	"github.com/tomz197/orbitclicker/internal/random"
)

// BlockSize is the default edge length of a planet block and the lattice
// step. Blocks generated with another cell size carry it in Block.Size.
const BlockSize = 8.0

// Band classifies a block by remaining integrity.
type Band int

const (
	BandLow Band = iota
	BandMedium
	BandHigh
)

// Color returns the palette entry for the band.
func (b Band) Color() string {
	switch b {
	case BandHigh:
		return ColorHigh
	case BandMedium:
		return ColorMedium
	default:
		return ColorLow
	}
}

// Block is one destructible cell of the planet.
//
// Invariant: Destroyed is monotonic; once set it is never cleared.
type Block struct {
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	Integrity    float64 `json:"integrity"`
	MaxIntegrity float64 `json:"maxIntegrity"`
	Destroyed    bool    `json:"destroyed"`
	// Size is the edge length; zero means BlockSize.
	Size float64 `json:"size,omitempty"`
}

// EdgeLength returns the block edge length.
func (b *Block) EdgeLength() float64 {
	if b.Size > 0 {
		return b.Size
	}
	return BlockSize
}

// Center returns the block centre used for hit testing.
func (b *Block) Center() (float64, float64) {
	half := b.EdgeLength() / 2
	return b.X + half, b.Y + half
}

// IntegrityRatio returns integrity/maxIntegrity clamped to [0, 1].
func (b *Block) IntegrityRatio() float64 {
	if b.MaxIntegrity <= 0 {
		return 0
	}
	return math.Max(0, math.Min(1, b.Integrity/b.MaxIntegrity))
}

// Band returns the colour band for the current integrity.
func (b *Block) Band() Band {
	r := b.IntegrityRatio()
	switch {
	case r > 0.66:
		return BandHigh
	case r > 0.33:
		return BandMedium
	default:
		return BandLow
	}
}

// Color returns the block colour, or the destroyed colour once destroyed.
func (b *Block) Color() string {
	if b.Destroyed {
		return ColorDestroyed
	}
	return b.Band().Color()
}

// CoreRadius returns the radius of the inner marker drawn inside the block.
func (b *Block) CoreRadius() float64 {
	return math.Max(MinDrawRadius, b.EdgeLength()/4*b.IntegrityRatio())
}

// Damage subtracts amount from integrity and marks the block destroyed when it
// reaches zero. It reports true only on the call that destroyed the block.
func (b *Block) Damage(amount float64) bool {
	if b.Destroyed {
		return false
	}
	b.Integrity -= amount
	if b.Integrity > 0 {
		return false
	}
	b.Destroyed = true
	return true
}

func (b *Block) MarkDestroyed()    { b.Destroyed = true }
func (b *Block) IsDestroyed() bool { return b.Destroyed }

// GenerateBlocks lays out a diamond lattice (|x|+|y| <= radius) with step
// cellSize, rotated 45 degrees around (cx, cy). Blocks are cellSize wide and
// start with integrity 1, 2 or 3.
func GenerateBlocks(cx, cy, radius, cellSize float64, src random.Source) []Block {
	if cellSize <= 0 || radius < 0 {
		return nil
	}
	steps := int(math.Floor(radius / cellSize))
	blocks := make([]Block, 0, 2*steps*(steps+1)+1)

	for i := -steps; i <= steps; i++ {
		for j := -steps; j <= steps; j++ {
			x := float64(i) * cellSize
			y := float64(j) * cellSize
			if math.Abs(x)+math.Abs(y) > radius {
				continue
			}
			rx, ry := physics.Rotate(x, y, math.Pi/4)
			integrity := float64(src.Intn(3) + 1)
			blocks = append(blocks, Block{
				X:            cx + rx,
				Y:            cy + ry,
				Integrity:    integrity,
				MaxIntegrity: integrity,
				Size:         cellSize,
			})
		}
	}
	return blocks
}

// IsCleared reports whether every block is destroyed. An empty set is cleared.
func IsCleared(blocks []Block) bool {
	for i := range blocks {
		if !blocks[i].Destroyed {
			return false
		}
	}
	return true
}

// Remaining counts the blocks not yet destroyed.
func Remaining(blocks []Block) int {
	n := 0
	for i := range blocks {
		if !blocks[i].Destroyed {
			n++
		}
	}
	return n
}
