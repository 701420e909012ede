package traversal

import (
	"fmt"
	"iter"
)

// Shape is the (height, width, channels) extent of a pixel buffer.
type Shape struct {
	Height, Width, Channels int
}

// Cell addresses one channel value of one pixel.
type Cell struct {
	Channel, Row, Column int
}

func (s Shape) String() string {
	return fmt.Sprintf("%dx%dx%d", s.Height, s.Width, s.Channels)
}

func (s Shape) IsZero() bool {
	return s.Height <= 0 || s.Width <= 0 || s.Channels <= 0
}

// Len returns the number of cells visited by Cells.
func (s Shape) Len() int {
	if s.IsZero() {
		return 0
	}
	return s.Height * s.Width * s.Channels
}

// Cells yields every cell with its scan position. A whole channel plane is
// walked row-major before the next channel starts.
func (s Shape) Cells() iter.Seq2[int, Cell] {
	return func(yield func(int, Cell) bool) {
		if s.IsZero() {
			return
		}
		pos := 0
		for ch := range s.Channels {
			for row := range s.Height {
				for col := range s.Width {
					if !yield(pos, Cell{Channel: ch, Row: row, Column: col}) {
						return
					}
					pos++
				}
			}
		}
	}
}

// At returns the cell visited at scan position pos.
// The result is undefined when pos is outside [0, Len()).
func (s Shape) At(pos int) Cell {
	plane := s.Height * s.Width
	in := pos % plane
	return Cell{
		Channel: pos / plane,
		Row:     in / s.Width,
		Column:  in % s.Width,
	}
}
