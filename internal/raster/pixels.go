package raster

import (
	"fmt"

	"github.com/airbusgeo/godal"
)

// Pixels is a multi-band buffer in band, row, column order.
type Pixels struct {
	Bands    int
	Height   int
	Width    int
	Data     []float64
	DataType godal.DataType
}

func NewPixels(bands, height, width int, dt godal.DataType) *Pixels {
	return &Pixels{
		Bands:    bands,
		Height:   height,
		Width:    width,
		Data:     make([]float64, bands*height*width),
		DataType: dt,
	}
}

// Shape returns (bands, height, width).
func (p *Pixels) Shape() [3]int {
	return [3]int{p.Bands, p.Height, p.Width}
}

func (p *Pixels) Size() int {
	return len(p.Data)
}

// Band returns the backing slice of band b (0-based); writes go through.
func (p *Pixels) Band(b int) []float64 {
	n := p.Height * p.Width
	return p.Data[b*n : (b+1)*n]
}

func (p *Pixels) At(b, y, x int) float64 {
	return p.Data[(b*p.Height+y)*p.Width+x]
}

func (p *Pixels) String() string {
	return fmt.Sprintf("pixels(%d, %d, %d)", p.Bands, p.Height, p.Width)
}
