package raster

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/airbusgeo/godal"
)

// NumPy .npy v1.0, little-endian float64, C order, shape (bands, rows, cols).
const npyMagic = "\x93NUMPY"

var npyShape = regexp.MustCompile(`'shape':\s*\((\d+),\s*(\d+),\s*(\d+),?\)`)

func WriteArray(path string, px *Pixels) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	if err := encodeArray(w, px); err != nil {
		f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func encodeArray(w io.Writer, px *Pixels) error {
	header := fmt.Sprintf("{'descr': '<f8', 'fortran_order': False, 'shape': (%d, %d, %d), }", px.Bands, px.Height, px.Width)
	// magic(6) + version(2) + length(2) + header + '\n' is padded to 64 bytes
	pad := 64 - (10+len(header)+1)%64
	if pad == 64 {
		pad = 0
	}
	header += strings.Repeat(" ", pad) + "\n"

	var buf bytes.Buffer
	buf.WriteString(npyMagic)
	buf.Write([]byte{1, 0})
	if err := binary.Write(&buf, binary.LittleEndian, uint16(len(header))); err != nil {
		return err
	}
	buf.WriteString(header)
	if _, err := w.Write(buf.Bytes()); err != nil {
		return err
	}
	b := make([]byte, 8)
	for _, v := range px.Data {
		binary.LittleEndian.PutUint64(b, math.Float64bits(v))
		if _, err := w.Write(b); err != nil {
			return err
		}
	}
	return nil
}

// ReadArray loads an array written by WriteArray.
func ReadArray(path string) (*Pixels, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	r := bufio.NewReader(f)

	pre := make([]byte, 10)
	if _, err := io.ReadFull(r, pre); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidArray, path, err)
	}
	if string(pre[:6]) != npyMagic || pre[6] != 1 {
		return nil, fmt.Errorf("%w: %s is not a v1 npy file", ErrInvalidArray, path)
	}
	header := make([]byte, binary.LittleEndian.Uint16(pre[8:10]))
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidArray, path, err)
	}
	if !bytes.Contains(header, []byte("'descr': '<f8'")) || bytes.Contains(header, []byte("'fortran_order': True")) {
		return nil, fmt.Errorf("%w: %s is not a C-ordered float64 array", ErrInvalidArray, path)
	}
	m := npyShape.FindSubmatch(header)
	if m == nil {
		return nil, fmt.Errorf("%w: %s has no 3-d shape", ErrInvalidArray, path)
	}
	dims := [3]int{}
	for i := range dims {
		dims[i], _ = strconv.Atoi(string(m[i+1]))
	}
	px := NewPixels(dims[0], dims[1], dims[2], godal.Float64)
	b := make([]byte, 8)
	for i := range px.Data {
		if _, err := io.ReadFull(r, b); err != nil {
			return nil, fmt.Errorf("%w: %s truncated at value %d", ErrInvalidArray, path, i)
		}
		px.Data[i] = math.Float64frombits(binary.LittleEndian.Uint64(b))
	}
	return px, nil
}
