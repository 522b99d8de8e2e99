// Package npy reads and writes 3D float32 volumes in the NumPy .npy v1.0
// format, the terminal artifact of the preprocessing pipeline. Only the
// little-endian float32 C-order layout produced by this pipeline is
// supported.
package npy

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/RumethSandinu/NeoBreath-RQ1/internal/volume"
)

var magic = []byte("\x93NUMPY")

// Write serializes a volume as an .npy v1.0 array of dtype <f4 with shape
// (depth, height, width).
func Write(w io.Writer, v volume.Volume) error {
	header := fmt.Sprintf("{'descr': '<f4', 'fortran_order': False, 'shape': (%d, %d, %d), }",
		v.Depth, v.Height, v.Width)

	// Pad the header so the payload starts on a 64-byte boundary, per the
	// format spec. The final header byte is a newline.
	preamble := len(magic) + 2 + 2
	pad := 64 - (preamble+len(header)+1)%64
	if pad == 64 {
		pad = 0
	}
	header += strings.Repeat(" ", pad) + "\n"

	buf := bytes.NewBuffer(nil)
	buf.Write(magic)
	buf.Write([]byte{1, 0})
	if err := binary.Write(buf, binary.LittleEndian, uint16(len(header))); err != nil {
		return err
	}
	buf.WriteString(header)

	payload := make([]byte, 4*len(v.Data))
	for i, x := range v.Data {
		binary.LittleEndian.PutUint32(payload[i*4:], math.Float32bits(float32(x)))
	}
	buf.Write(payload)

	_, err := w.Write(buf.Bytes())
	return err
}

// WriteFile writes a volume to path, creating the file.
func WriteFile(path string, v volume.Volume) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	return Write(f, v)
}

// Read parses an .npy v1.0 array of dtype <f4 with a 3D C-order shape.
func Read(r io.Reader) (volume.Volume, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return volume.Volume{}, err
	}
	if len(data) < 10 || !bytes.Equal(data[:6], magic) {
		return volume.Volume{}, fmt.Errorf("not an npy file")
	}
	if data[6] != 1 {
		return volume.Volume{}, fmt.Errorf("unsupported npy version %d.%d", data[6], data[7])
	}

	headerLen := int(binary.LittleEndian.Uint16(data[8:10]))
	if len(data) < 10+headerLen {
		return volume.Volume{}, fmt.Errorf("truncated npy header")
	}
	header := string(data[10 : 10+headerLen])

	if !strings.Contains(header, "'descr': '<f4'") {
		return volume.Volume{}, fmt.Errorf("unsupported dtype in header %q", header)
	}
	if !strings.Contains(header, "'fortran_order': False") {
		return volume.Volume{}, fmt.Errorf("fortran order arrays are not supported")
	}

	shape, err := parseShape(header)
	if err != nil {
		return volume.Volume{}, err
	}
	if len(shape) != 3 {
		return volume.Volume{}, fmt.Errorf("want a 3D array, got shape %v", shape)
	}

	n := shape[0] * shape[1] * shape[2]
	payload := data[10+headerLen:]
	if len(payload) < 4*n {
		return volume.Volume{}, fmt.Errorf("truncated npy payload: want %d bytes, got %d", 4*n, len(payload))
	}

	v := volume.Volume{
		Data:   make([]float64, n),
		Depth:  shape[0],
		Height: shape[1],
		Width:  shape[2],
	}
	for i := 0; i < n; i++ {
		v.Data[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(payload[i*4:])))
	}
	return v, nil
}

// ReadFile reads an .npy volume from path.
func ReadFile(path string) (volume.Volume, error) {
	f, err := os.Open(path)
	if err != nil {
		return volume.Volume{}, err
	}
	defer func() { _ = f.Close() }()
	return Read(f)
}

// parseShape extracts the shape tuple from the header dict.
func parseShape(header string) ([]int, error) {
	open := strings.Index(header, "(")
	end := strings.Index(header, ")")
	if open < 0 || end < open {
		return nil, fmt.Errorf("no shape tuple in header %q", header)
	}

	var shape []int
	for _, part := range strings.Split(header[open+1:end], ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("bad shape component %q: %w", part, err)
		}
		shape = append(shape, n)
	}
	return shape, nil
}
