package index

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
)

var npyMagic = []byte("\x93NUMPY")

var (
	descrRe   = regexp.MustCompile(`'descr':\s*'([^']*)'`)
	fortranRe = regexp.MustCompile(`'fortran_order':\s*(True|False)`)
	shapeRe   = regexp.MustCompile(`'shape':\s*\((\d+),\s*(\d+)\s*,?\s*\)`)
)

// writeNPY writes a little-endian float32 (rows, dim) array in NPY v1.0.
func writeNPY(w io.Writer, rows [][]float32, dim int) error {
	header := fmt.Sprintf("{'descr': '<f4', 'fortran_order': False, 'shape': (%d, %d), }", len(rows), dim)
	// magic(6) + version(2) + length(2) + header + '\n' is padded to 64 bytes.
	total := len(npyMagic) + 4 + len(header) + 1
	if rem := total % 64; rem != 0 {
		header += string(bytes.Repeat([]byte{' '}, 64-rem))
	}
	header += "\n"

	bw := bufio.NewWriter(w)
	bw.Write(npyMagic)
	bw.Write([]byte{1, 0})
	binary.Write(bw, binary.LittleEndian, uint16(len(header)))
	bw.WriteString(header)

	buf := make([]byte, 4)
	for i, row := range rows {
		if len(row) != dim {
			return fmt.Errorf("row %d has dimension %d, want %d", i, len(row), dim)
		}
		for _, v := range row {
			binary.LittleEndian.PutUint32(buf, math.Float32bits(v))
			if _, err := bw.Write(buf); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

// readNPY reads what writeNPY writes: version 1.x or 2.x, '<f4', C order, 2-D.
// size is the total length of the input; the data after the header must hold
// exactly the declared shape.
func readNPY(r io.Reader, size int64) ([][]float32, int, error) {
	br := bufio.NewReader(r)
	prefix := make([]byte, len(npyMagic)+2)
	if _, err := io.ReadFull(br, prefix); err != nil {
		return nil, 0, fmt.Errorf("read npy magic: %w", err)
	}
	if !bytes.Equal(prefix[:len(npyMagic)], npyMagic) {
		return nil, 0, fmt.Errorf("not an npy file")
	}

	var headerLen int
	consumed := int64(len(prefix))
	switch prefix[len(npyMagic)] {
	case 1:
		var n uint16
		if err := binary.Read(br, binary.LittleEndian, &n); err != nil {
			return nil, 0, err
		}
		headerLen = int(n)
		consumed += 2
	case 2, 3:
		var n uint32
		if err := binary.Read(br, binary.LittleEndian, &n); err != nil {
			return nil, 0, err
		}
		headerLen = int(n)
		consumed += 4
	default:
		return nil, 0, fmt.Errorf("unsupported npy version %d", prefix[len(npyMagic)])
	}

	consumed += int64(headerLen)
	if consumed > size {
		return nil, 0, fmt.Errorf("npy header length %d exceeds file size %d", headerLen, size)
	}
	header := make([]byte, headerLen)
	if _, err := io.ReadFull(br, header); err != nil {
		return nil, 0, fmt.Errorf("read npy header: %w", err)
	}

	if m := descrRe.FindSubmatch(header); m == nil || string(m[1]) != "<f4" {
		return nil, 0, fmt.Errorf("unsupported npy dtype in header %q", header)
	}
	if m := fortranRe.FindSubmatch(header); m == nil || string(m[1]) != "False" {
		return nil, 0, fmt.Errorf("fortran-order npy arrays are not supported")
	}
	m := shapeRe.FindSubmatch(header)
	if m == nil {
		return nil, 0, fmt.Errorf("unsupported npy shape in header %q", header)
	}
	n, err := strconv.Atoi(string(m[1]))
	if err != nil {
		return nil, 0, fmt.Errorf("npy row count: %w", err)
	}
	dim, err := strconv.Atoi(string(m[2]))
	if err != nil {
		return nil, 0, fmt.Errorf("npy dimension: %w", err)
	}
	data := size - consumed
	if int64(n) > data/4 || int64(dim) > data/4 || int64(n)*int64(dim)*4 != data {
		return nil, 0, fmt.Errorf("npy shape (%d, %d) does not match %d data bytes", n, dim, data)
	}

	rows := make([][]float32, n)
	buf := make([]byte, 4*dim)
	for i := range rows {
		if _, err := io.ReadFull(br, buf); err != nil {
			return nil, 0, fmt.Errorf("read npy row %d: %w", i, err)
		}
		row := make([]float32, dim)
		for j := range row {
			row[j] = math.Float32frombits(binary.LittleEndian.Uint32(buf[4*j:]))
		}
		rows[i] = row
	}
	return rows, dim, nil
}
