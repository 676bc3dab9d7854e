package encoding

import (
	"bytes"
	"fmt"
)

// DecodeText splits data into NUL padded cells of width bytes.
//
// Returns the number of cells written to dst. Trailing bytes that do not
// form a whole cell are ignored.
func DecodeText(dst []string, data []byte, width int) (int, error) {
	if width <= 0 {
		return 0, fmt.Errorf("invalid text cell width %d", width)
	}

	n := min(len(dst), len(data)/width)
	for i := range n {
		cell := data[i*width : (i+1)*width]
		if end := bytes.IndexByte(cell, 0); end >= 0 {
			cell = cell[:end]
		}
		dst[i] = string(cell)
	}

	return n, nil
}

// AppendText appends cells to dst as NUL padded cells of width bytes.
// Cells longer than width are truncated.
func AppendText(dst []byte, cells []string, width int) []byte {
	for _, cell := range cells {
		if len(cell) > width {
			cell = cell[:width]
		}
		dst = append(dst, cell...)
		for range width - len(cell) {
			dst = append(dst, 0)
		}
	}

	return dst
}
