package field

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/unicfd/uniflow/tensor"
)

// WriteTo serializes f in the reference field-file format: a header line
// naming the field and its length, then "{ v1 v2 ... }" with one flattened
// component per token, mirroring the original's operator<< for
// std::vector<T>, written at full float64 precision so a write followed
// by a read back reproduces the same bits.
func (f *Field[T]) WriteTo(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "%s %d\n{\n", f.Name, len(f.Data)); err != nil {
		return err
	}
	for _, v := range f.Data {
		for _, c := range v.Flatten() {
			if _, err := fmt.Fprintln(bw, strconv.FormatFloat(c, 'g', -1, 64)); err != nil {
				return err
			}
		}
	}
	if _, err := fmt.Fprintln(bw, "}"); err != nil {
		return err
	}
	return bw.Flush()
}

// ReadFrom parses the format WriteTo produces. The field's Name and length
// must already match the header; a mismatch is a fatal I/O error, the
// same class as a missing field file for a requested step.
func (f *Field[T]) ReadFrom(r io.Reader) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 1<<20), 1<<20)
	if !sc.Scan() {
		return fmt.Errorf("field: empty field file for %q", f.Name)
	}
	header := strings.Fields(sc.Text())
	if len(header) != 2 {
		return fmt.Errorf("field: malformed header %q", sc.Text())
	}
	if header[0] != f.Name {
		return fmt.Errorf("field: %q read from a file whose header names %q", f.Name, header[0])
	}
	n, err := strconv.Atoi(header[1])
	if err != nil {
		return fmt.Errorf("field: malformed length in header %q: %w", sc.Text(), err)
	}
	if n != len(f.Data) {
		return fmt.Errorf("field: %q expected %d values, file declares %d", f.Name, len(f.Data), n)
	}
	if !sc.Scan() || strings.TrimSpace(sc.Text()) != "{" {
		return fmt.Errorf("field: expected '{' opening %q", f.Name)
	}

	var zero T
	width := len(zero.Flatten())
	buf := make([]float64, width)
	for i := 0; i < n; i++ {
		for c := 0; c < width; c++ {
			if !sc.Scan() {
				return fmt.Errorf("field: truncated data for %q at value %d", f.Name, i)
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(sc.Text()), 64)
			if err != nil {
				return fmt.Errorf("field: bad value for %q at value %d: %w", f.Name, i, err)
			}
			buf[c] = v
		}
		f.Data[i] = zero.Unflatten(buf)
	}
	if !sc.Scan() || strings.TrimSpace(sc.Text()) != "}" {
		return fmt.Errorf("field: expected '}' closing %q", f.Name)
	}
	return sc.Err()
}

var _ tensor.Algebra[tensor.Scalar] = tensor.Scalar(0)
var _ tensor.Algebra[tensor.Vector] = tensor.Vector{}
