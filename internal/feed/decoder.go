package feed

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"strconv"

	"github.com/vango-dev/viewmodel/internal/errors"
	"github.com/vango-dev/viewmodel/pkg/entity"
)

// MaxLineSize is the longest snapshot line the decoder accepts.
const MaxLineSize = 4 << 20

// Decoder reads group snapshots, one JSON object per line.
type Decoder struct {
	scanner *bufio.Scanner
	line    int
}

// NewDecoder returns a decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), MaxLineSize)
	return &Decoder{scanner: sc}
}

// Line returns the number of the last line read.
func (d *Decoder) Line() int {
	return d.line
}

// Next returns the next snapshot, skipping blank lines. It returns io.EOF
// at the end of input.
func (d *Decoder) Next() (*entity.Group, error) {
	for d.scanner.Scan() {
		d.line++
		raw := bytes.TrimSpace(d.scanner.Bytes())
		if len(raw) == 0 {
			continue
		}

		var g entity.Group
		if err := json.Unmarshal(raw, &g); err != nil {
			return nil, errors.New("E203").
				WithDetail("line " + strconv.Itoa(d.line)).
				Wrap(err)
		}
		return &g, nil
	}
	if err := d.scanner.Err(); err != nil {
		return nil, errors.New("E202").
			WithDetail("after line " + strconv.Itoa(d.line)).
			Wrap(err)
	}
	return nil, io.EOF
}
