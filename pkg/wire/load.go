package wire

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/pkg/errors"
)

// Load reads a network in .wire format: "v x y z" vertex lines and "l i j"
// edge lines with 1-based vertex indices. Blank lines and lines starting
// with '#' are ignored. Connectivity is not computed.
func Load(r io.Reader) (*Network, error) {
	var (
		vertices []v3.Vec
		edges    [][2]int
	)
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		switch fields[0] {
		case "v":
			if len(fields) != 4 {
				return nil, errors.Wrapf(ErrParse, "line %d: vertex needs 3 coordinates, got %d", line, len(fields)-1)
			}
			var c [3]float64
			for i := range c {
				f, err := strconv.ParseFloat(fields[i+1], 64)
				if err != nil {
					return nil, errors.Wrapf(ErrParse, "line %d: %v", line, err)
				}
				c[i] = f
			}
			vertices = append(vertices, v3.Vec{X: c[0], Y: c[1], Z: c[2]})
		case "l":
			if len(fields) != 3 {
				return nil, errors.Wrapf(ErrParse, "line %d: edge needs 2 vertex indices, got %d", line, len(fields)-1)
			}
			var e [2]int
			for i := range e {
				idx, err := strconv.Atoi(fields[i+1])
				if err != nil {
					return nil, errors.Wrapf(ErrParse, "line %d: %v", line, err)
				}
				e[i] = idx - 1
			}
			edges = append(edges, e)
		default:
			return nil, errors.Wrapf(ErrParse, "line %d: unknown record %q", line, fields[0])
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "read wire source")
	}
	return New(vertices, edges), nil
}

// LoadFile reads a .wire file from disk.
func LoadFile(path string) (*Network, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open wire file")
	}
	defer f.Close()

	n, err := Load(f)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", path)
	}
	return n, nil
}
