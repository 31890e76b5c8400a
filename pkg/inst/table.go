package inst

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

//go:embed z80.csv
var z80Table []byte

// Table columns.
const (
	colSet = iota
	colText
	colZ80
	colMSX
	colCPC
	colOpcode
	colSize
	numCols
)

// DefaultTable returns the patterns of the built-in instruction table.
func DefaultTable() ([]Pattern, error) {
	return ParseTable(bytes.NewReader(z80Table))
}

// ParseTable reads an instruction table: one pattern per line, fields
// separated by ';' in the order set, instruction, z80, msx, cpc, opcode,
// size. Lines starting with '#' are comments. Timings are either a single
// count or "taken/not-taken".
func ParseTable(r io.Reader) ([]Pattern, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.Comment = '#'
	cr.FieldsPerRecord = numCols

	var patterns []Pattern
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("instruction table: %w", err)
		}
		line, _ := cr.FieldPos(0)
		p, err := parseRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("instruction table line %d: %w", line, err)
		}
		patterns = append(patterns, p)
	}
	return patterns, nil
}

func parseRecord(rec []string) (Pattern, error) {
	var p Pattern
	p.Set = InstructionSet(strings.TrimSpace(rec[colSet]))
	if p.Set == "" {
		return p, errors.New("empty instruction set")
	}
	p.Text = strings.TrimSpace(rec[colText])
	if p.Text == "" {
		return p, errors.New("empty instruction")
	}

	var err error
	if p.Timing.Z80, err = parseCycles(rec[colZ80]); err != nil {
		return p, fmt.Errorf("%s: z80 timing: %w", p.Text, err)
	}
	if p.Timing.MSX, err = parseCycles(rec[colMSX]); err != nil {
		return p, fmt.Errorf("%s: msx timing: %w", p.Text, err)
	}
	if p.Timing.CPC, err = parseCycles(rec[colCPC]); err != nil {
		return p, fmt.Errorf("%s: cpc timing: %w", p.Text, err)
	}

	p.Opcode = strings.TrimSpace(rec[colOpcode])
	p.Size, err = strconv.Atoi(strings.TrimSpace(rec[colSize]))
	if err != nil {
		return p, fmt.Errorf("%s: size: %w", p.Text, err)
	}
	if p.Size < 0 {
		return p, fmt.Errorf("%s: negative size %d", p.Text, p.Size)
	}
	return p, nil
}

// parseCycles reads "7" or "12/7" into an ordered pair.
func parseCycles(s string) (Cycles, error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) > 2 {
		return Cycles{}, fmt.Errorf("malformed timing %q", s)
	}
	var v [2]int
	for i, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return Cycles{}, err
		}
		if n < 0 {
			return Cycles{}, fmt.Errorf("negative timing %q", s)
		}
		v[i] = n
	}
	if len(parts) == 1 {
		return Cycles{v[0], v[0]}, nil
	}
	return Cycles{min(v[0], v[1]), max(v[0], v[1])}, nil
}
