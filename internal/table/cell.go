package table

import (
	"strconv"
	"strings"

	"github.com/zclconf/go-cty/cty"
)

// Cell is a single value in a Dataset: either a number or raw text. The
// tagged union is carried by a cty.Value rather than parallel fields.
type Cell struct {
	val cty.Value
}

// NumberCell builds a numeric cell.
func NumberCell(f float64) Cell { return Cell{val: cty.NumberFloatVal(f)} }

// TextCell builds a text cell.
func TextCell(s string) Cell { return Cell{val: cty.StringVal(s)} }

// ParseCell converts raw input text into a Cell. Anything that parses as a
// float becomes a number; everything else is kept as text.
func ParseCell(raw string) Cell {
	if f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
		return NumberCell(f)
	}
	return TextCell(raw)
}

// IsNumber reports whether the cell holds a numeric value.
func (c Cell) IsNumber() bool {
	return c.val != cty.NilVal && c.val.Type() == cty.Number
}

// Number returns the numeric value, or false when the cell holds text.
func (c Cell) Number() (float64, bool) {
	if !c.IsNumber() {
		return 0, false
	}
	f, _ := c.val.AsBigFloat().Float64()
	return f, true
}

func (c Cell) String() string {
	if f, ok := c.Number(); ok {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	if c.val == cty.NilVal {
		return ""
	}
	return c.val.AsString()
}
