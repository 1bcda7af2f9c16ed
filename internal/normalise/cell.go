package normalise

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// CellKind discriminates the typed value held in a Cell.
type CellKind int

const (
	// CellAbsent means the field was not present at all.
	CellAbsent CellKind = iota

	// CellEmpty means the field was present but carried no value
	// (nil, empty string, whitespace-only, NaN).
	CellEmpty

	// CellString holds cleaned text.
	CellString

	// CellInt holds an integer value.
	CellInt

	// CellFloat holds a floating-point value.
	CellFloat

	// CellBool holds a boolean value.
	CellBool
)

// Cell is a normalised scalar cell value. The empty marker is distinct
// from an absent field so downstream consumers can tell "blank cell"
// from "column missing".
type Cell struct {
	Kind  CellKind
	Str   string
	Int   int64
	Float float64
	Bool  bool
}

// String renders the cell for storage in record content fields.
func (c Cell) String() string {
	switch c.Kind {
	case CellString:
		return c.Str
	case CellInt:
		return strconv.FormatInt(c.Int, 10)
	case CellFloat:
		return strconv.FormatFloat(c.Float, 'g', -1, 64)
	case CellBool:
		return strconv.FormatBool(c.Bool)
	default:
		return ""
	}
}

// CellResult is the outcome of cleaning one cell value.
type CellResult struct {
	Original      any
	Cell          Cell
	Modified      bool
	Modifications []string
	Warnings      []string
}

// currencyRe strips currency symbols and whitespace before the
// numeric-looking check.
var currencyRe = regexp.MustCompile(`[$€£¥₹\s]`)

// numericRe matches digits with grouping/decimal separators and an
// optional sign.
var numericRe = regexp.MustCompile(`^-?\d[\d.,]*$`)

// CleanCell normalises a scalar cell value. Nil, empty and
// whitespace-only values become the explicit empty marker; numeric-
// looking strings are converted with the last-separator-wins rule;
// everything else goes through the text pipeline.
func CleanCell(value any) CellResult {
	res := CellResult{Original: value}

	switch v := value.(type) {
	case nil:
		res.Cell = Cell{Kind: CellEmpty}

	case string:
		if strings.TrimSpace(v) == "" {
			res.Cell = Cell{Kind: CellEmpty}
			if v != "" {
				res.Modifications = append(res.Modifications, ModEmptyString)
			}
			break
		}

		text := CleanText(v, false)
		res.Modifications = append(res.Modifications, text.Modifications...)

		if cell, ok := ParseNumeric(text.Cleaned); ok {
			res.Cell = cell
			res.Modifications = append(res.Modifications, ModNumeric)
			break
		}
		res.Cell = Cell{Kind: CellString, Str: text.Cleaned}

	case bool:
		res.Cell = Cell{Kind: CellBool, Bool: v}

	case int:
		res.Cell = Cell{Kind: CellInt, Int: int64(v)}
	case int64:
		res.Cell = Cell{Kind: CellInt, Int: v}

	case float64:
		switch {
		case math.IsNaN(v):
			res.Cell = Cell{Kind: CellEmpty}
			res.Modifications = append(res.Modifications, ModNaN)
		case math.IsInf(v, 0):
			res.Cell = Cell{Kind: CellFloat, Float: v}
			res.Warnings = append(res.Warnings, "infinite_value")
		case v == math.Trunc(v) && math.Abs(v) < 1e15:
			res.Cell = Cell{Kind: CellInt, Int: int64(v)}
		default:
			res.Cell = Cell{Kind: CellFloat, Float: v}
		}

	default:
		// Unknown types pass through the text pipeline via fmt.
		text := CleanText(fmt.Sprintf("%v", v), false)
		res.Cell = Cell{Kind: CellString, Str: text.Cleaned}
		res.Modifications = append(res.Modifications, text.Modifications...)
	}

	res.Modified = len(res.Modifications) > 0
	return res
}

// ParseNumeric converts a numeric-looking string to a typed cell.
// Currency symbols and whitespace are stripped first. When both ","
// and "." appear, whichever occurs last is the decimal separator and
// the other is a grouping separator. A single separator is decimal
// unless the string has no fractional digits. Returns ok=false when
// the string is not numeric.
func ParseNumeric(s string) (Cell, bool) {
	s = currencyRe.ReplaceAllString(s, "")
	if !numericRe.MatchString(s) {
		return Cell{}, false
	}

	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")

	var intPart, fracPart string
	switch {
	case lastComma >= 0 && lastDot >= 0:
		// Both present: the later one is the decimal separator.
		decimal := lastDot
		if lastComma > lastDot {
			decimal = lastComma
		}
		intPart = stripSeparators(s[:decimal])
		fracPart = stripSeparators(s[decimal+1:])
		if fracPart == "" {
			return Cell{}, false
		}

	case lastComma >= 0 || lastDot >= 0:
		sep := lastComma
		if lastDot >= 0 {
			sep = lastDot
		}
		if strings.Count(s, ",")+strings.Count(s, ".") > 1 {
			// Multiple occurrences of one separator: grouping only.
			intPart = stripSeparators(s)
			break
		}
		intPart = s[:sep]
		fracPart = s[sep+1:]

	default:
		intPart = s
	}

	if neg {
		intPart = "-" + intPart
	}

	if fracPart == "" {
		n, err := strconv.ParseInt(intPart, 10, 64)
		if err != nil {
			return Cell{}, false
		}
		return Cell{Kind: CellInt, Int: n}, true
	}

	f, err := strconv.ParseFloat(intPart+"."+fracPart, 64)
	if err != nil {
		return Cell{}, false
	}
	return Cell{Kind: CellFloat, Float: f}, true
}

func stripSeparators(s string) string {
	s = strings.ReplaceAll(s, ",", "")
	return strings.ReplaceAll(s, ".", "")
}

// CleanRow cleans every key and value of a row. Keys go through the
// text pipeline; values through CleanCell. The returned modification
// list carries one entry per modified column.
func CleanRow(row map[string]any) (map[string]Cell, []string) {
	cleaned := make(map[string]Cell, len(row))
	var mods []string

	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		keyRes := CleanText(key, false)
		valRes := CleanCell(row[key])
		cleaned[keyRes.Cleaned] = valRes.Cell

		if valRes.Modified {
			mods = append(mods, fmt.Sprintf("%s: %s",
				keyRes.Cleaned, strings.Join(valRes.Modifications, ", ")))
		}
	}

	return cleaned, mods
}
