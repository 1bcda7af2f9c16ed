package normalise

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanText(t *testing.T) {
	t.Run("removes zero-width characters", func(t *testing.T) {
		res := CleanText("hello​world\uFEFF", false)

		assert.Equal(t, "helloworld", res.Cleaned)
		assert.True(t, res.Modified)
		assert.Contains(t, res.Modifications, ModZeroWidth)
	})

	t.Run("decodes html entities", func(t *testing.T) {
		res := CleanText("a &amp; b &lt; c", false)

		assert.Equal(t, "a & b < c", res.Cleaned)
		assert.Contains(t, res.Modifications, ModHTMLEntity)
	})

	t.Run("leaves bare ampersands alone", func(t *testing.T) {
		res := CleanText("fish & chips", false)

		assert.Equal(t, "fish & chips", res.Cleaned)
		assert.False(t, res.Modified)
	})

	t.Run("collapses whitespace runs", func(t *testing.T) {
		res := CleanText("a   b\t\tc", false)

		assert.Equal(t, "a b c", res.Cleaned)
		assert.Contains(t, res.Modifications, ModWhitespace)
	})

	t.Run("collapses newline runs to two", func(t *testing.T) {
		res := CleanText("a\n\n\n\n\nb", false)

		assert.Equal(t, "a\n\nb", res.Cleaned)
		assert.Contains(t, res.Modifications, ModNewlines)
	})

	t.Run("preserves smart punctuation by default", func(t *testing.T) {
		res := CleanText("“quoted”", false)

		assert.Equal(t, "“quoted”", res.Cleaned)
	})

	t.Run("folds smart punctuation in aggressive mode", func(t *testing.T) {
		res := CleanText("“quoted” — it’s done…", true)

		assert.Equal(t, `"quoted" -- it's done...`, res.Cleaned)
		assert.Contains(t, res.Modifications, ModSmartPunct)
	})

	t.Run("clean input records no modifications", func(t *testing.T) {
		res := CleanText("already clean", false)

		assert.False(t, res.Modified)
		assert.Empty(t, res.Modifications)
	})

	t.Run("idempotent", func(t *testing.T) {
		inputs := []string{
			"  messy​   text  &amp; stuff\n\n\n\nend  ",
			"“smart” — punctuation…",
			"plain",
			"",
		}
		for _, in := range inputs {
			for _, aggressive := range []bool{false, true} {
				once := CleanText(in, aggressive)
				twice := CleanText(once.Cleaned, aggressive)

				assert.Equal(t, once.Cleaned, twice.Cleaned)
				assert.False(t, twice.Modified, "second pass modified %q", in)
			}
		}
	})
}

func TestCleanCell(t *testing.T) {
	t.Run("nil becomes empty marker", func(t *testing.T) {
		res := CleanCell(nil)

		assert.Equal(t, CellEmpty, res.Cell.Kind)
	})

	t.Run("whitespace-only string becomes empty marker", func(t *testing.T) {
		res := CleanCell("   ")

		assert.Equal(t, CellEmpty, res.Cell.Kind)
		assert.Contains(t, res.Modifications, ModEmptyString)
	})

	t.Run("numeric string converts", func(t *testing.T) {
		res := CleanCell("1,234.56")

		require.Equal(t, CellFloat, res.Cell.Kind)
		assert.InDelta(t, 1234.56, res.Cell.Float, 1e-9)
		assert.Contains(t, res.Modifications, ModNumeric)
	})

	t.Run("nan becomes empty marker", func(t *testing.T) {
		res := CleanCell(nan())

		assert.Equal(t, CellEmpty, res.Cell.Kind)
		assert.Contains(t, res.Modifications, ModNaN)
	})

	t.Run("whole float becomes int", func(t *testing.T) {
		res := CleanCell(42.0)

		require.Equal(t, CellInt, res.Cell.Kind)
		assert.Equal(t, int64(42), res.Cell.Int)
	})

	t.Run("text passes through pipeline", func(t *testing.T) {
		res := CleanCell("  some   text ")

		require.Equal(t, CellString, res.Cell.Kind)
		assert.Equal(t, "some text", res.Cell.Str)
	})
}

func nan() float64 {
	f := 0.0
	return f / f
}

func TestParseNumeric(t *testing.T) {
	tests := []struct {
		in     string
		kind   CellKind
		intVal int64
		fltVal float64
		ok     bool
	}{
		{in: "1.234,56", kind: CellFloat, fltVal: 1234.56, ok: true},
		{in: "1,234.56", kind: CellFloat, fltVal: 1234.56, ok: true},
		{in: "1234", kind: CellInt, intVal: 1234, ok: true},
		{in: "-1.234,56", kind: CellFloat, fltVal: -1234.56, ok: true},
		{in: "1,5", kind: CellFloat, fltVal: 1.5, ok: true},
		{in: "1,234,567", kind: CellInt, intVal: 1234567, ok: true},
		{in: "$1,234.56", kind: CellFloat, fltVal: 1234.56, ok: true},
		{in: "€ 99", kind: CellInt, intVal: 99, ok: true},
		{in: "123.", kind: CellInt, intVal: 123, ok: true},
		{in: "abc", ok: false},
		{in: "1.2.3,4", kind: CellFloat, fltVal: 123.4, ok: true},
		{in: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			cell, ok := ParseNumeric(tt.in)

			require.Equal(t, tt.ok, ok)
			if !tt.ok {
				return
			}
			require.Equal(t, tt.kind, cell.Kind)
			switch tt.kind {
			case CellInt:
				assert.Equal(t, tt.intVal, cell.Int)
			case CellFloat:
				assert.InDelta(t, tt.fltVal, cell.Float, 1e-9)
			}
		})
	}
}

func TestCleanRow(t *testing.T) {
	row := map[string]any{
		"  Symbol ": "C",
		"Value":     "1,234.56",
		"Notes":     nil,
	}

	cleaned, mods := CleanRow(row)

	require.Len(t, cleaned, 3)
	assert.Equal(t, "C", cleaned["Symbol"].Str)
	assert.InDelta(t, 1234.56, cleaned["Value"].Float, 1e-9)
	assert.Equal(t, CellEmpty, cleaned["Notes"].Kind)
	assert.NotEmpty(t, mods)
}
