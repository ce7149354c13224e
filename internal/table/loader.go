package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/memory"
)

// Options controls how a delimited file is read.
type Options struct {
	// Delimiter separates fields. If 0, it is chosen from the file name:
	// tab for .tsv, comma otherwise.
	Delimiter rune
	// NullValues are extra cell values treated as missing, in addition to
	// the built-in tokens.
	NullValues []string
	// Allocator backs the Arrow buffers. Defaults to the Go allocator.
	Allocator memory.Allocator
}

// DefaultOptions returns options for a plain comma-separated file.
func DefaultOptions() Options {
	return Options{}
}

// defaultNullValues are the cell values read as missing.
var defaultNullValues = []string{
	"", "#N/A", "#N/A N/A", "#NA", "-1.#IND", "-1.#QNAN", "-NaN", "-nan",
	"1.#IND", "1.#QNAN", "<NA>", "N/A", "NA", "NULL", "NaN", "None", "n/a",
	"nan", "null",
}

var boolValues = map[string]bool{
	"True": true, "TRUE": true, "true": true,
	"False": false, "FALSE": false, "false": false,
}

var errNoColumns = errors.New("no columns to parse from file")

// LoadCSV reads a delimited file with a header row into a Table.
func LoadCSV(path string, opt Options) (*Table, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, &ParseError{Path: path, Err: err}
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrFileNotFound, path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	defer f.Close()

	if opt.Delimiter == 0 {
		opt.Delimiter = sniffDelimiter(path)
	}
	t, err := readCSV(f, path, opt)
	if err != nil {
		return nil, err
	}
	t.Name = filepath.Base(path)
	return t, nil
}

// ReadCSV reads delimited data from r. name identifies the source in errors
// and becomes the table name.
func ReadCSV(r io.Reader, name string, opt Options) (*Table, error) {
	if opt.Delimiter == 0 {
		opt.Delimiter = sniffDelimiter(name)
	}
	t, err := readCSV(r, name, opt)
	if err != nil {
		return nil, err
	}
	t.Name = name
	return t, nil
}

func readCSV(r io.Reader, path string, opt Options) (*Table, error) {
	cr := csv.NewReader(r)
	cr.Comma = opt.Delimiter
	// quotes inside unquoted fields are kept as data
	cr.LazyQuotes = true
	// all records must match the header width
	cr.FieldsPerRecord = 0

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &ParseError{Path: path, Err: errNoColumns}
		}
		return nil, &ParseError{Path: path, Err: err}
	}
	if err := checkUTF8(cr, header); err != nil {
		return nil, &ParseError{Path: path, Line: lineOf(cr, 0), Err: err}
	}
	names := normalizeHeader(header)
	ncol := len(names)

	cells := make([][]string, ncol)
	rows := 0
	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, &ParseError{Path: path, Err: err}
		}
		if err := checkUTF8(cr, rec); err != nil {
			return nil, &ParseError{Path: path, Line: lineOf(cr, 0), Err: err}
		}
		for j := range ncol {
			cells[j] = append(cells[j], rec[j])
		}
		rows++
	}

	nulls := make(map[string]struct{}, len(defaultNullValues)+len(opt.NullValues))
	for _, v := range defaultNullValues {
		nulls[v] = struct{}{}
	}
	for _, v := range opt.NullValues {
		nulls[v] = struct{}{}
	}

	mem := opt.Allocator
	if mem == nil {
		mem = memory.NewGoAllocator()
	}
	kinds := make([]Kind, ncol)
	arrs := make([]arrow.Array, ncol)
	for j := range ncol {
		isNull := make([]bool, rows)
		for i, v := range cells[j] {
			_, isNull[i] = nulls[v]
		}
		kinds[j] = inferKind(cells[j], isNull)
		arrs[j] = buildArray(mem, kinds[j], cells[j], isNull)
		cells[j] = nil
	}
	return newTable("", names, kinds, arrs, rows), nil
}

func checkUTF8(cr *csv.Reader, rec []string) error {
	for i, v := range rec {
		if !utf8.ValidString(v) {
			_, col := cr.FieldPos(i)
			return fmt.Errorf("invalid UTF-8 in field %d (column %d)", i+1, col)
		}
	}
	return nil
}

func lineOf(cr *csv.Reader, field int) int {
	line, _ := cr.FieldPos(field)
	return line
}

func sniffDelimiter(path string) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	return ','
}

// normalizeHeader strips a UTF-8 BOM, names empty headers "Unnamed: i" and
// suffixes repeated names with ".1", ".2", ...
func normalizeHeader(raw []string) []string {
	names := make([]string, len(raw))
	used := make(map[string]bool, len(raw))
	dups := make(map[string]int)
	for i, h := range raw {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		if h == "" {
			h = fmt.Sprintf("Unnamed: %d", i)
		}
		name := h
		for used[name] {
			dups[h]++
			name = fmt.Sprintf("%s.%d", h, dups[h])
		}
		used[name] = true
		names[i] = name
	}
	return names
}

// inferKind picks the narrowest kind that holds every non-null value.
// Integer columns with nulls widen to float64; boolean columns with nulls
// fall back to string.
func inferKind(vals []string, isNull []bool) Kind {
	rows := len(vals)
	if rows == 0 {
		return KindString
	}
	nonNull := 0
	allInt, allFloat, allBool := true, true, true
	for i, v := range vals {
		if isNull[i] {
			continue
		}
		nonNull++
		if allInt {
			if _, ok := parseInt(v); !ok {
				allInt = false
			}
		}
		if allFloat {
			if _, ok := parseFloat(v); !ok {
				allFloat = false
			}
		}
		if allBool {
			if _, ok := boolValues[v]; !ok {
				allBool = false
			}
		}
		if !allInt && !allFloat && !allBool {
			return KindString
		}
	}
	switch {
	case nonNull == 0:
		return KindFloat64
	case allInt && nonNull == rows:
		return KindInt64
	case allFloat:
		return KindFloat64
	case allBool && nonNull == rows:
		return KindBool
	}
	return KindString
}

func parseInt(s string) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return n, err == nil
}

func parseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	// hex floats are not numbers in delimited text
	if strings.ContainsAny(s, "xX") {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	// NaN spellings outside the null tokens are text, not missing numbers
	if math.IsNaN(f) {
		return 0, false
	}
	if err != nil {
		var numErr *strconv.NumError
		// out of range values still parse to ±Inf
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			return f, true
		}
		return 0, false
	}
	return f, true
}

func buildArray(mem memory.Allocator, kind Kind, vals []string, isNull []bool) arrow.Array {
	switch kind {
	case KindInt64:
		b := array.NewInt64Builder(mem)
		defer b.Release()
		b.Reserve(len(vals))
		for i, v := range vals {
			if isNull[i] {
				b.AppendNull()
				continue
			}
			n, _ := parseInt(v)
			b.Append(n)
		}
		return b.NewArray()
	case KindFloat64:
		b := array.NewFloat64Builder(mem)
		defer b.Release()
		b.Reserve(len(vals))
		for i, v := range vals {
			if isNull[i] {
				b.AppendNull()
				continue
			}
			f, _ := parseFloat(v)
			b.Append(f)
		}
		return b.NewArray()
	case KindBool:
		b := array.NewBooleanBuilder(mem)
		defer b.Release()
		b.Reserve(len(vals))
		for i, v := range vals {
			if isNull[i] {
				b.AppendNull()
				continue
			}
			b.Append(boolValues[v])
		}
		return b.NewArray()
	default:
		b := array.NewStringBuilder(mem)
		defer b.Release()
		b.Reserve(len(vals))
		for i, v := range vals {
			if isNull[i] {
				b.AppendNull()
				continue
			}
			b.Append(v)
		}
		return b.NewArray()
	}
}
