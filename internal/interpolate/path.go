package interpolate

import (
	"strconv"
	"strings"

	"github.com/ohler55/ojg/jp"
)

// ResolvePath walks data along a dotted path. A segment that parses as a
// non-negative integer indexes into an array, or is a key lookup against an
// object; any other segment is a key lookup. The boolean is false when a
// segment misses or the value found is nil.
func ResolvePath(data any, path string) (any, bool) {
	if data == nil {
		return nil, false
	}
	if path == "" {
		return data, true
	}
	results := pathExpr(path).Get(data)
	if len(results) == 0 || results[0] == nil {
		return nil, false
	}
	return results[0], true
}

// pathExpr builds the jp expression for a dotted path one segment at a time,
// so keys holding characters that are special in JSONPath stay literal.
func pathExpr(path string) jp.Expr {
	x := jp.R()
	for _, seg := range strings.Split(path, ".") {
		if i, ok := index(seg); ok {
			x = x.U(seg, int64(i))
			continue
		}
		x = x.C(seg)
	}
	return x
}

func index(seg string) (int, bool) {
	if seg == "" || strings.TrimLeft(seg, "0123456789") != "" {
		return 0, false
	}
	i, err := strconv.Atoi(seg)
	if err != nil {
		return 0, false
	}
	return i, true
}
