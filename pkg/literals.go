package stacklang

import (
	"fmt"
	"strconv"
	"strings"
)

// parseIntLiteral parses a NUMBER token's text (decimal, or 0x/0X hex) into
// its signed 64-bit value. The lexer has already validated that the digits
// fit in 64 bits, so only malformed-prefix errors can occur here.
func parseIntLiteral(text string) (int64, error) {
	if strings.HasPrefix(text, "0x") || strings.HasPrefix(text, "0X") {
		v, err := strconv.ParseUint(text[2:], 16, 64)
		if err != nil {
			return 0, fmt.Errorf("malformed hex literal %q", text)
		}
		return int64(v), nil
	}
	v, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		if u, uerr := strconv.ParseUint(text, 10, 64); uerr == nil {
			return int64(u), nil
		}
		return 0, fmt.Errorf("malformed number literal %q", text)
	}
	return v, nil
}

// unescapeString turns a STRING token's raw body (which still holds literal
// backslash-escape pairs, e.g. `\n` as two runes) into its runtime value.
// Supported escapes mirror the small set any stack-effect language like
// this one needs: \n \t \r \\ \" \0 and \xHH.
func unescapeString(raw string) string {
	var sb strings.Builder
	runes := []rune(raw)
	for i := 0; i < len(runes); i++ {
		if runes[i] != '\\' || i+1 >= len(runes) {
			sb.WriteRune(runes[i])
			continue
		}
		i++
		switch runes[i] {
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case 'r':
			sb.WriteByte('\r')
		case '0':
			sb.WriteByte(0)
		case '\\':
			sb.WriteByte('\\')
		case '"':
			sb.WriteByte('"')
		case 'x':
			if i+2 < len(runes) {
				if v, err := strconv.ParseUint(string(runes[i+1:i+3]), 16, 8); err == nil {
					sb.WriteByte(byte(v))
					i += 2
					continue
				}
			}
			sb.WriteRune(runes[i])
		default:
			sb.WriteRune(runes[i])
		}
	}
	return sb.String()
}

// unescapeChar unescapes a CHAR token's body (either one literal rune, or a
// backslash escape pair) into its single code point.
func unescapeChar(raw string) (rune, error) {
	unescaped := unescapeString(raw)
	runes := []rune(unescaped)
	if len(runes) != 1 {
		return 0, fmt.Errorf("char literal %q does not resolve to exactly one character", raw)
	}
	return runes[0], nil
}
