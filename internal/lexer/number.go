package lexer

import (
	"fmt"

	"github.com/mna/ore/internal/token"
)

// scanNumber recognizes integer literals (with optional 0x/0b/0o base
// prefix) and float literals (decimal point and/or scientific exponent).
// A lone '.' not followed by a digit is handled by the caller before
// scanNumber is ever invoked.
func (l *Lexer) scanNumber(line, col int) (token.Kind, string) {
	var buf []rune
	push := func() { buf = append(buf, l.cur); l.advance() }

	if l.cur == '0' && (l.peekByte() == 'x' || l.peekByte() == 'X') {
		push()
		push()
		for isHex(l.cur) {
			push()
		}
		return token.INT, string(buf)
	}
	if l.cur == '0' && (l.peekByte() == 'b' || l.peekByte() == 'B') {
		push()
		push()
		for l.cur == '0' || l.cur == '1' {
			push()
		}
		return token.INT, string(buf)
	}
	if l.cur == '0' && (l.peekByte() == 'o' || l.peekByte() == 'O') {
		push()
		push()
		for l.cur >= '0' && l.cur <= '7' {
			push()
		}
		return token.INT, string(buf)
	}

	isFloat := false
	for isDecimal(l.cur) {
		push()
	}
	if l.cur == '.' {
		isFloat = true
		push()
		if l.cur == '.' {
			l.error(IllegalLiteral, line, col, "illegal literal: unexpected '..' in number")
			for isDecimal(l.cur) || l.cur == '.' {
				push()
			}
			return token.ILLEGAL, string(buf)
		}
		for isDecimal(l.cur) {
			push()
		}
	}
	if l.cur == 'e' || l.cur == 'E' {
		isFloat = true
		push()
		if l.cur == '+' || l.cur == '-' {
			push()
		}
		if !isDecimal(l.cur) {
			l.error(IllegalLiteral, line, col, "illegal literal: exponent has no digits")
			return token.ILLEGAL, string(buf)
		}
		for isDecimal(l.cur) {
			push()
		}
	}
	if isFloat {
		return token.FLOAT, string(buf)
	}
	return token.INT, string(buf)
}

func isHex(r rune) bool {
	return isDecimal(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

// ParseIntLiteral converts a scanned INT token's text into an int64,
// detecting the base from its prefix exactly as the lexer recognized it.
func ParseIntLiteral(lit string) (int64, error) {
	base := 10
	digits := lit
	if len(lit) > 2 && lit[0] == '0' {
		switch lit[1] {
		case 'x', 'X':
			base, digits = 16, lit[2:]
		case 'b', 'B':
			base, digits = 2, lit[2:]
		case 'o', 'O':
			base, digits = 8, lit[2:]
		}
	}
	var v int64
	for _, c := range digits {
		d, err := hexDigitValue(c)
		if err != nil || int(d) >= base {
			return 0, fmt.Errorf("invalid digit %q for base %d", c, base)
		}
		v = v*int64(base) + int64(d)
	}
	return v, nil
}

func hexDigitValue(c rune) (int, error) {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0'), nil
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10, nil
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10, nil
	default:
		return 0, fmt.Errorf("invalid digit %q", c)
	}
}
