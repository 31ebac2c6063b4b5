// Package test holds small generators shared by the pkg test suites,
// generalized from the teacher's own internal/test helpers to stacklang's
// token vocabulary (words, operators, numeric and string literals) instead
// of a curly-brace-language's.
package test

import (
	"math/rand"
	"strings"
)

const validTokens = "dup;drop;swap;over;rot;if;else;end;while;do;proc;in;memory;let;with;+;-;*;/;%;==;!=;dump;\"a string literal\";\"\";123;0xFF;//comment\n;\n"

func GetRandomTokens(size int) string {
	return GetRandomTokensWithSep(size, " ")
}

func GetRandomTokensWithSep(size int, sep string) string {
	valid := strings.Split(validTokens, ";")

	var toks []string
	for len(toks) < size {
		toks = append(toks, valid[rand.Intn(len(valid))])
	}

	return strings.Join(toks, sep)
}
