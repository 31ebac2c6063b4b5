package stacklang

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorUnwrapChain(t *testing.T) {
	leaf := InvalidType{Info: &SourceInfo{File: "a.sl", Line: 1, ColS: 1}, Msg: "int must be bool"}
	mid := IfException{Info: &SourceInfo{File: "a.sl", Line: 1, ColS: 1}, Cause: leaf}
	outer := ProcedureError{Info: &SourceInfo{File: "a.sl", Line: 1, ColS: 1}, Name: "square", Cause: mid}

	assert.Equal(t, mid, errors.Unwrap(outer))
	assert.Equal(t, leaf, errors.Unwrap(mid))
	assert.Nil(t, errors.Unwrap(leaf))

	var asIf IfException
	assert.True(t, errors.As(outer, &asIf))
	var asType InvalidType
	assert.True(t, errors.As(outer, &asType))
}

func TestErrorMessages(t *testing.T) {
	info := &SourceInfo{File: "a.sl", Line: 3, ColS: 5}

	cases := []struct {
		name string
		err  error
		want string
	}{
		{"unknown token", UnknownToken{Info: info, Msg: "bad escape"}, "a.sl:3:5: unknown token: bad escape"},
		{"invalid syntax", InvalidSyntax{Info: info, Msg: "elif with no preceding if"}, "a.sl:3:5: invalid syntax: elif with no preceding if"},
		{"not enough tokens", NotEnoughTokens{Info: info, Expected: 2, Got: 1}, "a.sl:3:5: not enough tokens: expected 2, got 1"},
		{"symbol redefined", SymbolRedefined{Info: info, Name: "square", Original: info}, `a.sl:3:5: "square" is already defined at a.sl:3:5`},
		{"stack not empty", StackNotEmpty{Info: info, Left: []Type{INT}}, "a.sl:3:5: stack not empty at end of program: [INT]"},
		{"procedure error", ProcedureError{Info: info, Name: "square", Cause: InvalidType{Info: info, Msg: "bad"}}, "a.sl:3:5: in procedure \"square\": a.sl:3:5: invalid type: bad"},
		{"if exception", IfException{Info: info, Cause: InvalidType{Info: info, Msg: "bad"}}, "a.sl:3:5: in if-branch: a.sl:3:5: invalid type: bad"},
		{"reporting without cause", Reporting{Info: info, Msg: "top level"}, "a.sl:3:5: top level"},
		{"reporting with cause", Report(info, "wrapper", InvalidType{Info: info, Msg: "bad"}), "a.sl:3:5: wrapper: a.sl:3:5: invalid type: bad"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, c.err.Error())
		})
	}
}

func TestFileErrorUnwrap(t *testing.T) {
	cause := errors.New("no such file")
	fe := FileError{Info: &SourceInfo{File: "a.sl", Line: 1, ColS: 1}, Path: "missing.sl", Cause: cause}
	assert.Equal(t, cause, errors.Unwrap(fe))
	assert.Contains(t, fe.Error(), "missing.sl")
	assert.Contains(t, fe.Error(), "no such file")
}

func TestDiagnoseRendersSourceSpan(t *testing.T) {
	info := &SourceInfo{File: "prog.sl", Line: 2, ColS: 5, ColE: 6, Raw: "1 true +"}
	err := InvalidType{Info: info, Msg: "bool must be int"}

	var buf bytes.Buffer
	Diagnose(&buf, err)
	out := buf.String()

	assert.Contains(t, out, "error:")
	assert.Contains(t, out, "prog.sl:2:5")
	assert.Contains(t, out, "1 true +")
	assert.Contains(t, out, "^")
}

func TestDiagnoseWalksCauseChainNewestFirst(t *testing.T) {
	info := &SourceInfo{File: "prog.sl", Line: 4, ColS: 1, ColE: 2, Raw: "n n * end"}
	leaf := InvalidType{Info: info, Msg: "bad type"}
	wrapped := ProcedureError{Info: info, Name: "square", Cause: leaf}

	var buf bytes.Buffer
	Diagnose(&buf, wrapped)
	out := buf.String()

	errIdx := strings.Index(out, "error:")
	causeIdx := strings.Index(out, "caused by:")
	assert.GreaterOrEqual(t, errIdx, 0)
	assert.GreaterOrEqual(t, causeIdx, 0)
	assert.Less(t, errIdx, causeIdx)
	assert.Contains(t, out, `in procedure "square"`)
	assert.Contains(t, out, "bad type")
}

func TestDiagnoseWithoutSourceInfoFallsBackToMessageOnly(t *testing.T) {
	err := errors.New("some opaque failure")

	var buf bytes.Buffer
	Diagnose(&buf, err)
	out := buf.String()

	assert.Contains(t, out, "some opaque failure")
	assert.NotContains(t, out, "-->")
}

func TestCaretClampsToAtLeastOneColumn(t *testing.T) {
	zeroWidth := &SourceInfo{ColS: 3, ColE: 3}
	assert.Equal(t, "  ^", caret(zeroWidth))

	wide := &SourceInfo{ColS: 1, ColE: 4}
	assert.Equal(t, "^^^", caret(wide))
}
