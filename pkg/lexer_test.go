package stacklang

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"go.stacklang.dev/internal/test"
)

func TestLexer(t *testing.T) {
	cases := []struct {
		name   string
		data   string
		fail   bool
		expect []LexToken
	}{
		{
			name: "integer literal",
			data: "42",
			expect: []LexToken{
				{Kind: LexNumber, Text: "42"},
			},
		},
		{
			name: "hex literal",
			data: "0xFF",
			expect: []LexToken{
				{Kind: LexNumber, Text: "0xFF"},
			},
		},
		{
			name: "overflowing literal fails",
			data: "99999999999999999999",
			fail: true,
		},
		{
			name: "string literal keeps escapes raw",
			data: `"hi\n"`,
			expect: []LexToken{
				{Kind: LexString, Text: `hi\n`},
			},
		},
		{
			name: "unterminated string fails",
			data: `"hi`,
			fail: true,
		},
		{
			name: "char literal",
			data: `'a'`,
			expect: []LexToken{
				{Kind: LexChar, Text: "a"},
			},
		},
		{
			name: "escaped char literal",
			data: `'\n'`,
			expect: []LexToken{
				{Kind: LexChar, Text: `\n`},
			},
		},
		{
			name: "char literal with more than one rune fails",
			data: `'ab'`,
			fail: true,
		},
		{
			name: "word",
			data: "dup",
			expect: []LexToken{
				{Kind: LexWord, Text: "dup"},
			},
		},
		{
			name: "cast marker is distinct from multiplication",
			data: "*int* 2 3 *",
			expect: []LexToken{
				{Kind: LexCast, Text: "int"},
				{Kind: LexNumber, Text: "2"},
				{Kind: LexNumber, Text: "3"},
				{Kind: LexOp, Text: "*"},
			},
		},
		{
			name: "longest operator match wins",
			data: "!64 != ! ==",
			expect: []LexToken{
				{Kind: LexOp, Text: "!64"},
				{Kind: LexOp, Text: "!="},
				{Kind: LexOp, Text: "!"},
				{Kind: LexOp, Text: "=="},
			},
		},
		{
			name: "comment runs to end of line",
			data: "1 // two 2\n3",
			expect: []LexToken{
				{Kind: LexNumber, Text: "1"},
				{Kind: LexOp, Text: "//"},
				{Kind: LexNewLine, Text: "\n"},
				{Kind: LexNumber, Text: "3"},
			},
		},
		{
			name: "illegal character fails",
			data: "1 $ 2",
			fail: true,
		},
		{
			name: "whitespace is skipped, newlines are kept",
			data: "1\t 2\n3",
			expect: []LexToken{
				{Kind: LexNumber, Text: "1"},
				{Kind: LexNumber, Text: "2"},
				{Kind: LexNewLine, Text: "\n"},
				{Kind: LexNumber, Text: "3"},
			},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			l := NewLexerFromString("test.sl", c.data)
			toks, err := l.Run()

			if c.fail {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)

			if !assert.Len(t, toks, len(c.expect)) {
				return
			}
			for i, want := range c.expect {
				assert.Equal(t, want.Kind, toks[i].Kind, "token %d kind", i)
				assert.Equal(t, want.Text, toks[i].Text, "token %d text", i)
				assert.NotNil(t, toks[i].Info)
			}
		})
	}
}

func TestLexerExtend(t *testing.T) {
	l := NewLexerFromString("outer.sl", "1")
	l.Extend("inner.sl", "2", nil)

	first := l.Next()
	assert.Equal(t, LexNumber, first.Kind)
	assert.Equal(t, "2", first.Text)
	assert.Equal(t, "inner.sl", first.Info.File)

	second := l.Next()
	assert.Equal(t, LexNumber, second.Kind)
	assert.Equal(t, "1", second.Text)
	assert.Equal(t, "outer.sl", second.Info.File)

	assert.Equal(t, LexEOF, l.Next().Kind)
}

func TestLexerRunAfterEOFStaysEOF(t *testing.T) {
	l := NewLexerFromString("test.sl", "")
	assert.Equal(t, LexEOF, l.Next().Kind)
	assert.Equal(t, LexEOF, l.Next().Kind)
}

func benchmarkLexer(size int, b *testing.B) {
	data := test.GetRandomTokens(size)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		l := NewLexerFromString("bench.sl", data)
		if _, err := l.Run(); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkLexer100(b *testing.B)     { benchmarkLexer(100, b) }
func BenchmarkLexer1000(b *testing.B)    { benchmarkLexer(1000, b) }
func BenchmarkLexer10000(b *testing.B)   { benchmarkLexer(10000, b) }
func BenchmarkLexer100000(b *testing.B)  { benchmarkLexer(100000, b) }
func BenchmarkLexer1000000(b *testing.B) { benchmarkLexer(1000000, b) }
