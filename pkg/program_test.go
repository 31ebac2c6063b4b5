package stacklang

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchWordResolvesByKind(t *testing.T) {
	prog, err := ParseString("w.sl", "memory buf 8 end proc pr n *int* in n dump end buf drop pr 0 exit", nil)
	require.NoError(t, err)

	var kinds []InstrKind
	for _, instr := range prog.Instructions {
		kinds = append(kinds, instr.Kind)
	}
	assert.Contains(t, kinds, OpPushMemory)
	assert.Contains(t, kinds, OpCall)
}

func TestMatchWordUnboundNameIsOpWord(t *testing.T) {
	prog, err := ParseString("w.sl", "1 with x do x dump end 0 exit", nil)
	require.NoError(t, err)

	found := false
	for _, instr := range prog.Instructions {
		if instr.Kind == OpWord && instr.StrVal == "x" {
			found = true
		}
	}
	assert.True(t, found, "bare name with no symbol table entry should resolve to OpWord")
}

func TestMacroExpandsInline(t *testing.T) {
	prog, err := ParseString("m.sl", "macro twice dup + end 5 twice dump 0 exit", nil)
	require.NoError(t, err)

	var sawLabel, sawPlus bool
	for _, instr := range prog.Instructions {
		if instr.Kind == OpLabel && instr.StrVal == "twice" {
			sawLabel = true
		}
		if instr.Kind == OpPlus {
			sawPlus = true
		}
	}
	assert.True(t, sawLabel, "macro call site should expand to a LABEL marker")
	assert.True(t, sawPlus, "macro body should be spliced in at the call site")

	// And it should actually behave like dup + when run.
	out, code, err := run(t, "macro twice dup + end 5 twice dump 0 exit")
	require.NoError(t, err)
	assert.Equal(t, "10\n", out)
	assert.Equal(t, 0, code)
}

func TestIncludeSplicesFileContents(t *testing.T) {
	dir := t.TempDir()
	inc := filepath.Join(dir, "helper.sl")
	require.NoError(t, os.WriteFile(inc, []byte("macro double dup + end"), 0o644))

	main := filepath.Join(dir, "main.sl")
	src := `include "helper.sl" 21 double dump 0 exit`
	require.NoError(t, os.WriteFile(main, []byte(src), 0o644))

	prog, err := ParseFile(main, nil)
	require.NoError(t, err)
	require.NoError(t, NewTypeChecker().Check(prog.Instructions))

	for _, instr := range prog.Instructions {
		assert.NotEqual(t, OpInclude, instr.Kind, "include/string pair is spliced out, not kept as an instruction")
	}
}

func TestIncludeMissingFileFails(t *testing.T) {
	_, err := ParseString("main.sl", `include "does-not-exist.sl" 0 exit`, nil)
	require.Error(t, err)
	var fe FileError
	assert.ErrorAs(t, err, &fe)
	assert.Equal(t, "does-not-exist.sl", fe.Path)
}

func TestIncludeRequiresStringLiteral(t *testing.T) {
	_, err := ParseString("main.sl", "include 5 0 exit", nil)
	require.Error(t, err)
}

func TestFlowResolverIfElifElseLinkage(t *testing.T) {
	prog, err := ParseString("f.sl", "1 2 > if 1 elif 3 4 > do 2 else 3 end drop 0 exit", nil)
	require.NoError(t, err)

	var ifTok, elifTok, elseTok, endTok *Instr
	for _, instr := range prog.Instructions {
		switch instr.Kind {
		case OpIf:
			ifTok = instr
		case OpElif:
			elifTok = instr
		case OpElse:
			elseTok = instr
		}
	}
	require.NotNil(t, ifTok)
	require.NotNil(t, elifTok)
	require.NotNil(t, elseTok)

	assert.Same(t, ifTok, ifTok.Flow.Root)
	assert.Same(t, ifTok, elifTok.Flow.Prev)
	assert.Same(t, elifTok, elseTok.Flow.Prev)
	assert.Same(t, ifTok, elifTok.Flow.Root, "every link in the chain shares the same Root")
	assert.Same(t, ifTok, elseTok.Flow.Root)
	assert.Same(t, elifTok, ifTok.Flow.Next, "if links forward to the elif that followed it")
	assert.Same(t, elseTok, elifTok.Flow.Next, "elif links forward to the else that followed it")
	assert.True(t, ifTok.Flow.HasElse)
	endTok = ifTok.Flow.End
	require.NotNil(t, endTok)
	assert.Equal(t, OpEnd, endTok.Kind)
	assert.Same(t, endTok, elseTok.Flow.End)
}

func TestFlowResolverWhileDoLinkage(t *testing.T) {
	prog, err := ParseString("f.sl", "0 while dup 3 < do dup dump 1 + end drop 0 exit", nil)
	require.NoError(t, err)

	var whileTok, doTok *Instr
	for _, instr := range prog.Instructions {
		switch instr.Kind {
		case OpWhile:
			whileTok = instr
		case OpDo:
			doTok = instr
		}
	}
	require.NotNil(t, whileTok)
	require.NotNil(t, doTok)
	assert.Same(t, whileTok, doTok.Flow.Root)
	assert.Same(t, whileTok.Flow, doTok.Flow)
	assert.NotNil(t, whileTok.Flow.End)
}

func TestFlowResolverLetWithCollectsNames(t *testing.T) {
	prog, err := ParseString("f.sl", "1 2 with a b do a dump b dump end 0 exit", nil)
	require.NoError(t, err)

	var withTok *Instr
	for _, instr := range prog.Instructions {
		if instr.Kind == OpWith {
			withTok = instr
		}
	}
	require.NotNil(t, withTok)
	require.Len(t, withTok.Flow.Data, 2)
	assert.Equal(t, "a", withTok.Flow.Data[0].StrVal)
	assert.Equal(t, "b", withTok.Flow.Data[1].StrVal)
}

func TestFlowResolverUnbalancedBlocksFail(t *testing.T) {
	cases := []struct {
		name   string
		source string
	}{
		{"dangling if with no end", "1 2 > if 1 0 exit"},
		{"stray end with nothing open", "1 end 0 exit"},
		{"elif with no preceding if", "elif 1 end 0 exit"},
		{"do with no opener", "do end 0 exit"},
		{"else without if", "else end 0 exit"},
		{"proc missing its closing end", "proc a n *int* in n"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := ParseString("f.sl", c.source, nil)
			assert.Error(t, err)
		})
	}
}

func TestProcSelfRecursionBecomesCall(t *testing.T) {
	prog, err := ParseString("r.sl", "proc count n *int* in n 0 == if n else n 1 - count end end 5 count drop 0 exit", nil)
	require.NoError(t, err)

	sawSelfCall := false
	for _, instr := range prog.Instructions {
		if instr.Kind == OpCall && instr.StrVal == "count" {
			sawSelfCall = true
		}
		assert.False(t, instr.Kind == OpWord && instr.StrVal == "count",
			"a proc's own name inside its body must resolve to a CALL, never a bare WORD")
	}
	assert.True(t, sawSelfCall)
}
