package stacklang

import "fmt"

// stackEntry pairs an abstract stack value's type with the instruction
// that pushed it, so a later type error can point at the instruction that
// produced the offending value rather than only the one that rejected it.
type stackEntry struct {
	instr *Instr
	typ   Type
}

// TypeChecker simulates the effect of every instruction on an abstract
// value stack without executing anything, the same way the engine
// contract's `before`/`step`/`close` drive real execution. Branch
// reconciliation (if/elif/else, while) snapshots the stack at each branch
// point and compares branches against each other once they rejoin.
type TypeChecker struct {
	stack            []stackEntry
	blockStack       [][]stackEntry
	blockOriginStack [][]stackEntry
	locals           []map[string]stackEntry
	procedures       map[string]*Procedure
}

// NewTypeChecker returns a checker with an empty abstract stack.
func NewTypeChecker() *TypeChecker {
	return &TypeChecker{procedures: make(map[string]*Procedure)}
}

// Check runs every instruction in order through the checker and reports
// the first violated invariant. A fully consumed stack at the very end is
// required; anything left over is StackNotEmpty.
func (c *TypeChecker) Check(instrs []*Instr) error {
	for _, instr := range instrs {
		if err := c.step(instr); err != nil {
			return err
		}
	}
	return c.finish()
}

func (c *TypeChecker) finish() error {
	switch {
	case len(c.stack) == 1:
		top := c.stack[len(c.stack)-1]
		return StackNotEmpty{Info: top.instr.Info, Left: []Type{top.typ}}
	case len(c.stack) > 1:
		top := c.stack[len(c.stack)-1]
		left := make([]Type, len(c.stack))
		for i, e := range c.stack {
			left[i] = e.typ
		}
		return StackNotEmpty{Info: top.instr.Info, Left: left}
	}
	return nil
}

func (c *TypeChecker) push(instr *Instr, t Type) { c.stack = append(c.stack, stackEntry{instr, t}) }

func (c *TypeChecker) pop() stackEntry {
	n := len(c.stack) - 1
	e := c.stack[n]
	c.stack = c.stack[:n]
	return e
}

func (c *TypeChecker) checkLength(n int, token *Instr) error {
	if len(c.stack) < n {
		return NotEnoughTokens{Info: token.Info, Expected: n, Got: len(c.stack)}
	}
	return nil
}

// typeCheck pops (or peeks, if consume is false) the top of stack and
// requires it match expected exactly (ANY matches anything, per Type.Equal).
func (c *TypeChecker) typeCheck(expected Type, token *Instr, consume bool) (stackEntry, error) {
	var e stackEntry
	if consume {
		e = c.pop()
	} else {
		e = c.stack[len(c.stack)-1]
	}
	if !e.typ.Equal(expected) {
		return e, Report(e.instr.Info, fmt.Sprintf("%s must be %s", e.typ, expected),
			InvalidType{Info: token.Info, Msg: "invalid type for this operation"})
	}
	return e, nil
}

// check requires the top len(args) stack values match args in order (the
// first element of args is checked against the current top of stack).
func (c *TypeChecker) check(args []Type, token *Instr) ([]stackEntry, error) {
	if err := c.checkLength(len(args), token); err != nil {
		return nil, err
	}
	out := make([]stackEntry, 0, len(args))
	for _, a := range args {
		e, err := c.typeCheck(a, token, true)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// checkSame requires the top length stack values are all the same type,
// returning that type.
func (c *TypeChecker) checkSame(length int, token *Instr) (Type, error) {
	if err := c.checkLength(length, token); err != nil {
		return Type{}, err
	}
	first := c.pop()
	for i := 1; i < length; i++ {
		next := c.pop()
		if !next.typ.Equal(first.typ) {
			return Type{}, Report(next.instr.Info, fmt.Sprintf("%s must be equal to %s", next.typ, first.typ),
				Report(first.instr.Info, fmt.Sprintf("%s and", first.typ),
					InvalidType{Info: token.Info, Msg: "invalid type for this operation"}))
		}
	}
	return first.typ, nil
}

// checkComb resolves an operator with several valid overloads: each entry
// of cases is one candidate stack-effect signature, all of the same
// length. The stack is popped len(cases[0]) times; at each position only
// the cases still consistent with everything popped so far remain
// candidates. Returns the surviving case's index and the popped types in
// pop order.
func (c *TypeChecker) checkComb(cases [][]Type, token *Instr) (int, []Type, error) {
	length := len(cases[0])
	if err := c.checkLength(length, token); err != nil {
		return -1, nil, err
	}

	valid := make([]bool, len(cases))
	for i := range valid {
		valid[i] = true
	}
	popped := make([]Type, 0, length)

	for pos := 0; pos < length; pos++ {
		e := c.pop()
		popped = append(popped, e.typ)
		hit := false
		for i, ok := range valid {
			if !ok {
				continue
			}
			if cases[i][pos].Equal(e.typ) {
				hit = true
			} else {
				valid[i] = false
			}
		}
		if !hit {
			choices := map[string]struct{}{}
			for i, ok := range valid {
				if ok {
					choices[cases[i][pos].String()] = struct{}{}
				}
			}
			names := make([]string, 0, len(choices))
			for n := range choices {
				names = append(names, n)
			}
			return -1, nil, InvalidType{Info: e.instr.Info, Msg: fmt.Sprintf("%s expected to be one of %v", e.typ, names)}
		}
	}
	for i, ok := range valid {
		if ok {
			return i, popped, nil
		}
	}
	return -1, nil, InvalidType{Info: token.Info, Msg: "no matching overload"}
}

// cmpStack reconciles two stack snapshots taken at the opening and closing
// of a block (if/elif/else, while): they must be the same length and carry
// the same types in the same order, or the offending branch is reported
// via cause (an IfException/ElifException/ElseException/WhileException
// naming which branch diverged).
func cmpStack(stack, prev []stackEntry, cause error) error {
	if len(stack) > len(prev) {
		return AddedToken{Info: stack[len(stack)-1].instr.Info, Text: "a value was added", Cause: cause}
	}
	if len(stack) < len(prev) {
		return MissingToken{Info: prev[len(prev)-1].instr.Info, Expected: "a value is missing", Cause: cause}
	}
	for i := range prev {
		if !prev[i].typ.Equal(stack[i].typ) {
			return Report(stack[i].instr.Info, "",
				Report(prev[i].instr.Info, "got changed by", cause))
		}
	}
	return nil
}

var (
	int2  = []Type{INT, INT}
	any1  = []Type{ANY}
	ptrAny = Ptr(ANY)
)

func (c *TypeChecker) step(token *Instr) error {
	switch token.Kind {
	case OpLabel:
		return nil

	case OpPush:
		c.push(token, INT)
	case OpBool:
		c.push(token, BOOL)
	case OpChar:
		c.push(token, CHAR)
	case OpString:
		c.push(token, INT)
		c.push(token, Ptr(CHAR))

	case OpDrop:
		if _, err := c.check(any1, token); err != nil {
			return err
		}
	case OpDup:
		if err := c.checkLength(1, token); err != nil {
			return err
		}
		a := c.pop()
		c.stack = append(c.stack, a, stackEntry{token, a.typ})
	case OpDup2:
		if err := c.checkLength(2, token); err != nil {
			return err
		}
		a := c.pop()
		b := c.pop()
		c.stack = append(c.stack, b, a, stackEntry{token, b.typ}, stackEntry{token, a.typ})
	case OpSwap:
		if err := c.checkLength(2, token); err != nil {
			return err
		}
		a := c.pop()
		b := c.pop()
		c.stack = append(c.stack, a, b)
	case OpSwap2:
		if err := c.checkLength(4, token); err != nil {
			return err
		}
		a := c.pop()
		b := c.pop()
		d := c.pop()
		e := c.pop()
		c.stack = append(c.stack, d, e, a, b)
	case OpOver:
		if err := c.checkLength(2, token); err != nil {
			return err
		}
		c.stack = append(c.stack, c.stack[len(c.stack)-2])
	case OpRot:
		if err := c.checkLength(3, token); err != nil {
			return err
		}
		a := c.pop()
		b := c.pop()
		cc := c.pop()
		c.stack = append(c.stack, b, a, cc)
	case OpRRot:
		if err := c.checkLength(3, token); err != nil {
			return err
		}
		a := c.pop()
		b := c.pop()
		cc := c.pop()
		c.stack = append(c.stack, a, cc, b)

	case OpPlus:
		kase, types, err := c.checkComb([][]Type{{INT, INT}, {INT, ptrAny}, {ptrAny, INT}, {CHAR, CHAR}}, token)
		if err != nil {
			return err
		}
		switch kase {
		case 0:
			c.push(token, INT)
		case 1:
			c.push(token, types[1])
		case 2:
			c.push(token, types[0])
		case 3:
			c.push(token, CHAR)
		}
	case OpMinus:
		kase, types, err := c.checkComb([][]Type{{INT, INT}, {INT, ptrAny}, {ptrAny, ptrAny}, {CHAR, CHAR}}, token)
		if err != nil {
			return err
		}
		switch kase {
		case 0:
			c.push(token, INT)
		case 1:
			c.push(token, ptrAny)
		case 2:
			c.push(token, INT)
		case 3:
			c.push(token, CHAR)
		}
		_ = types
	case OpMul, OpDiv, OpMod:
		if _, err := c.check(int2, token); err != nil {
			return err
		}
		c.push(token, INT)
	case OpDivMod:
		if _, err := c.check(int2, token); err != nil {
			return err
		}
		c.push(token, INT)
		c.push(token, INT)
	case OpIncrement, OpDecrement:
		kase, _, err := c.checkComb([][]Type{{INT}, {ptrAny}, {CHAR}}, token)
		if err != nil {
			return err
		}
		switch kase {
		case 0:
			c.push(token, INT)
		case 1:
			c.push(token, ptrAny)
		case 2:
			c.push(token, CHAR)
		}

	case OpBLsh, OpBRsh:
		if _, err := c.check(int2, token); err != nil {
			return err
		}
		c.push(token, INT)
	case OpBAnd, OpBOr, OpBXor:
		kase, _, err := c.checkComb([][]Type{{INT, INT}, {CHAR, CHAR}, {BOOL, BOOL}}, token)
		if err != nil {
			return err
		}
		switch kase {
		case 0:
			c.push(token, INT)
		case 1:
			c.push(token, CHAR)
		case 2:
			c.push(token, BOOL)
		}

	case OpEq, OpNe, OpGt, OpGe, OpLt, OpLe:
		if _, err := c.checkSame(2, token); err != nil {
			return err
		}
		c.push(token, BOOL)

	case OpDump, OpUDump, OpCDump:
		if _, err := c.check(any1, token); err != nil {
			return err
		}
	case OpHexDump:
		if _, err := c.check([]Type{INT}, token); err != nil {
			return err
		}

	case OpSyscall:
		if _, err := c.check([]Type{INT}, token); err != nil {
			return err
		}
		c.push(token, INT)
	case OpSyscall1, OpSyscall2, OpSyscall3, OpSyscall4, OpSyscall5, OpSyscall6:
		n := syscallArgCount(token.Kind)
		args := append([]Type{INT}, repeatType(ANY, n)...)
		if _, err := c.check(args, token); err != nil {
			return err
		}
		c.push(token, INT)
	case OpRSyscall1, OpRSyscall2, OpRSyscall3, OpRSyscall4, OpRSyscall5, OpRSyscall6:
		n := rsyscallArgCount(token.Kind)
		args := append(repeatType(ANY, n), INT)
		if _, err := c.check(args, token); err != nil {
			return err
		}
		c.push(token, INT)

	case OpExit:
		if _, err := c.check([]Type{INT}, token); err != nil {
			return err
		}

	case OpIf:
		if _, err := c.check([]Type{BOOL}, token); err != nil {
			return err
		}
		c.blockStack = append(c.blockStack, cloneStack(c.stack))
		c.blockOriginStack = append(c.blockOriginStack, cloneStack(c.stack))

	case OpElif:
		prev := c.popBlock()
		if token.Flow.Prev == nil {
			return InvalidSyntax{Info: token.Info, Msg: "elif with no preceding if"}
		}
		if token.Flow.Prev.Kind == OpIf && !token.Flow.HasElse {
			if err := cmpStack(c.stack, prev, IfException{Info: token.Flow.Prev.Info}); err != nil {
				return err
			}
		}
		if token.Flow.Prev.Kind == OpElif {
			if err := cmpStack(c.stack, prev, ElifException{Info: token.Flow.Prev.Info}); err != nil {
				return err
			}
		}
		c.blockStack = append(c.blockStack, cloneStack(c.stack))
		c.stack = cloneStack(c.blockOriginStack[len(c.blockOriginStack)-1])

	case OpElse:
		prev := c.popBlock()
		if token.Flow.Prev != nil && token.Flow.Prev.Kind == OpElif {
			if err := cmpStack(c.stack, prev, ElseException{Info: token.Flow.Prev.Info}); err != nil {
				return err
			}
		}
		c.blockStack = append(c.blockStack, cloneStack(c.stack))
		c.stack = cloneStack(c.blockOriginStack[len(c.blockOriginStack)-1])

	case OpWhile:
		c.blockOriginStack = append(c.blockOriginStack, cloneStack(c.stack))
		c.blockStack = append(c.blockStack, cloneStack(c.stack))

	case OpDo:
		if token.Flow.Root.Kind == OpWith || token.Flow.Root.Kind == OpLet {
			return nil
		}
		if _, err := c.check([]Type{BOOL}, token); err != nil {
			return err
		}
		if token.Flow.Root.Kind == OpWhile {
			prev := c.blockStack[len(c.blockStack)-1]
			if len(prev) != len(c.stack) {
				return WhileException{Info: c.stack[len(c.stack)-1].instr.Info}
			}
		}

	case OpEnd:
		root := token.Flow.Root
		if root.Kind == OpWith || root.Kind == OpLet {
			c.locals = c.locals[:len(c.locals)-1]
			return nil
		}
		prev := c.popBlock()
		c.popBlockOrigin()

		switch root.Kind {
		case OpProc:
			proc := root.Proc
			outTypes := make([]Type, len(proc.Out))
			copy(outTypes, proc.Out)
			if _, err := c.check(outTypes, token); err != nil {
				return err
			}
			if len(c.stack) == 1 {
				a := c.pop()
				return ProcedureError{Info: a.instr.Info, Name: proc.Name, Cause: Report(root.Info, fmt.Sprintf("unhandled data on stack inside procedure (%s)", a.typ), nil)}
			}
			if len(c.stack) > 1 {
				a := c.pop()
				return ProcedureError{Info: a.instr.Info, Name: proc.Name, Cause: Report(root.Info, fmt.Sprintf("unhandled data on stack inside procedure (%s) (%d more)", a.typ, len(c.stack)), nil)}
			}
			c.stack = prev
		case OpWhile:
			if err := cmpStack(c.stack, prev, WhileException{Info: token.Info}); err != nil {
				return err
			}
			c.stack = prev
		case OpIf:
			if err := cmpStack(c.stack, prev, IfException{Info: token.Info}); err != nil {
				return err
			}
		default:
		}

	case OpLet:
		n := len(token.Flow.Data)
		if _, err := c.check(repeatType(INT, n), token); err != nil {
			return err
		}
		l := make(map[string]stackEntry, n)
		for _, tok := range token.Flow.Data {
			l[tok.StrVal] = stackEntry{tok, ptrAny}
		}
		c.locals = append(c.locals, l)

	case OpWith:
		n := len(token.Flow.Data)
		if err := c.checkLength(n, token); err != nil {
			return err
		}
		l := make(map[string]stackEntry, n)
		for _, name := range token.Flow.Data {
			l[name.StrVal] = c.pop()
		}
		c.locals = append(c.locals, l)

	case OpArgc:
		c.push(token, INT)
	case OpArgv:
		c.push(token, ptrAny)

	case OpStore:
		if _, err := c.check([]Type{ptrAny, CHAR}, token); err != nil {
			return err
		}
	case OpStore16, OpStore32, OpStore64:
		if _, err := c.check([]Type{ptrAny, INT}, token); err != nil {
			return err
		}

	case OpLoad, OpLoad16, OpLoad32, OpLoad64:
		t, err := c.check([]Type{ptrAny}, token)
		if err != nil {
			return err
		}
		deref, derr := t[0].typ.Deref()
		if derr != nil {
			return InvalidType{Info: token.Info, Msg: derr.Error()}
		}
		c.push(token, deref)

	case OpWord:
		for i := len(c.locals) - 1; i >= 0; i-- {
			if e, ok := c.locals[i][token.StrVal]; ok {
				c.stack = append(c.stack, e)
				return nil
			}
		}
		proc, ok := c.procedures[token.StrVal]
		if !ok {
			return UnknownToken{Info: token.Info, Msg: "unknown word"}
		}
		argTypes := make([]Type, len(proc.Args))
		for i, a := range proc.Args {
			argTypes[i] = a.Type
		}
		if _, err := c.check(argTypes, token); err != nil {
			return err
		}
		// First-declared out type ends up on top, as OpEnd checks it.
		for i := len(proc.Out) - 1; i >= 0; i-- {
			c.push(token, proc.Out[i])
		}

	case OpCast:
		a := c.pop()
		c.push(a.instr, token.TypeVal)

	case OpPushMemory:
		c.push(token, ptrAny)

	case OpProc:
		proc := token.Proc
		c.procedures[proc.Name] = proc
		c.blockOriginStack = append(c.blockOriginStack, cloneStack(c.stack))
		c.blockStack = append(c.blockStack, nil)
		c.stack = nil
		l := make(map[string]stackEntry, len(proc.Args))
		for _, a := range proc.Args {
			l[a.Name] = stackEntry{token, a.Type}
		}
		c.locals = append(c.locals, l)

	case OpCall:
		proc, ok := c.procedures[token.StrVal]
		if !ok {
			return UnknownToken{Info: token.Info, Msg: "call to an unknown procedure"}
		}
		argTypes := make([]Type, len(proc.Args))
		for i, a := range proc.Args {
			argTypes[i] = a.Type
		}
		if _, err := c.check(argTypes, token); err != nil {
			return err
		}
		// First-declared out type ends up on top, as OpEnd checks it.
		for i := len(proc.Out) - 1; i >= 0; i-- {
			c.push(token, proc.Out[i])
		}

	default:
		return InvalidSyntax{Info: token.Info, Msg: "unhandled instruction in type checker"}
	}
	return nil
}

func (c *TypeChecker) popBlock() []stackEntry {
	n := len(c.blockStack) - 1
	b := c.blockStack[n]
	c.blockStack = c.blockStack[:n]
	return b
}

func (c *TypeChecker) popBlockOrigin() []stackEntry {
	n := len(c.blockOriginStack) - 1
	b := c.blockOriginStack[n]
	c.blockOriginStack = c.blockOriginStack[:n]
	return b
}

func cloneStack(s []stackEntry) []stackEntry {
	out := make([]stackEntry, len(s))
	copy(out, s)
	return out
}

func repeatType(t Type, n int) []Type {
	out := make([]Type, n)
	for i := range out {
		out[i] = t
	}
	return out
}

func syscallArgCount(k InstrKind) int {
	switch k {
	case OpSyscall1:
		return 1
	case OpSyscall2:
		return 2
	case OpSyscall3:
		return 3
	case OpSyscall4:
		return 4
	case OpSyscall5:
		return 5
	case OpSyscall6:
		return 6
	}
	return 0
}

func rsyscallArgCount(k InstrKind) int {
	switch k {
	case OpRSyscall1:
		return 1
	case OpRSyscall2:
		return 2
	case OpRSyscall3:
		return 3
	case OpRSyscall4:
		return 4
	case OpRSyscall5:
		return 5
	case OpRSyscall6:
		return 6
	}
	return 0
}
