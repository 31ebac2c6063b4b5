package stacklang

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

// LLVMEmitter lowers a fully resolved, type-checked Program into an LLVM IR
// module: one *ir.Func per proc plus a `main` compiled from the top-level
// instructions. It is the `build` path's frontend; Driver (driver.go) takes
// the resulting module to an actual binary.
//
// Every operand-stack slot is represented uniformly as i64, mirroring the
// Interpreter's own uint64 operand stack: pointers are carried as
// ptrtoint'd addresses and only converted back to a real pointer at the
// point of a load or store. This keeps every phi node inserted at an
// if/while merge point trivially type-homogeneous, since the type checker
// only guarantees the abstract *stack-effect* types line up across
// branches, not that they'd pick the same concrete LLVM type.
type LLVMEmitter struct {
	mod      *ir.Module
	builtins *ValueLookup
	memories map[string]*ir.Global
	procs    map[string]*ir.Func
	strings  map[string]*ir.Global
}

// NewLLVMEmitter prepares an emitter with its builtin externs (printf and
// syscall) already declared by defineBuiltins; no wrapper functions are
// generated around them.
func NewLLVMEmitter() *LLVMEmitter {
	e := &LLVMEmitter{
		mod:      ir.NewModule(),
		builtins: NewValueLookup(),
		memories: make(map[string]*ir.Global),
		procs:    make(map[string]*ir.Func),
		strings:  make(map[string]*ir.Global),
	}
	defineBuiltins(e)
	return e
}

// Emit lowers p into e's module: memory globals, proc signatures, proc
// bodies, then main.
func (e *LLVMEmitter) Emit(p *Program) (*ir.Module, error) {
	for name, sym := range p.Globals {
		if sym.Kind != OpMemory {
			continue
		}
		size, err := evalMemorySize(sym.Root.Flow.Data)
		if err != nil {
			return nil, ProcedureError{Info: sym.Root.Info, Name: name, Cause: err}
		}
		arr := types.NewArray(uint64(size), types.I8)
		g := e.mod.NewGlobalDef("mem."+name, constant.NewZeroInitializer(arr))
		e.memories[name] = g
	}

	var procRoots []*Instr
	for name, sym := range p.Symbols {
		if sym.Kind != OpProc {
			continue
		}
		procRoots = append(procRoots, sym.Root)
		e.procs[name] = e.declareProc(sym.Root.Proc)
	}
	for _, root := range procRoots {
		fe := newFuncEmitter(e, e.procs[root.Proc.Name])
		if err := fe.bindProcArgs(root.Proc); err != nil {
			return nil, err
		}
		if err := fe.compileBody(p.Instructions, root.Position+1, root.Flow.End.Position); err != nil {
			return nil, ProcedureError{Info: root.Info, Name: root.Proc.Name, Cause: err}
		}
		fe.finishProc(root.Proc)
	}

	argc := ir.NewParam("argc", types.I32)
	argv := ir.NewParam("argv", types.NewPointer(types.I8Ptr))
	main := e.mod.NewFunc("main", types.I32, argc, argv)
	fe := newFuncEmitter(e, main)
	fe.argc, fe.argv = argc, argv
	if err := fe.compileBody(p.Instructions, 0, len(p.Instructions)); err != nil {
		return nil, err
	}
	if fe.block.Term == nil {
		fe.block.NewRet(constant.NewInt(types.I32, 0))
	}
	return e.mod, nil
}

func (e *LLVMEmitter) declareProc(proc *Procedure) *ir.Func {
	params := make([]*ir.Param, len(proc.Args))
	for i, a := range proc.Args {
		params[i] = ir.NewParam(a.Name, types.I64)
	}
	retType := procReturnType(proc)
	f := e.mod.NewFunc("proc."+proc.Name, retType, params...)
	return f
}

// procReturnType packages a proc's declared Out types into an LLVM return
// type: void for none, i64 for one, an anonymous struct of i64s for many.
func procReturnType(proc *Procedure) types.Type {
	switch len(proc.Out) {
	case 0:
		return types.Void
	case 1:
		return types.I64
	default:
		fields := make([]types.Type, len(proc.Out))
		for i := range fields {
			fields[i] = types.I64
		}
		return types.NewStruct(fields...)
	}
}

// funcEmitter compiles one function body (a proc, or the program's main)
// by walking the flat, already flow-resolved instruction list and
// simulating the operand stack at IR-build time, exactly the way the type
// checker simulates it with stackEntry values instead of LLVM ones.
type funcEmitter struct {
	e     *LLVMEmitter
	f     *ir.Func
	block *ir.Block

	stack  []value.Value
	locals []map[string]value.Value

	argc *ir.Param
	argv *ir.Param

	blocks int
}

func newFuncEmitter(e *LLVMEmitter, f *ir.Func) *funcEmitter {
	fe := &funcEmitter{e: e, f: f}
	fe.block = f.NewBlock("entry")
	fe.locals = append(fe.locals, map[string]value.Value{})
	return fe
}

func (fe *funcEmitter) bindProcArgs(proc *Procedure) error {
	for i, a := range proc.Args {
		fe.locals[0][a.Name] = fe.f.Params[i]
	}
	return nil
}

func (fe *funcEmitter) finishProc(proc *Procedure) {
	if fe.block.Term != nil {
		return
	}
	switch len(proc.Out) {
	case 0:
		fe.block.NewRet(nil)
	case 1:
		fe.block.NewRet(fe.pop())
	default:
		vals := make([]value.Value, len(proc.Out))
		// First-declared out type is the current stack top, the same
		// top-first convention as proc arguments and let/with.
		for i := range vals {
			vals[i] = fe.pop()
		}
		agg := value.Value(constant.NewZeroInitializer(procReturnType(proc)))
		for i, v := range vals {
			agg = fe.block.NewInsertValue(agg, v, uint64(i))
		}
		fe.block.NewRet(agg)
	}
}

func (fe *funcEmitter) newBlock(suffix string) *ir.Block {
	fe.blocks++
	return fe.f.NewBlock(fmt.Sprintf("%s.%d", suffix, fe.blocks))
}

func (fe *funcEmitter) push(v value.Value) { fe.stack = append(fe.stack, v) }
func (fe *funcEmitter) pop() value.Value {
	n := len(fe.stack) - 1
	v := fe.stack[n]
	fe.stack = fe.stack[:n]
	return v
}

func (fe *funcEmitter) lookup(name string) (value.Value, bool) {
	for i := len(fe.locals) - 1; i >= 0; i-- {
		if v, ok := fe.locals[i][name]; ok {
			return v, true
		}
	}
	return nil, false
}

// compileBody compiles instrs[from:to] into the function's blocks,
// recursively handling nested if/while constructs and skipping over proc
// regions that are only ever entered via a CALL.
func (fe *funcEmitter) compileBody(instrs []*Instr, from, to int) error {
	i := from
	for i < to {
		next, err := fe.compileFrom(instrs, i)
		if err != nil {
			return err
		}
		i = next
	}
	return nil
}

func (fe *funcEmitter) compileFrom(instrs []*Instr, i int) (int, error) {
	instr := instrs[i]

	switch instr.Kind {
	case OpIf:
		return fe.compileIfChain(instrs, instr)
	case OpWhile:
		return fe.compileWhile(instrs, instr)
	case OpProc:
		// Compiled separately as its own ir.Func; skip the inline copy.
		return instr.Flow.End.Position + 1, nil
	case OpLet:
		if err := fe.compileLet(instr); err != nil {
			return 0, err
		}
		return i + 1, nil
	case OpWith:
		fe.compileWith(instr)
		return i + 1, nil
	case OpEnd:
		if instr.Flow.Root.Kind == OpLet || instr.Flow.Root.Kind == OpWith {
			fe.locals = fe.locals[:len(fe.locals)-1]
		}
		return i + 1, nil
	default:
		if err := fe.emitSimple(instr); err != nil {
			return 0, err
		}
		return i + 1, nil
	}
}

// compileIfChain compiles an if/elif*/else?/end chain with real basic
// blocks, merging the post-chain stack with a phi per slot. Every branch
// is guaranteed by the type checker to leave the same stack shape, so a
// single phi per slot, fed by every branch's terminating block, is enough.
func (fe *funcEmitter) compileIfChain(instrs []*Instr, root *Instr) (int, error) {
	type branchEnd struct {
		block *ir.Block
		stack []value.Value
	}
	var ends []branchEnd

	mergeBlock := fe.newBlock("if.end")

	// `if`'s condition was evaluated by the instructions immediately
	// preceding it (it never carries its own `do`), so it's already on top
	// of fe.stack here. Pop it and use the resulting stack as the shared
	// origin every branch in the chain starts from and must reconcile to.
	condBlock := fe.block
	cond := fe.pop()
	originStack := append([]value.Value(nil), fe.stack...)

	node := root
	nodeBlock := condBlock
	first := true
	for {
		isLast := node.Flow.Next == nil

		if node.Kind == OpElse {
			fe.block = nodeBlock
			fe.stack = append([]value.Value(nil), originStack...)
			if err := fe.compileBody(instrs, node.Position+1, node.Flow.End.Position); err != nil {
				return 0, err
			}
			if fe.block.Term == nil {
				fe.block.NewBr(mergeBlock)
				ends = append(ends, branchEnd{fe.block, fe.stack})
			}
			break
		}

		fe.block = nodeBlock
		fe.stack = append([]value.Value(nil), originStack...)

		var branchCond value.Value
		var bodyStart int
		if first {
			// The root `if`'s condition was already popped above.
			branchCond = cond
			bodyStart = node.Position + 1
		} else {
			// ELIF: its own fresh condition trails the keyword and is
			// delimited by a mandatory `do`, the same way `while`'s is.
			i := node.Position + 1
			for instrs[i].Kind != OpDo || instrs[i].Flow != node.Flow {
				next, err := fe.compileFrom(instrs, i)
				if err != nil {
					return 0, err
				}
				i = next
			}
			branchCond = fe.pop()
			bodyStart = i + 1
		}
		bodyStack := append([]value.Value(nil), fe.stack...)

		bodyBlock := fe.newBlock("if.body")
		var falseBlock *ir.Block
		if isLast {
			falseBlock = mergeBlock
		} else {
			falseBlock = fe.newBlock("if.next")
		}
		isTrue := fe.block.NewICmp(ir.IntNE, branchCond, constant.NewInt(types.I64, 0))
		fe.block.NewCondBr(isTrue, bodyBlock, falseBlock)
		if isLast {
			ends = append(ends, branchEnd{fe.block, bodyStack})
		}

		fe.block = bodyBlock
		fe.stack = append([]value.Value(nil), bodyStack...)
		bodyEnd := node.Flow.End.Position
		if !isLast {
			bodyEnd = node.Flow.Next.Position
		}
		if err := fe.compileBody(instrs, bodyStart, bodyEnd); err != nil {
			return 0, err
		}
		if fe.block.Term == nil {
			fe.block.NewBr(mergeBlock)
			ends = append(ends, branchEnd{fe.block, fe.stack})
		}

		if isLast {
			break
		}
		nodeBlock = falseBlock
		node = node.Flow.Next
		first = false
	}

	fe.block = mergeBlock
	if len(ends) == 0 {
		return root.Flow.End.Position + 1, nil
	}
	n := len(ends[0].stack)
	merged := make([]value.Value, n)
	for slot := 0; slot < n; slot++ {
		first := ends[0]
		same := true
		for _, end := range ends[1:] {
			if end.stack[slot] != first.stack[slot] {
				same = false
				break
			}
		}
		if same {
			merged[slot] = first.stack[slot]
			continue
		}
		incs := make([]*ir.Incoming, len(ends))
		for k, end := range ends {
			incs[k] = ir.NewIncoming(end.stack[slot], end.block)
		}
		merged[slot] = mergeBlock.NewPhi(incs...)
	}
	fe.stack = merged
	return root.Flow.End.Position + 1, nil
}

// compileWhile compiles a while/do/end loop: a header block holding one
// phi per live stack slot, a body block, and an exit block that reuses the
// header's post-condition values directly (valid SSA since header
// dominates both successors).
func (fe *funcEmitter) compileWhile(instrs []*Instr, root *Instr) (int, error) {
	preStack := append([]value.Value(nil), fe.stack...)
	predBlock := fe.block

	header := fe.newBlock("while.head")
	fe.block.NewBr(header)

	phis := make([]*ir.InstPhi, len(preStack))
	for i, v := range preStack {
		phis[i] = header.NewPhi(ir.NewIncoming(v, predBlock))
	}
	fe.block = header
	fe.stack = make([]value.Value, len(phis))
	for i, p := range phis {
		fe.stack[i] = p
	}

	i := root.Position + 1
	for instrs[i].Kind != OpDo || instrs[i].Flow != root.Flow {
		next, err := fe.compileFrom(instrs, i)
		if err != nil {
			return 0, err
		}
		i = next
	}
	cond := fe.pop()
	condBlock := fe.block
	postCondStack := append([]value.Value(nil), fe.stack...)

	body := fe.newBlock("while.body")
	exit := fe.newBlock("while.exit")
	isTrue := condBlock.NewICmp(ir.IntNE, cond, constant.NewInt(types.I64, 0))
	condBlock.NewCondBr(isTrue, body, exit)

	fe.block = body
	fe.stack = append([]value.Value(nil), postCondStack...)
	if err := fe.compileBody(instrs, i+1, root.Flow.End.Position); err != nil {
		return 0, err
	}
	if fe.block.Term == nil {
		fe.block.NewBr(header)
		for idx, p := range phis {
			p.Incs = append(p.Incs, ir.NewIncoming(fe.stack[idx], fe.block))
		}
	}

	fe.block = exit
	fe.stack = postCondStack
	return root.Flow.End.Position + 1, nil
}

func (fe *funcEmitter) compileLet(instr *Instr) error {
	l := make(map[string]value.Value, len(instr.Flow.Data))
	for _, tok := range instr.Flow.Data {
		v := fe.pop()
		cell := fe.block.NewAlloca(types.I64)
		fe.block.NewStore(v, cell)
		l[tok.StrVal] = fe.block.NewPtrToInt(cell, types.I64)
	}
	fe.locals = append(fe.locals, l)
	return nil
}

func (fe *funcEmitter) compileWith(instr *Instr) {
	l := make(map[string]value.Value, len(instr.Flow.Data))
	for _, tok := range instr.Flow.Data {
		l[tok.StrVal] = fe.pop()
	}
	fe.locals = append(fe.locals, l)
}

func (fe *funcEmitter) internString(s string) *ir.Global {
	if g, ok := fe.e.strings[s]; ok {
		return g
	}
	data := constant.NewCharArrayFromString(s + "\x00")
	g := fe.e.mod.NewGlobalDef(fmt.Sprintf("str.%d", len(fe.e.strings)), data)
	fe.e.strings[s] = g
	return g
}

func (fe *funcEmitter) addrOf(g *ir.Global) value.Value {
	zero := constant.NewInt(types.I64, 0)
	gep := constant.NewGetElementPtr(g.ContentType, g, zero, zero)
	return fe.block.NewPtrToInt(gep, types.I64)
}

// emitSimple handles every instruction kind whose effect is a fixed
// arity-in/arity-out transformation of the shadow operand stack, with no
// control-flow consequences of its own.
func (fe *funcEmitter) emitSimple(instr *Instr) error {
	i64 := func(n int64) value.Value { return constant.NewInt(types.I64, n) }

	switch instr.Kind {
	case OpLabel:
	case OpPush:
		fe.push(i64(instr.IntVal))
	case OpChar:
		fe.push(i64(instr.IntVal))
	case OpBool:
		if instr.BoolVal {
			fe.push(i64(1))
		} else {
			fe.push(i64(0))
		}
	case OpString:
		g := fe.internString(instr.StrVal)
		fe.push(i64(int64(len(instr.StrVal))))
		fe.push(fe.addrOf(g))

	case OpDrop:
		fe.pop()
	case OpDup:
		a := fe.pop()
		fe.push(a)
		fe.push(a)
	case OpDup2:
		a, b := fe.pop(), fe.pop()
		fe.push(b)
		fe.push(a)
		fe.push(b)
		fe.push(a)
	case OpSwap:
		a, b := fe.pop(), fe.pop()
		fe.push(a)
		fe.push(b)
	case OpSwap2:
		a, b, c, d := fe.pop(), fe.pop(), fe.pop(), fe.pop()
		fe.push(c)
		fe.push(d)
		fe.push(a)
		fe.push(b)
	case OpOver:
		a, b := fe.pop(), fe.pop()
		fe.push(b)
		fe.push(a)
		fe.push(b)
	case OpRot:
		a, b, c := fe.pop(), fe.pop(), fe.pop()
		fe.push(b)
		fe.push(a)
		fe.push(c)
	case OpRRot:
		a, b, c := fe.pop(), fe.pop(), fe.pop()
		fe.push(a)
		fe.push(c)
		fe.push(b)

	case OpPlus:
		b, a := fe.pop(), fe.pop()
		fe.push(fe.block.NewAdd(a, b))
	case OpMinus:
		b, a := fe.pop(), fe.pop()
		fe.push(fe.block.NewSub(a, b))
	case OpMul:
		b, a := fe.pop(), fe.pop()
		fe.push(fe.block.NewMul(a, b))
	case OpDiv:
		b, a := fe.pop(), fe.pop()
		fe.push(fe.block.NewSDiv(a, b))
	case OpMod:
		b, a := fe.pop(), fe.pop()
		fe.push(fe.block.NewSRem(a, b))
	case OpDivMod:
		b, a := fe.pop(), fe.pop()
		fe.push(fe.block.NewSDiv(a, b))
		fe.push(fe.block.NewSRem(a, b))
	case OpIncrement:
		fe.push(fe.block.NewAdd(fe.pop(), i64(1)))
	case OpDecrement:
		fe.push(fe.block.NewSub(fe.pop(), i64(1)))

	case OpBLsh:
		b, a := fe.pop(), fe.pop()
		fe.push(fe.block.NewShl(a, b))
	case OpBRsh:
		b, a := fe.pop(), fe.pop()
		fe.push(fe.block.NewLShr(a, b))
	case OpBAnd:
		b, a := fe.pop(), fe.pop()
		fe.push(fe.block.NewAnd(a, b))
	case OpBOr:
		b, a := fe.pop(), fe.pop()
		fe.push(fe.block.NewOr(a, b))
	case OpBXor:
		b, a := fe.pop(), fe.pop()
		fe.push(fe.block.NewXor(a, b))

	case OpEq, OpNe, OpGt, OpGe, OpLt, OpLe:
		b, a := fe.pop(), fe.pop()
		cmp := fe.block.NewICmp(cmpPred(instr.Kind), a, b)
		fe.push(fe.block.NewZExt(cmp, types.I64))

	case OpDump, OpUDump, OpCDump, OpHexDump:
		fe.emitDump(instr.Kind)

	case OpSyscall, OpSyscall1, OpSyscall2, OpSyscall3, OpSyscall4, OpSyscall5, OpSyscall6:
		fe.emitSyscall(syscallArgCount(instr.Kind), false)
	case OpRSyscall1, OpRSyscall2, OpRSyscall3, OpRSyscall4, OpRSyscall5, OpRSyscall6:
		fe.emitSyscall(rsyscallArgCount(instr.Kind), true)

	case OpExit:
		code := fe.block.NewTrunc(fe.pop(), types.I32)
		fe.block.NewRet(code)
		fe.block = fe.f.NewBlock(fmt.Sprintf("unreachable.%d", fe.blocks))
		fe.blocks++

	case OpArgc:
		fe.push(fe.block.NewSExt(fe.argc, types.I64))
	case OpArgv:
		fe.push(fe.block.NewPtrToInt(fe.argv, types.I64))

	case OpStore, OpStore16, OpStore32, OpStore64:
		// Address is pushed last (on top); value sits beneath it.
		addr, v := fe.pop(), fe.pop()
		fe.emitStore(instr.Kind, addr, v)
	case OpLoad, OpLoad16, OpLoad32, OpLoad64:
		addr := fe.pop()
		fe.push(fe.emitLoad(instr.Kind, addr))

	case OpWord:
		v, ok := fe.lookup(instr.StrVal)
		if !ok {
			return UnknownToken{Info: instr.Info, Msg: "unknown word at codegen time"}
		}
		fe.push(v)

	case OpCast:
		// Pure type-system bookkeeping; the value underneath is untouched.

	case OpPushMemory:
		g, ok := fe.e.memories[instr.StrVal]
		if !ok {
			return UnknownToken{Info: instr.Info, Msg: "unknown memory region " + instr.StrVal}
		}
		fe.push(fe.addrOf(g))

	case OpCall:
		fe.emitCall(instr)

	default:
		return InvalidSyntax{Info: instr.Info, Msg: "unhandled instruction in code generator"}
	}
	return nil
}

func cmpPred(k InstrKind) ir.IntPred {
	switch k {
	case OpEq:
		return ir.IntEQ
	case OpNe:
		return ir.IntNE
	case OpGt:
		return ir.IntSGT
	case OpGe:
		return ir.IntSGE
	case OpLt:
		return ir.IntSLT
	default:
		return ir.IntSLE
	}
}

func (fe *funcEmitter) emitStore(kind InstrKind, addr, v value.Value) {
	switch kind {
	case OpStore:
		ptr := fe.block.NewIntToPtr(addr, types.I8Ptr)
		fe.block.NewStore(fe.block.NewTrunc(v, types.I8), ptr)
	case OpStore16:
		ptr := fe.block.NewIntToPtr(addr, types.NewPointer(types.I16))
		fe.block.NewStore(fe.block.NewTrunc(v, types.I16), ptr)
	case OpStore32:
		ptr := fe.block.NewIntToPtr(addr, types.NewPointer(types.I32))
		fe.block.NewStore(fe.block.NewTrunc(v, types.I32), ptr)
	default:
		ptr := fe.block.NewIntToPtr(addr, types.NewPointer(types.I64))
		fe.block.NewStore(v, ptr)
	}
}

func (fe *funcEmitter) emitLoad(kind InstrKind, addr value.Value) value.Value {
	switch kind {
	case OpLoad:
		ptr := fe.block.NewIntToPtr(addr, types.I8Ptr)
		return fe.block.NewZExt(fe.block.NewLoad(types.I8, ptr), types.I64)
	case OpLoad16:
		ptr := fe.block.NewIntToPtr(addr, types.NewPointer(types.I16))
		return fe.block.NewZExt(fe.block.NewLoad(types.I16, ptr), types.I64)
	case OpLoad32:
		ptr := fe.block.NewIntToPtr(addr, types.NewPointer(types.I32))
		return fe.block.NewZExt(fe.block.NewLoad(types.I32, ptr), types.I64)
	default:
		ptr := fe.block.NewIntToPtr(addr, types.NewPointer(types.I64))
		return fe.block.NewLoad(types.I64, ptr)
	}
}

func (fe *funcEmitter) emitDump(kind InstrKind) {
	v := fe.pop()
	printf := fe.e.builtins.Get("printf").(*ir.Func)
	switch kind {
	case OpDump:
		fe.block.NewCall(printf, fe.addrOf(fe.internString("%ld\n")), v)
	case OpUDump:
		fe.block.NewCall(printf, fe.addrOf(fe.internString("%lu\n")), v)
	case OpCDump:
		fe.block.NewCall(printf, fe.addrOf(fe.internString("%c")), v)
	case OpHexDump:
		fe.block.NewCall(printf, fe.addrOf(fe.internString("%lx\n")), v)
	}
}

// emitSyscall wraps libc's variadic `long syscall(long number, ...)`,
// which is the portable way a hosted LLVM-emitted binary issues a raw
// kernel syscall without inline assembly. Mirrors Interpreter.doSyscall /
// doRSyscall's exact popping order for each family.
func (fe *funcEmitter) emitSyscall(n int, reversed bool) {
	args := make([]value.Value, n)
	var num value.Value
	if reversed {
		for i := 0; i < n; i++ {
			args[i] = fe.pop()
		}
		num = fe.pop()
	} else {
		num = fe.pop()
		for i := n - 1; i >= 0; i-- {
			args[i] = fe.pop()
		}
	}
	sys := fe.e.builtins.Get("syscall").(*ir.Func)
	callArgs := append([]value.Value{num}, args...)
	ret := fe.block.NewCall(sys, callArgs...)
	fe.push(ret)
}

func (fe *funcEmitter) emitCall(instr *Instr) {
	f, ok := fe.e.procs[instr.StrVal]
	if !ok {
		return
	}
	n := len(f.Params)
	args := make([]value.Value, n)
	// First-declared parameter takes the current stack top, same
	// convention as let/with and the type checker's CALL argument check.
	for i := 0; i < n; i++ {
		args[i] = fe.pop()
	}
	call := fe.block.NewCall(f, args...)
	switch t := f.Sig.RetType.(type) {
	case *types.VoidType:
	case *types.StructType:
		// Push deepest-declared-out first so the first-declared out type
		// (field 0) ends up back on top, matching finishProc's packing.
		for i := len(t.Fields) - 1; i >= 0; i-- {
			fe.push(fe.block.NewExtractValue(call, uint64(i)))
		}
	default:
		fe.push(call)
	}
}
