package stacklang

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/types"
)

// defineBuiltins declares the two externs every emitted module needs:
// libc's printf (for dump/udump/cdump/hexdump) and libc's variadic
// syscall wrapper (for syscall/rsyscall). Adapted from the same
// declare-an-extern-then-register pattern the teacher used for its
// single `print` builtin, generalized to the handful `stacklang` needs.
func defineBuiltins(e *LLVMEmitter) {
	printf := e.mod.NewFunc("printf", types.I32, ir.NewParam("format", types.I8Ptr))
	printf.Sig.Variadic = true
	e.builtins.Set("printf", printf)

	syscall := e.mod.NewFunc("syscall", types.I64, ir.NewParam("number", types.I64))
	syscall.Sig.Variadic = true
	e.builtins.Set("syscall", syscall)
}
