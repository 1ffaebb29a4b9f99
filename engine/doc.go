// Package engine provides the reference script engine that scry debugs.
// It is a small stack-based bytecode interpreter with a JavaScript-like
// object model: lexical scope chains, heap objects with property tables,
// first-class functions, and proxy objects.
//
// The engine is deliberately self-contained: it knows nothing about the
// debugger package. Debugging is wired in through the Hooks interface,
// which the interpreter calls at instruction boundaries and at frame
// push/pop. A hook may return a Completion to force the current frame to
// finish with that completion instead of continuing; a nil return means
// "continue unmodified".
//
// # Components
//
//   - Opcodes: ~20 fixed-width stack instructions with big-endian operands
//
//   - Chunk: a compiled unit of bytecode with a constant pool, named
//     parameter and local slots, a source map (bytecode offset to
//     line/column), and chunks for nested function definitions
//
//   - Interp: the stack interpreter. Frames form a chain from innermost to
//     outermost; each frame records its chunk, scope, instruction pointer,
//     and liveness. Frames stop being live the moment they are popped.
//
//   - Scope: a node in the lexical scope chain, either declarative
//     (function/eval bindings), object (backed by a heap object, e.g. the
//     global scope), or with (backed by the operand of a with statement)
//
//   - Object: a heap object with ordered properties, extensibility state,
//     an optional function payload, and an optional proxy flag. Property
//     access on a proxy would run arbitrary trap code, so the engine
//     refuses it outside of explicit evaluation.
//
// # Evaluation
//
// EvalInScope compiles a small expression language (literals, identifiers,
// assignment, property access, throw) to a chunk and runs it on an eval
// frame above the given scope. This is the engine half of the debugger's
// Frame.Eval and Object.ExecuteInGlobal entry points.
package engine
