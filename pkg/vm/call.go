package vm

import "github.com/kristofer/clox/pkg/value"

// call pushes a new frame for closure, having already verified argc
// slots plus the closure itself sit at the top of the value stack
// (slot 0 of the new frame is the closure).
func (vm *VM) call(closure *value.ObjClosure, argCount int) bool {
	if argCount != closure.Function.Arity {
		vm.runtimeError("Expected %d arguments but got %d.", closure.Function.Arity, argCount)
		return false
	}
	if vm.frameCount == FramesMax {
		vm.runtimeError("Stack overflow.")
		return false
	}
	fr := &vm.frames[vm.frameCount]
	fr.closure = closure
	fr.ip = 0
	fr.base = vm.stackTop - argCount - 1
	vm.frameCount++
	return true
}

// callValue implements CALL's callee-kind dispatch: a Closure pushes a
// frame and resumes the dispatch loop there; a NativeFunction runs to
// completion immediately and leaves only its result on the stack;
// anything else is a runtime error.
func (vm *VM) callValue(callee value.Value, argCount int) bool {
	if callee.IsClosure() {
		return vm.call(callee.AsClosure(), argCount)
	}
	if callee.IsNative() {
		native := callee.AsNative()
		args := vm.stack[vm.stackTop-argCount : vm.stackTop]
		result := native.Function(args)
		vm.stackTop -= argCount + 1
		vm.push(result)
		return true
	}
	vm.runtimeError("Can only call functions and classes.")
	return false
}
