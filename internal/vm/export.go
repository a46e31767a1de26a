package vm

// Stack returns a copy of the operand stack, bottom first.
func (vm *VM) Stack() []Value {
	out := make([]Value, len(vm.stack))
	copy(out, vm.stack)
	return out
}

// StackDepth reports how many values are on the operand stack.
func (vm *VM) StackDepth() int {
	return len(vm.stack)
}

// StackLimit reports the configured operand stack ceiling.
func (vm *VM) StackLimit() int {
	return vm.stackLimit
}
