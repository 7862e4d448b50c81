package vm

import "github.com/kristofer/clox/pkg/value"

// captureUpvalue returns the open Upvalue for stack slot index,
// reusing an existing one if some other closure already captured that
// exact slot, and otherwise inserting a new open Upvalue into the
// sorted-by-decreasing-address list.
func (vm *VM) captureUpvalue(index int) *value.ObjUpvalue {
	slot := vm.stackSlot(index)

	var prev *value.ObjUpvalue
	cur := vm.openUpvalues
	for cur != nil && vm.slotIndex(cur.Location) > index {
		prev = cur
		cur = cur.Next
	}
	if cur != nil && cur.Location == slot {
		return cur
	}

	created := &value.ObjUpvalue{Location: slot, Next: cur}
	if prev == nil {
		vm.openUpvalues = created
	} else {
		prev.Next = created
	}
	return created
}

// closeUpvalues closes every open upvalue at or above stack slot last:
// it copies the slot's current value into the Upvalue's own Closed
// field and redirects Location to point there, so the upvalue keeps
// working after the slot it used to point at is popped or reused.
func (vm *VM) closeUpvalues(last int) {
	for vm.openUpvalues != nil && vm.slotIndex(vm.openUpvalues.Location) >= last {
		uv := vm.openUpvalues
		uv.Closed = *uv.Location
		uv.Location = &uv.Closed
		vm.openUpvalues = uv.Next
		uv.Next = nil
	}
}
