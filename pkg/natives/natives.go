// Package natives registers the host-provided functions a fresh VM
// starts with. The only one the spec ships is unix(), returning the
// current Unix timestamp — the reference implementation's entire
// initial standard library.
package natives

import (
	"time"

	"github.com/kristofer/clox/pkg/value"
)

// nowFunc exists so tests can freeze time instead of asserting against
// a moving target; production callers always get RegisterAll's default.
var nowFunc = time.Now

// registrar is the subset of *vm.VM natives need: defining a global
// under an interned name. Spelled as an interface here (rather than
// importing pkg/vm directly) purely to keep this package import-light;
// *vm.VM satisfies it trivially.
type registrar interface {
	DefineNative(name string, fn value.NativeFn)
}

// RegisterAll installs every native function this build ships into vm.
func RegisterAll(vm registrar) {
	vm.DefineNative("unix", unix)
}

func unix(args []value.Value) value.Value {
	return value.Number(float64(nowFunc().Unix()))
}
