package natives

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kristofer/clox/pkg/value"
)

type fakeRegistrar struct {
	byName map[string]value.NativeFn
}

func (f *fakeRegistrar) DefineNative(name string, fn value.NativeFn) {
	if f.byName == nil {
		f.byName = make(map[string]value.NativeFn)
	}
	f.byName[name] = fn
}

func TestRegisterAllInstallsUnix(t *testing.T) {
	reg := &fakeRegistrar{}
	RegisterAll(reg)

	fn, ok := reg.byName["unix"]
	assert.True(t, ok)
	assert.NotNil(t, fn)
}

func TestUnixReturnsFrozenTimeAsNumber(t *testing.T) {
	fixed := time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)
	old := nowFunc
	nowFunc = func() time.Time { return fixed }
	defer func() { nowFunc = old }()

	got := unix(nil)
	assert.True(t, got.IsNumber())
	assert.Equal(t, float64(fixed.Unix()), got.AsNumber())
}
