package native

import (
	"fmt"
	"math"
	"runtime"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/go-webgpu/goffi/ffi"
	"github.com/go-webgpu/goffi/types"

	"github.com/born-ml/hkernel/internal/tensor"
)

// Verify that Library implements Collaborator.
var _ Collaborator = (*Library)(nil)

// Library is the solver shared library opened with goffi.
// Entry points are resolved on first use and cached with their call
// interfaces, so a library built without distributed support still serves
// the local entry points.
type Library struct {
	path   string
	handle unsafe.Pointer

	mu     sync.Mutex
	funcs  map[string]*function
	closed bool

	// Kernel handles created and not yet destroyed.
	live atomic.Int64
}

type function struct {
	sym unsafe.Pointer
	cif types.CallInterface
}

// Open loads the shared library at path and checks that the create and
// destroy entry points of both precisions are present.
//
// Important: call Close once every kernel created through the library has
// been destroyed.
func Open(path string) (lib *Library, err error) {
	// goffi panics on some platforms when the loader itself is unavailable.
	defer func() {
		if r := recover(); r != nil {
			lib = nil
			err = fmt.Errorf("native: cannot load %s: %v", path, r)
		}
	}()

	handle, err := ffi.LoadLibrary(path)
	if err != nil {
		return nil, fmt.Errorf("native: cannot load %s: %w", path, err)
	}

	l := &Library{
		path:   path,
		handle: handle,
		funcs:  make(map[string]*function),
	}

	for _, dtype := range []tensor.DataType{tensor.Float32, tensor.Float64} {
		create, _ := CreateSymbol(dtype)
		destroy, _ := DestroySymbol(dtype)
		for _, name := range []string{create, destroy} {
			if _, err := ffi.GetSymbol(handle, name); err != nil {
				_ = ffi.FreeLibrary(handle)
				return nil, fmt.Errorf("native: %s: missing entry point %s: %w", path, name, err)
			}
		}
	}

	return l, nil
}

// Path returns the file the library was loaded from.
func (l *Library) Path() string {
	return l.path
}

// Live returns the number of kernel handles not yet destroyed.
func (l *Library) Live() int64 {
	return l.live.Load()
}

// Close unloads the library. It refuses while kernel handles are alive,
// since unloading would leave them pointing into unmapped code.
func (l *Library) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	if n := l.live.Load(); n > 0 {
		return fmt.Errorf("%w: %d", ErrHandlesAlive, n)
	}
	l.closed = true
	l.funcs = nil
	if err := ffi.FreeLibrary(l.handle); err != nil {
		return fmt.Errorf("native: unload %s: %w", l.path, err)
	}
	return nil
}

// function resolves name and prepares its call interface once.
func (l *Library) function(name string, ret *types.TypeDescriptor, args ...*types.TypeDescriptor) (*function, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil, ErrClosed
	}
	if fn, ok := l.funcs[name]; ok {
		return fn, nil
	}

	sym, err := ffi.GetSymbol(l.handle, name)
	if err != nil {
		return nil, fmt.Errorf("resolve: %w", err)
	}
	fn := &function{sym: sym}
	if err := ffi.PrepareCallInterface(&fn.cif, types.DefaultCall, ret, args); err != nil {
		return nil, fmt.Errorf("prepare: %w", err)
	}
	l.funcs[name] = fn
	return fn, nil
}

func (fn *function) call(rvalue unsafe.Pointer, avalue ...unsafe.Pointer) error {
	return ffi.CallFunction(&fn.cif, fn.sym, rvalue, avalue)
}

// floatArg packs a C float into the low half of a double-width SSE
// argument. goffi widens FloatType arguments to double, while a C float
// parameter only reads the low 32 bits of its register.
func floatArg(v float64) float64 {
	return math.Float64frombits(uint64(math.Float32bits(float32(v))))
}

// CreateKernel calls create_kernel_{float,double}.
func (l *Library) CreateKernel(dtype tensor.DataType, rows, cols int, train []byte, h, lambda float64, kernel KernelType) (Handle, error) {
	name, err := CreateSymbol(dtype)
	if err != nil {
		return Handle{}, callError("", err)
	}
	if len(train) < rows*cols*dtype.Size() || len(train) == 0 {
		return Handle{}, callError(name, fmt.Errorf("training buffer holds %d bytes, need %d", len(train), rows*cols*dtype.Size()))
	}

	fn, err := l.function(name, types.PointerTypeDescriptor,
		types.SInt32TypeDescriptor, types.SInt32TypeDescriptor, types.PointerTypeDescriptor,
		types.DoubleTypeDescriptor, types.DoubleTypeDescriptor, types.SInt32TypeDescriptor)
	if err != nil {
		return Handle{}, callError(name, err)
	}

	n, d := int32(rows), int32(cols)
	data := unsafe.Pointer(&train[0])
	ktype := int32(kernel)
	var out unsafe.Pointer

	if dtype == tensor.Float32 {
		h, lambda = floatArg(h), floatArg(lambda)
	}

	// Pointer arguments are passed by value, scalars by address.
	err = fn.call(unsafe.Pointer(&out),
		unsafe.Pointer(&n), unsafe.Pointer(&d), data,
		unsafe.Pointer(&h), unsafe.Pointer(&lambda), unsafe.Pointer(&ktype))
	runtime.KeepAlive(train)
	if err != nil {
		return Handle{}, callError(name, err)
	}
	if out == nil {
		return Handle{}, callError(name, ErrNullHandle)
	}

	l.live.Add(1)
	return NewHandle(out), nil
}

// Fit calls kernel_fit_{mode}_{float,double}.
func (l *Library) Fit(dtype tensor.DataType, mode FitMode, k Handle, labels []byte, args []string) error {
	name, err := FitSymbol(mode, dtype)
	if err != nil {
		return callError("", err)
	}
	if k.IsNil() {
		return callError(name, ErrNullHandle)
	}
	if len(labels) == 0 {
		return callError(name, fmt.Errorf("empty label buffer"))
	}

	fn, err := l.function(name, types.VoidTypeDescriptor,
		types.PointerTypeDescriptor, types.PointerTypeDescriptor,
		types.SInt32TypeDescriptor, types.PointerTypeDescriptor)
	if err != nil {
		return callError(name, err)
	}

	av := newArgv(args)
	kp := k.Pointer()
	lp := unsafe.Pointer(&labels[0])
	argc := av.count()
	argvp := av.pointer()

	err = fn.call(nil, kp, lp, unsafe.Pointer(&argc), argvp)
	runtime.KeepAlive(labels)
	runtime.KeepAlive(av)
	if err != nil {
		return callError(name, err)
	}
	return nil
}

// Predict calls kernel_predict_{float,double}.
func (l *Library) Predict(dtype tensor.DataType, k Handle, rows int, test, out []byte) error {
	name, err := PredictSymbol(dtype)
	if err != nil {
		return callError("", err)
	}
	if k.IsNil() {
		return callError(name, ErrNullHandle)
	}
	if len(test) == 0 {
		return callError(name, fmt.Errorf("empty test buffer"))
	}
	if len(out) < rows*dtype.Size() {
		return callError(name, fmt.Errorf("output buffer holds %d bytes, need %d", len(out), rows*dtype.Size()))
	}

	fn, err := l.function(name, types.VoidTypeDescriptor,
		types.PointerTypeDescriptor, types.SInt32TypeDescriptor,
		types.PointerTypeDescriptor, types.PointerTypeDescriptor)
	if err != nil {
		return callError(name, err)
	}

	kp := k.Pointer()
	m := int32(rows)
	tp := unsafe.Pointer(&test[0])
	op := unsafe.Pointer(&out[0])

	err = fn.call(nil, kp, unsafe.Pointer(&m), tp, op)
	runtime.KeepAlive(test)
	runtime.KeepAlive(out)
	if err != nil {
		return callError(name, err)
	}
	return nil
}

// Destroy calls destroy_kernel_{float,double}. The handle counts as
// released even when the call fails; it must not be passed again.
func (l *Library) Destroy(dtype tensor.DataType, k Handle) error {
	name, err := DestroySymbol(dtype)
	if err != nil {
		return callError("", err)
	}
	if k.IsNil() {
		return nil
	}
	defer l.live.Add(-1)

	fn, err := l.function(name, types.VoidTypeDescriptor, types.PointerTypeDescriptor)
	if err != nil {
		return callError(name, err)
	}
	if err := fn.call(nil, k.Pointer()); err != nil {
		return callError(name, err)
	}
	return nil
}
