package native

import "unsafe"

// argv is a C-style argument vector: argc NUL-terminated strings followed
// by a NULL pointer. The buffers are owned by Go and must stay reachable
// until the native call returns.
type argv struct {
	bufs [][]byte
	ptrs []unsafe.Pointer
}

func newArgv(args []string) *argv {
	a := &argv{
		bufs: make([][]byte, len(args)),
		ptrs: make([]unsafe.Pointer, len(args)+1),
	}
	for i, s := range args {
		buf := make([]byte, len(s)+1)
		copy(buf, s)
		a.bufs[i] = buf
		a.ptrs[i] = unsafe.Pointer(&buf[0])
	}
	return a
}

// count returns argc as the C int the entry points take.
func (a *argv) count() int32 {
	return int32(len(a.bufs))
}

// pointer returns the char** value.
func (a *argv) pointer() unsafe.Pointer {
	return unsafe.Pointer(&a.ptrs[0])
}
