package kernel

import (
	"log/slog"
	"runtime"
	"sync"

	"github.com/born-ml/hkernel/internal/native"
	"github.com/born-ml/hkernel/internal/tensor"
)

// resource owns one native kernel handle and the training buffer the solver
// reads through it. It is a separate allocation from Classifier so that a
// GC cleanup attached to the Classifier can release it.
type resource struct {
	mu     sync.Mutex
	logger *slog.Logger

	collab native.Collaborator
	dtype  tensor.DataType
	handle native.Handle
	train  *tensor.Matrix // retained by the solver until destroy
	pinner runtime.Pinner
}

// held reports whether a handle is alive. Caller holds mu.
func (r *resource) held() bool {
	return !r.handle.IsNil()
}

// adopt takes ownership of a freshly created handle. Caller holds mu.
func (r *resource) adopt(collab native.Collaborator, dtype tensor.DataType, h native.Handle, train *tensor.Matrix) {
	r.collab = collab
	r.dtype = dtype
	r.handle = h
	r.train = train
	r.pinner.Pin(&train.Bytes()[0])
}

// releaseLocked destroys the handle if one is held. The handle is forgotten
// before the native call, so a failing destroy is never retried.
// Caller holds mu.
func (r *resource) releaseLocked() error {
	if !r.held() {
		return nil
	}
	collab, dtype, h := r.collab, r.dtype, r.handle
	r.handle = native.Handle{}
	r.collab = nil

	err := collab.Destroy(dtype, h)

	r.pinner.Unpin()
	r.train = nil

	if err != nil {
		r.logger.Warn("kernel destroy failed", "dtype", dtype.String(), "err", err)
		return err
	}
	r.logger.Debug("kernel destroyed", "dtype", dtype.String())
	return nil
}

// release is the GC cleanup entry point.
func (r *resource) release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	_ = r.releaseLocked()
}
