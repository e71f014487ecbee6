package utils

// Guard runs a cleanup function on early-return error paths of a function that produces a
// resource (e.g: a half-written archive). Usage:
//
//	guard := NewGuard(func() { RemoveFileNoError(path) })
//	defer guard.OnFail()
//	if err != nil { return err }
//	guard.Success()
type Guard struct {
	OnFail  func()
	success bool
}

// NewGuard returns a Guard that calls onFailCleanup from OnFail unless Success was called.
func NewGuard(onFailCleanup func()) *Guard {
	ret := &Guard{}
	ret.OnFail = func() {
		if !ret.success {
			onFailCleanup()
		}
	}
	return ret
}

// Success marks the guarded operation as complete; OnFail becomes a no-op.
func (guard *Guard) Success() {
	guard.success = true
}
