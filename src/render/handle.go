package render

// Scoped owns exactly one driver handle together with the parent object it
// was created from and the function that destroys it. The zero value is an
// empty owner. Scoped values are move-only: copy one only through Take.
type Scoped[P, H comparable] struct {
	parent  P
	handle  H
	destroy func(P, H)
}

// Own binds handle to its parent and destroy function.
func Own[P, H comparable](parent P, handle H, destroy func(P, H)) Scoped[P, H] {
	return Scoped[P, H]{parent: parent, handle: handle, destroy: destroy}
}

// Get returns the owned handle, or the zero handle when empty.
func (s *Scoped[P, H]) Get() H {
	return s.handle
}

func (s *Scoped[P, H]) Parent() P {
	return s.parent
}

// Valid reports whether s currently owns a handle.
func (s *Scoped[P, H]) Valid() bool {
	var zero H
	return s.handle != zero
}

// Release destroys the owned handle and leaves s empty. Releasing an empty
// owner does nothing.
func (s *Scoped[P, H]) Release() {
	if !s.Valid() {
		return
	}
	destroy, parent, handle := s.destroy, s.parent, s.handle
	*s = Scoped[P, H]{}
	if destroy != nil {
		destroy(parent, handle)
	}
}

// Take transfers ownership to the returned value and leaves s empty.
func (s *Scoped[P, H]) Take() Scoped[P, H] {
	out := *s
	*s = Scoped[P, H]{}
	return out
}

// Reset releases the current handle and adopts other's. other is emptied.
func (s *Scoped[P, H]) Reset(other *Scoped[P, H]) {
	if s == other {
		return
	}
	s.Release()
	*s = other.Take()
}

// Instance-level and device-level owners used by the renderer.
type (
	NoParent struct{}

	OwnedInstance      = Scoped[NoParent, Instance]
	OwnedSurface       = Scoped[Instance, Surface]
	OwnedDevice        = Scoped[NoParent, Device]
	OwnedSwapchain     = Scoped[Device, Swapchain]
	OwnedImageView     = Scoped[Device, ImageView]
	OwnedCommandPool   = Scoped[Device, CommandPool]
	OwnedCommandBuffer = Scoped[Device, CommandBuffer]
	OwnedSemaphore     = Scoped[Device, Semaphore]
	OwnedFence         = Scoped[Device, Fence]
)

// teardown is a stack of release functions run in reverse push order.
type teardown struct {
	fns []func()
}

func (t *teardown) push(fn func()) {
	t.fns = append(t.fns, fn)
}

// unwind runs every pushed function, most recent first, and empties the stack.
func (t *teardown) unwind() {
	for i := len(t.fns) - 1; i >= 0; i-- {
		fn := t.fns[i]
		t.fns[i] = nil
		fn()
	}
	t.fns = nil
}
