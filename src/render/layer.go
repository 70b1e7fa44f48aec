package render

// Layer is a visual layer that records draw commands into the frame.
//
// Record is called once per frame, in registration order, with a command
// buffer that is already inside a dynamic rendering pass over the current
// chain image and has viewport and scissor set to extent. Implementations
// must not begin or end rendering, submit, present, or keep cmd after
// returning.
type Layer interface {
	Record(cmd CommandBuffer, extent Extent2D)
}

// LayerFunc adapts a plain function to Layer.
type LayerFunc func(cmd CommandBuffer, extent Extent2D)

func (f LayerFunc) Record(cmd CommandBuffer, extent Extent2D) {
	f(cmd, extent)
}
