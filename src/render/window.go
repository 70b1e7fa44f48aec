package render

// Window is the platform collaborator the renderer presents into.
type Window interface {
	// FramebufferSize returns the current drawable size in pixels. A zero
	// dimension means the window is minimized.
	FramebufferSize() (width, height int)
	// RequiredInstanceExtensions lists the instance extensions surface
	// creation needs on this platform.
	RequiredInstanceExtensions() []string
	// CreateSurface binds a presentation surface to the window.
	CreateSurface(instance Instance) (Surface, error)
}
