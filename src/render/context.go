package render

// Context is an immutable snapshot of the device objects every layer builds
// against. It is handed out by value; the renderer that produced it owns the
// handles and a Context must not be used after that renderer is closed.
type Context struct {
	Instance       Instance
	PhysicalDevice PhysicalDevice
	Device         Device
	Queue          Queue
	QueueFamily    uint32
	Format         Format
	ImageCount     uint32
}

// SwapchainDimensions describes the size and format of the current chain.
type SwapchainDimensions struct {
	Width  uint32
	Height uint32
	Format Format
}
