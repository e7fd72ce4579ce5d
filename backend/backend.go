// Package backend declares the contract a graphics backend implements —
// kind, capability set, and begin/end-frame lifecycle — and provides three
// skeleton implementations (software, OpenGL, Vulkan) that satisfy it
// without making real GPU or window-system calls. The render-path executor
// (package path) gates recipe activation on a backend's CapabilitySet.
//
// Grounded on the teacher's device.go backend-selection idiom and the
// begin/end-scene bracketing in render/render.go, generalized from one
// concrete OpenGL implementation to an explicit interface three backends
// can each satisfy.
package backend

// Kind identifies which backend implementation is active.
type Kind uint8

const (
	Software Kind = iota
	OpenGL
	Vulkan
)

func (k Kind) String() string {
	switch k {
	case Software:
		return "software"
	case OpenGL:
		return "opengl"
	case Vulkan:
		return "vulkan"
	}
	return "unknown"
}

// QueueClass is one of the command-submission queue families a pass can
// prefer.
type QueueClass uint8

const (
	Graphics QueueClass = iota
	Compute
	Transfer
	Present
)

// QueueCounts reports how many queues of each class a backend exposes.
type QueueCounts struct {
	Graphics, Compute, Transfer, Present int
}

// Features reports optional backend capabilities a pass may require.
type Features struct {
	ValidationLayers           bool
	TimelineSemaphore          bool
	DescriptorIndexing         bool
	DynamicRendering           bool
	PushConstants              bool
	MultithreadCommandRecording bool
	AsyncCompute               bool
	DepthAttachment            bool
}

// Limits reports fixed resource ceilings a plan must respect.
type Limits struct {
	MaxFramesInFlight           int
	MaxColorAttachments         int
	MaxDescriptorSetsPerPipeline int
	MaxPushConstantBytes        int
}

// CapabilitySet is what the executor's capability gate tests a recipe's
// predicate against.
type CapabilitySet struct {
	Queues           QueueCounts
	Features         Features
	Limits           Limits
	SupportsPresent  bool
	SupportsOffscreen bool
}

// FrameInfo is the per-frame surface handed to begin_frame/end_frame.
// FrameIndex is strictly monotonic across the life of a Backend.
type FrameInfo struct {
	FrameIndex uint64
	Width      int
	Height     int
}

// Backend is the contract every concrete graphics backend implements. The
// context (package path) borrows a Backend for the duration of one frame's
// begin/end bracket; it never outlives the caller's ownership of it.
type Backend interface {
	Type() Kind
	Capabilities() CapabilitySet
	BeginFrame(info FrameInfo) error
	EndFrame(info FrameInfo) error
	// SwapchainGeneration increments whenever the presentation surface is
	// invalidated (resize, device loss); passes holding cached pipeline
	// state observe it to know when to rebuild. Backends with no
	// swapchain (Software) always return 0.
	SwapchainGeneration() uint64
}

// softwareBackend is a CPU rasterizer target with no presentation surface
// requirements beyond the caller reading back its RTs directly.
type softwareBackend struct {
	caps CapabilitySet
}

// NewSoftwareBackend returns a Backend describing the CPU rasterizer path:
// one graphics, one compute and one transfer "queue" (all executed
// synchronously) and no present queue, offscreen-only, with multithreaded
// command recording and a depth attachment reported as supported.
func NewSoftwareBackend() Backend {
	return &softwareBackend{caps: CapabilitySet{
		Queues:   QueueCounts{Graphics: 1, Compute: 1, Transfer: 1, Present: 0},
		Features: Features{MultithreadCommandRecording: true, DepthAttachment: true},
		Limits:   Limits{MaxFramesInFlight: 1, MaxColorAttachments: 8, MaxDescriptorSetsPerPipeline: 8, MaxPushConstantBytes: 256},
		SupportsPresent:   false,
		SupportsOffscreen: true,
	}}
}

func (b *softwareBackend) Type() Kind                   { return Software }
func (b *softwareBackend) Capabilities() CapabilitySet  { return b.caps }
func (b *softwareBackend) BeginFrame(info FrameInfo) error { return nil }
func (b *softwareBackend) EndFrame(info FrameInfo) error   { return nil }
func (b *softwareBackend) SwapchainGeneration() uint64     { return 0 }

// glBackend is a skeleton OpenGL backend. It reports the capability set a
// desktop GL 4.x context typically offers and tracks a swapchain
// generation counter the caller bumps on resize, but performs no actual GL
// calls — wiring a real context is an application concern outside this
// contract.
type glBackend struct {
	caps       CapabilitySet
	generation uint64
}

// NewOpenGLBackend returns a Backend skeleton for an OpenGL context.
func NewOpenGLBackend() Backend {
	return &glBackend{caps: CapabilitySet{
		Queues:   QueueCounts{Graphics: 1, Present: 1},
		Features: Features{MultithreadCommandRecording: false, DepthAttachment: true},
		Limits:   Limits{MaxFramesInFlight: 2, MaxColorAttachments: 8, MaxDescriptorSetsPerPipeline: 4, MaxPushConstantBytes: 128},
		SupportsPresent:   true,
		SupportsOffscreen: true,
	}}
}

func (b *glBackend) Type() Kind                     { return OpenGL }
func (b *glBackend) Capabilities() CapabilitySet     { return b.caps }
func (b *glBackend) BeginFrame(info FrameInfo) error { return nil }
func (b *glBackend) EndFrame(info FrameInfo) error   { return nil }
func (b *glBackend) SwapchainGeneration() uint64     { return b.generation }

// InvalidateSwapchain bumps the generation counter; call on resize or
// device-reset notification from the window system.
func (b *glBackend) InvalidateSwapchain() { b.generation++ }

// vkBackend is a skeleton Vulkan backend. It reports a richer feature set
// (async compute, descriptor indexing, timeline semaphores) than the GL
// skeleton, matching the real capability gap a Forward+/clustered
// technique would gate on, without opening a real VkInstance.
type vkBackend struct {
	caps       CapabilitySet
	generation uint64
}

// NewVulkanBackend returns a Backend skeleton for a Vulkan device.
func NewVulkanBackend() Backend {
	return &vkBackend{caps: CapabilitySet{
		Queues: QueueCounts{Graphics: 1, Compute: 1, Transfer: 1, Present: 1},
		Features: Features{
			ValidationLayers:            true,
			TimelineSemaphore:           true,
			DescriptorIndexing:          true,
			DynamicRendering:            true,
			PushConstants:               true,
			MultithreadCommandRecording: true,
			AsyncCompute:                true,
			DepthAttachment:             true,
		},
		Limits:            Limits{MaxFramesInFlight: 3, MaxColorAttachments: 8, MaxDescriptorSetsPerPipeline: 8, MaxPushConstantBytes: 256},
		SupportsPresent:   true,
		SupportsOffscreen: true,
	}}
}

func (b *vkBackend) Type() Kind                     { return Vulkan }
func (b *vkBackend) Capabilities() CapabilitySet     { return b.caps }
func (b *vkBackend) BeginFrame(info FrameInfo) error { return nil }
func (b *vkBackend) EndFrame(info FrameInfo) error   { return nil }
func (b *vkBackend) SwapchainGeneration() uint64     { return b.generation }

// InvalidateSwapchain bumps the generation counter; call on resize or
// device-loss recovery.
func (b *vkBackend) InvalidateSwapchain() { b.generation++ }

var (
	_ Backend = (*softwareBackend)(nil)
	_ Backend = (*glBackend)(nil)
	_ Backend = (*vkBackend)(nil)
)
