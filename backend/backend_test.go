package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSoftwareBackendIsOffscreenOnly(t *testing.T) {
	b := NewSoftwareBackend()
	assert.Equal(t, Software, b.Type())
	caps := b.Capabilities()
	assert.True(t, caps.SupportsOffscreen)
	assert.False(t, caps.SupportsPresent)
}

func TestVulkanBackendReportsAsyncCompute(t *testing.T) {
	b := NewVulkanBackend()
	caps := b.Capabilities()
	assert.True(t, caps.Features.AsyncCompute)
	assert.True(t, caps.SupportsPresent)
}

func TestSwapchainGenerationIncrementsOnInvalidate(t *testing.T) {
	b := NewOpenGLBackend().(*glBackend)
	assert.Equal(t, uint64(0), b.SwapchainGeneration())
	b.InvalidateSwapchain()
	assert.Equal(t, uint64(1), b.SwapchainGeneration())
}

func TestBackendLifecycleIsNoError(t *testing.T) {
	for _, b := range []Backend{NewSoftwareBackend(), NewOpenGLBackend(), NewVulkanBackend()} {
		info := FrameInfo{FrameIndex: 1, Width: 640, Height: 480}
		assert.NoError(t, b.BeginFrame(info))
		assert.NoError(t, b.EndFrame(info))
	}
}
