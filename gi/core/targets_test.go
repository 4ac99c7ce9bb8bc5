package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeTargetSizes(t *testing.T) {
	sizes := ComputeTargetSizes(1280, 720, DefaultTargetScaling())

	assert.Equal(t, [2]uint32{1280, 720}, sizes.Primary)
	assert.Equal(t, [2]uint32{1280, 720}, sizes.AlignedPrimary)
	assert.Equal(t, [2]uint32{640, 360}, sizes.SDF)
	assert.Equal(t, [2]uint32{160, 90}, sizes.ProbeGrid)
	assert.True(t, sizes.IsValid())
}

func TestComputeTargetSizesRoundsUp(t *testing.T) {
	sizes := ComputeTargetSizes(1283, 721, DefaultTargetScaling())

	assert.Equal(t, [2]uint32{1283, 721}, sizes.Primary)
	assert.Equal(t, [2]uint32{1288, 728}, sizes.AlignedPrimary)
	assert.Equal(t, [2]uint32{642, 361}, sizes.SDF)
	assert.Equal(t, [2]uint32{161, 91}, sizes.ProbeGrid)
}

func TestComputeTargetSizesScaled(t *testing.T) {
	sizes := ComputeTargetSizes(1280, 720, TargetScalingParams{PrimaryScale: 2.0, SDFScale: 2.0})

	assert.Equal(t, [2]uint32{640, 360}, sizes.Primary)
	assert.Equal(t, [2]uint32{320, 180}, sizes.SDF)
	assert.Equal(t, [2]uint32{80, 45}, sizes.ProbeGrid)
}

func TestComputeTargetSizesDegenerate(t *testing.T) {
	assert.False(t, ComputeTargetSizes(0, 720, DefaultTargetScaling()).IsValid())
	assert.False(t, ComputeTargetSizes(1280, 0, DefaultTargetScaling()).IsValid())
	assert.False(t, ComputeTargetSizes(-4, -4, DefaultTargetScaling()).IsValid())
}

func TestDispatchGrid(t *testing.T) {
	x, y := DispatchGrid(1280, 720)
	assert.Equal(t, uint32(160), x)
	assert.Equal(t, uint32(90), y)

	x, y = DispatchGrid(1281, 713)
	assert.Equal(t, uint32(161), x)
	assert.Equal(t, uint32(90), y)

	x, y = DispatchGrid(1, 1)
	assert.Equal(t, uint32(1), x)
	assert.Equal(t, uint32(1), y)
}
