package mem_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calmsacibis995/sprite2/mem"
	sp "github.com/calmsacibis995/sprite2/spritep"
)

func TestBootAllocBeforeGeneral(t *testing.T) {
	phase := sp.PreDiagnostics
	a := mem.NewAllocator(1024, func() sp.BootPhase { return phase })

	b, err := a.BootAlloc(100)
	require.Nil(t, err, "BootAlloc")
	assert.Equal(t, 100, len(b))

	_, err = a.Alloc(10)
	assert.ErrorIs(t, err, mem.ErrAllocatorNotReady)
}

func TestBootAllocRetired(t *testing.T) {
	phase := sp.BootAllocatorOnly
	a := mem.NewAllocator(1024, func() sp.BootPhase { return phase })

	_, err := a.BootAlloc(10)
	require.Nil(t, err, "BootAlloc")

	// The one-way switch: the orchestrator advances the phase.
	phase = sp.GeneralAllocatorReady

	_, err = a.BootAlloc(10)
	assert.ErrorIs(t, err, mem.ErrBootAllocRetired)

	b, err := a.Alloc(10)
	require.Nil(t, err, "Alloc")
	assert.Equal(t, 10, len(b))
}

func TestBootArenaBounded(t *testing.T) {
	phase := sp.PreDiagnostics
	a := mem.NewAllocator(64, func() sp.BootPhase { return phase })

	_, err := a.BootAlloc(64)
	require.Nil(t, err, "BootAlloc")
	_, err = a.BootAlloc(1)
	assert.ErrorIs(t, err, mem.ErrBootArenaFull)
}

func TestBinsFreezeAtGeneral(t *testing.T) {
	phase := sp.BootAllocatorOnly
	a := mem.NewAllocator(1024, func() sp.BootPhase { return phase })

	require.Nil(t, a.Bin("fs", []int{64, 512}), "fs bin")
	assert.NotNil(t, a.Bin("fs", []int{64}), "duplicate bin")

	phase = sp.GeneralAllocatorReady
	assert.ErrorIs(t, a.Bin("net", []int{128}), mem.ErrBinsFrozen)
	assert.ElementsMatch(t, []string{"fs"}, a.Bins())
}

func TestAllocated(t *testing.T) {
	phase := sp.PreDiagnostics
	a := mem.NewAllocator(1024, func() sp.BootPhase { return phase })

	_, err := a.BootAlloc(100)
	require.Nil(t, err)
	phase = sp.GeneralAllocatorReady
	_, err = a.Alloc(28)
	require.Nil(t, err)
	assert.Equal(t, uint64(128), a.Allocated())
}
