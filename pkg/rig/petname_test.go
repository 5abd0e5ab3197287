package rig

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPetNameDeterministic(t *testing.T) {
	assert.Equal(t, "friendly-sloth", PetName("aabbccddeeff"))
	assert.Equal(t, "pudgy-axolotl", PetName("001a2b3c4d5e"))
	assert.Equal(t, PetName("aabbccddeeff"), PetName("aabbccddeeff"))
}

func TestPetNameShape(t *testing.T) {
	for _, id := range []string{"aabbccddeeff", "001a2b3c4d5e", "x"} {
		assert.True(t, LooksLikePetName(PetName(id)), "pet name for %s", id)
	}
}

func TestLooksLikePetName(t *testing.T) {
	assert.True(t, LooksLikePetName("bouncy-otter"))
	assert.False(t, LooksLikePetName("otter"))
	assert.False(t, LooksLikePetName("bouncy-refrigerator"))
	assert.False(t, LooksLikePetName("chrome-otter"))
	assert.False(t, LooksLikePetName("aabbccddeeff"))
}
