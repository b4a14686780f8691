package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	encoded, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.Len(t, strings.Split(encoded, "."), 2)

	assert.NoError(t, VerifyPassword("correct horse battery staple", encoded))
	assert.Error(t, VerifyPassword("wrong password", encoded))
}

func TestHashPasswordRejectsEmpty(t *testing.T) {
	_, err := HashPassword("")
	assert.Error(t, err)
}

func TestVerifyPasswordRejectsMalformedHash(t *testing.T) {
	assert.Error(t, VerifyPassword("anything", "not-a-valid-hash"))
	assert.Error(t, VerifyPassword("anything", "a.b.c"))
	assert.Error(t, VerifyPassword("anything", "!!!.###"))
}
