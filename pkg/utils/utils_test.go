package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatMB(t *testing.T) {
	assert.Equal(t, "Unlimited", FormatMB(0))
	assert.Equal(t, "1GB", FormatMB(1000))
	assert.Equal(t, "2.5GB", FormatMB(2500))
	assert.Equal(t, "10GB", FormatMB(10000))
}

func TestFormatCPU(t *testing.T) {
	assert.Equal(t, "Unlimited", FormatCPU(0))
	assert.Equal(t, "40%", FormatCPU(40))
	assert.Equal(t, "220%", FormatCPU(220))
}

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "Budi", TitleCase("budi"))
	assert.Equal(t, "Budi server", TitleCase("budi server"))
	assert.Equal(t, "", TitleCase(""))
}

func TestIsEmpty(t *testing.T) {
	assert.True(t, IsEmpty(""))
	assert.False(t, IsEmpty("x"))
}
