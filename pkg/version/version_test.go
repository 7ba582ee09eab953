package version

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetTrimsEmbeddedVersion(t *testing.T) {
	got := Get()
	assert.Equal(t, strings.TrimSpace(Version), got)
	assert.NotContains(t, got, "\n")
}

func TestVersionPrefixed(t *testing.T) {
	s := Get()
	if assert.NotEmpty(t, s) {
		assert.Equal(t, byte('v'), s[0])
	}
}
