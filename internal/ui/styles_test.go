package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetStyles_NoColorIsUnstyled(t *testing.T) {
	styles := GetStyles(true)

	// An unstyled render leaves the text untouched.
	assert.Equal(t, "hello", styles.Header.Render("hello"))
	assert.Equal(t, "hello", styles.Error.Render("hello"))
}

func TestDefaultStyles_AreDistinctFromPlain(t *testing.T) {
	colored := DefaultStyles()
	plain := NoColorStyles()

	assert.NotEqual(t, colored.Header, plain.Header)
}
