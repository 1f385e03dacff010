package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 10))
	assert.Equal(t, "ab", Truncate("abc", 2))
	assert.Equal(t, "Grüß", Truncate("Grüße", 4))
	assert.Equal(t, "", Truncate("abc", 0))
}

func TestDigits(t *testing.T) {
	assert.Equal(t, "1001", Digits("O-1001"))
	assert.Equal(t, "", Digits("none"))
}

func TestSanitizeDescription(t *testing.T) {
	in := `<div><span="de">Robust steel  mug\</div>`
	assert.Equal(t, "Robust steel mug", SanitizeDescription(in))
}
