package theme

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Theme
	}{
		{"light", Light},
		{"dark", Dark},
		{" Dark\n", Dark},
	}
	for _, tt := range tests {
		got, err := Parse(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := Parse("solarized")
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestToggle(t *testing.T) {
	assert.Equal(t, Dark, Light.Toggle())
	assert.Equal(t, Light, Dark.Toggle())
	assert.Equal(t, Light, Light.Toggle().Toggle())
}

func TestDetect(t *testing.T) {
	orig := hasDarkBackground
	t.Cleanup(func() { hasDarkBackground = orig })

	hasDarkBackground = func() bool { return true }
	assert.Equal(t, Dark, Detect())

	hasDarkBackground = func() bool { return false }
	assert.Equal(t, Light, Detect())
}

func TestPaletteDiffersByTheme(t *testing.T) {
	light, dark := PaletteFor(Light), PaletteFor(Dark)
	assert.NotEqual(t, light.Title.GetForeground(), dark.Title.GetForeground())
	assert.Equal(t, light.Error.GetForeground(), dark.Error.GetForeground())
}
