package writemode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	cases := map[string]Mode{
		"mode_300":  Short,
		"300":       Short,
		"short":     Short,
		" SHORT ":   Short,
		"mode_1000": Long,
		"1000":      Long,
		"long":      Long,
	}
	for in, want := range cases {
		got, err := Parse(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestParse_Unknown(t *testing.T) {
	for _, in := range []string{"", "medium", "mode_500"} {
		_, err := Parse(in)
		assert.ErrorIs(t, err, ErrUnknownMode, in)
	}
}

func TestLimits(t *testing.T) {
	assert.Equal(t, 10, Short.HistoryCap())
	assert.Equal(t, 20, Long.HistoryCap())
	assert.Equal(t, 300, Short.CharLimit())
	assert.Equal(t, 1000, Long.CharLimit())
	assert.True(t, Short.Valid())
	assert.False(t, Mode("x").Valid())
}
