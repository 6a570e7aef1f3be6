package generate

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	for _, tt := range []struct {
		input   string
		want    Mode
		wantErr bool
	}{
		{"expand", ModeExpand, false},
		{"summarize", ModeSummarize, false},
		{"Expand", "", true},
		{"", "", true},
		{"translate", "", true},
	} {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseMode(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidMode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRequestValidate(t *testing.T) {
	assert.NoError(t, Request{Shorthand: "55F DM2", Mode: ModeExpand}.Validate())
	assert.True(t, errors.Is(Request{Mode: ModeExpand}.Validate(), ErrEmptyShorthand))
	assert.True(t, errors.Is(Request{Shorthand: "x", Mode: "shorten"}.Validate(), ErrInvalidMode))
}

func TestRequestWireFormat(t *testing.T) {
	b, err := json.Marshal(Request{Shorthand: "55F DM2", Mode: ModeSummarize})
	require.NoError(t, err)
	assert.JSONEq(t, `{"shorthand":"55F DM2","mode":"summarize"}`, string(b))
}

func TestModeLabels(t *testing.T) {
	assert.Equal(t, "Expanded Patient Note", ModeExpand.Title())
	assert.Equal(t, "Summarized Patient Note", ModeSummarize.Title())
	assert.Equal(t, "Expand Note", ModeExpand.Action())
	assert.Equal(t, "Summarize Note", ModeSummarize.Action())
}
