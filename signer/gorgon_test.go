package signer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGorgon(t *testing.T) {
	tests := []struct {
		name string
		g    Gorgon
		want string
	}{
		{
			"params only",
			Gorgon{Khronos: 1670385975, Params: "device_id=7&aid=1128"},
			"0404b0d30000f1a06c2aeb57387ccee15dbc3694a677b99cb196",
		},
		{
			"with body and cookies",
			Gorgon{Khronos: 1670385975, Params: "device_id=7&aid=1128", Data: `{"a":1}`, Cookies: "sid=1"},
			"0404b0d30000f1a06cf70099818dacd365ec3694a677b99cb196",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.g.Value())
		})
	}

	h := (&Gorgon{Khronos: 1670385975}).Headers()
	assert.Equal(t, "1670385975", h["x-khronos"])
	assert.Equal(t, "1670385975000", h["x-ss-req-ticket"])
	assert.Len(t, h["x-gorgon"], 12+40)
}
