package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheck(t *testing.T) {
	tests := []struct {
		op       Operation
		ops      error
		consumer error
	}{
		{OpUpload, nil, ErrForbidden},
		{OpList, nil, nil},
		{OpRequestDownload, ErrForbidden, nil},
		{OpRedeemDownload, ErrForbidden, nil},
	}

	for _, tt := range tests {
		t.Run(string(tt.op), func(t *testing.T) {
			assert.Equal(t, tt.ops, Check(true, tt.op))
			assert.Equal(t, tt.consumer, Check(false, tt.op))
		})
	}
}

func TestCheck_UnknownOperation(t *testing.T) {
	assert.ErrorIs(t, Check(true, "delete"), ErrUnknownOperation)
	assert.ErrorIs(t, Check(false, ""), ErrUnknownOperation)
}
