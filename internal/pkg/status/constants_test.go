package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	assert.Equal(t, "processing", Processing.String())
	assert.Equal(t, "transcribing", Transcribing.String())
	assert.Equal(t, "completed", Completed.String())
	assert.Equal(t, "failed", Failed.String())
	assert.Equal(t, "", Status(0).String())
}

func TestFrom(t *testing.T) {
	assert.Equal(t, Processing, From("processing"))
	assert.Equal(t, Transcribing, From("transcribing"))
	assert.Equal(t, Completed, From("completed"))
	assert.Equal(t, Failed, From("failed"))
	assert.Equal(t, Status(0), From("olia"))
}
