package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnvString(t *testing.T) {
	t.Setenv("NEMO_TEST_STRING", "value")
	assert.Equal(t, "value", EnvString("NEMO_TEST_STRING", "fallback"))
	assert.Equal(t, "fallback", EnvString("NEMO_TEST_STRING_MISSING", "fallback"))
}

func TestEnvInt64(t *testing.T) {
	t.Setenv("NEMO_TEST_INT", "42")
	assert.Equal(t, int64(42), EnvInt64("NEMO_TEST_INT", 7))
	assert.Equal(t, int64(7), EnvInt64("NEMO_TEST_INT_MISSING", 7))

	t.Setenv("NEMO_TEST_BAD_INT", "not-a-number")
	assert.Equal(t, int64(7), EnvInt64("NEMO_TEST_BAD_INT", 7))
}
