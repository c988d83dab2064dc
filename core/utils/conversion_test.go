package utils_test

import (
	"testing"

	"vendsync/core/utils"

	"github.com/stretchr/testify/assert"
)

func TestToInt(t *testing.T) {
	assert.Equal(t, 42, utils.ToInt(42))
	assert.Equal(t, 42, utils.ToInt(int64(42)))
	assert.Equal(t, 42, utils.ToInt(42.9))
	assert.Equal(t, 42, utils.ToInt("42"))
	assert.Equal(t, 42, utils.ToInt(" 42 "))
	assert.Equal(t, 42, utils.ToInt([]byte("42")))
	assert.Equal(t, 0, utils.ToInt("not a number"))
}

func TestToString(t *testing.T) {
	assert.Equal(t, "abc", utils.ToString("abc"))
	assert.Equal(t, "abc", utils.ToString([]byte("abc")))
	assert.Equal(t, "42", utils.ToString(42))
}

func TestIsNumeric(t *testing.T) {
	assert.True(t, utils.IsNumeric("42"))
	assert.True(t, utils.IsNumeric("042"))
	assert.True(t, utils.IsNumeric(" -7 "))
	assert.False(t, utils.IsNumeric(""))
	assert.False(t, utils.IsNumeric("   "))
	assert.False(t, utils.IsNumeric("P001"))
	assert.False(t, utils.IsNumeric("4.2"))
}
