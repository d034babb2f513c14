package convert

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToFloat64(t *testing.T) {
	assert.Equal(t, 1.05, ToFloat64("1.05"))
	assert.Equal(t, 1.05, ToFloat64(" 1.05 "))
	assert.Equal(t, 2.5, ToFloat64(2.5))
	assert.Equal(t, 3.0, ToFloat64(3))
	assert.Equal(t, 4.0, ToFloat64(json.Number("4")))
	assert.Equal(t, 0.0, ToFloat64(nil))
	assert.Equal(t, 0.0, ToFloat64("not-a-number"))
	assert.Equal(t, 0.0, ToFloat64(struct{}{}))
}

func TestToInt64(t *testing.T) {
	assert.Equal(t, int64(4123), ToInt64("4123"))
	assert.Equal(t, int64(4123), ToInt64(" 4123 "))
	assert.Equal(t, int64(7), ToInt64(7))
	assert.Equal(t, int64(9), ToInt64(json.Number("9")))
	assert.Equal(t, int64(2), ToInt64(2.9))
	assert.Equal(t, int64(0), ToInt64(""))
	assert.Equal(t, int64(0), ToInt64(nil))
	assert.Equal(t, int64(0), ToInt64("12.5"))
}
