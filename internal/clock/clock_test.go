package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFakeFiresDueTimersInOrder(t *testing.T) {
	c := NewFake(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	var fired []string

	c.AfterFunc(3*time.Second, func() { fired = append(fired, "b") })
	c.AfterFunc(1*time.Second, func() { fired = append(fired, "a") })
	late := c.AfterFunc(10*time.Second, func() { fired = append(fired, "late") })

	c.Advance(5 * time.Second)
	assert.Equal(t, []string{"a", "b"}, fired)
	assert.Equal(t, 1, c.Pending())

	assert.True(t, late.Stop())
	assert.False(t, late.Stop())
	c.Advance(time.Minute)
	assert.Equal(t, []string{"a", "b"}, fired)
	assert.Equal(t, 0, c.Pending())
}

func TestFakeZeroDelayFiresOnNextAdvance(t *testing.T) {
	c := NewFake(time.Unix(0, 0))
	n := 0
	c.AfterFunc(0, func() { n++ })
	c.Advance(0)
	assert.Equal(t, 1, n)
}
