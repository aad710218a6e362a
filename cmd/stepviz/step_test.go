package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScrubber(t *testing.T) *scrubber {
	t.Helper()
	src := "total = 0\nfor i in range(2):\n  total += i\nprint(total)"
	return newScrubber(runTrace(t, src).Steps, strings.Split(src, "\n"))
}

func TestScrubber_Navigation(t *testing.T) {
	s := newTestScrubber(t)
	require.Len(t, s.steps, 8) // -1 0 1 2 1 2 3 -1

	assert.Contains(t, s.render(), "step 1/8  (start)")

	out, quit := s.handle("")
	assert.False(t, quit)
	assert.Contains(t, out, "step 2/8  line 1: total = 0")
	assert.Contains(t, out, "(no variables)")

	out, _ = s.handle("n")
	assert.Contains(t, out, "line 2: for i in range(2):")
	assert.Contains(t, out, "total = 0")

	out, _ = s.handle("p")
	assert.Contains(t, out, "step 2/8")

	out, _ = s.handle("last")
	assert.Contains(t, out, "step 8/8  (end)")
	assert.Contains(t, out, "last output: 1")

	out, _ = s.handle("next")
	assert.Equal(t, "already at the last step", out)

	out, _ = s.handle("first")
	assert.Contains(t, out, "(start)")
	out, _ = s.handle("prev")
	assert.Equal(t, "already at the first step", out)
}

func TestScrubber_Goto(t *testing.T) {
	s := newTestScrubber(t)

	out, _ := s.handle("g 4")
	assert.Contains(t, out, "step 4/8  line 3:   total += i")
	assert.Contains(t, out, "i = 0")

	out, _ = s.handle("goto 9")
	assert.Equal(t, "step must be between 1 and 8", out)
	out, _ = s.handle("goto")
	assert.Equal(t, "usage: goto <step>", out)
}

func TestScrubber_JumpToLine(t *testing.T) {
	s := newTestScrubber(t)

	out, _ := s.handle("line 3")
	assert.Contains(t, out, "step 4/8")
	out, _ = s.handle("line 3")
	assert.Contains(t, out, "step 6/8")
	assert.Contains(t, out, "i = 1")

	out, _ = s.handle("line 3")
	assert.Equal(t, "line 3 does not execute again", out)
}

func TestScrubber_VarsAndOutput(t *testing.T) {
	s := newTestScrubber(t)

	out, _ := s.handle("o")
	assert.Equal(t, "  (no output yet)", out)

	s.handle("l")
	out, _ = s.handle("vars")
	assert.Equal(t, "  total = 1\n  i = 1", out)
	out, _ = s.handle("out")
	assert.Equal(t, "  1", out)
}

func TestScrubber_HelpUnknownQuit(t *testing.T) {
	s := newTestScrubber(t)

	out, quit := s.handle("h")
	assert.False(t, quit)
	assert.Contains(t, out, "commands:")

	out, _ = s.handle("dance")
	assert.Contains(t, out, `unknown command "dance"`)

	_, quit = s.handle("q")
	assert.True(t, quit)
}
