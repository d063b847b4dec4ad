package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/schoolmgmt/school-api/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingHasher struct{}

func (failingHasher) Hash(string) (string, error) { return "", errors.New("entropy exhausted") }

func TestRun_Args(t *testing.T) {
	var out bytes.Buffer
	h := auth.NewArgon2Hasher()

	code := run([]string{"testpassword123", "тест123"}, strings.NewReader(""), &out, h)

	require.Equal(t, 0, code)
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, h.Verify(lines[0], "testpassword123"))
	assert.True(t, h.Verify(lines[1], "тест123"))
	assert.NotContains(t, out.String(), "testpassword123")
}

func TestRun_Stdin(t *testing.T) {
	var out bytes.Buffer
	h := auth.NewArgon2Hasher()

	code := run(nil, strings.NewReader("first\n\nsecond\n"), &out, h)

	require.Equal(t, 0, code)
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, h.Verify(lines[1], "second"))
}

func TestRun_NoPasswords(t *testing.T) {
	var out bytes.Buffer

	code := run(nil, strings.NewReader(""), &out, auth.NewArgon2Hasher())

	assert.Equal(t, 1, code)
	assert.Contains(t, out.String(), "Usage:")
}

func TestRun_HashFailure(t *testing.T) {
	var out bytes.Buffer

	code := run([]string{"secret"}, strings.NewReader(""), &out, failingHasher{})

	assert.Equal(t, 1, code)
	assert.Contains(t, out.String(), "Error hashing password #1")
	assert.NotContains(t, out.String(), "secret")
}
