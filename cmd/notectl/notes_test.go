package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfirm(t *testing.T) {
	cases := map[string]bool{
		"y\n":     true,
		"YES\n":   true,
		" yes ":   true,
		"n\n":     false,
		"\n":      false,
		"":        false,
		"maybe\n": false,
	}
	for input, want := range cases {
		var out bytes.Buffer
		got := confirm(strings.NewReader(input), &out, "Are you sure you want to delete this note?")
		assert.Equal(t, want, got, "input %q", input)
		assert.Equal(t, "Are you sure you want to delete this note? [y/N] ", out.String())
	}
}

func TestDeleteCmd_DeclinedPromptSkipsRequest(t *testing.T) {
	// An unreachable server proves no request is made when the prompt is declined.
	prev := serverURL
	serverURL = "http://127.0.0.1:1"
	assumeYes = false
	t.Cleanup(func() { serverURL = prev })

	var out bytes.Buffer
	deleteCmd.SetIn(strings.NewReader("n\n"))
	deleteCmd.SetOut(&out)
	t.Cleanup(func() {
		deleteCmd.SetIn(nil)
		deleteCmd.SetOut(nil)
	})

	err := deleteCmd.RunE(deleteCmd, []string{"5b0c8c2e-2f43-4d4a-9d8f-3c1f2a7e9b10"})
	assert.NoError(t, err)
	assert.Contains(t, out.String(), "Are you sure you want to delete this note?")
}
