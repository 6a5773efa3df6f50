package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestClassifyCommand(t *testing.T) {
	tests := []struct {
		text      string
		userType  string
		escalates string
	}{
		{"hi", "unknown", "escalates: false"},
		{"I need maintenance repair", "tenant", "escalates: true"},
		{"how is my commission calculated", "agent", "escalates: false"},
		{"what is the weather tomorrow", "unknown", "escalates: true"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			out := runCLI(t, "classify", tt.text)
			assert.Contains(t, out, "user type: "+tt.userType)
			assert.Contains(t, out, tt.escalates)
		})
	}
}

func TestClassifyCommand_RequiresText(t *testing.T) {
	rootCmd.SetArgs([]string{"classify"})
	assert.Error(t, rootCmd.Execute())
}
