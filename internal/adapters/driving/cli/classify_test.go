package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyCmd_Use(t *testing.T) {
	assert.Equal(t, "classify [hint]", classifyCmd.Use)
}

func TestClassifyCmd_Labels(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"senior", "developer"}, "technical"},
		{[]string{"What is my budget?"}, "user-centric"},
		{[]string{"compliance officer"}, "legal"},
		{[]string{"travel planner"}, "general"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			out, err := executeCommand(append([]string{"classify"}, tt.args...)...)

			require.NoError(t, err)
			assert.Equal(t, tt.want+"\n", out)
		})
	}
}

func TestClassifyCmd_RequiresHint(t *testing.T) {
	_, err := executeCommand("classify")

	assert.Error(t, err)
}
