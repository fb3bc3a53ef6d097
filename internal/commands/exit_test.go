package commands

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aisha-shell/aisha/internal/session"
)

func TestExitCmd_NoArgsUsesLastStatus(t *testing.T) {
	s := session.New()
	s.LastStatus = 7
	env := &ExecutionEnv{}

	require.NoError(t, exitCmd(context.Background(), s, env, nil))
	assert.True(t, s.ExitRequested)
	assert.Equal(t, 7, s.LastStatus)
}

func TestExitCmd_ExplicitCode(t *testing.T) {
	s := session.New()
	env := &ExecutionEnv{}

	require.NoError(t, exitCmd(context.Background(), s, env, []string{"42"}))
	assert.True(t, s.ExitRequested)
	assert.Equal(t, 42, s.LastStatus)
}

func TestExitCmd_NonNumericErrors(t *testing.T) {
	s := session.New()
	env := &ExecutionEnv{}

	err := exitCmd(context.Background(), s, env, []string{"abc"})
	assert.Error(t, err)
	assert.False(t, s.ExitRequested)
}
