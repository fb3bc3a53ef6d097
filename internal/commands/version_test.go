package commands

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aisha-shell/aisha/internal/session"
)

func TestVersionCmd_PrintsBuildInfo(t *testing.T) {
	s := session.New()
	var out bytes.Buffer
	env := &ExecutionEnv{Stdout: &out}

	require.NoError(t, versionCmd(context.Background(), s, env, nil))
	assert.Contains(t, out.String(), "aisha version")
	assert.Contains(t, out.String(), "Commit:")
}
