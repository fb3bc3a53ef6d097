package commands

import (
	"bytes"
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aisha-shell/aisha/internal/session"
)

func TestExportCmd_SetsValueAndExports(t *testing.T) {
	s := session.New()
	env := &ExecutionEnv{Stdout: &bytes.Buffer{}}

	require.NoError(t, exportCmd(context.Background(), s, env, []string{"AISHA_EXPORT_TEST=1"}))
	defer os.Unsetenv("AISHA_EXPORT_TEST")

	v, ok := s.Variables.Get("AISHA_EXPORT_TEST")
	require.True(t, ok)
	assert.Equal(t, "1", v)
	assert.True(t, s.Variables.Lookup("AISHA_EXPORT_TEST").Exported())
	assert.Equal(t, "1", os.Getenv("AISHA_EXPORT_TEST"))
}

func TestExportCmd_InvalidIdentifierErrors(t *testing.T) {
	s := session.New()
	env := &ExecutionEnv{Stdout: &bytes.Buffer{}}
	err := exportCmd(context.Background(), s, env, []string{"9bad=1"})
	assert.Error(t, err)
}

func TestExportCmd_PrintsExportedOnly(t *testing.T) {
	s := session.New()
	require.NoError(t, s.Variables.Set("NOT_EXPORTED", "x"))
	require.NoError(t, s.Variables.Set("IS_EXPORTED", "y"))
	s.Variables.Export("IS_EXPORTED")
	defer os.Unsetenv("IS_EXPORTED")

	var out bytes.Buffer
	env := &ExecutionEnv{Stdout: &out}
	require.NoError(t, exportCmd(context.Background(), s, env, nil))

	assert.Contains(t, out.String(), "IS_EXPORTED")
	assert.NotContains(t, out.String(), "NOT_EXPORTED=")
}

func TestExportCmd_PrintFlagPrintsExportedOnly(t *testing.T) {
	s := session.New()
	require.NoError(t, s.Variables.Set("NOT_EXPORTED2", "x"))
	require.NoError(t, s.Variables.Set("IS_EXPORTED2", "y"))
	s.Variables.Export("IS_EXPORTED2")
	defer os.Unsetenv("IS_EXPORTED2")

	var out bytes.Buffer
	env := &ExecutionEnv{Stdout: &out}
	require.NoError(t, exportCmd(context.Background(), s, env, []string{"-p"}))

	assert.Contains(t, out.String(), "IS_EXPORTED2")
	assert.NotContains(t, out.String(), "NOT_EXPORTED2=")
}

func TestReadonlyCmd_PreventsLaterSet(t *testing.T) {
	s := session.New()
	env := &ExecutionEnv{}

	require.NoError(t, readonlyCmd(context.Background(), s, env, []string{"LOCKED=1"}))
	err := s.Variables.Set("LOCKED", "2")
	assert.Error(t, err)
}

func TestUnsetCmd_RemovesVariable(t *testing.T) {
	s := session.New()
	require.NoError(t, s.Variables.Set("TEMP", "1"))

	env := &ExecutionEnv{}
	require.NoError(t, unsetCmd(context.Background(), s, env, []string{"TEMP"}))
	_, ok := s.Variables.Get("TEMP")
	assert.False(t, ok)
}

func TestUnsetCmd_ReadonlyErrors(t *testing.T) {
	s := session.New()
	require.NoError(t, s.Variables.Set("LOCKED2", "1"))
	s.Variables.Lookup("LOCKED2").Flags |= session.FlagReadOnly

	env := &ExecutionEnv{}
	err := unsetCmd(context.Background(), s, env, []string{"LOCKED2"})
	assert.Error(t, err)
}
