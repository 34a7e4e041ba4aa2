package cli

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRootRejectsInvalidConfig(t *testing.T) {
	t.Setenv("CKCTL_REGION_EU", "not-a-url")

	RootCmd.SetArgs([]string{"version"})
	defer RootCmd.SetArgs(nil)

	err := RootCmd.Execute()
	require.Error(t, err)
	require.Contains(t, err.Error(), "EU region")
}

func TestRootAcceptsDefaultConfig(t *testing.T) {
	RootCmd.SetArgs([]string{"version"})
	defer RootCmd.SetArgs(nil)

	require.NoError(t, RootCmd.Execute())
}
