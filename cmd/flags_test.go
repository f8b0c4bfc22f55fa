package cmd

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectCommandFlags(t *testing.T) {
	cmd := &cobra.Command{}
	selectCmd.Flags().VisitAll(func(f *pflag.Flag) {
		cmd.Flags().AddFlag(f)
	})

	tests := []struct {
		name  string
		flag  string
		value string
	}{
		{
			name:  "since flag",
			flag:  "since",
			value: "2024-03-01",
		},
		{
			name:  "until flag",
			flag:  "until",
			value: "2024-04-01",
		},
		{
			name:  "limit flag",
			flag:  "limit",
			value: "10",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := cmd.Flags().Set(tt.flag, tt.value)
			require.NoError(t, err)
			if tt.flag == "limit" {
				n, err := cmd.Flags().GetInt(tt.flag)
				require.NoError(t, err)
				assert.Equal(t, 10, n)
				return
			}
			got, err := cmd.Flags().GetString(tt.flag)
			require.NoError(t, err)
			assert.Equal(t, tt.value, got)
		})
	}

	limit := selectCmd.Flags().Lookup("limit")
	require.NotNil(t, limit)
	assert.Equal(t, "25", limit.DefValue)
}

func TestListCommandFlags(t *testing.T) {
	var names []string
	listCmd.Flags().VisitAll(func(f *pflag.Flag) {
		names = append(names, f.Name)
	})
	assert.ElementsMatch(t, []string{"state", "all-profiles", "mine"}, names)

	err := listCmd.Flags().Set("all-profiles", "true")
	require.NoError(t, err)
	assert.True(t, listAllProfiles)
	listAllProfiles = false
}

func TestNotifyCommandFlags(t *testing.T) {
	state := notifyCmd.Flags().Lookup("state")
	require.NotNil(t, state)
	assert.Equal(t, "concerns", state.DefValue)

	dryRun := notifyCmd.Flags().Lookup("dry-run")
	require.NotNil(t, dryRun)
	assert.Equal(t, "false", dryRun.DefValue)
}
