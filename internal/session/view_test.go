package session

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProject(t *testing.T) {
	tests := []struct {
		name  string
		state State
		want  View
	}{
		{
			name:  "no repository enables only init",
			state: State{Phase: PhaseNoRepo, Path: "/repo"},
			want:  View{InitEnabled: true, Selected: -1},
		},
		{
			name: "active repository",
			state: State{
				Phase:         PhaseActive,
				Branches:      []string{"main", "feature"},
				CurrentBranch: "feature",
				Log:           "abc1234 msg (a)",
			},
			want: View{
				RepoExists:      true,
				ControlsEnabled: true,
				BranchOptions:   []string{"main", "feature"},
				Selected:        1,
				CurrentBranch:   "feature",
				LogText:         "abc1234 msg (a)",
			},
		},
		{
			name: "destroyed session disables everything",
			state: State{
				Phase:    PhaseDestroyed,
				Branches: []string{"main"},
				Log:      "stale",
			},
			want: View{Selected: -1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Project(tt.state))
		})
	}
}

func TestProjectDoesNotAliasState(t *testing.T) {
	st := State{Phase: PhaseActive, Branches: []string{"main"}, CurrentBranch: "main"}
	v := Project(st)

	v.BranchOptions[0] = "changed"
	require.Equal(t, "main", st.Branches[0])
}
