package session

// View is the UI-facing projection of a State.
type View struct {
	RepoExists      bool
	ControlsEnabled bool
	InitEnabled     bool
	BranchOptions   []string
	// Selected is the index of the current branch in BranchOptions, or -1.
	Selected      int
	CurrentBranch string
	LogText       string
}

// Project derives a View from s. It never reads anything but its argument,
// so calling it after every transition cannot drift from the repository.
func Project(s State) View {
	active := s.Phase == PhaseActive
	v := View{
		RepoExists:      active,
		ControlsEnabled: active,
		InitEnabled:     s.Phase == PhaseNoRepo,
		Selected:        -1,
	}
	if !active {
		return v
	}
	v.BranchOptions = append([]string(nil), s.Branches...)
	v.Selected = s.IndexOf(s.CurrentBranch)
	v.CurrentBranch = s.CurrentBranch
	v.LogText = s.Log
	return v
}
