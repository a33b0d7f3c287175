package navigator

type Screen int

const (
	RepoScreen Screen = iota
	WorktreeScreen
)

type Mode int

const (
	Normal Mode = iota
	Filter
	ConfirmDelete
	Help
)

// Phase is the (screen, mode) pair. Only valid combinations exist, so there
// is no way to confirm a delete on the repository screen.
type Phase int

const (
	RepoBrowse Phase = iota
	RepoFilter
	RepoHelp
	WorktreeBrowse
	WorktreeFilter
	WorktreeConfirmDelete
	WorktreeHelp
)

func (p Phase) Screen() Screen {
	switch p {
	case WorktreeBrowse, WorktreeFilter, WorktreeConfirmDelete, WorktreeHelp:
		return WorktreeScreen
	}
	return RepoScreen
}

func (p Phase) Mode() Mode {
	switch p {
	case RepoFilter, WorktreeFilter:
		return Filter
	case WorktreeConfirmDelete:
		return ConfirmDelete
	case RepoHelp, WorktreeHelp:
		return Help
	}
	return Normal
}

func browse(s Screen) Phase {
	if s == WorktreeScreen {
		return WorktreeBrowse
	}
	return RepoBrowse
}

func filtering(s Screen) Phase {
	if s == WorktreeScreen {
		return WorktreeFilter
	}
	return RepoFilter
}

func helping(s Screen) Phase {
	if s == WorktreeScreen {
		return WorktreeHelp
	}
	return RepoHelp
}

func (p Phase) String() string {
	switch p {
	case RepoBrowse:
		return "repo/normal"
	case RepoFilter:
		return "repo/filter"
	case RepoHelp:
		return "repo/help"
	case WorktreeBrowse:
		return "worktree/normal"
	case WorktreeFilter:
		return "worktree/filter"
	case WorktreeConfirmDelete:
		return "worktree/confirm-delete"
	case WorktreeHelp:
		return "worktree/help"
	}
	return "unknown"
}
