package tui

import (
	"github.com/sokinpui/pcp/internal/nvim"
	"github.com/sokinpui/pcp/internal/watch"
	"github.com/sokinpui/pcp/model"
	"github.com/sokinpui/pcp/pcp"
)

type folderOpenedMsg struct {
	tab    string
	opened pcp.Opened
	err    error
}

type childrenLoadedMsg struct {
	tab      string
	path     string
	children []model.TreeNode
	err      error
}

type searchTickMsg struct {
	tab   string
	token int
}

type refreshedMsg struct {
	tab   string
	root  string
	files []model.TreeNode
	err   error
}

type watchMsg struct {
	watch.Event
}

type copiedMsg struct {
	tab     string
	summary model.Summary
	err     error
}

type successMsg struct {
	tab  string
	path string
	err  error
}

type historyLoadedMsg struct {
	date    string
	records []model.HistoryRecord
	dates   []string
	err     error
}

type entryMarkedMsg struct {
	path string
	err  error
}

type entryDeletedMsg struct {
	path string
	err  error
}

type comparedMsg struct {
	cmp pcp.Comparison
	err error
}

type viewerShownMsg struct {
	buf nvim.Buffer
	err error
}

type viewerPollMsg struct {
	buf nvim.Buffer
}

type viewerStateMsg struct {
	buf     nvim.Buffer
	visible bool
}

type viewerHiddenMsg struct {
	err error
}

type revealedMsg struct {
	err error
}

type themeSavedMsg struct {
	err error
}

type unifiedCopiedMsg struct {
	err error
}

type clearToastMsg struct {
	id int
}
