package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"isafeDashboard/internal/model"
	"isafeDashboard/internal/query"
	"isafeDashboard/internal/ui"
)

// Fragment sections loaded by the dashboard pages.
const (
	sectionBalance        = "balance"
	sectionMembersCompact = "members-compact"
	sectionMembers        = "members"
	sectionThreshold      = "threshold"
	sectionActivity       = "activity"
	sectionExecuted       = "executed"
	sectionPending        = "pending"
	sectionAccounts       = "accounts"
	sectionCopyAccount    = "copy-account"
)

func (s *Server) partial(c echo.Context) error {
	acct, err := addressParam(c, "account")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	switch section := c.Param("section"); section {
	case sectionBalance:
		return render(c, section, ui.BuildBalance(s.hooks.Balance(ctx, acct)))
	case sectionMembersCompact, sectionMembers:
		return render(c, section, s.membersView(c, acct, section))
	case sectionThreshold:
		return render(c, section, ui.BuildThreshold(s.hooks.Account(ctx, acct)))
	case sectionActivity:
		return render(c, section, ui.BuildActivity(s.cfg.Network, s.hooks.Events(ctx, acct)))
	case sectionExecuted:
		return render(c, section, s.transactionsView(c, acct, ui.ExecutedTransactions))
	case sectionPending:
		return render(c, section, s.transactionsView(c, acct, ui.PendingTransactions))
	case sectionAccounts:
		// The path parameter is the member address here.
		return render(c, "accounts-list", ui.BuildAccounts(acct, s.hooks.Accounts(ctx, acct)))
	case sectionCopyAccount:
		return render(c, section, s.overviewView(c, acct))
	default:
		return echo.NewHTTPError(http.StatusNotFound, "unknown section "+section)
	}
}

func render(c echo.Context, name string, data any) error {
	return c.Render(http.StatusOK, "partial:"+name, data)
}

func (s *Server) membersView(c echo.Context, acct, section string) ui.MembersView {
	shown, remaining := s.copies.Shown(sessionID(c), ui.ScopeMembers)
	members := s.hooks.Members(c.Request().Context(), acct)
	view := ui.BuildMembers(s.cfg.Network, acct, members, shown, remaining.Milliseconds())
	view.Section = section
	return view
}

func (s *Server) transactionsView(c echo.Context, acct string, filter func([]model.TransactionSummary) []model.TransactionSummary) ui.TransactionsView {
	ctx := c.Request().Context()
	txs := s.hooks.Transactions(ctx, acct)
	if txs.Status != query.StatusSuccess {
		return ui.BuildTransactions(s.cfg.Network, txs, query.State[[]model.TransactionDetails]{})
	}
	txs.Data = filter(txs.Data)
	details := s.hooks.TransactionDetails(ctx, ui.Digests(txs.Data))
	return ui.BuildTransactions(s.cfg.Network, txs, details)
}

// copy records a clipboard write reported by the browser and re-renders the
// section holding the button.
func (s *Server) copy(c echo.Context) error {
	acct, err := addressParam(c, "account")
	if err != nil {
		return err
	}
	scope := ui.CopyScope(c.FormValue("scope"))
	if scope != ui.ScopeMembers && scope != ui.ScopeAccount {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown copy scope")
	}
	text := c.FormValue("text")
	failed := c.FormValue("failed") != ""
	if !failed {
		if text == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "nothing to copy")
		}
		s.copies.Copy(sessionID(c), scope, text)
	}

	if scope == ui.ScopeAccount {
		view := s.overviewView(c, acct)
		if failed {
			view.Notice = ui.ClipboardFailed
			view.ResetMs = scope.Window().Milliseconds()
		}
		return render(c, sectionCopyAccount, view)
	}
	section := sectionMembersCompact
	if c.FormValue("section") == sectionMembers {
		section = sectionMembers
	}
	view := s.membersView(c, acct, section)
	if failed {
		view.Notice = ui.ClipboardFailed
		view.ResetMs = scope.Window().Milliseconds()
	}
	return render(c, section, view)
}
