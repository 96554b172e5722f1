package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"isafeDashboard/internal/indexer"
	"isafeDashboard/internal/ui"
)

// addressParam returns the canonical form of path parameter name.
func addressParam(c echo.Context, name string) (string, error) {
	addr, err := indexer.NormalizeAddress(c.Param(name))
	if err != nil {
		return "", echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return addr, nil
}

func (s *Server) page(account, active, title string) ui.Page {
	return ui.Page{Title: title, Network: s.cfg.Network, Account: account, Active: active}
}

func (s *Server) home(c echo.Context) error {
	return c.Render(http.StatusOK, "page:"+ui.PageHome, ui.BuildHome(s.page("", "", "")))
}

func (s *Server) accounts(c echo.Context) error {
	addr, err := addressParam(c, "address")
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "page:"+ui.PageAccounts, ui.AccountsPage{Page: s.page("", "", "Accounts"), Address: addr})
}

func (s *Server) overview(c echo.Context) error {
	acct, err := addressParam(c, "account")
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "page:"+ui.PageOverview, s.overviewView(c, acct))
}

func (s *Server) overviewView(c echo.Context, acct string) ui.OverviewView {
	shown, remaining := s.copies.Shown(sessionID(c), ui.ScopeAccount)
	return ui.OverviewView{
		Page:    s.page(acct, "overview", "Overview"),
		Copied:  shown == acct,
		ResetMs: remaining.Milliseconds(),
	}
}

func (s *Server) transactions(c echo.Context) error {
	acct, err := addressParam(c, "account")
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "page:"+ui.PageTransactions, s.page(acct, "transactions", "Transactions"))
}

// settings renders in one pass so the page is complete without scripts.
func (s *Server) settings(c echo.Context) error {
	acct, err := addressParam(c, "account")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	state := s.hooks.Account(ctx, acct)
	members := s.membersView(c, acct, sectionMembers)
	return c.Render(http.StatusOK, "page:"+ui.PageSettings, ui.BuildSettings(s.page(acct, "settings", "Settings"), state, members))
}
