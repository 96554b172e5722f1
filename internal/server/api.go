package server

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"isafeDashboard/internal/model"
	"isafeDashboard/internal/query"
)

type errorResponse struct {
	Error string `json:"error"`
}

type pendingResponse struct {
	Status string `json:"status"`
}

type eventsResponse struct {
	Events    []model.Event `json:"events"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

type accountsResponse struct {
	Accounts  []string  `json:"accounts"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type transactionsResponse struct {
	Transactions []model.TransactionSummary `json:"transactions"`
	UpdatedAt    time.Time                  `json:"updatedAt"`
}

// hooksFor answers from the cache without waiting when the caller asks for
// cached=1.
func (s *Server) hooksFor(c echo.Context) *query.Hooks {
	if c.QueryParam("cached") == "1" {
		return s.hooks.Peeking()
	}
	return s.hooks
}

// respond maps a hook state to 200, 202 while a cached read is pending, or
// 502 for upstream failures.
func respond[T any](c echo.Context, st query.State[T], body func(T, time.Time) any) error {
	switch st.Status {
	case query.StatusSuccess:
		return c.JSON(http.StatusOK, body(st.Data, st.UpdatedAt))
	case query.StatusPending:
		return c.JSON(http.StatusAccepted, pendingResponse{Status: st.Status.String()})
	case query.StatusDisabled:
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "query disabled"})
	default:
		return c.JSON(http.StatusBadGateway, errorResponse{Error: st.Err.Error()})
	}
}

func (s *Server) apiEvents(c echo.Context) error {
	addr, err := addressParam(c, "address")
	if err != nil {
		return err
	}
	st := s.hooksFor(c).Events(c.Request().Context(), addr)
	return respond(c, st, func(evs []model.Event, at time.Time) any {
		return eventsResponse{Events: evs, UpdatedAt: at}
	})
}

func (s *Server) apiAccounts(c echo.Context) error {
	addr, err := addressParam(c, "address")
	if err != nil {
		return err
	}
	st := s.hooksFor(c).Accounts(c.Request().Context(), addr)
	return respond(c, st, func(accounts []string, at time.Time) any {
		return accountsResponse{Accounts: accounts, UpdatedAt: at}
	})
}

func (s *Server) apiTransactions(c echo.Context) error {
	acct, err := addressParam(c, "account")
	if err != nil {
		return err
	}
	st := s.hooksFor(c).Transactions(c.Request().Context(), acct)
	return respond(c, st, func(txs []model.TransactionSummary, at time.Time) any {
		return transactionsResponse{Transactions: txs, UpdatedAt: at}
	})
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func (s *Server) healthz(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	names := make([]string, 0, len(s.cfg.HealthChecks))
	for name := range s.cfg.HealthChecks {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make([]string, len(names))
	var g errgroup.Group
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			if err := s.cfg.HealthChecks[name](ctx); err != nil {
				results[i] = err.Error()
				return err
			}
			results[i] = "ok"
			return nil
		})
	}
	failed := g.Wait() != nil

	resp := healthResponse{Status: "ok"}
	if len(names) > 0 {
		resp.Checks = make(map[string]string, len(names))
		for i, name := range names {
			resp.Checks[name] = results[i]
		}
	}
	if failed {
		resp.Status = "degraded"
		return c.JSON(http.StatusServiceUnavailable, resp)
	}
	return c.JSON(http.StatusOK, resp)
}
