package server

import (
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"isafeDashboard/internal/query"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// liveUpdates pushes cache invalidations for one account so the page reloads
// its sections. While connected it also invalidates the account's reads every
// RefreshInterval.
func (s *Server) liveUpdates(c echo.Context) error {
	acct, err := addressParam(c, "account")
	if err != nil {
		return err
	}
	conn, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade has already written the error response.
		s.logger.Debug("websocket upgrade failed", zap.Error(err))
		return nil
	}
	defer conn.Close()

	ctx := c.Request().Context()
	updates, cancel := s.hooks.Cache().Subscribe(query.AccountKeys(acct)...)
	defer cancel()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	var refresh <-chan time.Time
	if s.cfg.RefreshInterval > 0 {
		t := time.NewTicker(s.cfg.RefreshInterval)
		defer t.Stop()
		refresh = t.C
	}

	logger := s.logger.With(zap.String("account", acct))
	logger.Debug("websocket connected")
	defer logger.Debug("websocket closed")

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-closed:
			return nil
		case <-refresh:
			if err := s.hooks.Refresh(ctx, acct); err != nil {
				logger.Warn("refresh account reads", zap.Error(err))
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return nil
			}
		case update := <-updates:
			// Fetch completions are caused by the page itself reloading;
			// forwarding them would loop.
			if !update.Invalidated {
				continue
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(update); err != nil {
				return nil
			}
		}
	}
}
