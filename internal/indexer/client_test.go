package indexer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"isafeDashboard/internal/bcs"
	"isafeDashboard/internal/events"
	"isafeDashboard/internal/model"
)

const testAccount = "0x000000000000000000000000000000000000000000000000000000000000acc0"

func newTestServer(t *testing.T, handler http.HandlerFunc) (*Client, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", srv.Client(), nil), &calls
}

func writeJSON(t *testing.T, w http.ResponseWriter, v interface{}) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("encode response: %v", err)
	}
}

func sampleRawEvents() []model.RawEvent {
	account := bcs.MustParseAddress(testAccount)
	alice := bcs.MustParseAddress("0xa11ce")
	created := model.Event{
		AccountAddress: testAccount,
		FiredInTx:      "tx1",
		Data: events.AccountCreated{
			Account:   account,
			Creator:   alice,
			Members:   []bcs.Address{alice},
			Weights:   []uint64{1},
			Threshold: 1,
		},
		Timestamp: time.UnixMilli(1700000000000),
	}
	added := model.Event{
		AccountAddress: testAccount,
		FiredInTx:      "tx2",
		Data:           events.MemberAdded{Account: account, Member: bcs.MustParseAddress("0xb0b"), Weight: 2},
		Timestamp:      time.UnixMilli(1700000001000),
	}
	return []model.RawEvent{model.EncodeEvent(1, created), model.EncodeEvent(2, added)}
}

func TestGetAccountEvents(t *testing.T) {
	client, calls := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/events/"+testAccount {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.RawQuery != "" {
			t.Errorf("unpaged call should not send a query, got %q", r.URL.RawQuery)
		}
		writeJSON(t, w, model.EventsResponse{Events: sampleRawEvents()})
	})

	got, err := client.GetAccountEvents(context.Background(), testAccount)
	if err != nil {
		t.Fatalf("get events: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 events, got %d", len(got))
	}
	if got[0].EventType != events.TagAccountCreated || got[1].EventType != events.TagMemberAdded {
		t.Fatalf("unexpected order: %s, %s", got[0].EventType, got[1].EventType)
	}
	if got[1].FiredInTx != "tx2" {
		t.Fatalf("unexpected digest: %s", got[1].FiredInTx)
	}
	if atomic.LoadInt32(calls) != 1 {
		t.Fatalf("expected exactly one request, got %d", *calls)
	}
}

func TestGetAccountEventsEmpty(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"events":[]}`))
	})

	got, err := client.GetAccountEvents(context.Background(), testAccount)
	if err != nil {
		t.Fatalf("get events: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}

func TestGetAccountEventsUnknownType(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		raw := sampleRawEvents()
		raw[1].ID = 77
		raw[1].EventType = "AccountFrozenEvent"
		writeJSON(t, w, model.EventsResponse{Events: raw})
	})

	got, err := client.GetAccountEvents(context.Background(), testAccount)
	if !errors.Is(err, events.ErrUnknownEventType) {
		t.Fatalf("expected unknown event type, got %v", err)
	}
	if got != nil {
		t.Fatalf("expected no partial result, got %d events", len(got))
	}
	if !strings.Contains(err.Error(), "AccountFrozenEvent") || !strings.Contains(err.Error(), "77") {
		t.Fatalf("expected tag and id in error, got %q", err.Error())
	}
}

func TestGetAccountEventsPage(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("cursor") != "c1" || r.URL.Query().Get("limit") != "50" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		writeJSON(t, w, model.EventsResponse{Events: sampleRawEvents()[:1], NextCursor: "c2"})
	})

	page, err := client.GetAccountEventsPage(context.Background(), testAccount, PageRequest{Cursor: "c1", Limit: 50})
	if err != nil {
		t.Fatalf("get page: %v", err)
	}
	if len(page.Events) != 1 || page.NextCursor != "c2" {
		t.Fatalf("unexpected page: %+v", page)
	}
	if want := strconv.FormatInt(sampleRawEvents()[0].ID, 10); page.LastCursor != want {
		t.Fatalf("expected last cursor %s, got %q", want, page.LastCursor)
	}
}

func TestGetAccountEventsPageEmptyKeepsCursor(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, model.EventsResponse{})
	})

	page, err := client.GetAccountEventsPage(context.Background(), testAccount, PageRequest{Cursor: "41"})
	if err != nil {
		t.Fatalf("get page: %v", err)
	}
	if len(page.Events) != 0 || page.NextCursor != "" || page.LastCursor != "41" {
		t.Fatalf("unexpected page: %+v", page)
	}
}

func TestGetAccountsForAddress(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/accounts/0xa11ce" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(`{"accounts":["0x1","0x2"]}`))
	})

	got, err := client.GetAccountsForAddress(context.Background(), "0xa11ce")
	if err != nil {
		t.Fatalf("get accounts: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"0x1", "0x2"}) {
		t.Fatalf("unexpected accounts: %v", got)
	}
}

func TestGetAccountTransactions(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"transactions":[{"transactionDigest":"d1","proposerAddress":"0x1","status":"Approved","currentApprovals":5,"threshold":5,"totalAccountWeight":9,"approvedBy":["0x1"],"createdAt":1}]}`))
	})

	got, err := client.GetAccountTransactions(context.Background(), testAccount)
	if err != nil {
		t.Fatalf("get transactions: %v", err)
	}
	if len(got) != 1 || !got[0].ThresholdMet() {
		t.Fatalf("unexpected transactions: %+v", got)
	}
	for _, tx := range got {
		if err := tx.Validate(); err != nil {
			t.Fatalf("fixture should be well-formed: %v", err)
		}
	}
}

func TestClientErrors(t *testing.T) {
	t.Run("status", func(t *testing.T) {
		client, calls := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusServiceUnavailable)
		})
		_, err := client.GetAccountsForAddress(context.Background(), "0x1")
		var statusErr *StatusError
		if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusServiceUnavailable {
			t.Fatalf("expected StatusError, got %v", err)
		}
		if atomic.LoadInt32(calls) != 1 {
			t.Fatalf("expected no retry, got %d calls", *calls)
		}
	})

	t.Run("non-json", func(t *testing.T) {
		client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("<html>oops</html>"))
		})
		if _, err := client.GetAccountTransactions(context.Background(), "0x1"); err == nil {
			t.Fatalf("expected decode error")
		}
	})

	t.Run("transport", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()
		client := NewClient(srv.URL, nil, nil)
		if _, err := client.GetAccountEvents(context.Background(), "0x1"); err == nil {
			t.Fatalf("expected transport error")
		}
	})
}

func TestParseAddresses(t *testing.T) {
	got, err := ParseAddresses([]string{" 0x1 ", "", "0xacc0"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(got) != 2 || got[1].Hex() != testAccount {
		t.Fatalf("unexpected addresses: %v", got)
	}
	if _, err := ParseAddresses([]string{"nope"}); err == nil {
		t.Fatalf("expected error")
	}
}
