package ui

import (
	"fmt"

	"github.com/samber/lo"

	"isafeDashboard/internal/account"
	"isafeDashboard/internal/animation"
	"isafeDashboard/internal/events"
	"isafeDashboard/internal/model"
	"isafeDashboard/internal/query"
)

// Load is the shared loading/error flag a section renders first.
type Load struct {
	Pending  bool
	Disabled bool
	Error    string
}

func (l Load) Ready() bool {
	return !l.Pending && !l.Disabled && l.Error == ""
}

func loadOf[T any](st query.State[T]) Load {
	switch st.Status {
	case query.StatusPending:
		return Load{Pending: true}
	case query.StatusDisabled:
		return Load{Disabled: true}
	case query.StatusError:
		msg := "unknown error"
		if st.Err != nil {
			msg = st.Err.Error()
		}
		return Load{Error: msg}
	default:
		return Load{}
	}
}

// Page is the data every full page shares.
type Page struct {
	Title   string
	Network string
	Account string
	Active  string
}

func (p Page) NavLinks() []NavLink {
	if p.Account == "" {
		return nil
	}
	base := "/" + p.Account
	return []NavLink{
		{Label: "Overview", Href: base, Active: p.Active == "overview"},
		{Label: "Transactions", Href: base + "/transactions", Active: p.Active == "transactions"},
		{Label: "Settings", Href: base + "/settings", Active: p.Active == "settings"},
	}
}

type NavLink struct {
	Label  string
	Href   string
	Active bool
}

type MemberRow struct {
	Index       int
	Address     string
	Compact     string
	ExplorerURL string
	Weight      uint64
	Copied      bool
}

type MembersView struct {
	Load
	Account     string
	// Section is the fragment rendering the view, members or members-compact.
	Section     string
	Members     []MemberRow
	Count       int
	TotalWeight uint64
	ResetMs     int64
	Notice      string
}

// MemberCopy is the copy button of one member row.
type MemberCopy struct {
	Account string
	Section string
	Address string
	Copied  bool
}

func (v MembersView) CopyButton(row MemberRow) MemberCopy {
	return MemberCopy{Account: v.Account, Section: v.Section, Address: row.Address, Copied: row.Copied}
}

// ClipboardFailed is shown when the browser refuses a clipboard write.
const ClipboardFailed = "Could not copy to clipboard"

// BuildMembers maps the members hook to rows. copied is the address the
// session last copied, if still shown.
func BuildMembers(network, acct string, st query.State[[]model.Member], copied string, resetMs int64) MembersView {
	view := MembersView{Load: loadOf(st), Account: acct, ResetMs: resetMs}
	if !view.Ready() {
		return view
	}
	view.Members = lo.Map(st.Data, func(m model.Member, i int) MemberRow {
		return MemberRow{
			Index:       i + 1,
			Address:     m.Address,
			Compact:     CompactAddress(m.Address),
			ExplorerURL: ExplorerAddressURL(network, m.Address),
			Weight:      m.Weight,
			Copied:      copied != "" && copied == m.Address,
		}
	})
	view.Count = len(st.Data)
	view.TotalWeight = account.TotalWeight(st.Data)
	return view
}

type BalanceView struct {
	Load
	Total   string
	Objects int
}

func BuildBalance(st query.State[model.Balance]) BalanceView {
	view := BalanceView{Load: loadOf(st)}
	if view.Ready() {
		view.Total = FormatIOTA(st.Data.TotalBalance)
		view.Objects = st.Data.CoinObjectCount
	}
	return view
}

type ThresholdView struct {
	Load
	Threshold   uint64
	TotalWeight uint64
	Operable    bool
	Guardian    string
}

func BuildThreshold(st query.State[account.State]) ThresholdView {
	view := ThresholdView{Load: loadOf(st)}
	if view.Ready() {
		view.Threshold = st.Data.Threshold
		view.TotalWeight = st.Data.TotalWeight()
		view.Operable = st.Data.Operable()
		view.Guardian = st.Data.Guardian
	}
	return view
}

// ActivityRow is one decoded event in the account activity feed.
type ActivityRow struct {
	Label   string
	Detail  string
	When    string
	TxURL   string
	TxShort string
}

type ActivityView struct {
	Load
	Rows []ActivityRow
}

// BuildActivity lists events newest first.
func BuildActivity(network string, st query.State[[]model.Event]) ActivityView {
	view := ActivityView{Load: loadOf(st)}
	if !view.Ready() {
		return view
	}
	view.Rows = make([]ActivityRow, 0, len(st.Data))
	for i := len(st.Data) - 1; i >= 0; i-- {
		ev := st.Data[i]
		label, detail := DescribeEvent(ev.Data)
		view.Rows = append(view.Rows, ActivityRow{
			Label:   label,
			Detail:  detail,
			When:    FormatTime(ev.Timestamp),
			TxURL:   ExplorerTxURL(network, ev.FiredInTx),
			TxShort: ShortenAddress(ev.FiredInTx),
		})
	}
	return view
}

// DescribeEvent returns a title and a one-line summary for a payload.
func DescribeEvent(p events.Payload) (string, string) {
	switch data := p.(type) {
	case events.AccountCreated:
		return "Account created", fmt.Sprintf("%d members, threshold %d", len(data.Members), data.Threshold)
	case events.AccountRotated:
		return "Authenticator rotated", fmt.Sprintf("%s::%s", data.ModuleName, data.FunctionName)
	case events.MemberAdded:
		return "Member added", fmt.Sprintf("%s with weight %d", ShortenAddress(data.Member.Hex()), data.Weight)
	case events.MemberRemoved:
		return "Member removed", ShortenAddress(data.Member.Hex())
	case events.MemberWeightUpdated:
		return "Member weight updated", fmt.Sprintf("%s: %d → %d", ShortenAddress(data.Member.Hex()), data.OldWeight, data.NewWeight)
	case events.ThresholdChanged:
		return "Threshold changed", fmt.Sprintf("%d → %d", data.OldThreshold, data.NewThreshold)
	case events.GuardianChanged:
		if data.NewGuardian == nil {
			return "Guardian changed", "guardian cleared"
		}
		return "Guardian changed", ShortenAddress(data.NewGuardian.Hex())
	case events.TransactionProposed:
		return "Transaction proposed", "by " + ShortenAddress(data.Proposer.Hex())
	case events.TransactionApproved:
		return "Transaction approved", fmt.Sprintf("by %s, weight %d", ShortenAddress(data.Approver.Hex()), data.TotalApprovedWeight)
	case events.TransactionApprovalThresholdReached:
		return "Threshold reached", fmt.Sprintf("approved weight %d", data.TotalApprovedWeight)
	case events.TransactionApprovalThresholdLost:
		return "Threshold lost", fmt.Sprintf("approved weight %d", data.TotalApprovedWeight)
	case events.TransactionExecuted:
		return "Transaction executed", "by " + ShortenAddress(data.Executor.Hex())
	case events.TransactionRemoved:
		return "Transaction removed", ShortenAddress(data.TransactionDigest.String())
	default:
		return "Unknown event", fmt.Sprintf("%T", p)
	}
}

type TransactionRow struct {
	Digest      string
	DigestShort string
	Description string
	Proposer    string
	CreatedAt   string
	Status      string
	Approvals   uint64
	Threshold   uint64
	Met         bool
	ExplorerURL string
}

type TransactionsView struct {
	Load
	Rows []TransactionRow
}

// ExecutedTransactions filters summaries down to executed ones.
func ExecutedTransactions(txs []model.TransactionSummary) []model.TransactionSummary {
	return lo.Filter(txs, func(tx model.TransactionSummary, _ int) bool {
		return tx.Status == model.StatusExecuted
	})
}

// PendingTransactions returns proposals still collecting approvals.
func PendingTransactions(txs []model.TransactionSummary) []model.TransactionSummary {
	return lo.Filter(txs, func(tx model.TransactionSummary, _ int) bool {
		return tx.Status == model.StatusProposed || tx.Status == model.StatusApproved
	})
}

// Digests lists transaction digests in order.
func Digests(txs []model.TransactionSummary) []string {
	return lo.Map(txs, func(tx model.TransactionSummary, _ int) string { return tx.TransactionDigest })
}

// NoDetails is shown in place of a description when no tx service is
// configured.
const NoDetails = "-"

// BuildTransactions joins summaries with their tx-service details, which
// come back in the same order as txs.
func BuildTransactions(network string, txs query.State[[]model.TransactionSummary], details query.State[[]model.TransactionDetails]) TransactionsView {
	view := TransactionsView{Load: loadOf(txs)}
	if !view.Ready() {
		return view
	}
	detailLoad := loadOf(details)
	if detailLoad.Error != "" {
		view.Load = detailLoad
		return view
	}
	view.Rows = make([]TransactionRow, len(txs.Data))
	for i, tx := range txs.Data {
		row := TransactionRow{
			Digest:      tx.TransactionDigest,
			DigestShort: ShortenAddress(tx.TransactionDigest),
			Description: "Loading...",
			Proposer:    ShortenAddress(tx.ProposerAddress),
			CreatedAt:   FormatTimestamp(tx.CreatedAt),
			Status:      string(tx.Status),
			Approvals:   tx.CurrentApprovals,
			Threshold:   tx.Threshold,
			Met:         tx.ThresholdMet(),
			ExplorerURL: ExplorerTxURL(network, tx.TransactionDigest),
		}
		switch {
		case details.Status == query.StatusDisabled:
			row.Description = NoDetails
		case details.Status == query.StatusSuccess && i < len(details.Data):
			row.Description = details.Data[i].Description
			if row.Description == "" {
				row.Description = "No description"
			}
		}
		view.Rows[i] = row
	}
	return view
}

func (v TransactionsView) HistoryLabel() string {
	return HistoryLabel(len(v.Rows))
}

type AccountsView struct {
	Load
	Address  string
	Accounts []string
}

func BuildAccounts(address string, st query.State[[]string]) AccountsView {
	view := AccountsView{Load: loadOf(st), Address: address}
	if view.Ready() {
		view.Accounts = st.Data
	}
	return view
}

type OverviewView struct {
	Page
	Copied  bool
	ResetMs int64
	Notice  string
}

type SettingsView struct {
	Page
	Threshold     ThresholdView
	Members       MembersView
	Authenticator *account.Authenticator
	Creator       string
}

func BuildSettings(page Page, st query.State[account.State], members MembersView) SettingsView {
	view := SettingsView{Page: page, Threshold: BuildThreshold(st), Members: members}
	if st.Status == query.StatusSuccess {
		view.Authenticator = st.Data.Authenticator
		view.Creator = st.Data.Creator
	}
	return view
}

type Feature struct {
	Title       string
	Description string
}

type Testimonial struct {
	Quote  string
	Author string
	Role   string
}

// HomeView is the landing page with the weighted approval demo.
type HomeView struct {
	Page
	Features     []Feature
	Steps        []Feature
	Testimonials []Testimonial
	Scene        animation.Scene
	Frames       []animation.Frame
}

func BuildHome(page Page) HomeView {
	scene := animation.DemoScene()
	return HomeView{
		Page: page,
		Features: []Feature{
			{Title: "Dynamic Membership", Description: "Add or remove members and adjust their voting weights as your team evolves."},
			{Title: "Threshold Governance", Description: "Require a configurable share of total weight before any transaction runs."},
			{Title: "Transaction Workflow", Description: "Propose, approve and execute with every step recorded on chain."},
			{Title: "Full Audit Trail", Description: "Every membership change and approval is an event you can replay."},
		},
		Steps: []Feature{
			{Title: "Create", Description: "Pick members, weights and a threshold for the new account."},
			{Title: "Propose", Description: "Any member submits a transaction for the others to review."},
			{Title: "Approve & Execute", Description: "Once approvals reach the threshold, the transaction can execute."},
		},
		Testimonials: []Testimonial{
			{Quote: "Weighted approvals finally match how our treasury actually decides.", Author: "Alex R.", Role: "DAO treasurer"},
			{Quote: "The audit trail made our security review painless.", Author: "Priya K.", Role: "Protocol engineer"},
			{Quote: "Rotating members without moving funds is a huge win.", Author: "Marcus W.", Role: "Operations lead"},
		},
		Scene:  scene,
		Frames: scene.Frames(60),
	}
}

// AccountsPage lists the accounts an address is a member of.
type AccountsPage struct {
	Page
	Address string
}
