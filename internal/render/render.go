package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"isafeDashboard/internal/account"
	"isafeDashboard/internal/model"
	"isafeDashboard/internal/ui"
)

var (
	headerStyle   = color.New(color.Bold, color.FgHiWhite)
	addressStyle  = color.New(color.FgWhite)
	timeStyle     = color.New(color.Faint)
	pendingStyle  = color.New(color.FgYellow)
	approvedStyle = color.New(color.FgCyan)
	executedStyle = color.New(color.FgGreen)
	rejectedStyle = color.New(color.FgRed)
)

// Renderer writes command results as tables or JSON.
type Renderer struct {
	out   io.Writer
	json  bool
	color bool
}

func New(out io.Writer, format string, useColor bool) *Renderer {
	return &Renderer{out: out, json: format == "json", color: useColor}
}

func (r *Renderer) paint(c *color.Color, s string) string {
	if !r.color {
		return s
	}
	return c.Sprint(s)
}

func (r *Renderer) writeJSON(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (r *Renderer) table(header table.Row, rows []table.Row) {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleLight)
	t.Style().Options.DrawBorder = false
	t.Style().Options.SeparateColumns = false
	t.Style().Format.Header = text.FormatDefault
	if r.color {
		for i, cell := range header {
			header[i] = headerStyle.Sprint(cell)
		}
	}
	t.AppendHeader(header)
	t.AppendRows(rows)
	t.Render()
}

// Events lists an account's history, oldest first.
func (r *Renderer) Events(evs []model.Event) error {
	if r.json {
		return r.writeJSON(evs)
	}
	if len(evs) == 0 {
		fmt.Fprintln(r.out, "No events found")
		return nil
	}
	rows := make([]table.Row, 0, len(evs))
	for i, ev := range evs {
		label, detail := ui.DescribeEvent(ev.Data)
		rows = append(rows, table.Row{
			i + 1,
			r.paint(timeStyle, ui.FormatTime(ev.Timestamp)),
			label,
			detail,
			ui.CompactAddress(ev.FiredInTx),
		})
	}
	r.table(table.Row{"#", "Time", "Event", "Detail", "Tx"}, rows)
	fmt.Fprintln(r.out, ui.HistoryLabel(len(evs)))
	return nil
}

// Accounts lists the accounts an address belongs to.
func (r *Renderer) Accounts(address string, accounts []string) error {
	if r.json {
		return r.writeJSON(model.AccountsResponse{Accounts: accounts})
	}
	if len(accounts) == 0 {
		fmt.Fprintf(r.out, "No accounts found for %s\n", ui.ShortenAddress(address))
		return nil
	}
	rows := make([]table.Row, 0, len(accounts))
	for i, acct := range accounts {
		rows = append(rows, table.Row{i + 1, r.paint(addressStyle, acct)})
	}
	r.table(table.Row{"#", "Account"}, rows)
	return nil
}

func (r *Renderer) status(s model.TransactionStatus) string {
	switch s {
	case model.StatusProposed:
		return r.paint(pendingStyle, string(s))
	case model.StatusApproved:
		return r.paint(approvedStyle, string(s))
	case model.StatusExecuted:
		return r.paint(executedStyle, string(s))
	case model.StatusRejected:
		return r.paint(rejectedStyle, string(s))
	default:
		return string(s)
	}
}

// Transactions lists proposals with their approval progress. details may be
// nil when the tx service is not configured.
func (r *Renderer) Transactions(txs []model.TransactionSummary, details map[string]model.TransactionDetails) error {
	if r.json {
		return r.writeJSON(model.TransactionsResponse{Transactions: txs})
	}
	if len(txs) == 0 {
		fmt.Fprintln(r.out, "No transactions found")
		return nil
	}
	rows := make([]table.Row, 0, len(txs))
	for _, tx := range txs {
		description := ui.NoDetails
		if d, ok := details[tx.TransactionDigest]; ok {
			description = d.Description
			if description == "" {
				description = "No description"
			}
		}
		rows = append(rows, table.Row{
			ui.CompactAddress(tx.TransactionDigest),
			r.status(tx.Status),
			fmt.Sprintf("%d/%d", tx.CurrentApprovals, tx.Threshold),
			ui.ShortenAddress(tx.ProposerAddress),
			r.paint(timeStyle, ui.FormatTimestamp(tx.CreatedAt)),
			description,
		})
	}
	r.table(table.Row{"Digest", "Status", "Approvals", "Proposer", "Created", "Description"}, rows)
	fmt.Fprintln(r.out, ui.HistoryLabel(len(txs)))
	return nil
}

// Members lists the signers of st with their running weight total.
func (r *Renderer) Members(st account.State) error {
	if r.json {
		return r.writeJSON(st)
	}
	if len(st.Members) == 0 {
		fmt.Fprintln(r.out, "No members found")
		return nil
	}
	sums := account.PrefixSums(st.Members)
	rows := make([]table.Row, 0, len(st.Members))
	for i, m := range st.Members {
		rows = append(rows, table.Row{
			r.paint(addressStyle, m.Address),
			strconv.FormatUint(m.Weight, 10),
			strconv.FormatUint(sums[i], 10),
		})
	}
	r.table(table.Row{"Member", "Weight", "Cumulative"}, rows)
	fmt.Fprintf(r.out, "Threshold: %d/%d\n", st.Threshold, st.TotalWeight())
	if !st.Operable() {
		fmt.Fprintln(r.out, r.paint(rejectedStyle, "Threshold exceeds total member weight"))
	}
	if st.Guardian != "" {
		fmt.Fprintf(r.out, "Guardian: %s\n", st.Guardian)
	}
	return nil
}
