package mail

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"fintrack/internal/core"
)

const noticeDateLayout = "02/01/2006"

// TransactionNotice carries everything the confirmation template needs.
type TransactionNotice struct {
	Recipient     string
	OwnerID       string
	TransactionID string
	Amount        core.Money
	Title         string
	Date          core.Date
}

// Params renders the notice into relay template parameters.
func (n TransactionNotice) Params() map[string]string {
	owner := n.OwnerID
	if owner == "" || owner == core.DefaultOwnerID {
		owner = "User"
	}
	return map[string]string{
		"to_email":       n.Recipient,
		"user_id":        owner,
		"transaction_id": n.TransactionID,
		"amount":         n.Amount.String(),
		"title":          n.Title,
		"date":           n.Date.Format(noticeDateLayout),
	}
}

var quoteCard = template.Must(template.New("quote").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<style>
body { font-family: 'Inter', system-ui, -apple-system, sans-serif; background-color: #0f172a; margin: 0; padding: 0; color: #f8fafc; }
.wrapper { padding: 60px 20px; }
.container { max-width: 500px; margin: 0 auto; background: linear-gradient(135deg, #1e293b 0%, #0f172a 100%); border-radius: 32px; overflow: hidden; box-shadow: 0 25px 50px -12px rgba(0, 0, 0, 0.5); border: 1px solid rgba(255,255,255,0.1); }
.content { padding: 50px 40px; text-align: center; }
.icon { font-size: 40px; margin-bottom: 20px; }
.quote-text { font-size: 24px; line-height: 1.4; font-weight: 700; margin-bottom: 25px; color: #38bdf8; }
.quote-author { font-size: 14px; text-transform: uppercase; letter-spacing: 3px; color: #94a3b8; font-weight: 600; }
.hr { width: 40px; height: 3px; background: #38bdf8; margin: 30px auto; border-radius: 2px; }
.cta { display: inline-block; padding: 14px 30px; background: #38bdf8; color: #0f172a; text-decoration: none; border-radius: 99px; font-weight: 800; font-size: 14px; margin-top: 10px; }
.footer { margin-top: 30px; text-align: center; color: #64748b; font-size: 12px; }
</style>
</head>
<body>
<div class="wrapper">
<div class="container">
<div class="content">
<div class="icon">💎</div>
<div class="quote-text">"{{.Text}}"</div>
<div class="hr"></div>
<div class="quote-author">&mdash; {{.Author}}</div>
<div style="margin-top: 40px;">
<a href="#" class="cta">TRACK YOUR PROGRESS</a>
</div>
</div>
</div>
<div class="footer">
<p>&copy; 2024 Money Manager. Built for your success.</p>
</div>
</div>
</body>
</html>
`))

// MotivationParams renders a quote into relay template parameters.
func MotivationParams(recipient string, q Quote) (map[string]string, error) {
	var body strings.Builder
	if err := quoteCard.Execute(&body, q); err != nil {
		return nil, fmt.Errorf("render quote card: %w", err)
	}
	return map[string]string{
		"to_email": recipient,
		"subject":  "🚀 Ready for a Productive Day?",
		"message":  body.String(),
	}, nil
}

// Summary aggregates the totals sent in the financial summary mail.
type Summary struct {
	Income       core.Money
	Expense      core.Money
	Balance      core.Money
	HealthScore  int
	Transactions int
	GeneratedAt  time.Time
}

// NewSummary derives a Summary from the full transaction list.
func NewSummary(txs []core.Transaction, now time.Time) Summary {
	balance := core.TotalBalance(txs)
	if balance < 0 {
		balance = 0
	}
	return Summary{
		Income:       core.Money{Cents: core.TotalIncome(txs)},
		Expense:      core.Money{Cents: core.TotalExpense(txs)},
		Balance:      core.Money{Cents: balance},
		HealthScore:  core.HealthScore(txs),
		Transactions: len(txs),
		GeneratedAt:  now,
	}
}

// SummaryParams renders a summary into relay template parameters.
func SummaryParams(recipient string, s Summary) map[string]string {
	return map[string]string{
		"to_email":     recipient,
		"subject":      "Your Financial Summary",
		"income":       s.Income.String(),
		"expense":      s.Expense.String(),
		"balance":      s.Balance.String(),
		"health_score": fmt.Sprintf("%d", s.HealthScore),
		"transactions": fmt.Sprintf("%d", s.Transactions),
		"generated_at": s.GeneratedAt.Format(noticeDateLayout),
	}
}
