// Package email sends budget alert notifications over SMTP.
package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/wneessen/go-mail"
)

// AlertLevel classifies how urgent a budget alert is.
type AlertLevel string

const (
	LevelWarning  AlertLevel = "warning"  // 80% of the monthly budget used
	LevelExceeded AlertLevel = "exceeded" // spending is over the budget
	LevelUnusual  AlertLevel = "unusual"  // statistically unusual expenses detected
)

// BudgetAlert is the rendered content of one alert email.
type BudgetAlert struct {
	Level           AlertLevel
	Month           string
	Spent           float64
	Budget          float64
	PercentUsed     float64
	UnusualExpenses []string
	Recommendations []string
}

type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

type Mailer struct {
	client *mail.Client
	from   string
}

func NewMailer(cfg Config) (*Mailer, error) {
	client, err := mail.NewClient(cfg.Host,
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.User),
		mail.WithPassword(cfg.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return nil, fmt.Errorf("create SMTP client: %w", err)
	}
	return &Mailer{client: client, from: cfg.From}, nil
}

// SendBudgetAlert renders and delivers one alert email.
func (m *Mailer) SendBudgetAlert(ctx context.Context, to string, alert BudgetAlert) error {
	body, err := renderAlert(alert)
	if err != nil {
		return err
	}

	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("set sender: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("set recipient: %w", err)
	}
	msg.Subject(alertSubject(alert))
	msg.SetBodyString(mail.TypeTextHTML, body)

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send alert email: %w", err)
	}
	return nil
}

func alertSubject(alert BudgetAlert) string {
	switch alert.Level {
	case LevelExceeded:
		return fmt.Sprintf("Budget exceeded: $%.2f of $%.2f spent in %s", alert.Spent, alert.Budget, alert.Month)
	case LevelUnusual:
		return fmt.Sprintf("Unusual spending detected in %s", alert.Month)
	default:
		return fmt.Sprintf("Budget alert: %.0f%% of your monthly budget used", alert.PercentUsed)
	}
}

var alertTemplate = template.Must(template.New("alert").Parse(`<html>
<body style="font-family: sans-serif; color: #222;">
  <h2>{{if eq .Level "exceeded"}}You went over budget{{else if eq .Level "unusual"}}Unusual spending detected{{else}}Budget check-in{{end}}</h2>
  <p>Here is where your spending stands for <strong>{{.Month}}</strong>:</p>
  <table cellpadding="6">
    <tr><td>Spent so far</td><td><strong>${{printf "%.2f" .Spent}}</strong></td></tr>
    <tr><td>Monthly budget</td><td>${{printf "%.2f" .Budget}}</td></tr>
    <tr><td>Budget used</td><td>{{printf "%.0f" .PercentUsed}}%</td></tr>
  </table>
{{if .UnusualExpenses}}
  <h3>Expenses that stood out</h3>
  <ul>
{{range .UnusualExpenses}}    <li>{{.}}</li>
{{end}}  </ul>
{{end}}
{{if .Recommendations}}
  <h3>Suggestions</h3>
  <ul>
{{range .Recommendations}}    <li>{{.}}</li>
{{end}}  </ul>
{{end}}
  <p style="color: #888; font-size: 12px;">You receive this email because budget alerts are enabled in your settings.</p>
</body>
</html>`))

func renderAlert(alert BudgetAlert) (string, error) {
	var buf bytes.Buffer
	if err := alertTemplate.Execute(&buf, alert); err != nil {
		return "", fmt.Errorf("render alert template: %w", err)
	}
	return buf.String(), nil
}
