package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"
)

var passwordChangedHTML = template.Must(template.New("password_changed").Parse(`<p>Hello,</p>
<p>The password for your {{.AppName}} account was changed on {{.At}}.</p>
<p>If you did not make this change, reset your password and contact support right away.</p>`))

const passwordChangedText = `Hello,

The password for your %s account was changed on %s.

If you did not make this change, reset your password and contact support right away.
`

// Notifier composes account notices and hands them to a Sender.
type Notifier struct {
	sender  Sender
	appName string
}

// NewNotifier creates a notifier that signs messages as appName.
func NewNotifier(sender Sender, appName string) *Notifier {
	return &Notifier{sender: sender, appName: appName}
}

// PasswordChanged tells to that their password changed at at.
func (n *Notifier) PasswordChanged(ctx context.Context, to string, at time.Time) error {
	when := at.UTC().Format("January 2, 2006 at 15:04 MST")

	var html bytes.Buffer
	err := passwordChangedHTML.Execute(&html, struct {
		AppName string
		At      string
	}{n.appName, when})
	if err != nil {
		return fmt.Errorf("failed to render password change notice: %w", err)
	}

	return n.sender.Send(ctx, &Email{
		To:       []string{to},
		Subject:  "Your " + n.appName + " password was changed",
		TextBody: fmt.Sprintf(passwordChangedText, n.appName, when),
		HTMLBody: html.String(),
	})
}
