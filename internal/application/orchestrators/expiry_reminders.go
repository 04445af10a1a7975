package orchestrators

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"time"

	emailAdapter "gymdesk/internal/adapters/email"
	"gymdesk/internal/application/projections"
)

// ExpiryRemindersDeps holds dependencies for SendExpiryReminders.
type ExpiryRemindersDeps struct {
	PaymentStore projections.ExpiringPaymentStore
	EmailSender  emailAdapter.Sender
	AdminEmail   string // Where the summary goes
	FromAddress  string
	ReplyTo      string
}

// ExecuteSendExpiryReminders emails the admin one summary of all members whose
// coverage lapses within the next seven days. Nothing is sent when the window
// is empty.
// PRE: EmailSender and AdminEmail are configured
// POST: At most one email sent; returns the number of members listed
func ExecuteSendExpiryReminders(ctx context.Context, deps ExpiryRemindersDeps, now time.Time) (int, error) {
	rows, err := projections.QueryGetExpiringMembers(ctx, projections.GetExpiringMembersDeps{
		PaymentStore: deps.PaymentStore,
	}, now)
	if err != nil {
		return 0, fmt.Errorf("failed to query expiring members: %w", err)
	}
	if len(rows) == 0 {
		slog.Debug("reminder_event", "event", "reminder_skipped", "reason", "no_expiring_members")
		return 0, nil
	}

	req := emailAdapter.SendRequest{
		To:      []string{deps.AdminEmail},
		From:    deps.FromAddress,
		Subject: fmt.Sprintf("%d membership(s) expiring within 7 days", len(rows)),
		HTML:    renderReminderBody(rows),
		ReplyTo: deps.ReplyTo,
	}

	result, err := deps.EmailSender.Send(ctx, req)
	if err != nil {
		return 0, fmt.Errorf("failed to send expiry reminder: %w", err)
	}

	slog.Info("reminder_event", "event", "reminder_sent",
		"member_count", len(rows), "message_id", result.MessageID)
	return len(rows), nil
}

// renderReminderBody builds the HTML summary table for the reminder email.
// Member fields are free text and get escaped before interpolation.
func renderReminderBody(rows []projections.ExpiringMemberRow) string {
	var b strings.Builder
	b.WriteString("<p>The following memberships expire within the next 7 days:</p>\n")
	b.WriteString("<table>\n<tr><th>Member</th><th>Contact</th><th>Expires</th><th>Days left</th></tr>\n")
	for _, row := range rows {
		fmt.Fprintf(&b, "<tr><td>%s %s</td><td>%s</td><td>%s</td><td>%d</td></tr>\n",
			html.EscapeString(row.FirstName), html.EscapeString(row.LastName),
			html.EscapeString(row.Contact),
			row.ExpiresAt.Format("2 January 2006"), row.DaysLeft)
	}
	b.WriteString("</table>\n")
	return b.String()
}

// StartReminderWorker starts a background goroutine that runs the expiry scan
// on the given interval. A same-day guard suppresses double sends when the
// interval is shorter than a day. Returns a cancel function.
// PRE: Context is valid, deps are initialized, interval > 0
// POST: Goroutine started; cancel stops it
func StartReminderWorker(ctx context.Context, deps ExpiryRemindersDeps, interval time.Duration) func() {
	ctx, cancel := context.WithCancel(ctx)

	go func() {
		var lastSentDay string

		scan := func() {
			now := time.Now()
			day := now.Format("2006-01-02")
			if day == lastSentDay {
				slog.Debug("reminder_event", "event", "reminder_skipped", "reason", "already_sent_today")
				return
			}
			sent, err := ExecuteSendExpiryReminders(ctx, deps, now)
			if err != nil {
				slog.Error("reminder_worker_error", "error", err)
				return
			}
			if sent > 0 {
				lastSentDay = day
			}
		}

		scan()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				scan()
			}
		}
	}()

	return cancel
}
