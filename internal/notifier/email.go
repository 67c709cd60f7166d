package notifier

import (
	"context"
	"fmt"
	"net/smtp"
	"time"

	"github.com/taskpulse/backend/domain"
	"github.com/taskpulse/backend/usecase"
)

// EmailConfig configures SMTP delivery. Recipient resolution per user is the
// profile service's concern; this prototype delivers to a single inbox and
// names the user in the body.
type EmailConfig struct {
	Addr string
	From string
	To   string
}

type emailNotifier struct {
	cfg  EmailConfig
	send func(addr, from string, to []string, msg []byte) error
}

// NewEmail returns an SMTP-backed channel.
func NewEmail(cfg EmailConfig) usecase.Notifier {
	return &emailNotifier{
		cfg: cfg,
		send: func(addr, from string, to []string, msg []byte) error {
			return smtp.SendMail(addr, nil, from, to, msg)
		},
	}
}

func (n *emailNotifier) Name() string { return "email" }

func (n *emailNotifier) Send(ctx context.Context, payload domain.ReminderPayload, message string) domain.ChannelResult {
	if n.cfg.Addr == "" || n.cfg.To == "" {
		return errResult("email channel not configured")
	}

	body := fmt.Sprintf("To: %s\r\nSubject: %s\r\n\r\nTask %s for user %s is due.\r\n",
		n.cfg.To, message, payload.TaskID, payload.UserID)

	if err := n.send(n.cfg.Addr, n.cfg.From, []string{n.cfg.To}, []byte(body)); err != nil {
		return errResult(err.Error())
	}
	return domain.ChannelResult{
		Status:    domain.ChannelSent,
		Timestamp: time.Now(),
	}
}

func errResult(message string) domain.ChannelResult {
	return domain.ChannelResult{
		Status:    domain.ChannelError,
		Timestamp: time.Now(),
		Error:     message,
	}
}
