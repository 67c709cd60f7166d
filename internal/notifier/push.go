package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/taskpulse/backend/domain"
	"github.com/taskpulse/backend/usecase"
)

// PushConfig configures delivery to an external push gateway.
type PushConfig struct {
	GatewayURL string
	Timeout    time.Duration
}

type pushNotifier struct {
	cfg    PushConfig
	client *fasthttp.Client
}

// NewPush returns a channel that POSTs reminder payloads to a push gateway.
func NewPush(cfg PushConfig) usecase.Notifier {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &pushNotifier{
		cfg: cfg,
		client: &fasthttp.Client{
			ReadTimeout:  cfg.Timeout,
			WriteTimeout: cfg.Timeout,
		},
	}
}

func (n *pushNotifier) Name() string { return "push" }

func (n *pushNotifier) Send(ctx context.Context, payload domain.ReminderPayload, message string) domain.ChannelResult {
	if n.cfg.GatewayURL == "" {
		return errResult("push channel not configured")
	}

	body, err := json.Marshal(map[string]string{
		"user_id": payload.UserID,
		"task_id": payload.TaskID,
		"title":   payload.TaskTitle,
		"message": message,
	})
	if err != nil {
		return errResult(err.Error())
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(n.cfg.GatewayURL)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(body)

	if err := n.client.DoTimeout(req, resp, n.cfg.Timeout); err != nil {
		return errResult(err.Error())
	}
	if resp.StatusCode() >= fasthttp.StatusBadRequest {
		return errResult(fmt.Sprintf("gateway returned status %d", resp.StatusCode()))
	}
	return domain.ChannelResult{
		Status:    domain.ChannelSent,
		Timestamp: time.Now(),
	}
}
