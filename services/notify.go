package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/teammatch-backend/errs"
	"github.com/rpupo63/teammatch-backend/models"
)

// EventKind names a committed match transition.
type EventKind string

const (
	EventLiked     EventKind = "liked"
	EventApproved  EventKind = "approved"
	EventWithdrawn EventKind = "withdrawn"
	EventRejected  EventKind = "rejected"
)

// Event describes a match transition after it has been persisted.
type Event struct {
	Kind        EventKind
	CandidateID uuid.UUID
	Project     *models.Project
}

// Notifier tells members about match transitions. Errors are for logging only; a
// failed notification never undoes a transition.
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// NopNotifier drops every event.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, Event) error { return nil }

// AsyncNotifier hands events to next on a background goroutine so request handling
// does not wait on outbound delivery.
type AsyncNotifier struct {
	next    Notifier
	timeout time.Duration
	logger  zerolog.Logger
}

func NewAsyncNotifier(next Notifier, timeout time.Duration) AsyncNotifier {
	return AsyncNotifier{
		next:    next,
		timeout: timeout,
		logger:  log.With().Str("service", "notifier").Logger(),
	}
}

func (n AsyncNotifier) Notify(ctx context.Context, event Event) error {
	ctx = context.WithoutCancel(ctx)
	go func() {
		ctx, cancel := context.WithTimeout(ctx, n.timeout)
		defer cancel()
		if err := n.next.Notify(ctx, event); err != nil {
			n.logger.Error().Err(err).Str("event", string(event.Kind)).Msg("notification failed")
		}
	}()
	return nil
}

// ResendEmailRequest represents the request payload for Resend API
type ResendEmailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Html    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
}

// ResendEmailResponse represents the response from Resend API
type ResendEmailResponse struct {
	ID string `json:"id"`
}

// ResendErrorResponse represents an error response from Resend API
type ResendErrorResponse struct {
	Message string `json:"message"`
}

const resendEndpoint = "https://api.resend.com/emails"

// EmailNotifier mails the other party of a transition through the Resend API.
type EmailNotifier struct {
	users    UserStore
	apiKey   string
	from     string
	endpoint string
	client   *http.Client
	logger   zerolog.Logger
}

func NewEmailNotifier(users UserStore, apiKey, from string) *EmailNotifier {
	return &EmailNotifier{
		users:    users,
		apiKey:   apiKey,
		from:     from,
		endpoint: resendEndpoint,
		client:   &http.Client{Timeout: 15 * time.Second},
		logger:   log.With().Str("service", "emailNotifier").Logger(),
	}
}

// Notify resolves both parties and mails the one who did not act: the founder hears
// about likes and withdrawals, the candidate about approvals and rejections.
func (n *EmailNotifier) Notify(ctx context.Context, event Event) error {
	if event.Project == nil {
		return fmt.Errorf("event %s has no project", event.Kind)
	}

	candidate, err := n.users.FindByID(ctx, event.CandidateID)
	if err != nil {
		return fmt.Errorf("resolve candidate: %w", err)
	}
	founder, err := n.users.FindByID(ctx, event.Project.FounderID)
	if err != nil {
		return fmt.Errorf("resolve founder: %w", err)
	}

	title := html.EscapeString(event.Project.Title)
	var to, subject, body string
	switch event.Kind {
	case EventLiked:
		to = founder.Email
		subject = fmt.Sprintf("%s is interested in %s", candidate.Nickname, event.Project.Title)
		body = fmt.Sprintf("<p><b>%s</b> (%s, %s) wants to join <b>%s</b>.</p>",
			html.EscapeString(candidate.Nickname), html.EscapeString(candidate.Level), html.EscapeString(candidate.Language), title)
	case EventWithdrawn:
		to = founder.Email
		subject = fmt.Sprintf("%s withdrew from %s", candidate.Nickname, event.Project.Title)
		body = fmt.Sprintf("<p><b>%s</b> is no longer interested in <b>%s</b>.</p>", html.EscapeString(candidate.Nickname), title)
	case EventApproved:
		to = candidate.Email
		subject = fmt.Sprintf("You're in: %s", event.Project.Title)
		body = fmt.Sprintf("<p>The founder of <b>%s</b> approved you. Reach them at %s.</p>", title, html.EscapeString(founder.Email))
	case EventRejected:
		to = candidate.Email
		subject = fmt.Sprintf("Update on %s", event.Project.Title)
		body = fmt.Sprintf("<p>The founder of <b>%s</b> did not take your request forward.</p>", title)
	default:
		return fmt.Errorf("unknown event kind %q", event.Kind)
	}

	return n.send(ctx, subject, body, []string{to})
}

func (n *EmailNotifier) send(ctx context.Context, subject, body string, recipients []string) error {
	payload := ResendEmailRequest{
		From:    n.from,
		To:      recipients,
		Subject: subject,
		Html:    body,
	}

	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewBuffer(jsonPayload))
	if err != nil {
		return fmt.Errorf("failed to create Resend API request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+n.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return errs.NewServiceUnreachableError("resend", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read Resend API response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errorResp ResendErrorResponse
		if err := json.Unmarshal(bodyBytes, &errorResp); err == nil && errorResp.Message != "" {
			return errs.NewServiceRejectedError("resend", resp.StatusCode, errorResp.Message)
		}
		return errs.NewServiceRejectedError("resend", resp.StatusCode, string(bodyBytes))
	}

	var emailResponse ResendEmailResponse
	if err := json.Unmarshal(bodyBytes, &emailResponse); err != nil {
		n.logger.Warn().Err(err).Msg("Failed to parse Resend email response, but email was sent")
	} else {
		n.logger.Info().Str("emailId", emailResponse.ID).Msg("Successfully sent email via Resend")
	}
	return nil
}
