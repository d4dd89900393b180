package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/alejandrodlv/facelock/internal/facelock/store"
	"github.com/alejandrodlv/facelock/internal/facelock/types"
)

var (
	// ErrInvalidNotify marks a malformed decision notification.  Nothing is
	// mutated when it is returned.
	ErrInvalidNotify = errors.New("user_name and method are required")

	// ErrAuditAppend wraps a failed audit write.  The decision it annotates
	// still stands; callers must surface the error, not swallow it.
	ErrAuditAppend = errors.New("audit log append failed")
)

// Coordinator is the process boundary between the recognition agent, the
// polling actuator and operator tooling.  It holds no decision logic of its
// own: validate, append to the audit log, push a command when the decision
// was a grant, answer queries.
type Coordinator struct {
	audit   store.AuditLog
	ids     store.IdentityStore
	mailbox *Mailbox
	metrics *Metrics
	logger  *log.Logger
}

func NewCoordinator(audit store.AuditLog, ids store.IdentityStore, mailbox *Mailbox, metrics *Metrics, logger *log.Logger) *Coordinator {
	return &Coordinator{
		audit:   audit,
		ids:     ids,
		mailbox: mailbox,
		metrics: metrics,
		logger:  logger,
	}
}

// Notify ingests one access decision from the recognition agent.
//
// A command is queued only for a successful decision naming a known, active
// identity: the roster is re-checked here so that deactivating an identity
// takes effect immediately, even against an agent holding a stale match. An
// attempt that fails that check is recorded as a failure.
//
// An audit write failure is returned wrapped in ErrAuditAppend together
// with the response — the decision stands, the trail is best-effort, and
// the caller must log it loudly.
func (c *Coordinator) Notify(ctx context.Context, req types.NotifyRequest) (types.NotifyResponse, error) {
	userName := strings.TrimSpace(req.UserName)
	method := strings.TrimSpace(req.Method)

	if userName == "" || method == "" {
		return types.NotifyResponse{}, ErrInvalidNotify
	}
	if req.Confidence < 0 || req.Confidence > 1 {
		return types.NotifyResponse{}, fmt.Errorf("%w: confidence must be in [0,1]", ErrInvalidNotify)
	}

	granted := req.Success && !strings.EqualFold(userName, types.UnknownUser)
	if granted {
		rec, ok, err := c.ids.Get(ctx, userName)
		if err != nil {
			return types.NotifyResponse{}, err
		}
		if !ok || !rec.Active {
			granted = false
		}
	}

	outcome := "denied"
	if granted {
		outcome = "granted"
	}
	c.metrics.decision(method, outcome)

	attempt := store.AccessAttempt{
		UserName:   userName,
		Method:     method,
		Success:    granted,
		Confidence: req.Confidence,
		OccurredAt: time.Now().UTC(),
	}

	var auditErr error
	if err := c.audit.Append(ctx, attempt); err != nil {
		c.metrics.auditFailure()
		auditErr = fmt.Errorf("%w: %s %s: %v", ErrAuditAppend, userName, method, err)
	}

	if !granted {
		return types.NotifyResponse{
			Status:  "denied",
			Message: fmt.Sprintf("Access denied for %s", userName),
		}, auditErr
	}

	cmd := c.mailbox.Push(userName)
	c.logger.Printf("command queued id=%s %s", cmd.ID, cmd.Wire())

	return types.NotifyResponse{
		Status:        "success",
		Message:       fmt.Sprintf("Access granted for %s", userName),
		CommandQueued: cmd.Wire(),
	}, auditErr
}

// PollCommand hands the actuator the oldest pending command, or NoCommand
// when the mailbox is empty.  The read is destructive and never blocks.
func (c *Coordinator) PollCommand() string {
	cmd, ok := c.mailbox.Poll()
	if !ok {
		return NoCommand
	}
	c.logger.Printf("command delivered id=%s %s", cmd.ID, cmd.Wire())
	return cmd.Wire()
}

// Confirm records the actuator's report about a previously polled command.
func (c *Coordinator) Confirm(req types.ConfirmRequest) types.ConfirmResponse {
	conf := c.mailbox.Confirm(req.Command, req.Status)
	c.logger.Printf("actuator confirmed %q status=%s", conf.Command, conf.Status)
	return types.ConfirmResponse{
		Status:    "confirmed",
		Timestamp: conf.ReceivedAt.Format(time.RFC3339Nano),
	}
}

// Status reports the operator-facing snapshot: active roster size, pending
// commands, and the ten most recent access attempts.
func (c *Coordinator) Status(ctx context.Context) (types.StatusResponse, error) {
	totalUsers, err := c.ids.CountActive(ctx)
	if err != nil {
		return types.StatusResponse{}, err
	}

	recent, err := c.audit.Recent(ctx, 10)
	if err != nil {
		return types.StatusResponse{}, err
	}

	entries := make([]types.AccessLogEntry, 0, len(recent))
	for _, rec := range recent {
		entries = append(entries, types.AccessLogEntry{
			User:       rec.UserName,
			Method:     rec.Method,
			Success:    rec.Success,
			Confidence: rec.Confidence,
			Timestamp:  rec.OccurredAt.Format(time.RFC3339Nano),
		})
	}

	return types.StatusResponse{
		SystemStatus:    "online",
		TotalUsers:      totalUsers,
		PendingCommands: c.mailbox.Pending(),
		RecentAccess:    entries,
		Timestamp:       time.Now().UTC().Format(time.RFC3339Nano),
	}, nil
}

// Users lists the full roster, active or not.
func (c *Coordinator) Users(ctx context.Context) ([]types.UserInfo, error) {
	recs, err := c.ids.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]types.UserInfo, 0, len(recs))
	for _, rec := range recs {
		out = append(out, types.UserInfo{
			ID:        rec.ID,
			Name:      rec.Name,
			Age:       rec.Age,
			CreatedAt: rec.CreatedAt.Format(time.RFC3339Nano),
			IsActive:  rec.Active,
		})
	}
	return out, nil
}

// DeleteUser hard-removes an identity.  Returns store.ErrNotFound when the
// name is not enrolled.
func (c *Coordinator) DeleteUser(ctx context.Context, name string) error {
	if err := c.ids.Delete(ctx, name); err != nil {
		return err
	}
	c.logger.Printf("user %q deleted", name)
	return nil
}

// SetUserActive toggles the logical-delete flag on an identity.
func (c *Coordinator) SetUserActive(ctx context.Context, name string, active bool) error {
	if err := c.ids.SetActive(ctx, name, active); err != nil {
		return err
	}
	c.logger.Printf("user %q active=%v", name, active)
	return nil
}

// PurgeLogs bulk-deletes the audit log.  Administrative operation; the only
// way audit records are ever removed.
func (c *Coordinator) PurgeLogs(ctx context.Context) (int64, error) {
	removed, err := c.audit.PurgeAll(ctx)
	if err != nil {
		return 0, err
	}
	c.logger.Printf("purged %d access log records", removed)
	return removed, nil
}
