package service

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// NoCommand is the sentinel the actuator receives when the mailbox is empty.
const NoCommand = "NONE"

// Command is one pending instruction for the actuator.  The ID exists only
// to correlate confirmations and log lines; the actuator sees the wire form.
type Command struct {
	ID       string
	Action   string
	User     string
	QueuedAt time.Time
}

// Wire returns the string the actuator executes, e.g. "OPEN:alejandro".
func (c Command) Wire() string {
	return fmt.Sprintf("%s:%s", c.Action, c.User)
}

// Confirmation records the actuator's report about a polled command.
type Confirmation struct {
	Command    string
	Status     string
	ReceivedAt time.Time
}

// Mailbox is the single-queue relay between the coordinator and the polling
// actuator.  Commands are delivered FIFO, one per poll, and are gone once
// polled.  There is no deduplication and no peek.
//
// Commands have no persistence: anything unpolled when the process stops is
// lost.  Pending() and the queued/polled counters exist so that loss is at
// least visible.
type Mailbox struct {
	mu      sync.Mutex
	queue   []Command
	metrics *Metrics
}

func NewMailbox(m *Metrics) *Mailbox {
	return &Mailbox{metrics: m}
}

// Push appends an OPEN command for user to the tail of the queue.
func (b *Mailbox) Push(user string) Command {
	cmd := Command{
		ID:       uuid.NewString(),
		Action:   "OPEN",
		User:     user,
		QueuedAt: time.Now().UTC(),
	}

	b.mu.Lock()
	b.queue = append(b.queue, cmd)
	n := len(b.queue)
	b.mu.Unlock()

	b.metrics.commandQueued(n)
	return cmd
}

// Poll removes and returns the head command.  ok=false means the queue was
// empty and the caller should hand the actuator NoCommand.  Poll never
// blocks.
func (b *Mailbox) Poll() (Command, bool) {
	b.mu.Lock()
	if len(b.queue) == 0 {
		b.mu.Unlock()
		b.metrics.pollEmpty()
		return Command{}, false
	}
	cmd := b.queue[0]
	b.queue = b.queue[1:]
	n := len(b.queue)
	b.mu.Unlock()

	b.metrics.commandPolled(n)
	return cmd, true
}

// Pending returns the number of undelivered commands.
func (b *Mailbox) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.queue)
}

// Confirm records the actuator's report of applying (or failing to apply) a
// previously polled command.  Observability only: a failed command is not
// re-enqueued.
func (b *Mailbox) Confirm(command, status string) Confirmation {
	b.metrics.commandConfirmed(status)
	return Confirmation{
		Command:    command,
		Status:     status,
		ReceivedAt: time.Now().UTC(),
	}
}
