package engine

import "sync"

// CommandType distinguishes battle commands.
type CommandType int

const (
	// CommandCast casts a skill of User on Targets.
	CommandCast CommandType = iota + 1
	// CommandTick ticks the effects and shields of Entity.
	CommandTick
	// CommandItem uses Item from User on Target.
	CommandItem
)

func (t CommandType) String() string {
	switch t {
	case CommandCast:
		return "cast"
	case CommandTick:
		return "tick"
	case CommandItem:
		return "item"
	default:
		return "unknown"
	}
}

// Command is one step of turn resolution.
type Command struct {
	Type     CommandType
	User     string
	Skill    string
	Targets  []string
	Entity   string
	Item     string
	Target   string
	Quantity int
}

// commandQueue is a FIFO of commands with a signal channel so the Run loop
// can wait on it alongside context cancellation.
type commandQueue struct {
	mu       sync.Mutex
	commands []Command
	closed   bool
	signal   chan struct{} // buffered, size 1
}

func newCommandQueue() *commandQueue {
	return &commandQueue{
		commands: make([]Command, 0, 16),
		signal:   make(chan struct{}, 1),
	}
}

// Enqueue adds a command to the back of the queue.
// Returns false if the queue is closed.
func (q *commandQueue) Enqueue(c Command) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.commands = append(q.commands, c)

	// Buffer of 1 coalesces signals.
	select {
	case q.signal <- struct{}{}:
	default:
	}
	return true
}

// TryDequeue removes the front command without blocking.
func (q *commandQueue) TryDequeue() (Command, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.commands) == 0 {
		return Command{}, false
	}
	c := q.commands[0]
	q.commands[0] = Command{}
	if len(q.commands) == 1 {
		q.commands = q.commands[:0]
	} else {
		q.commands = q.commands[1:]
	}
	return c, true
}

// Wait returns a channel that signals when commands may be available.
// It is closed when the queue closes.
func (q *commandQueue) Wait() <-chan struct{} {
	return q.signal
}

func (q *commandQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.commands)
}

// Close stops accepting commands and wakes waiters.
func (q *commandQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.signal)
}
