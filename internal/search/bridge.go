package search

import (
	"context"
	"sync"
	"sync/atomic"
)

// Bridge adapts the Orchestrator to the host's message-passing contract:
// commands in on one channel, responses out on another, processed in
// issuance order. Abort is the one command handled out of band so it can
// reach a search already in flight.
type Bridge struct {
	orc       *Orchestrator
	commands  chan Command
	responses chan Response

	wg      sync.WaitGroup
	stopped atomic.Bool
}

// NewBridge wires a bridge around the orchestrator and starts its pump.
// The orchestrator's progress messages are forwarded as progress responses.
func NewBridge(orc *Orchestrator) *Bridge {
	b := &Bridge{
		orc:       orc,
		commands:  make(chan Command, 16),
		responses: make(chan Response, 16),
	}
	orc.notify = func(message string) {
		b.emit(Response{Type: ResponseProgress, Message: message})
	}
	b.wg.Add(1)
	go b.run()
	return b
}

// Send enqueues a command. Abort takes effect immediately, even while a
// search is running; everything else is processed in order. Commands sent
// after terminate are dropped.
func (b *Bridge) Send(cmd Command) {
	if b.stopped.Load() {
		return
	}
	if cmd.Type == CommandAbort {
		b.orc.Abort()
		return
	}
	b.commands <- cmd
}

// Responses returns the response stream. It is closed after terminate.
func (b *Bridge) Responses() <-chan Response {
	return b.responses
}

func (b *Bridge) run() {
	defer b.wg.Done()
	defer close(b.responses)

	for cmd := range b.commands {
		switch cmd.Type {
		case CommandInit:
			ready, err := b.orc.Init(context.Background(), cmd.Items)
			if err != nil {
				b.emit(Response{Type: ResponseReady, Degraded: true, Err: err.Error()})
				continue
			}
			b.emit(Response{Type: ResponseReady, Degraded: ready.Degraded, Err: ready.Err})

		case CommandSearch:
			res := b.orc.Search(context.Background(), Request{
				Query:     cmd.Query,
				Field:     cmd.Field,
				Threshold: cmd.Threshold,
			})
			b.emit(Response{Type: ResponseResult, Items: res.Items, Aborted: res.Aborted, Err: res.Err})

		case CommandTerminate:
			if err := b.orc.Terminate(); err != nil {
				b.orc.log.Printf("ERROR: terminate: %v", err)
			}
			// Do not close the commands channel: late senders must be
			// dropped, never panicked.
			b.stopped.Store(true)
			return

		default:
			b.emit(Response{Type: ResponseResult, Err: "unknown command: " + cmd.Type})
		}
	}
}

func (b *Bridge) emit(r Response) {
	// Drop rather than block if the host stops draining; the session must
	// never hang on a slow consumer.
	select {
	case b.responses <- r:
	default:
	}
}

// Close terminates the session and stops the pump.
func (b *Bridge) Close() {
	b.Send(Command{Type: CommandTerminate})
	b.wg.Wait()
}
