package events

import "sync"

// Channel decouples a slow listener from the build goroutine. Events are
// queued on a buffered channel and delivered in order by a single goroutine.
// Nothing is dropped: once the buffer is full, senders block.
type Channel struct {
	target Listener
	queue  chan func(Listener)
	done   chan struct{}
	once   sync.Once
}

// NewChannel starts delivering to target with a buffer of size events.
func NewChannel(target Listener, size int) *Channel {
	if size < 0 {
		size = 0
	}
	c := &Channel{
		target: target,
		queue:  make(chan func(Listener), size),
		done:   make(chan struct{}),
	}
	go c.loop()
	return c
}

func (c *Channel) loop() {
	defer close(c.done)
	for deliver := range c.queue {
		deliver(c.target)
	}
}

func (c *Channel) OnStatus(e StatusEvent) {
	c.queue <- func(l Listener) { l.OnStatus(e) }
}

func (c *Channel) OnLog(e LogEvent) {
	c.queue <- func(l Listener) { l.OnLog(e) }
}

func (c *Channel) OnBuildCompleted(e BuildCompleted) {
	c.queue <- func(l Listener) { l.OnBuildCompleted(e) }
}

// Close stops accepting events and waits until every queued event has been
// delivered. Sending after Close panics.
func (c *Channel) Close() {
	c.once.Do(func() { close(c.queue) })
	<-c.done
}
