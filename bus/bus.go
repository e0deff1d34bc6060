// Package bus is a small in-process pub/sub message bus. Topics are string
// paths; subscriptions live in a trie so publish cost is proportional to the
// topic depth. Retained messages are replayed to late subscribers.
//
// Wildcards: "+" matches exactly one topic element, a trailing "#" matches
// any remainder (including none).
package bus

import (
	"sync"
)

// Topic is a path of string tokens, e.g. T("led", "control", "static").
type Topic []string

// T builds a topic from its elements.
func T(elems ...string) Topic { return Topic(elems) }

const (
	// WildcardOne matches exactly one topic element.
	WildcardOne = "+"
	// WildcardAll matches the whole remaining topic. Only valid as the last
	// element of a subscription topic.
	WildcardAll = "#"
)

type Message struct {
	Topic    Topic
	Payload  any
	Retained bool
	// ReplyTo, when set, names the topic the handler should answer on.
	ReplyTo Topic
}

type Subscription struct {
	topic Topic
	ch    chan *Message
	conn  *Connection // owning connection
}

func (s *Subscription) Topic() Topic             { return s.topic }
func (s *Subscription) Channel() <-chan *Message { return s.ch }
func (s *Subscription) Unsubscribe()             { s.conn.Unsubscribe(s) }

type node struct {
	children map[string]*node
	subs     []*Subscription
	// subs whose topic ended in "#" at this node
	restSubs []*Subscription
	retained *Message
}

type Bus struct {
	mu   sync.RWMutex
	root *node
	qLen int
}

// NewBus creates a new bus with the given subscription queue length.
func NewBus(queueLen int) *Bus {
	if queueLen <= 0 {
		queueLen = 8 // safe default
	}
	return &Bus{
		root: &node{},
		qLen: queueLen,
	}
}

// addSubscription inserts a subscription into the trie.
func (b *Bus) addSubscription(topic Topic, sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := b.root
	rest := false
	for i, tok := range topic {
		if tok == WildcardAll && i == len(topic)-1 {
			rest = true
			break
		}
		if n.children == nil {
			n.children = make(map[string]*node)
		}
		child, ok := n.children[tok]
		if !ok {
			child = &node{}
			n.children[tok] = child
		}
		n = child
	}

	if rest {
		n.restSubs = append(n.restSubs, sub)
	} else {
		n.subs = append(n.subs, sub)
	}

	// Deliver the retained message if the terminal node holds one.
	if !rest && n.retained != nil {
		deliver(sub, n.retained)
	}
}

// deliver is non-blocking: when the queue is full the oldest message is
// dropped to make room.
func deliver(sub *Subscription, msg *Message) {
	select {
	case sub.ch <- msg:
	default:
		select {
		case <-sub.ch:
		default:
		}
		sub.ch <- msg
	}
}

// Publish delivers a message to all matching subscribers of its topic.
func (b *Bus) Publish(msg *Message) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.match(b.root, msg.Topic, msg)

	if !msg.Retained {
		return
	}

	// Store or clear the retained message at the exact topic node.
	n := b.root
	for _, tok := range msg.Topic {
		if n.children == nil {
			n.children = make(map[string]*node)
		}
		child, ok := n.children[tok]
		if !ok {
			child = &node{}
			n.children[tok] = child
		}
		n = child
	}
	if msg.Payload == nil {
		n.retained = nil
	} else {
		n.retained = msg
	}
}

// match walks the trie, following both the literal element and "+".
func (b *Bus) match(n *node, rest Topic, msg *Message) {
	for _, sub := range n.restSubs {
		deliver(sub, msg)
	}
	if len(rest) == 0 {
		for _, sub := range n.subs {
			deliver(sub, msg)
		}
		return
	}
	if n.children == nil {
		return
	}
	if child, ok := n.children[rest[0]]; ok {
		b.match(child, rest[1:], msg)
	}
	if child, ok := n.children[WildcardOne]; ok {
		b.match(child, rest[1:], msg)
	}
}

// unsubscribe removes a subscription from the trie and prunes empty nodes.
func (b *Bus) unsubscribe(topic Topic, sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := b.root
	var stack []*node
	var keys []string
	rest := false
	for i, tok := range topic {
		if tok == WildcardAll && i == len(topic)-1 {
			rest = true
			break
		}
		if n.children == nil {
			return
		}
		child, ok := n.children[tok]
		if !ok {
			return
		}
		stack = append(stack, n)
		keys = append(keys, tok)
		n = child
	}

	remove := func(subs []*Subscription) []*Subscription {
		for i, s := range subs {
			if s == sub {
				return append(subs[:i], subs[i+1:]...)
			}
		}
		return subs
	}
	if rest {
		n.restSubs = remove(n.restSubs)
	} else {
		n.subs = remove(n.subs)
	}

	for i := len(stack) - 1; i >= 0; i-- {
		parent := stack[i]
		child := parent.children[keys[i]]
		if len(child.subs) == 0 && len(child.restSubs) == 0 &&
			len(child.children) == 0 && child.retained == nil {
			delete(parent.children, keys[i])
		} else {
			break
		}
	}
}

// -----------------------------------------------------------------------------
// Connection
// -----------------------------------------------------------------------------

type Connection struct {
	bus  *Bus
	subs []*Subscription
	mu   sync.Mutex
	id   string // placeholder for future identity/auth
}

// NewConnection creates a new connection bound to this bus.
func (b *Bus) NewConnection(id string) *Connection {
	return &Connection{
		bus: b,
		id:  id,
	}
}

// NewMessage is a convenience constructor.
func (c *Connection) NewMessage(topic Topic, payload any, retained bool) *Message {
	return &Message{Topic: topic, Payload: payload, Retained: retained}
}

// Publish sends a message via the bus.
func (c *Connection) Publish(msg *Message) {
	c.bus.Publish(msg)
}

// Subscribe registers a subscription owned by this connection.
func (c *Connection) Subscribe(topic Topic) *Subscription {
	sub := &Subscription{
		topic: topic,
		ch:    make(chan *Message, c.bus.qLen),
		conn:  c,
	}
	c.bus.addSubscription(topic, sub)
	c.mu.Lock()
	c.subs = append(c.subs, sub)
	c.mu.Unlock()
	return sub
}

// Unsubscribe removes a subscription owned by this connection.
func (c *Connection) Unsubscribe(sub *Subscription) {
	c.bus.unsubscribe(sub.topic, sub)
	c.mu.Lock()
	for i, s := range c.subs {
		if s == sub {
			c.subs = append(c.subs[:i], c.subs[i+1:]...)
			break
		}
	}
	c.mu.Unlock()
	close(sub.ch)
}

// Disconnect closes all subscriptions and clears them.
func (c *Connection) Disconnect() {
	c.mu.Lock()
	subs := c.subs
	c.subs = nil
	c.mu.Unlock()

	for _, sub := range subs {
		c.bus.unsubscribe(sub.topic, sub)
		close(sub.ch)
	}
}
