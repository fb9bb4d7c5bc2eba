package core

import (
	"context"
	"errors"
	"time"

	"tagarena/internal/dao"
	"tagarena/internal/game"
	"tagarena/internal/mq"
	"tagarena/internal/protocol"

	"go.uber.org/zap"
)

const (
	inboxSize = 256
	saveQueue = 1024

	defaultPersistTimeout = 2 * time.Second
)

// Conn is the outbound half of one client channel.
type Conn interface {
	Send([]byte) error
	Close() error
}

// Client is a connected channel. ID is assigned by the server; ProfileKey
// names the durable progression record.
type Client struct {
	ID         string
	ProfileKey string
	Conn       Conn
}

type join struct {
	client *Client
	prog   dao.Progression
}

type leave struct {
	client *Client
}

type intent struct {
	id     string
	intent protocol.Intent
}

type persist struct {
	id string
}

type save struct {
	key  string
	prog dao.Progression
}

type HubOptions struct {
	ChatMaxLen     int
	PersistTimeout time.Duration
}

// Hub is the single owner of world state. Every admission, removal, move and
// chat runs to completion on the Run goroutine before the next one starts.
type Hub struct {
	store   *game.Store
	gateway dao.Gateway
	pub     mq.Publisher
	log     *zap.SugaredLogger

	chatMaxLen     int
	persistTimeout time.Duration

	inbox   chan any
	clients map[string]*Client

	saves     chan save
	saverDone chan struct{}

	quit chan struct{}
	done chan struct{}
}

func NewHub(store *game.Store, gateway dao.Gateway, pub mq.Publisher, log *zap.SugaredLogger, opts HubOptions) *Hub {
	if opts.ChatMaxLen <= 0 {
		opts.ChatMaxLen = protocol.DefaultChatMaxLen
	}
	if opts.PersistTimeout <= 0 {
		opts.PersistTimeout = defaultPersistTimeout
	}
	if pub == nil {
		pub = mq.NopPublisher{}
	}
	return &Hub{
		store:          store,
		gateway:        gateway,
		pub:            pub,
		log:            log,
		chatMaxLen:     opts.ChatMaxLen,
		persistTimeout: opts.PersistTimeout,
		inbox:          make(chan any, inboxSize),
		clients:        make(map[string]*Client),
		saves:          make(chan save, saveQueue),
		saverDone:      make(chan struct{}),
		quit:           make(chan struct{}),
		done:           make(chan struct{}),
	}
}

func (h *Hub) Store() *game.Store {
	return h.store
}

func (h *Hub) Run() {
	go h.runSaver()
	defer close(h.done)

	for {
		select {
		case <-h.quit:
			return
		case cmd := <-h.inbox:
			h.handleCommand(cmd)
		}
	}
}

// Stop ends Run and closes every client channel. Players still connected are
// saved and get a session end event. It waits for queued saves to finish and
// must only be called after Run has started.
func (h *Hub) Stop() {
	close(h.quit)
	<-h.done
	for id, c := range h.clients {
		_ = c.Conn.Close()
		delete(h.clients, id)
		if p, ok := h.store.Remove(id); ok {
			h.saves <- save{key: p.ProfileKey, prog: p.Progression()}
			h.pub.Publish(mq.Event{Type: mq.EventSessionEnd, PlayerID: id, ProfileKey: p.ProfileKey})
		}
	}
	close(h.saves)
	<-h.saverDone
}

// Hydrate loads progression for key. Failures fall back to the default
// progression so admission always succeeds.
func (h *Hub) Hydrate(ctx context.Context, key string) dao.Progression {
	ctx, cancel := context.WithTimeout(ctx, h.persistTimeout)
	defer cancel()

	prog, err := h.gateway.GetUser(ctx, key)
	if err != nil {
		h.log.Warnw("load progression failed, using default", "key", key, "error", err)
		return dao.DefaultProgression()
	}
	return prog
}

func (h *Hub) Join(c *Client, prog dao.Progression) {
	h.enqueue(join{client: c, prog: prog})
}

// Leave reports that c's channel closed. It only removes the player if c is
// still the registered channel for that id.
func (h *Hub) Leave(c *Client) {
	h.enqueue(leave{client: c})
}

func (h *Hub) Dispatch(id string, in protocol.Intent) {
	h.enqueue(intent{id: id, intent: in})
}

// Persist hands the player's current progression to the gateway.
func (h *Hub) Persist(id string) {
	h.enqueue(persist{id: id})
}

// HandleFrame parses one inbound frame and dispatches it. Invalid frames are
// dropped.
func (h *Hub) HandleFrame(id string, frame []byte) {
	in, err := protocol.ParseIntent(frame, h.chatMaxLen)
	if err != nil {
		if errors.Is(err, protocol.ErrUnknownEvent) {
			h.log.Debugw("ignoring unknown event", "id", id, "error", err)
		} else {
			h.log.Debugw("dropping malformed event", "id", id, "error", err)
		}
		return
	}
	h.Dispatch(id, in)
}

func (h *Hub) enqueue(cmd any) {
	select {
	case h.inbox <- cmd:
	case <-h.quit:
	}
}

func (h *Hub) handleCommand(cmd any) {
	switch c := cmd.(type) {
	case join:
		h.handleJoin(c.client, c.prog)
	case leave:
		h.handleLeave(c.client)
	case intent:
		if _, ok := h.clients[c.id]; !ok {
			return
		}
		switch in := c.intent.(type) {
		case protocol.Move:
			h.handleMove(c.id, in)
		case protocol.Chat:
			h.handleChat(c.id, in)
		}
	case persist:
		if p, ok := h.store.Get(c.id); ok {
			h.queueSave(p)
		}
	case func():
		// runs on the owner goroutine, after everything queued before it
		c()
	}
}

func (h *Hub) handleJoin(c *Client, prog dao.Progression) {
	if _, exists := h.clients[c.ID]; exists {
		h.log.Warnw("duplicate connection id, closing", "id", c.ID)
		_ = c.Conn.Close()
		return
	}
	if c.ProfileKey == "" {
		c.ProfileKey = c.ID
	}

	p := h.store.AdmitAs(c.ID, c.ProfileKey, prog)
	h.clients[c.ID] = c
	h.log.Infow("player joined", "id", c.ID, "x", p.Position.X, "y", p.Position.Y, "isIt", p.IsIt)

	h.sendTo(c, protocol.EventInit, protocol.Init{ID: c.ID, Players: h.store.All()})
	h.broadcast(protocol.EventPlayerJoined, p, c.ID)

	h.pub.Publish(mq.Event{Type: mq.EventSessionStart, PlayerID: c.ID, ProfileKey: c.ProfileKey})
}

func (h *Hub) handleLeave(c *Client) {
	_ = c.Conn.Close()
	id := c.ID
	if cur, ok := h.clients[id]; !ok || cur != c {
		return
	}
	delete(h.clients, id)

	p, removed := h.store.Remove(id)
	if !removed {
		return
	}
	h.log.Infow("player left", "id", id, "wasIt", p.IsIt)

	h.broadcast(protocol.EventPlayerLeft, id, "")
	h.queueSave(p)
	h.pub.Publish(mq.Event{Type: mq.EventSessionEnd, PlayerID: id, ProfileKey: p.ProfileKey})
}

func (h *Hub) handleMove(id string, m protocol.Move) {
	res := h.store.ApplyMove(id, m.X, m.Y)
	if !res.Applied {
		return
	}

	if res.Tag.Transferred() {
		h.log.Infow("tag transferred", "from", res.Tag.From, "to", res.Tag.To)
		h.broadcast(protocol.EventTagTransfer, protocol.TagTransfer{From: res.Tag.From, To: res.Tag.To}, "")
		h.pub.Publish(mq.Event{Type: mq.EventTag, From: res.Tag.From, To: res.Tag.To})
	}
	h.broadcast(protocol.EventPlayerMoved, protocol.PlayerMoved{ID: id, Position: res.Position}, id)
}

func (h *Hub) handleChat(id string, c protocol.Chat) {
	if _, ok := h.store.HandleChat(id, c.Emoji); !ok {
		return
	}
	h.broadcast(protocol.EventPlayerChat, protocol.PlayerChat{ID: id, Emoji: c.Emoji}, "")
}

func (h *Hub) sendTo(c *Client, event string, payload any) {
	b, err := protocol.Encode(event, payload)
	if err != nil {
		h.log.Errorw("encode failed", "event", event, "error", err)
		return
	}
	h.deliver(c, b)
}

// broadcast sends to every client except the one named by except ("" for none).
func (h *Hub) broadcast(event string, payload any, except string) {
	b, err := protocol.Encode(event, payload)
	if err != nil {
		h.log.Errorw("encode failed", "event", event, "error", err)
		return
	}
	for id, c := range h.clients {
		if id == except {
			continue
		}
		h.deliver(c, b)
	}
}

// deliver closes channels that cannot keep up; their read side then reports
// the disconnect through Leave.
func (h *Hub) deliver(c *Client, b []byte) {
	if err := c.Conn.Send(b); err != nil {
		h.log.Warnw("send failed, closing client", "id", c.ID, "error", err)
		_ = c.Conn.Close()
	}
}

// queueSave never blocks the hub. When the saver is backed up the save is
// dropped and logged.
func (h *Hub) queueSave(p game.Player) {
	select {
	case h.saves <- save{key: p.ProfileKey, prog: p.Progression()}:
	default:
		h.log.Warnw("save queue full, dropping", "id", p.ID, "key", p.ProfileKey)
	}
}

func (h *Hub) runSaver() {
	defer close(h.saverDone)
	for s := range h.saves {
		ctx, cancel := context.WithTimeout(context.Background(), h.persistTimeout)
		if err := h.gateway.SaveUser(ctx, s.key, s.prog); err != nil {
			h.log.Warnw("save progression failed", "key", s.key, "error", err)
		}
		cancel()
	}
}
