package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/go-errors/errors"
	"github.com/gorilla/websocket"
	"github.com/the-lightning-land/provisiond/provision"
)

const (
	websocketReadLimit    = 4096
	websocketWriteTimeout = 10 * time.Second
	websocketQueueSize    = 32
)

// WebsocketLink carries provisioning messages over a websocket, one text
// frame per message. It serves a single client at a time.
type WebsocketLink struct {
	log      Logger
	upgrader websocket.Upgrader
	inbound  chan []byte

	mu   sync.Mutex
	open bool
	name string
	conn *websocket.Conn
}

var _ provision.Link = (*WebsocketLink)(nil)
var _ http.Handler = (*WebsocketLink)(nil)

type WebsocketLinkConfig struct {
	Logger Logger
}

func NewWebsocketLink(config *WebsocketLinkConfig) *WebsocketLink {
	link := &WebsocketLink{
		inbound: make(chan []byte, websocketQueueSize),
	}

	if config.Logger != nil {
		link.log = config.Logger
	} else {
		link.log = noopLogger{}
	}

	return link
}

func (l *WebsocketLink) Open(name string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.open = true
	l.name = name

	l.log.Infof("Accepting provisioning clients for %v", name)

	return nil
}

func (l *WebsocketLink) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.open = false

	if l.conn == nil {
		return nil
	}

	conn := l.conn
	l.conn = nil

	err := conn.Close()
	if err != nil {
		return errors.Errorf("could not close websocket: %v", err)
	}

	return nil
}

func (l *WebsocketLink) IsConnected() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.conn != nil
}

func (l *WebsocketLink) Available() bool {
	return len(l.inbound) > 0
}

func (l *WebsocketLink) Read() ([]byte, error) {
	select {
	case msg := <-l.inbound:
		return msg, nil
	default:
		return nil, errors.New("no message available")
	}
}

func (l *WebsocketLink) Write(data []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.conn == nil {
		return errors.New("no client connected")
	}

	l.conn.SetWriteDeadline(time.Now().Add(websocketWriteTimeout))

	err := l.conn.WriteMessage(websocket.TextMessage, data)
	if err != nil {
		return errors.Errorf("could not write to websocket: %v", err)
	}

	return nil
}

func (l *WebsocketLink) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	l.mu.Lock()
	open, busy := l.open, l.conn != nil
	l.mu.Unlock()

	if !open {
		jsonResponse(l.log, w, &errorResponse{Error: "Not provisioning"}, http.StatusServiceUnavailable)
		return
	}

	if busy {
		jsonResponse(l.log, w, &errorResponse{Error: "Another client is connected"}, http.StatusConflict)
		return
	}

	c, err := l.upgrader.Upgrade(w, r, nil)
	if err != nil {
		l.log.Errorf("Could not upgrade connection: %v", err)
		return
	}

	l.mu.Lock()
	if l.conn != nil || !l.open {
		l.mu.Unlock()
		c.Close()
		return
	}
	l.conn = c
	l.mu.Unlock()

	l.drain()

	l.log.Infof("Provisioning client %v connected", r.RemoteAddr)

	go l.readPump(c)
}

// readPump queues inbound frames until the client goes away.
func (l *WebsocketLink) readPump(c *websocket.Conn) {
	defer func() {
		l.mu.Lock()
		if l.conn == c {
			l.conn = nil
		}
		l.mu.Unlock()

		c.Close()
	}()

	c.SetReadLimit(websocketReadLimit)

	for {
		kind, msg, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				l.log.Warnf("Unexpected websocket closure: %v", err)
			}
			return
		}

		if kind != websocket.TextMessage {
			continue
		}

		select {
		case l.inbound <- msg:
		default:
			l.log.Warnf("Dropping provisioning message, queue is full")
		}
	}
}

func (l *WebsocketLink) drain() {
	for {
		select {
		case <-l.inbound:
		default:
			return
		}
	}
}
