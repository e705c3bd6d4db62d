package transport

import (
	"net"
	"sync"
	"testing"

	"github.com/vsslink/vsslink-go/pkg/signal"
	"github.com/vsslink/vsslink-go/pkg/wire"
)

// testBroker is a minimal in-process broker speaking the vsslink wire
// protocol, used to exercise the real transport end to end.
type testBroker struct {
	t        *testing.T
	listener net.Listener

	mu        sync.Mutex
	values    map[valueKey]string
	subs      map[uint32]subKey
	nextSubID uint32
	conns     []net.Conn
	framers   map[net.Conn]*Framer
}

type valueKey struct {
	path  string
	field signal.Field
}

type subKey struct {
	path  string
	field signal.Field
	conn  net.Conn
}

func newTestBroker(t *testing.T) *testBroker {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	b := &testBroker{
		t:        t,
		listener: l,
		values:   make(map[valueKey]string),
		subs:     make(map[uint32]subKey),
		framers:  make(map[net.Conn]*Framer),
	}
	go b.acceptLoop()
	t.Cleanup(b.stop)
	return b
}

func (b *testBroker) addr() string {
	return b.listener.Addr().String()
}

func (b *testBroker) stop() {
	b.listener.Close()
	b.mu.Lock()
	conns := b.conns
	b.conns = nil
	b.mu.Unlock()
	for _, c := range conns {
		c.Close()
	}
}

// dropConnections closes every client connection without stopping the
// listener, simulating a broker restart.
func (b *testBroker) dropConnections() {
	b.mu.Lock()
	conns := b.conns
	b.conns = nil
	b.subs = make(map[uint32]subKey)
	b.mu.Unlock()
	for _, c := range conns {
		c.Close()
	}
}

// endSubscription sends an end-of-stream notification for path/field.
func (b *testBroker) endSubscription(path string, field signal.Field) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, sub := range b.subs {
		if sub.path == path && sub.field == field {
			data, err := wire.EncodeNotification(&wire.Notification{SubscriptionID: id, End: true})
			if err != nil {
				b.t.Errorf("encode end notification: %v", err)
				return
			}
			_ = b.framers[sub.conn].WriteFrame(data)
			delete(b.subs, id)
		}
	}
}

func (b *testBroker) acceptLoop() {
	for {
		conn, err := b.listener.Accept()
		if err != nil {
			return
		}
		framer := NewFramer(conn)
		b.mu.Lock()
		b.conns = append(b.conns, conn)
		b.framers[conn] = framer
		b.mu.Unlock()
		go b.serve(conn, framer)
	}
}

func (b *testBroker) serve(conn net.Conn, framer *Framer) {
	defer conn.Close()
	for {
		payload, err := framer.ReadFrame()
		if err != nil {
			return
		}
		req, err := wire.DecodeRequest(payload)
		if err != nil {
			continue
		}
		resp := b.handle(conn, req)
		data, err := wire.EncodeResponse(resp)
		if err != nil {
			b.t.Errorf("encode response: %v", err)
			return
		}
		if err := framer.WriteFrame(data); err != nil {
			return
		}
		// Notifications follow the Set response, matching broker order.
		if req.Operation == wire.OpSet && resp.IsSuccess() {
			b.notify(req.Path, req.Value, req.Field)
		}
	}
}

func (b *testBroker) handle(conn net.Conn, req *wire.Request) *wire.Response {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch req.Operation {
	case wire.OpGet:
		field := signal.FieldValue
		if req.View == signal.ViewTarget {
			field = signal.FieldActuatorTarget
		}
		v, ok := b.values[valueKey{req.Path, field}]
		if !ok {
			return &wire.Response{MessageID: req.MessageID, Status: wire.StatusUnknownPath, Detail: "no such entry"}
		}
		return &wire.Response{MessageID: req.MessageID, Value: v}

	case wire.OpSet:
		b.values[valueKey{req.Path, req.Field}] = req.Value
		return &wire.Response{MessageID: req.MessageID}

	case wire.OpSubscribe:
		b.nextSubID++
		b.subs[b.nextSubID] = subKey{req.Path, req.Field, conn}
		return &wire.Response{MessageID: req.MessageID, SubscriptionID: b.nextSubID}

	case wire.OpInfo:
		return &wire.Response{MessageID: req.MessageID, ServerName: "testbroker", ServerVersion: "0.0.1"}

	default:
		return &wire.Response{MessageID: req.MessageID, Status: wire.StatusInternal}
	}
}

func (b *testBroker) notify(path, value string, field signal.Field) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, sub := range b.subs {
		if sub.path != path || sub.field != field {
			continue
		}
		data, err := wire.EncodeNotification(&wire.Notification{
			SubscriptionID: id,
			Path:           path,
			Value:          value,
			Field:          field,
		})
		if err != nil {
			b.t.Errorf("encode notification: %v", err)
			return
		}
		_ = b.framers[sub.conn].WriteFrame(data)
	}
}
