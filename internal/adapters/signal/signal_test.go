package signal

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/mkalra/peercall/internal/app"
	"github.com/mkalra/peercall/internal/app/orch"
	"github.com/mkalra/peercall/internal/auth"
)

func newSignalServer(t *testing.T, opts Options) (*httptest.Server, *Controller) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctl := NewController(&orch.Orchestrator{
		Registry: app.NewRegistry(),
		Rooms:    app.NewRooms(),
	}, opts)
	r := gin.New()
	r.GET("/ws", ctl.HandleSignal)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, ctl
}

func dial(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws" + query
	c, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func send(t *testing.T, c *websocket.Conn, event string, data any) {
	t.Helper()
	b, err := json.Marshal(map[string]any{"event": event, "data": data})
	if err != nil {
		t.Fatalf("marshal %s: %v", event, err)
	}
	if err := c.WriteMessage(websocket.TextMessage, b); err != nil {
		t.Fatalf("write %s: %v", event, err)
	}
}

func recv(t *testing.T, c *websocket.Conn) envelope {
	t.Helper()
	_ = c.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, b, err := c.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var env envelope
	if err := json.Unmarshal(b, &env); err != nil {
		t.Fatalf("unmarshal frame %q: %v", b, err)
	}
	return env
}

func recvEvent(t *testing.T, c *websocket.Conn, want string) envelope {
	t.Helper()
	env := recv(t, c)
	if env.Event != want {
		t.Fatalf("received event %q; want %q", env.Event, want)
	}
	return env
}

// joinPair joins 111 and 222 into the same room and returns the two
// sockets plus 222's connection id, which 111 learned from the
// user:joined broadcast.
func joinPair(t *testing.T, srv *httptest.Server) (c1, c2 *websocket.Conn, id2 string) {
	t.Helper()
	c1 = dial(t, srv, "")
	send(t, c1, "room:join", map[string]any{"phoneNo": "111", "room": "R1"})
	recvEvent(t, c1, "room:join")

	c2 = dial(t, srv, "")
	send(t, c2, "room:join", map[string]any{"phoneNo": "222", "room": "R1"})
	recvEvent(t, c2, "room:join")

	env := recvEvent(t, c1, "user:joined")
	var joined struct {
		PhoneNo string `json:"phoneNo"`
		ID      string `json:"id"`
	}
	if err := json.Unmarshal(env.Data, &joined); err != nil {
		t.Fatalf("unmarshal user:joined: %v", err)
	}
	if joined.PhoneNo != "222" || joined.ID == "" {
		t.Fatalf("user:joined = %+v; want phoneNo 222 and an id", joined)
	}
	return c1, c2, joined.ID
}

func TestJoinEchoesOriginalPayload(t *testing.T) {
	srv, _ := newSignalServer(t, Options{})
	c1 := dial(t, srv, "")

	send(t, c1, "room:join", map[string]any{"phoneNo": "111", "room": "R1"})
	env := recvEvent(t, c1, "room:join")

	var echo struct {
		PhoneNo string `json:"phoneNo"`
		Room    string `json:"room"`
	}
	if err := json.Unmarshal(env.Data, &echo); err != nil {
		t.Fatalf("unmarshal echo: %v", err)
	}
	if echo.PhoneNo != "111" || echo.Room != "R1" {
		t.Fatalf("echo = %+v; want {111 R1}", echo)
	}
}

func TestJoinBroadcastsToExistingMembersOnly(t *testing.T) {
	srv, _ := newSignalServer(t, Options{})
	joinPair(t, srv)
	// joinPair already asserts: c1 sees user:joined for 222, both saw
	// their own echo first, and 222's echo was the next frame on c2
	// rather than any member enumeration.
}

func TestOfferAnswerRelay(t *testing.T) {
	srv, _ := newSignalServer(t, Options{})
	c1, c2, id2 := joinPair(t, srv)

	send(t, c1, "user:call", map[string]any{"to": id2, "offer": "OFFER_A"})
	env := recvEvent(t, c2, "incomming:call")
	var call struct {
		From  string          `json:"from"`
		Offer json.RawMessage `json:"offer"`
	}
	if err := json.Unmarshal(env.Data, &call); err != nil {
		t.Fatalf("unmarshal incomming:call: %v", err)
	}
	if call.From == "" {
		t.Fatal("incomming:call carried no sender id")
	}
	if string(call.Offer) != `"OFFER_A"` {
		t.Fatalf("offer = %s; want \"OFFER_A\" byte-identical", call.Offer)
	}

	send(t, c2, "call:accepted", map[string]any{"to": call.From, "ans": "ANS_B"})
	env = recvEvent(t, c1, "call:accepted")
	var accepted struct {
		From string          `json:"from"`
		Ans  json.RawMessage `json:"ans"`
	}
	if err := json.Unmarshal(env.Data, &accepted); err != nil {
		t.Fatalf("unmarshal call:accepted: %v", err)
	}
	if accepted.From != id2 {
		t.Fatalf("call:accepted from %q; want %q", accepted.From, id2)
	}
	if string(accepted.Ans) != `"ANS_B"` {
		t.Fatalf("ans = %s; want \"ANS_B\"", accepted.Ans)
	}
}

func TestRenegotiationRenamesDoneToFinal(t *testing.T) {
	srv, _ := newSignalServer(t, Options{})
	c1, c2, id2 := joinPair(t, srv)

	send(t, c1, "peer:nego:needed", map[string]any{"to": id2, "offer": "RENEG_OFFER"})
	env := recvEvent(t, c2, "peer:nego:needed")
	var nego struct {
		From  string          `json:"from"`
		Offer json.RawMessage `json:"offer"`
	}
	if err := json.Unmarshal(env.Data, &nego); err != nil {
		t.Fatalf("unmarshal peer:nego:needed: %v", err)
	}
	if string(nego.Offer) != `"RENEG_OFFER"` {
		t.Fatalf("offer = %s; want \"RENEG_OFFER\"", nego.Offer)
	}

	send(t, c1, "peer:nego:done", map[string]any{"to": id2, "ans": "R1"})
	env = recvEvent(t, c2, "peer:nego:final")
	var fin struct {
		Ans json.RawMessage `json:"ans"`
	}
	if err := json.Unmarshal(env.Data, &fin); err != nil {
		t.Fatalf("unmarshal peer:nego:final: %v", err)
	}
	if string(fin.Ans) != `"R1"` {
		t.Fatalf("ans = %s; want \"R1\" unchanged", fin.Ans)
	}
}

func TestHangupStripsExtraFields(t *testing.T) {
	srv, _ := newSignalServer(t, Options{})
	c1, c2, id2 := joinPair(t, srv)

	send(t, c1, "call:hangup", map[string]any{"to": id2, "endTime": 1000, "extra": "x"})
	env := recvEvent(t, c2, "call:hangup")

	var fields map[string]any
	if err := json.Unmarshal(env.Data, &fields); err != nil {
		t.Fatalf("unmarshal call:hangup: %v", err)
	}
	if len(fields) != 1 {
		t.Fatalf("hangup payload = %v; want only endTime", fields)
	}
	if got, ok := fields["endTime"].(float64); !ok || got != 1000 {
		t.Fatalf("endTime = %v; want 1000", fields["endTime"])
	}
}

func TestContactExchangeAndTimerSync(t *testing.T) {
	srv, _ := newSignalServer(t, Options{})
	c1, c2, id2 := joinPair(t, srv)

	send(t, c1, "exchangePhoneNo", map[string]any{"phoneNo": "111", "Id": id2})
	env := recvEvent(t, c2, "receivePhoneNo")
	var contact struct {
		PhoneNo string `json:"phoneNo"`
	}
	if err := json.Unmarshal(env.Data, &contact); err != nil {
		t.Fatalf("unmarshal receivePhoneNo: %v", err)
	}
	if contact.PhoneNo != "111" {
		t.Fatalf("phoneNo = %q; want 111", contact.PhoneNo)
	}

	send(t, c1, "setRemoteCallStart", map[string]any{"Id": id2, "startTimer": 42})
	env = recvEvent(t, c2, "setCallStart")
	var timer struct {
		StartTimer json.RawMessage `json:"startTimer"`
	}
	if err := json.Unmarshal(env.Data, &timer); err != nil {
		t.Fatalf("unmarshal setCallStart: %v", err)
	}
	if string(timer.StartTimer) != "42" {
		t.Fatalf("startTimer = %s; want 42", timer.StartTimer)
	}
}

// A frame addressed to an id that was never a connection must vanish
// without disturbing anyone; the next real frame still goes through.
func TestDeadTargetIsSilentNoOp(t *testing.T) {
	srv, _ := newSignalServer(t, Options{})
	c1, c2, id2 := joinPair(t, srv)

	send(t, c1, "user:call", map[string]any{"to": "no-such-connection", "offer": "LOST"})
	send(t, c1, "user:call", map[string]any{"to": id2, "offer": "REAL"})

	env := recvEvent(t, c2, "incomming:call")
	var call struct {
		Offer json.RawMessage `json:"offer"`
	}
	if err := json.Unmarshal(env.Data, &call); err != nil {
		t.Fatalf("unmarshal incomming:call: %v", err)
	}
	if string(call.Offer) != `"REAL"` {
		t.Fatalf("first delivered offer = %s; want \"REAL\"", call.Offer)
	}
}

func TestMalformedEnvelopeDoesNotKillConnection(t *testing.T) {
	srv, _ := newSignalServer(t, Options{})
	c1, c2, id2 := joinPair(t, srv)

	if err := c1.WriteMessage(websocket.TextMessage, []byte("{not json")); err != nil {
		t.Fatalf("write garbage: %v", err)
	}
	// Required field missing: dropped, not forwarded.
	send(t, c1, "user:call", map[string]any{"to": id2})
	send(t, c1, "user:call", map[string]any{"to": id2, "offer": "AFTER_GARBAGE"})

	env := recvEvent(t, c2, "incomming:call")
	var call struct {
		Offer json.RawMessage `json:"offer"`
	}
	if err := json.Unmarshal(env.Data, &call); err != nil {
		t.Fatalf("unmarshal incomming:call: %v", err)
	}
	if string(call.Offer) != `"AFTER_GARBAGE"` {
		t.Fatalf("delivered offer = %s; want \"AFTER_GARBAGE\"", call.Offer)
	}
}

func TestChatMessageRelaysToNamedPeer(t *testing.T) {
	srv, _ := newSignalServer(t, Options{})
	c1, c2, id2 := joinPair(t, srv)

	send(t, c1, "message", map[string]any{"roompageMessage": "hello there", "remoteSocketId": id2})
	env := recvEvent(t, c2, "receive-message")
	var msg struct {
		Message  string `json:"message"`
		SocketID string `json:"socketId"`
	}
	if err := json.Unmarshal(env.Data, &msg); err != nil {
		t.Fatalf("unmarshal receive-message: %v", err)
	}
	if msg.Message != "hello there" {
		t.Fatalf("message = %q; want %q", msg.Message, "hello there")
	}
	if msg.SocketID == "" {
		t.Fatal("receive-message carried no sender id")
	}
}

func TestChatPulseReachesEveryConnection(t *testing.T) {
	srv, ctl := newSignalServer(t, Options{})
	c1, c2, _ := joinPair(t, srv)
	// c3 joins no room; the pulse still reaches it. The bind round-trip
	// guarantees the server has registered the socket before the pulse.
	c3 := dial(t, srv, "")
	send(t, c3, "chatRoom:join", map[string]any{"mobileNo": "333"})
	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, ok := ctl.Orch.Registry.ConnOf("333"); ok {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("third socket never bound")
		}
		time.Sleep(10 * time.Millisecond)
	}

	send(t, c1, "chatMessage", map[string]any{})

	recvEvent(t, c1, "receive-chatMessage")
	recvEvent(t, c2, "receive-chatMessage")
	recvEvent(t, c3, "receive-chatMessage")
}

func TestChatRoomJoinBindsIdentityOnly(t *testing.T) {
	srv, ctl := newSignalServer(t, Options{})
	c := dial(t, srv, "")

	send(t, c, "chatRoom:join", map[string]any{"mobileNo": "999"})

	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, ok := ctl.Orch.Registry.ConnOf("999"); ok {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("chatRoom:join never bound the identity")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestDisconnectCleansUpAndNotifiesRoom(t *testing.T) {
	srv, ctl := newSignalServer(t, Options{PeerLeft: true})
	c1, c2, _ := joinPair(t, srv)

	if err := c1.Close(); err != nil {
		t.Fatalf("close c1: %v", err)
	}

	env := recvEvent(t, c2, "user:left")
	var left struct {
		PhoneNo string `json:"phoneNo"`
		ID      string `json:"id"`
	}
	if err := json.Unmarshal(env.Data, &left); err != nil {
		t.Fatalf("unmarshal user:left: %v", err)
	}
	if left.PhoneNo != "111" || left.ID == "" {
		t.Fatalf("user:left = %+v; want phoneNo 111 and an id", left)
	}

	if _, ok := ctl.Orch.Registry.ConnOf("111"); ok {
		t.Fatal("identity 111 still bound after disconnect")
	}
	if members := ctl.Orch.Rooms.MembersExcept("R1", ""); len(members) != 1 {
		t.Fatalf("R1 members after disconnect = %v; want one", members)
	}
}

func TestHandshakeAuthToggle(t *testing.T) {
	tokens := auth.New("test-secret", time.Hour)
	srv, ctl := newSignalServer(t, Options{Tokens: tokens})

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	if _, resp, err := websocket.DefaultDialer.Dial(url, nil); err == nil {
		t.Fatal("handshake without token succeeded; want rejection")
	} else if resp == nil || resp.StatusCode != 401 {
		t.Fatalf("handshake rejection status = %v; want 401", resp)
	}

	signed, err := tokens.Sign("user-1")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	c := dial(t, srv, "?token="+signed)
	send(t, c, "chatRoom:join", map[string]any{"mobileNo": "777"})

	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, ok := ctl.Orch.Registry.ConnOf("777"); ok {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("authenticated socket never bound")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
