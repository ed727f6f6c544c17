// Package testutil provides shared test utilities and fixtures.
//
// This package centralises common test helpers to reduce code duplication
// across test files and improve test maintainability.
package testutil

import (
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
)

// AssertStatusCode checks that the response status code matches expected.
func AssertStatusCode(t *testing.T, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("status code = %d, want %d", got, want)
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// NewTestRequest creates a test HTTP request.
func NewTestRequest(method, path string) *http.Request {
	return httptest.NewRequest(method, path, nil)
}

// NewTestRecorder creates a test response recorder.
func NewTestRecorder() *httptest.ResponseRecorder {
	return httptest.NewRecorder()
}

// UDPScript is a loopback UDP server that answers each received datagram
// with the next scripted reply. An empty reply string means "receive but
// stay silent", which lets tests exercise the client's timeout path.
type UDPScript struct {
	conn     *net.UDPConn
	Received chan string
}

// StartUDPScript binds a loopback UDP socket and serves the scripted
// replies. It returns the server and the port it listens on. The socket is
// released via t.Cleanup.
func StartUDPScript(t *testing.T, replies []string) (*UDPScript, int) {
	t.Helper()

	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("failed to bind test UDP socket: %v", err)
	}
	s := &UDPScript{
		conn:     conn,
		Received: make(chan string, 64),
	}
	t.Cleanup(func() { conn.Close() })

	go func() {
		buf := make([]byte, 1<<17)
		for i := 0; ; i++ {
			n, addr, err := conn.ReadFromUDP(buf)
			if err != nil {
				return
			}
			select {
			case s.Received <- string(buf[:n]):
			default:
			}
			if i < len(replies) && replies[i] != "" {
				conn.WriteToUDP([]byte(replies[i]), addr)
			}
		}
	}()

	return s, conn.LocalAddr().(*net.UDPAddr).Port
}
