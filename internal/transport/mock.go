package transport

// MockConn is a scripted Conn for tests. Each Receive pops the next step:
// a payload, ErrTimeout, or any other error. Sent datagrams are recorded.
type MockConn struct {
	// Steps are consumed in order by Receive. A step with Err set returns
	// that error; otherwise the payload is returned.
	Steps []MockStep

	Sent      [][]byte
	SendErr   error
	Closed    bool
	CloseErr  error
	RecvCalls int
}

// MockStep is one scripted Receive outcome.
type MockStep struct {
	Payload []byte
	Err     error
}

// Timeout is a convenience step that yields ErrTimeout.
func Timeout() MockStep { return MockStep{Err: ErrTimeout} }

// Payload is a convenience step that yields the given datagram.
func Payload(s string) MockStep { return MockStep{Payload: []byte(s)} }

func (m *MockConn) Send(p []byte) error {
	if m.Closed {
		return ErrClosed
	}
	if m.SendErr != nil {
		return m.SendErr
	}
	cp := make([]byte, len(p))
	copy(cp, p)
	m.Sent = append(m.Sent, cp)
	return nil
}

func (m *MockConn) Receive() ([]byte, error) {
	if m.Closed {
		return nil, ErrClosed
	}
	m.RecvCalls++
	if len(m.Steps) == 0 {
		return nil, ErrTimeout
	}
	step := m.Steps[0]
	m.Steps = m.Steps[1:]
	if step.Err != nil {
		return nil, step.Err
	}
	return step.Payload, nil
}

func (m *MockConn) Close() error {
	if m.Closed {
		return nil
	}
	m.Closed = true
	return m.CloseErr
}
