// network/connection.go
package network

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// MaxLineBytes caps one request line. Oversized lines are rejected and
// drained; the connection itself survives.
const MaxLineBytes = 1024

var (
	ErrLineTooLong = errors.New("message too large")
	ErrInvalidJSON = errors.New("invalid JSON format")
	ErrUnknownType = errors.New("unknown message type")
	ErrValidation  = errors.New("validation failed")
)

// Connection abstracts one client link. Both transports speak the same
// protocol: one JSON object per message.
type Connection interface {
	// Send marshals v and writes it as one message.
	Send(v interface{}) error
	// WriteLine writes an already-marshaled message. Broadcasts use it to
	// marshal once per room instead of once per player.
	WriteLine(data []byte) error
	// ReadMessage blocks for the next message, honoring the idle timeout.
	ReadMessage() ([]byte, error)
	SetIdleTimeout(d time.Duration)
	RemoteAddr() net.Addr
	Close() error
}

// TCPConnection frames newline-delimited JSON over a raw TCP socket.
type TCPConnection struct {
	conn      net.Conn
	reader    *bufio.Reader
	sendMutex sync.Mutex
	idle      time.Duration
}

func NewTCPConnection(conn net.Conn) *TCPConnection {
	return &TCPConnection{
		conn:   conn,
		reader: bufio.NewReaderSize(conn, MaxLineBytes),
	}
}

func (c *TCPConnection) Send(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.WriteLine(data)
}

func (c *TCPConnection) WriteLine(data []byte) error {
	c.sendMutex.Lock()
	defer c.sendMutex.Unlock()

	framed := make([]byte, 0, len(data)+1)
	framed = append(framed, data...)
	framed = append(framed, '\n')
	_, err := c.conn.Write(framed)
	return err
}

// ReadMessage returns the next line without its terminator. A line longer
// than MaxLineBytes is discarded up to the next newline and reported as
// ErrLineTooLong so the caller can answer with an error and keep reading.
func (c *TCPConnection) ReadMessage() ([]byte, error) {
	if c.idle > 0 {
		if err := c.conn.SetReadDeadline(time.Now().Add(c.idle)); err != nil {
			return nil, err
		}
	}

	var line []byte
	for {
		chunk, err := c.reader.ReadSlice('\n')
		line = append(line, chunk...)
		if err == nil {
			break
		}
		if err == bufio.ErrBufferFull {
			if len(line) > MaxLineBytes {
				if derr := c.drainLine(); derr != nil {
					return nil, derr
				}
				return nil, ErrLineTooLong
			}
			continue
		}
		return nil, err
	}
	if len(line) > MaxLineBytes {
		return nil, ErrLineTooLong
	}
	return bytes.TrimRight(line, "\r\n"), nil
}

func (c *TCPConnection) drainLine() error {
	for {
		_, err := c.reader.ReadSlice('\n')
		if err == nil {
			return nil
		}
		if err != bufio.ErrBufferFull {
			return err
		}
	}
}

func (c *TCPConnection) SetIdleTimeout(d time.Duration) {
	c.idle = d
}

func (c *TCPConnection) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

func (c *TCPConnection) Close() error {
	return c.conn.Close()
}

// WSConnection adapts a websocket link to the same protocol: every text
// frame carries exactly one JSON object, no newline framing needed.
type WSConnection struct {
	conn      *websocket.Conn
	sendMutex sync.Mutex
	idle      time.Duration
}

func NewWSConnection(conn *websocket.Conn) *WSConnection {
	return &WSConnection{conn: conn}
}

func (c *WSConnection) Send(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.WriteLine(data)
}

func (c *WSConnection) WriteLine(data []byte) error {
	c.sendMutex.Lock()
	defer c.sendMutex.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

func (c *WSConnection) ReadMessage() ([]byte, error) {
	if c.idle > 0 {
		if err := c.conn.SetReadDeadline(time.Now().Add(c.idle)); err != nil {
			return nil, err
		}
	}
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	if len(data) > MaxLineBytes {
		return nil, ErrLineTooLong
	}
	return data, nil
}

func (c *WSConnection) SetIdleTimeout(d time.Duration) {
	c.idle = d
}

func (c *WSConnection) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

func (c *WSConnection) Close() error {
	return c.conn.Close()
}
