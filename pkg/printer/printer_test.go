package printer

import (
	"context"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitize(t *testing.T) {
	assert.Equal(t, "Total Rs.100", Sanitize("Total ₹100"))
	assert.Equal(t, "Caf? au lait", Sanitize("Café au lait"))
	assert.Equal(t, "a b", Sanitize("a\tb"))
	assert.Equal(t, "plain", Sanitize("plain"))
}

func TestJustify(t *testing.T) {
	line := Justify("Subtotal:", "250.00", 20)
	assert.Len(t, line, 20)
	assert.True(t, strings.HasPrefix(line, "Subtotal:"))
	assert.True(t, strings.HasSuffix(line, "250.00"))

	long := Justify("A very long product name", "99.00", 16)
	assert.True(t, strings.HasSuffix(long, " 99.00"))
	assert.LessOrEqual(t, len(long), 16)
}

func TestWrap(t *testing.T) {
	assert.Equal(t, []string{"short"}, Wrap("short", 10))
	assert.Equal(t, []string{"one two", "three"}, Wrap("one two three", 8))
	assert.Equal(t, []string{"abcd", "efgh"}, Wrap("abcdefgh", 4))
}

func TestDocument_ColumnsAlignment(t *testing.T) {
	doc := NewDocument(20)
	doc.Columns([]int{10, 4, 6}, "Rice", "2", "100.00")

	out := string(doc.Bytes())
	assert.Contains(t, out, "Rice         2100.00\n")
}

func TestDocument_StartsWithInit(t *testing.T) {
	doc := NewDocument(0)
	assert.Equal(t, Width80mm, doc.Width())
	assert.Equal(t, []byte{ESC, '@'}, doc.Bytes()[:2])
}

func TestNew(t *testing.T) {
	p, err := New(Config{Type: ""})
	require.NoError(t, err)
	assert.False(t, p.IsConnected(context.Background()))
	assert.NoError(t, p.Print(context.Background(), []byte("x")))

	_, err = New(Config{Type: TypeUSB})
	assert.Error(t, err)
	_, err = New(Config{Type: TypeNetwork})
	assert.Error(t, err)
	_, err = New(Config{Type: "bluetooth"})
	assert.Error(t, err)

	assert.True(t, Config{Type: TypeNetwork}.IsConfigured())
	assert.False(t, Config{Type: TypeNone}.IsConfigured())
}

func TestDevicePrinter_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lp0")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	p, err := New(Config{Type: TypeUSB, USBPath: path})
	require.NoError(t, err)
	require.True(t, p.IsConnected(context.Background()))
	require.NoError(t, p.Print(context.Background(), []byte("receipt")))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "receipt", string(got))
}

func TestTCPPrinter_SendsBytes(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	received := make(chan []byte, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		data, _ := io.ReadAll(conn)
		received <- data
	}()

	p, err := New(Config{Type: TypeNetwork, Address: ln.Addr().String()})
	require.NoError(t, err)
	require.NoError(t, p.Print(context.Background(), []byte("hello")))

	assert.Equal(t, "hello", string(<-received))
}
