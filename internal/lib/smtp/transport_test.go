package smtp

import (
	"bufio"
	"net"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sibintb/submanager/internal/config"
	"github.com/sibintb/submanager/internal/lib/sl"
)

// plainServer speaks just enough SMTP to greet and answer EHLO without
// advertising STARTTLS.
func plainServer(t *testing.T) (host, port string) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		r := bufio.NewReader(conn)
		_, _ = conn.Write([]byte("220 localhost ESMTP\r\n"))
		for {
			line, err := r.ReadString('\n')
			if err != nil {
				return
			}
			switch cmd := strings.ToUpper(strings.TrimSpace(line)); {
			case strings.HasPrefix(cmd, "EHLO"):
				_, _ = conn.Write([]byte("250-localhost\r\n250 SIZE 1024\r\n"))
			case strings.HasPrefix(cmd, "QUIT"):
				_, _ = conn.Write([]byte("221 bye\r\n"))
				return
			default:
				_, _ = conn.Write([]byte("250 ok\r\n"))
			}
		}
	}()

	host, port, err = net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	return host, port
}

func TestTransport_From(t *testing.T) {
	tr := NewTransport(config.SMTP{SMTPUser: "mailer@example.com"}, sl.Discard())
	assert.Equal(t, "mailer@example.com", tr.From())

	tr = NewTransport(config.SMTP{SMTPUser: "mailer", SMTPFrom: "noreply@example.com"}, sl.Discard())
	assert.Equal(t, "noreply@example.com", tr.From())
}

func TestTransport_RequiresSTARTTLS(t *testing.T) {
	host, port := plainServer(t)
	tr := NewTransport(config.SMTP{SMTPHost: host, SMTPPort: port}, sl.Discard())

	client, err := tr.Connect()
	assert.Nil(t, client)
	assert.ErrorIs(t, err, ErrNoSTARTTLS)
}

func TestTransport_DialError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	host, port, _ := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, ln.Close())

	_, err = NewTransport(config.SMTP{SMTPHost: host, SMTPPort: port}, sl.Discard()).Connect()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dial")
}
