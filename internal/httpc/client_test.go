package httpc

import (
	"net/http"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		timeout time.Duration
		want    time.Duration
	}{
		{"explicit", 5 * time.Second, 5 * time.Second},
		{"zero uses default", 0, DefaultTimeout},
		{"negative uses default", -time.Second, DefaultTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(tt.timeout)
			if c.Timeout != tt.want {
				t.Errorf("Timeout: got %v, want %v", c.Timeout, tt.want)
			}
			tr, ok := c.Transport.(*http.Transport)
			if !ok {
				t.Fatalf("Transport: got %T", c.Transport)
			}
			if tr.TLSHandshakeTimeout != TLSHandshakeTimeout {
				t.Errorf("TLSHandshakeTimeout: got %v", tr.TLSHandshakeTimeout)
			}
		})
	}
}

func TestNewClientsDoNotShareTransport(t *testing.T) {
	if New(0).Transport == New(0).Transport {
		t.Error("clients share a transport")
	}
}
