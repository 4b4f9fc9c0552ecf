package mcp

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer(t *testing.T) {
	t.Run("nil graph service returns error", func(t *testing.T) {
		server, err := NewServer(&Ports{})
		require.Error(t, err)
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingGraphService)
	})

	t.Run("valid ports creates server", func(t *testing.T) {
		server, err := NewServer(&Ports{Graph: &mockGraphService{}})
		require.NoError(t, err)
		assert.NotNil(t, server)
	})
}

func TestPorts_Validate(t *testing.T) {
	t.Run("nil graph service returns error", func(t *testing.T) {
		assert.ErrorIs(t, (&Ports{}).Validate(), ErrMissingGraphService)
	})

	t.Run("graph only is valid", func(t *testing.T) {
		assert.NoError(t, (&Ports{Graph: &mockGraphService{}}).Validate())
	})

	t.Run("all ports is valid", func(t *testing.T) {
		ports := &Ports{
			Graph:  &mockGraphService{},
			Source: &mockSourceService{},
		}
		assert.NoError(t, ports.Validate())
	})
}

func TestServer_ServeHTTPStopsOnCancel(t *testing.T) {
	server, err := NewServer(&Ports{Graph: &mockGraphService{}})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Serve(ctx, "127.0.0.1:0") }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestServer_Handler(t *testing.T) {
	server, err := NewServer(&Ports{Graph: &mockGraphService{}})
	require.NoError(t, err)
	assert.NotNil(t, server.Handler())
}
