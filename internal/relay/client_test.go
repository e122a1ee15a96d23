// internal/relay/client_test.go
package relay

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"print-service/internal/model"
)

func testPrinter() *model.Printer {
	return &model.Printer{
		Name:           "Cocina",
		ConnectionType: model.ConnectionTypeNetwork,
		Address:        "192.168.1.100",
		Port:           9100,
	}
}

func TestPrintRaw(t *testing.T) {
	var received Request

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/print", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		json.NewEncoder(w).Encode(Response{Success: true, Message: "printed"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second, zap.NewNop())
	payload := []byte{0x1B, 0x40, 'H', 'i'}

	err := client.PrintRaw(context.Background(), testPrinter(), payload)
	require.NoError(t, err)

	assert.Equal(t, "raw", received.Type)
	assert.Equal(t, base64.StdEncoding.EncodeToString(payload), received.Data)
	assert.Equal(t, "Cocina", received.Printer.Name)
	assert.Equal(t, "network", received.Printer.ConnectionType)
	assert.Equal(t, "192.168.1.100", received.Printer.Address)
	assert.Equal(t, 9100, received.Printer.Port)
}

func TestPrintTest(t *testing.T) {
	var received Request

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		json.NewEncoder(w).Encode(Response{Success: true})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second, zap.NewNop())

	err := client.PrintTest(context.Background(), testPrinter())
	require.NoError(t, err)

	assert.Equal(t, "test", received.Type)
	assert.Empty(t, received.Data)
}

func TestPrintRawBridgeFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(Response{Success: false, Error: "printer offline"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second, zap.NewNop())

	err := client.PrintRaw(context.Background(), testPrinter(), []byte("data"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "printer offline")
}

func TestPrintRawBridgeUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := NewClient(srv.URL, time.Second, zap.NewNop())

	err := client.PrintRaw(context.Background(), testPrinter(), []byte("data"))
	assert.Error(t, err)
}

func TestPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/status", r.URL.Path)
		json.NewEncoder(w).Encode(Status{Status: "online", Bridge: "1.2.0"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second, zap.NewNop())

	status, err := client.Ping(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "online", status.Status)
	assert.Equal(t, "1.2.0", status.Bridge)
}
