//go:build integration

package mqtt

import (
	"sync"
	"testing"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nerrad567/ulc-deck/internal/infrastructure/config"
)

// These tests need a broker at 127.0.0.1:1883:
//
//	go test -tags=integration ./internal/infrastructure/mqtt/...

func integrationConfig(clientID string) config.MQTTConfig {
	return config.MQTTConfig{
		Enabled:     true,
		Broker:      config.MQTTBrokerConfig{Host: "127.0.0.1", Port: 1883, ClientID: clientID},
		QoS:         1,
		TopicPrefix: "ulcdeck-test",
		Reconnect:   config.MQTTReconnectConfig{InitialDelay: 1, MaxDelay: 5},
	}
}

func TestIntegration_ConnectAndClose(t *testing.T) {
	c, err := Connect(integrationConfig("ulcdeck-int-connect"))
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if !c.IsConnected() {
		t.Error("IsConnected() = false after Connect")
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if c.IsConnected() {
		t.Error("IsConnected() = true after Close")
	}
}

func TestIntegration_ConnectRefused(t *testing.T) {
	cfg := integrationConfig("ulcdeck-int-refused")
	cfg.Broker.Port = 19999
	if _, err := Connect(cfg); err == nil {
		t.Fatal("Connect() to closed port succeeded")
	}
}

func TestIntegration_PublishJSONRoundtrip(t *testing.T) {
	c, err := Connect(integrationConfig("ulcdeck-int-pub"))
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer c.Close() //nolint:errcheck // test cleanup

	// Observe with a plain paho subscriber.
	opts := pahomqtt.NewClientOptions().AddBroker("tcp://127.0.0.1:1883").SetClientID("ulcdeck-int-sub")
	sub := pahomqtt.NewClient(opts)
	if tok := sub.Connect(); !tok.WaitTimeout(5*time.Second) || tok.Error() != nil {
		t.Fatalf("subscriber connect: %v", tok.Error())
	}
	defer sub.Disconnect(100)

	var mu sync.Mutex
	got := make(chan string, 1)
	topic := c.Topics().Event("intent")
	if tok := sub.Subscribe(topic, 1, func(_ pahomqtt.Client, m pahomqtt.Message) {
		mu.Lock()
		defer mu.Unlock()
		select {
		case got <- string(m.Payload()):
		default:
		}
	}); !tok.WaitTimeout(5*time.Second) || tok.Error() != nil {
		t.Fatalf("subscribe: %v", tok.Error())
	}

	if err := c.PublishJSON(topic, map[string]string{"kind": "tap"}, false); err != nil {
		t.Fatalf("PublishJSON() error = %v", err)
	}

	select {
	case payload := <-got:
		if payload != `{"kind":"tap"}` {
			t.Errorf("payload = %s", payload)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("message not received")
	}
}
