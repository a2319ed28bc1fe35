package main

import (
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strconv"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

type positionMessage struct {
	DeviceID  string  `json:"device_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timestamp int64   `json:"timestamp"`
	AccuracyM float64 `json:"accuracy_m"`
	SpeedKmh  float64 `json:"speed_kmh"`
}

// Seed a circular geofence at this point (radius ~5 km) to watch the mock
// devices cross in and out of it.
const (
	centerLat = 55.6761
	centerLon = 12.5683
)

type mockDevice struct {
	id string
	// latitude offset from the center; the device oscillates north-south
	// through the boundary.
	offset    float64
	northward bool
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <interval_seconds>\n", os.Args[0])
		os.Exit(1)
	}

	intervalSec, err := strconv.Atoi(os.Args[1])
	if err != nil || intervalSec <= 0 {
		fmt.Fprintf(os.Stderr, "error: interval must be a positive integer\n")
		os.Exit(1)
	}

	broker := "tcp://localhost:1883"
	if v := os.Getenv("MQTT_BROKER"); v != "" {
		broker = v
	}

	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID("geofence-mock-publisher")

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalf("mqtt connect: %v", token.Error())
	}
	defer client.Disconnect(250)

	devices := make([]*mockDevice, 5)
	for i := range devices {
		devices[i] = &mockDevice{
			id:        fmt.Sprintf("veh-%03d", i+1),
			offset:    (rand.Float64() - 0.5) * 0.08,
			northward: rand.Intn(2) == 0,
		}
	}

	log.Printf("connected to %s, publishing every %ds...", broker, intervalSec)

	ticker := time.NewTicker(time.Duration(intervalSec) * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		dev := devices[rand.Intn(len(devices))]

		// Walk ~600 m per tick; turn around well past the boundary so each
		// device keeps producing entered/exited pairs.
		step := 0.006
		if !dev.northward {
			step = -step
		}
		dev.offset += step
		if dev.offset > 0.09 || dev.offset < -0.09 {
			dev.northward = !dev.northward
		}

		msg := positionMessage{
			DeviceID:  dev.id,
			Latitude:  centerLat + dev.offset,
			Longitude: centerLon + (rand.Float64()-0.5)*0.001,
			Timestamp: time.Now().Unix(),
			AccuracyM: 3 + rand.Float64()*5,
			SpeedKmh:  30 + rand.Float64()*20,
		}

		payload, _ := json.Marshal(msg)
		topic := fmt.Sprintf("/fleet/device/%s/position", dev.id)

		token := client.Publish(topic, 1, false, payload)
		token.Wait()

		log.Printf("published to %s: %s", topic, payload)
	}
}
