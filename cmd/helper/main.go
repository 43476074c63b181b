package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os/signal"
	"syscall"
)

// Worker simulator for manual end-to-end runs against a local stack.
func main() {
	workerID := flag.String("worker_id", "", "Worker ID to simulate")
	token := flag.String("token", "", "Worker JWT for authentication")
	lat := flag.Float64("lat", 43.238949, "Initial latitude")
	lng := flag.Float64("lng", 76.889709, "Initial longitude")
	flag.Parse()

	if *workerID == "" || *token == "" {
		log.Fatal("worker_id and token are required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := &Logger{}
	sim := NewWorkerSim(ctx, *workerID, *token, *lat, *lng, logger)

	if err := sim.ConnectEvents(); err != nil {
		log.Fatalf("websocket connect failed: %v", err)
	}
	defer sim.wsClient.Close()

	if err := sim.GoOnline(); err != nil {
		log.Fatalf("going online failed: %v", err)
	}

	sim.WorkLoop()
}

func parseJSON(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}
