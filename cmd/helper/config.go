package main

import "time"

const (
	BaseURL = "http://localhost:3000"

	LocationPath     = "/worker/location"
	AvailabilityPath = "/worker/availability"
	NearbyPath       = "/worker/requests/nearby"
	AcceptPath       = "/worker/requests/%s/accept"
	StartPath        = "/worker/requests/%s/start"
	CompletePath     = "/worker/requests/%s/complete"

	WsURL = "ws://localhost:3000/ws/users/%s?token=%s"

	HTTPRequestDelay = 200 * time.Millisecond
	PollInterval     = 5 * time.Second
	WorkDuration     = 3 * time.Second
)

// Terminal colors
const (
	Reset  = "\033[0m"
	Red    = "\033[31m"
	Green  = "\033[32m"
	Yellow = "\033[33m"
	Cyan   = "\033[36m"
	Gray   = "\033[90m"
)
