package main

import (
	"context"
	"fmt"
	"time"
)

// WorkerSim drives one worker through the whole lifecycle against a
// running dispatch service: go available, poll the match feed, accept
// the best candidate and walk it to completion.
type WorkerSim struct {
	workerID   string
	jwtToken   string
	currentLat float64
	currentLng float64
	httpClient *HTTPClient
	wsClient   *WebSocketClient
	logger     *Logger
	ctx        context.Context
}

func NewWorkerSim(ctx context.Context, workerID, jwtToken string, initialLat, initialLng float64, logger *Logger) *WorkerSim {
	return &WorkerSim{
		workerID:   workerID,
		jwtToken:   jwtToken,
		currentLat: initialLat,
		currentLng: initialLng,
		httpClient: NewHTTPClient(logger),
		wsClient:   NewWebSocketClient(ctx, logger),
		logger:     logger,
		ctx:        ctx,
	}
}

func (s *WorkerSim) headers() map[string]string {
	return map[string]string{
		"Content-Type":  "application/json",
		"Authorization": "Bearer " + s.jwtToken,
	}
}

func (s *WorkerSim) ConnectEvents() error {
	url := fmt.Sprintf(WsURL, s.workerID, s.jwtToken)
	if err := s.wsClient.Connect(url); err != nil {
		return err
	}
	s.logger.WebSocket("Connected, listening for status updates")

	go func() {
		for raw := range s.wsClient.Events() {
			ev, err := ParseStatusEvent(raw)
			if err != nil {
				s.logger.Warn("bad event payload: %v", err)
				continue
			}
			s.logger.WebSocket("request %s is now %s", ev.Data.RequestID, ev.Data.Status)
		}
	}()
	return nil
}

func (s *WorkerSim) GoOnline() error {
	loc := LocationRequest{Latitude: s.currentLat, Longitude: s.currentLng}
	if _, code, err := s.httpClient.DoRequest("PUT", BaseURL+LocationPath, loc, s.headers()); err != nil || code >= 300 {
		return fmt.Errorf("setting location (status %d): %v", code, err)
	}
	s.logger.HTTP("Location published")

	avail := AvailabilityRequest{IsAvailable: true}
	if _, code, err := s.httpClient.DoRequest("PUT", BaseURL+AvailabilityPath, avail, s.headers()); err != nil || code >= 300 {
		return fmt.Errorf("setting availability (status %d): %v", code, err)
	}
	s.logger.HTTP("Worker is online and available")
	return nil
}

// WorkLoop polls the feed and serves one request per iteration. Losing
// an accept race is normal; the loop just polls again.
func (s *WorkerSim) WorkLoop() {
	ticker := time.NewTicker(PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			if err := s.serveOne(); err != nil {
				s.logger.Warn("%v", err)
			}
		}
	}
}

func (s *WorkerSim) serveOne() error {
	data, code, err := s.httpClient.DoRequest("GET", BaseURL+NearbyPath, nil, s.headers())
	if err != nil || code >= 300 {
		return fmt.Errorf("fetching nearby requests (status %d): %v", code, err)
	}

	feed := NearbyResponse{}
	if err := parseJSON(data, &feed); err != nil {
		return err
	}
	if feed.Count == 0 {
		s.logger.Info("No open requests nearby")
		return nil
	}

	best := feed.Matches[0]
	s.logger.Info("Best candidate %s (%s, %.0fm, score %d)",
		best.Request.ID, best.Request.IssueType, best.DistanceMeters, best.SkillScore)

	if _, code, err = s.httpClient.DoRequest("POST",
		BaseURL+fmt.Sprintf(AcceptPath, best.Request.ID), nil, s.headers()); err != nil || code >= 300 {
		return fmt.Errorf("accept lost or failed (status %d): %v", code, err)
	}
	s.logger.Info("Accepted request %s", best.Request.ID)

	if _, code, err = s.httpClient.DoRequest("POST",
		BaseURL+fmt.Sprintf(StartPath, best.Request.ID), nil, s.headers()); err != nil || code >= 300 {
		return fmt.Errorf("start failed (status %d): %v", code, err)
	}
	s.logger.Info("Started work on %s", best.Request.ID)

	time.Sleep(WorkDuration)

	if _, code, err = s.httpClient.DoRequest("POST",
		BaseURL+fmt.Sprintf(CompletePath, best.Request.ID), nil, s.headers()); err != nil || code >= 300 {
		return fmt.Errorf("complete failed (status %d): %v", code, err)
	}
	s.logger.Info("Completed request %s", best.Request.ID)
	return nil
}
