// Package simulator drives a running API instance with synthetic
// traffic: registered users posting photos, liking, commenting and
// reacting at configurable rates.
package simulator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

type SimConfig struct {
	NumUsers          int
	SimulationTime    time.Duration
	PostFrequency     float64 // posts per user per hour
	CommentFrequency  float64
	LikeFrequency     float64
	ReactionFrequency float64
	DisconnectRate    float64
	ReconnectRate     float64
	APIURL            string
}

type SimulationStats struct {
	mu               sync.RWMutex
	StartTime        time.Time
	TotalRequests    int64
	SuccessRequests  int64
	FailedRequests   int64
	AverageLatency   time.Duration
	ActiveUsers      int
	TotalPosts       int
	TotalComments    int
	TotalLikes       int
	TotalReactions   int
	RequestLatencies []time.Duration
}

// SimulatedUser carries the auth token returned at registration; every
// subsequent request is made on the user's behalf.
type SimulatedUser struct {
	ID          uuid.UUID
	Token       string
	Name        string
	Email       string
	IsConnected bool
	Posts       []uuid.UUID
	LikedPosts  map[uuid.UUID]bool
}

type Simulator struct {
	config SimConfig
	stats  *SimulationStats
	users  []*SimulatedUser
	client *http.Client
	mu     sync.RWMutex
}

func NewSimulator(config SimConfig) *Simulator {
	return &Simulator{
		config: config,
		stats: &SimulationStats{
			StartTime:        time.Now(),
			RequestLatencies: make([]time.Duration, 0),
		},
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *Simulator) Run(ctx context.Context) error {
	log.Printf("Starting simulation...")

	if err := s.createInitialUsers(ctx); err != nil {
		return fmt.Errorf("initialization failed: %v", err)
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := s.SimulateActivities(ctx); err != nil {
			log.Printf("Activities simulation error: %v", err)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		s.simulateConnectivity(ctx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		s.collectMetrics(ctx)
	}()

	wg.Wait()
	return nil
}

func (s *Simulator) createInitialUsers(ctx context.Context) error {
	log.Printf("Creating %d users...", s.config.NumUsers)

	s.users = make([]*SimulatedUser, 0, s.config.NumUsers)
	s.mu.Lock()
	defer s.mu.Unlock()

	const numWorkers = 5
	userJobs := make(chan int, numWorkers)
	results := make(chan *SimulatedUser, numWorkers)

	// Shared limiter so registration does not hammer bcrypt on the server.
	rateLimiter := time.NewTicker(200 * time.Millisecond)
	defer rateLimiter.Stop()

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()

			for userNum := range userJobs {
				<-rateLimiter.C

				user := &SimulatedUser{
					Name:        fmt.Sprintf("user_%d", userNum),
					Email:       fmt.Sprintf("user_%d@test.com", userNum),
					IsConnected: true,
					Posts:       make([]uuid.UUID, 0),
					LikedPosts:  make(map[uuid.UUID]bool),
				}

				var err error
				for retries := 0; retries < 3; retries++ {
					if err = s.registerUser(ctx, user); err == nil {
						results <- user
						break
					}
					backoff := time.Duration(math.Pow(2, float64(retries))) * time.Second
					log.Printf("Worker %d: retry %d for user %s after %v",
						workerID, retries+1, user.Name, backoff)
					time.Sleep(backoff)
				}
				if err != nil {
					log.Printf("Worker %d: failed to register user %s: %v", workerID, user.Name, err)
				}
			}
		}(i)
	}

	go func() {
		for i := 0; i < s.config.NumUsers; i++ {
			userJobs <- i
		}
		close(userJobs)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	for user := range results {
		s.users = append(s.users, user)
	}

	log.Printf("Successfully created %d users", len(s.users))
	return nil
}

func (s *Simulator) registerUser(ctx context.Context, user *SimulatedUser) error {
	data := map[string]interface{}{
		"name":     user.Name,
		"email":    user.Email,
		"password": "testpass123",
	}

	resp, err := s.makeRequest("POST", "/auth/register", "", data)
	if err != nil {
		// Re-runs against a warm database hit the unique email index;
		// fall back to login.
		resp, err = s.makeRequest("POST", "/auth/login", "", map[string]interface{}{
			"email":    user.Email,
			"password": "testpass123",
		})
		if err != nil {
			return fmt.Errorf("failed to register or log in: %v", err)
		}
	}

	var result struct {
		Token string `json:"token"`
		User  struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	if err := json.Unmarshal(resp, &result); err != nil {
		return fmt.Errorf("failed to parse auth response: %v", err)
	}

	userID, err := uuid.Parse(result.User.ID)
	if err != nil {
		return fmt.Errorf("invalid user ID returned: %v", err)
	}

	user.ID = userID
	user.Token = result.Token
	return nil
}

func (s *Simulator) makeRequest(method, endpoint, token string, data interface{}) ([]byte, error) {
	var body []byte
	var err error

	if data != nil {
		body, err = json.Marshal(data)
		if err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequest(method, s.config.APIURL+endpoint, bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := s.client.Do(req)
	s.recordRequestMetrics(start, err)

	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return nil, readErr
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("request failed with status %d: %s", resp.StatusCode, raw)
	}
	return raw, nil
}

// simulateConnectivity churns users between connected and idle so
// activity workers only act for a shifting subset, the way a real user
// base behaves.
func (s *Simulator) simulateConnectivity(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.mu.Lock()
			for _, user := range s.users {
				if user.IsConnected {
					if rand.Float64() < s.config.DisconnectRate {
						user.IsConnected = false
					}
				} else if rand.Float64() < s.config.ReconnectRate {
					user.IsConnected = true
				}
			}
			s.mu.Unlock()
		}
	}
}

func (s *Simulator) recordRequestMetrics(start time.Time, err error) {
	s.stats.mu.Lock()
	defer s.stats.mu.Unlock()

	latency := time.Since(start)
	s.stats.TotalRequests++
	s.stats.RequestLatencies = append(s.stats.RequestLatencies, latency)

	if err != nil {
		s.stats.FailedRequests++
	} else {
		s.stats.SuccessRequests++
	}

	totalLatency := s.stats.AverageLatency * time.Duration(s.stats.TotalRequests-1)
	s.stats.AverageLatency = (totalLatency + latency) / time.Duration(s.stats.TotalRequests)
}

func (s *Simulator) collectMetrics(ctx context.Context) {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.stats.mu.RLock()
			elapsed := time.Since(s.stats.StartTime)
			requestRate := float64(s.stats.TotalRequests) / elapsed.Seconds()
			successRate := 0.0
			if s.stats.TotalRequests > 0 {
				successRate = float64(s.stats.SuccessRequests) / float64(s.stats.TotalRequests) * 100
			}

			activeUsers := 0
			s.mu.RLock()
			for _, user := range s.users {
				if user.IsConnected {
					activeUsers++
				}
			}
			s.mu.RUnlock()

			log.Printf("\nSimulation metrics (%.1f seconds elapsed):", elapsed.Seconds())
			log.Printf("- Request rate: %.2f req/sec", requestRate)
			log.Printf("- Success rate: %.1f%%", successRate)
			log.Printf("- Average latency: %v", s.stats.AverageLatency)
			log.Printf("- Active users: %d/%d", activeUsers, len(s.users))
			log.Printf("- Total posts: %d", s.stats.TotalPosts)
			log.Printf("- Total likes: %d", s.stats.TotalLikes)
			log.Printf("- Total comments: %d", s.stats.TotalComments)
			log.Printf("- Total reactions: %d", s.stats.TotalReactions)
			log.Printf("- Failed requests: %d", s.stats.FailedRequests)
			s.stats.mu.RUnlock()
		}
	}
}

// SimulationMetrics is the final snapshot returned after a run.
type SimulationMetrics struct {
	TotalUsers        int
	ActiveUsers       int
	TotalPosts        int
	TotalComments     int
	TotalLikes        int
	TotalReactions    int
	AverageLatency    time.Duration
	ErrorCount        int
	RequestsPerSecond float64
}

func (s *Simulator) GetMetrics() SimulationMetrics {
	s.stats.mu.RLock()
	defer s.stats.mu.RUnlock()

	elapsed := time.Since(s.stats.StartTime)
	requestRate := float64(s.stats.TotalRequests) / elapsed.Seconds()

	activeUsers := 0
	s.mu.RLock()
	for _, user := range s.users {
		if user.IsConnected {
			activeUsers++
		}
	}
	s.mu.RUnlock()

	return SimulationMetrics{
		TotalUsers:        len(s.users),
		ActiveUsers:       activeUsers,
		TotalPosts:        s.stats.TotalPosts,
		TotalComments:     s.stats.TotalComments,
		TotalLikes:        s.stats.TotalLikes,
		TotalReactions:    s.stats.TotalReactions,
		AverageLatency:    s.stats.AverageLatency,
		ErrorCount:        int(s.stats.FailedRequests),
		RequestsPerSecond: requestRate,
	}
}
