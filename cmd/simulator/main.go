package main

import (
	"context"
	"flag"
	"log"
	"time"

	"gator-gram/simulator"
)

func main() {
	var (
		apiURL   = flag.String("url", "http://localhost:8080", "base URL of the API to drive")
		numUsers = flag.Int("users", 10, "number of simulated users")
		duration = flag.Duration("duration", 10*time.Minute, "how long to run")
	)
	flag.Parse()

	config := simulator.SimConfig{
		NumUsers:          *numUsers,
		SimulationTime:    *duration,
		PostFrequency:     100.0,
		CommentFrequency:  60.0,
		LikeFrequency:     120.0,
		ReactionFrequency: 40.0,
		DisconnectRate:    0.01,
		ReconnectRate:     0.05,
		APIURL:            *apiURL,
	}

	log.Printf("Starting simulation with configuration:")
	log.Printf("- API URL: %s", config.APIURL)
	log.Printf("- Number of users: %d", config.NumUsers)
	log.Printf("- Simulation time: %v", config.SimulationTime)
	log.Printf("- Post frequency: %.2f posts/user/hour", config.PostFrequency)
	log.Printf("- Like frequency: %.2f likes/user/hour", config.LikeFrequency)
	log.Printf("- Comment frequency: %.2f comments/user/hour", config.CommentFrequency)
	log.Printf("- Reaction frequency: %.2f reactions/user/hour", config.ReactionFrequency)

	sim := simulator.NewSimulator(config)
	ctx, cancel := context.WithTimeout(context.Background(), config.SimulationTime)
	defer cancel()

	if err := sim.Run(ctx); err != nil {
		log.Fatalf("Simulation failed: %v", err)
	}

	metrics := sim.GetMetrics()
	log.Printf("\nSimulation completed. Final metrics:")
	log.Printf("- Total users: %d", metrics.TotalUsers)
	log.Printf("- Active users at end: %d", metrics.ActiveUsers)
	log.Printf("- Total posts: %d", metrics.TotalPosts)
	log.Printf("- Total likes: %d", metrics.TotalLikes)
	log.Printf("- Total comments: %d", metrics.TotalComments)
	log.Printf("- Total reactions: %d", metrics.TotalReactions)
	log.Printf("- Average latency: %v", metrics.AverageLatency)
	log.Printf("- Error count: %d", metrics.ErrorCount)
	log.Printf("- Requests/sec: %.2f", metrics.RequestsPerSecond)
}
