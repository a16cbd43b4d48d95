package simulator

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
)

var reactionEmojis = []string{"🐊", "🔥", "❤️", "😂", "😮"}

// SimulateActivities runs posting first, then unblocks likes, comments
// and reactions once enough posts exist to interact with.
func (s *Simulator) SimulateActivities(ctx context.Context) error {
	postsAvailable := make(chan struct{})

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		s.simulatePosts(ctx, postsAvailable)
	}()

	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.stats.mu.RLock()
				enough := s.stats.TotalPosts >= 10
				s.stats.mu.RUnlock()
				if enough {
					select {
					case <-postsAvailable:
					default:
						close(postsAvailable)
					}
					return
				}
			}
		}
	}()

	interactions := []struct {
		name string
		run  func(context.Context)
	}{
		{"likes", s.simulateLikes},
		{"comments", s.simulateComments},
		{"reactions", s.simulateReactions},
	}

	for _, interaction := range interactions {
		wg.Add(1)
		go func(name string, run func(context.Context)) {
			defer wg.Done()
			select {
			case <-ctx.Done():
				return
			case <-postsAvailable:
				log.Printf("Starting %s after posts available...", name)
				run(ctx)
			}
		}(interaction.name, interaction.run)
	}

	wg.Wait()
	return nil
}

func (s *Simulator) simulatePosts(ctx context.Context, postsAvailable chan struct{}) {
	s.forEachActiveUser(ctx, s.config.PostFrequency, func(user *SimulatedUser) {
		data := map[string]interface{}{
			"imageUrl": fmt.Sprintf("https://picsum.photos/seed/%s-%d/800/600",
				user.Name, time.Now().UnixNano()),
			"caption": fmt.Sprintf("Photo by %s at %s", user.Name, time.Now().Format(time.RFC3339)),
		}

		resp, err := s.makeRequest("POST", "/posts", user.Token, data)
		if err != nil {
			log.Printf("Failed to create post for %s: %v", user.Name, err)
			return
		}

		var result struct {
			Post struct {
				ID string `json:"id"`
			} `json:"post"`
		}
		if err := json.Unmarshal(resp, &result); err != nil {
			log.Printf("Failed to parse post response: %v", err)
			return
		}
		if postID, err := uuid.Parse(result.Post.ID); err == nil {
			s.mu.Lock()
			user.Posts = append(user.Posts, postID)
			s.mu.Unlock()
		}

		s.stats.mu.Lock()
		s.stats.TotalPosts++
		postCount := s.stats.TotalPosts
		s.stats.mu.Unlock()

		log.Printf("Created post by %s (total: %d)", user.Name, postCount)

		if postCount == 10 {
			select {
			case <-postsAvailable:
			default:
				close(postsAvailable)
			}
		}
	})
}

func (s *Simulator) simulateLikes(ctx context.Context) {
	s.forEachActiveUser(ctx, s.config.LikeFrequency, func(user *SimulatedUser) {
		postID, err := s.getRandomPost(user)
		if err != nil {
			return
		}

		s.mu.RLock()
		alreadyLiked := user.LikedPosts[postID]
		s.mu.RUnlock()
		if alreadyLiked {
			return
		}

		if _, err := s.makeRequest("POST", fmt.Sprintf("/posts/%s/like", postID), user.Token, nil); err != nil {
			return
		}

		s.mu.Lock()
		user.LikedPosts[postID] = true
		s.mu.Unlock()

		s.stats.mu.Lock()
		s.stats.TotalLikes++
		s.stats.mu.Unlock()
	})
}

func (s *Simulator) simulateComments(ctx context.Context) {
	s.forEachActiveUser(ctx, s.config.CommentFrequency, func(user *SimulatedUser) {
		postID, err := s.getRandomPost(user)
		if err != nil {
			return
		}

		data := map[string]interface{}{
			"text": fmt.Sprintf("Comment from %s at %s", user.Name, time.Now().Format(time.RFC3339)),
		}
		if _, err := s.makeRequest("POST", fmt.Sprintf("/posts/%s/comment", postID), user.Token, data); err != nil {
			log.Printf("Failed to comment for %s: %v", user.Name, err)
			return
		}

		s.stats.mu.Lock()
		s.stats.TotalComments++
		s.stats.mu.Unlock()
	})
}

func (s *Simulator) simulateReactions(ctx context.Context) {
	s.forEachActiveUser(ctx, s.config.ReactionFrequency, func(user *SimulatedUser) {
		postID, err := s.getRandomPost(user)
		if err != nil {
			return
		}

		data := map[string]interface{}{
			"emoji": reactionEmojis[rand.Intn(len(reactionEmojis))],
		}
		if _, err := s.makeRequest("POST", fmt.Sprintf("/posts/%s/react", postID), user.Token, data); err != nil {
			return
		}

		s.stats.mu.Lock()
		s.stats.TotalReactions++
		s.stats.mu.Unlock()
	})
}

// forEachActiveUser fans connected users out to a small worker pool on
// a fixed tick. Each worker fires the action with per-tick probability
// derived from the hourly frequency.
func (s *Simulator) forEachActiveUser(ctx context.Context, hourlyFrequency float64, action func(*SimulatedUser)) {
	tickInterval := 500 * time.Millisecond
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	probability := hourlyFrequency / 3600.0 * tickInterval.Seconds()

	const numWorkers = 5
	jobs := make(chan *SimulatedUser, s.config.NumUsers)

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for user := range jobs {
				if rand.Float64() < probability {
					action(user)
				}
			}
		}()
	}

	for {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return
		case <-ticker.C:
			s.mu.RLock()
			for _, user := range s.users {
				if user.IsConnected {
					select {
					case jobs <- user:
					default: // skip the tick rather than block
					}
				}
			}
			s.mu.RUnlock()
		}
	}
}

// getRandomPost pulls the feed and picks a post at random. The feed is
// small in simulation runs, so the extra GET doubles as read traffic.
func (s *Simulator) getRandomPost(user *SimulatedUser) (uuid.UUID, error) {
	resp, err := s.makeRequest("GET", "/posts", user.Token, nil)
	if err != nil {
		return uuid.Nil, err
	}

	var posts []struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(resp, &posts); err != nil {
		return uuid.Nil, fmt.Errorf("failed to parse feed: %v", err)
	}
	if len(posts) == 0 {
		return uuid.Nil, fmt.Errorf("no posts available")
	}

	return uuid.Parse(posts[rand.Intn(len(posts))].ID)
}
