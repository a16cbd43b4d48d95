package actors

import (
	stdctx "context"
	"log/slog"
	"time"

	"gator-gram/internal/database"
	"gator-gram/internal/models"
	"gator-gram/internal/upload"
	"gator-gram/internal/utils"
	"gator-gram/internal/websocket"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
)

// Message types for post operations. The image has already been handed
// to the upload collaborator by the time CreatePostMsg arrives; the actor
// only ever sees the stored URL and the deletion handle.
type (
	CreatePostMsg struct {
		AuthorID uuid.UUID
		ImageURL string
		UploadID string
		Caption  string
	}

	ListPostsMsg struct{}

	DeletePostMsg struct {
		PostID uuid.UUID
		UserID uuid.UUID
	}

	ToggleLikeMsg struct {
		PostID uuid.UUID
		UserID uuid.UUID
	}

	AddCommentMsg struct {
		PostID   uuid.UUID
		AuthorID uuid.UUID
		Text     string
	}

	SetReactionMsg struct {
		PostID   uuid.UUID
		AuthorID uuid.UUID
		Emoji    string
	}
)

// LikeResult reports which transition a toggle performed and the
// resulting like count.
type LikeResult struct {
	Liked bool `json:"liked"`
	Likes int  `json:"likes"`
}

// PostActor owns every mutation of the posts collection. Routing all
// post mutations through one actor serializes the like/reaction
// read-modify-write interactions on top of the store's atomic updates.
type PostActor struct {
	store    database.Store
	uploader upload.Uploader
	hub      *websocket.Hub
	metrics  *utils.MetricsCollector
}

func NewPostActor(store database.Store, uploader upload.Uploader, hub *websocket.Hub, metrics *utils.MetricsCollector) actor.Actor {
	return &PostActor{
		store:    store,
		uploader: uploader,
		hub:      hub,
		metrics:  metrics,
	}
}

func (a *PostActor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *CreatePostMsg:
		startTime := time.Now()
		ctx := stdctx.Background()

		post := &models.Post{
			ID:        uuid.New(),
			AuthorID:  msg.AuthorID,
			ImageURL:  msg.ImageURL,
			UploadID:  msg.UploadID,
			Caption:   msg.Caption,
			Likes:     make([]uuid.UUID, 0),
			Comments:  make([]models.Comment, 0),
			Reactions: make([]models.Reaction, 0),
			CreatedAt: time.Now(),
		}

		if err := a.store.SavePost(ctx, post); err != nil {
			context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to save post", err))
			return
		}

		// Re-read so the response carries the author's name and avatar.
		saved, err := a.store.GetPost(ctx, post.ID)
		if err != nil {
			context.Respond(asAppError(err, "Failed to load created post"))
			return
		}

		a.metrics.AddOperationLatency("create_post", time.Since(startTime))
		a.broadcast(websocket.FeedEvent{Type: "post_created", PostID: saved.ID, Payload: saved})
		context.Respond(saved)

	case *ListPostsMsg:
		startTime := time.Now()
		ctx := stdctx.Background()

		posts, err := a.store.GetAllPosts(ctx)
		if err != nil {
			context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to fetch posts", err))
			return
		}
		if posts == nil {
			posts = []*models.Post{}
		}

		a.metrics.AddOperationLatency("list_posts", time.Since(startTime))
		context.Respond(posts)

	case *DeletePostMsg:
		startTime := time.Now()
		ctx := stdctx.Background()

		post, err := a.store.GetPost(ctx, msg.PostID)
		if err != nil {
			context.Respond(asAppError(err, "Failed to fetch post"))
			return
		}
		// Same 404 for "doesn't exist" and "not yours".
		if post.AuthorID != msg.UserID {
			context.Respond(utils.NewNotFoundError("Post not found"))
			return
		}

		// Best-effort: a failed asset deletion is logged, never surfaced,
		// so the post record is removed regardless.
		if post.UploadID != "" {
			if err := a.uploader.Delete(ctx, post.UploadID); err != nil {
				slog.Warn("failed to delete stored image", "post", post.ID, "uploadId", post.UploadID, "error", err)
			}
		}

		if _, err := a.store.DeletePost(ctx, msg.PostID, msg.UserID); err != nil {
			context.Respond(asAppError(err, "Failed to delete post"))
			return
		}

		a.metrics.AddOperationLatency("delete_post", time.Since(startTime))
		a.broadcast(websocket.FeedEvent{Type: "post_deleted", PostID: msg.PostID})
		context.Respond(true)

	case *ToggleLikeMsg:
		startTime := time.Now()
		ctx := stdctx.Background()

		liked, likes, err := a.store.ToggleLike(ctx, msg.PostID, msg.UserID)
		if err != nil {
			context.Respond(asAppError(err, "Failed to toggle like"))
			return
		}

		a.metrics.AddOperationLatency("toggle_like", time.Since(startTime))
		a.broadcast(websocket.FeedEvent{Type: "post_liked", PostID: msg.PostID, Payload: LikeResult{Liked: liked, Likes: likes}})
		context.Respond(&LikeResult{Liked: liked, Likes: likes})

	case *AddCommentMsg:
		startTime := time.Now()
		ctx := stdctx.Background()

		comment := models.Comment{
			ID:        uuid.New(),
			AuthorID:  msg.AuthorID,
			Text:      msg.Text,
			CreatedAt: time.Now(),
		}

		comments, err := a.store.AddComment(ctx, msg.PostID, comment)
		if err != nil {
			context.Respond(asAppError(err, "Failed to add comment"))
			return
		}

		a.metrics.AddOperationLatency("add_comment", time.Since(startTime))
		a.broadcast(websocket.FeedEvent{Type: "post_commented", PostID: msg.PostID})
		context.Respond(comments)

	case *SetReactionMsg:
		startTime := time.Now()
		ctx := stdctx.Background()

		reaction := models.Reaction{
			AuthorID: msg.AuthorID,
			Emoji:    msg.Emoji,
		}

		reactions, err := a.store.SetReaction(ctx, msg.PostID, reaction)
		if err != nil {
			context.Respond(asAppError(err, "Failed to set reaction"))
			return
		}

		a.metrics.AddOperationLatency("set_reaction", time.Since(startTime))
		a.broadcast(websocket.FeedEvent{Type: "post_reacted", PostID: msg.PostID})
		context.Respond(reactions)
	}
}

func (a *PostActor) broadcast(event websocket.FeedEvent) {
	if a.hub != nil {
		a.hub.BroadcastEvent(event)
	}
}
