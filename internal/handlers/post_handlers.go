package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"gator-gram/internal/engine/actors"
	"gator-gram/internal/middleware"
	"gator-gram/internal/models"
	"gator-gram/internal/types"
	"gator-gram/internal/upload"
	"gator-gram/internal/utils"

	"github.com/google/uuid"
)

// CreatePostRequest is the JSON form of post creation, used when the
// image is a remote URL rather than an uploaded file.
type CreatePostRequest struct {
	ImageURL string `json:"imageUrl"`
	Caption  string `json:"caption"`
}

// CommentRequest represents a request to comment on a post
type CommentRequest struct {
	Text string `json:"text"`
}

// ReactionRequest represents a request to react to a post
type ReactionRequest struct {
	Emoji string `json:"emoji"`
}

// HandleCreatePost accepts either a multipart upload (field "image") or
// an image URL, hands the asset to the upload collaborator, then asks the
// post actor to persist the post.
func (s *Server) HandleCreatePost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.GetUserIDFromContext(r.Context())
		if !ok {
			s.respondError(w, utils.NewAppError(utils.ErrUnauthorized, "Authentication required", nil))
			return
		}

		var (
			result  *upload.Result
			caption string
			appErr  *utils.AppError
		)

		if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			result, caption, appErr = s.uploadFromMultipart(w, r)
		} else {
			result, caption, appErr = s.uploadFromJSON(r)
		}
		if appErr != nil {
			s.respondError(w, appErr)
			return
		}

		reply, appErr := s.request(s.Engine.GetPostActor(), &actors.CreatePostMsg{
			AuthorID: userID,
			ImageURL: result.URL,
			UploadID: result.AssetID,
			Caption:  caption,
		})
		if appErr != nil {
			s.respondError(w, appErr)
			return
		}

		s.respondJSON(w, http.StatusCreated, map[string]interface{}{
			"message": "Post created successfully",
			"post":    reply.(*models.Post),
		})
	}
}

func (s *Server) uploadFromMultipart(w http.ResponseWriter, r *http.Request) (*upload.Result, string, *utils.AppError) {
	// Cap the body before anything is read; the 5 MB limit is enforced
	// ahead of the provider.
	r.Body = http.MaxBytesReader(w, r.Body, upload.MaxImageBytes+64*1024)
	if err := r.ParseMultipartForm(upload.MaxImageBytes); err != nil {
		return nil, "", utils.NewAppError(utils.ErrUploadFailed, "Image exceeds the 5 MB limit", err)
	}

	caption := r.FormValue("caption")
	imageURL := r.FormValue("imageUrl")

	file, header, err := r.FormFile("image")
	if err == http.ErrMissingFile {
		if imageURL == "" {
			return nil, "", utils.NewValidationError("An image file or image URL is required")
		}
		result, upErr := s.Uploader.UploadURL(r.Context(), imageURL)
		if upErr != nil {
			return nil, "", asAppError(upErr)
		}
		return result, caption, nil
	}
	if err != nil {
		return nil, "", utils.NewValidationError("Invalid image upload")
	}
	defer file.Close()

	if imageURL != "" {
		return nil, "", utils.NewValidationError("Provide an image file or an image URL, not both")
	}
	if header.Size > upload.MaxImageBytes {
		return nil, "", utils.NewAppError(utils.ErrUploadFailed, "Image exceeds the 5 MB limit", nil)
	}
	if !upload.IsImageContentType(header.Header.Get("Content-Type")) {
		return nil, "", utils.NewAppError(utils.ErrUploadFailed, "Unsupported file type, only images are accepted", nil)
	}

	result, upErr := s.Uploader.UploadFile(r.Context(), file)
	if upErr != nil {
		return nil, "", asAppError(upErr)
	}
	return result, caption, nil
}

func (s *Server) uploadFromJSON(r *http.Request) (*upload.Result, string, *utils.AppError) {
	var req CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, "", utils.NewValidationError("Invalid request")
	}
	if req.ImageURL == "" {
		return nil, "", utils.NewValidationError("An image file or image URL is required")
	}

	result, upErr := s.Uploader.UploadURL(r.Context(), req.ImageURL)
	if upErr != nil {
		return nil, "", asAppError(upErr)
	}
	return result, req.Caption, nil
}

// HandleListPosts returns every post, newest first, fully expanded.
func (s *Server) HandleListPosts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reply, appErr := s.request(s.Engine.GetPostActor(), &actors.ListPostsMsg{})
		if appErr != nil {
			s.respondError(w, appErr)
			return
		}

		s.respondJSON(w, http.StatusOK, reply)
	}
}

// HandleDeletePost removes a post owned by the authenticated user.
func (s *Server) HandleDeletePost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.GetUserIDFromContext(r.Context())
		if !ok {
			s.respondError(w, utils.NewAppError(utils.ErrUnauthorized, "Authentication required", nil))
			return
		}

		postID, appErr := postIDFromPath(r)
		if appErr != nil {
			s.respondError(w, appErr)
			return
		}

		if _, appErr := s.request(s.Engine.GetPostActor(), &actors.DeletePostMsg{
			PostID: postID,
			UserID: userID,
		}); appErr != nil {
			s.respondError(w, appErr)
			return
		}

		s.respondJSON(w, http.StatusOK, &types.MessageResponse{Message: "Post deleted successfully"})
	}
}

// HandleLike toggles the authenticated user's like on a post.
func (s *Server) HandleLike() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.GetUserIDFromContext(r.Context())
		if !ok {
			s.respondError(w, utils.NewAppError(utils.ErrUnauthorized, "Authentication required", nil))
			return
		}

		postID, appErr := postIDFromPath(r)
		if appErr != nil {
			s.respondError(w, appErr)
			return
		}

		reply, appErr := s.request(s.Engine.GetPostActor(), &actors.ToggleLikeMsg{
			PostID: postID,
			UserID: userID,
		})
		if appErr != nil {
			s.respondError(w, appErr)
			return
		}

		likeResult := reply.(*actors.LikeResult)
		message := "Like removed"
		if likeResult.Liked {
			message = "Post liked"
		}

		s.respondJSON(w, http.StatusOK, map[string]interface{}{
			"message": message,
			"liked":   likeResult.Liked,
			"likes":   likeResult.Likes,
		})
	}
}

// HandleComment appends a comment to a post.
func (s *Server) HandleComment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.GetUserIDFromContext(r.Context())
		if !ok {
			s.respondError(w, utils.NewAppError(utils.ErrUnauthorized, "Authentication required", nil))
			return
		}

		postID, appErr := postIDFromPath(r)
		if appErr != nil {
			s.respondError(w, appErr)
			return
		}

		var req CommentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.respondError(w, utils.NewValidationError("Invalid request"))
			return
		}

		text := strings.TrimSpace(req.Text)
		if text == "" {
			s.respondError(w, utils.NewValidationError("Comment cannot be empty"))
			return
		}

		reply, appErr := s.request(s.Engine.GetPostActor(), &actors.AddCommentMsg{
			PostID:   postID,
			AuthorID: userID,
			Text:     text,
		})
		if appErr != nil {
			s.respondError(w, appErr)
			return
		}

		s.respondJSON(w, http.StatusOK, map[string]interface{}{
			"message":  "Comment added successfully",
			"comments": reply.([]models.Comment),
		})
	}
}

// HandleReact sets the authenticated user's emoji reaction on a post,
// replacing any previous one.
func (s *Server) HandleReact() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.GetUserIDFromContext(r.Context())
		if !ok {
			s.respondError(w, utils.NewAppError(utils.ErrUnauthorized, "Authentication required", nil))
			return
		}

		postID, appErr := postIDFromPath(r)
		if appErr != nil {
			s.respondError(w, appErr)
			return
		}

		var req ReactionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.respondError(w, utils.NewValidationError("Invalid request"))
			return
		}

		if req.Emoji == "" {
			s.respondError(w, utils.NewValidationError("An emoji is required"))
			return
		}

		reply, appErr := s.request(s.Engine.GetPostActor(), &actors.SetReactionMsg{
			PostID:   postID,
			AuthorID: userID,
			Emoji:    req.Emoji,
		})
		if appErr != nil {
			s.respondError(w, appErr)
			return
		}

		s.respondJSON(w, http.StatusOK, map[string]interface{}{
			"message":   "Reaction added successfully",
			"reactions": reply.([]models.Reaction),
		})
	}
}

func postIDFromPath(r *http.Request) (uuid.UUID, *utils.AppError) {
	postID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, utils.NewValidationError("Invalid post ID format")
	}
	return postID, nil
}

func asAppError(err error) *utils.AppError {
	if appErr, ok := err.(*utils.AppError); ok {
		return appErr
	}
	return utils.NewAppError(utils.ErrUploadFailed, "Image upload failed", err)
}
