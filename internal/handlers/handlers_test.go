package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"gator-gram/internal/database/databasetest"
	"gator-gram/internal/engine"
	"gator-gram/internal/middleware"
	"gator-gram/internal/models"
	"gator-gram/internal/types"
	"gator-gram/internal/upload"
	"gator-gram/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUploader struct {
	deleted []string
}

func (u *stubUploader) UploadFile(ctx context.Context, file io.Reader) (*upload.Result, error) {
	return &upload.Result{URL: "https://cdn.example.com/uploaded.jpg", AssetID: "asset-file"}, nil
}

func (u *stubUploader) UploadURL(ctx context.Context, imageURL string) (*upload.Result, error) {
	return &upload.Result{URL: imageURL, AssetID: "asset-url"}, nil
}

func (u *stubUploader) Delete(ctx context.Context, assetID string) error {
	u.deleted = append(u.deleted, assetID)
	return nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	middleware.InitJWT("test-secret")

	store := databasetest.NewMemoryStore()
	uploader := &stubUploader{}
	metrics := utils.NewMetricsCollector()
	system := actor.NewActorSystem()
	eng := engine.NewEngine(system, store, uploader, nil, metrics)
	server := NewServer(system, eng, metrics, uploader, nil, false)

	mux := http.NewServeMux()
	protect := middleware.ApplyJWTMiddleware

	mux.HandleFunc("GET /{$}", server.HandleRoot())
	mux.HandleFunc("GET /health", server.HandleHealth())
	mux.HandleFunc("POST /auth/register", server.HandleRegister())
	mux.HandleFunc("POST /auth/login", server.HandleLogin())

	mux.HandleFunc("GET /posts", protect(server.HandleListPosts()))
	mux.HandleFunc("POST /posts", protect(server.HandleCreatePost()))
	mux.HandleFunc("DELETE /posts/{id}", protect(server.HandleDeletePost()))
	mux.HandleFunc("POST /posts/{id}/like", protect(server.HandleLike()))
	mux.HandleFunc("POST /posts/{id}/comment", protect(server.HandleComment()))
	mux.HandleFunc("POST /posts/{id}/react", protect(server.HandleReact()))

	mux.HandleFunc("GET /users/profile", protect(server.HandleGetProfile()))
	mux.HandleFunc("PUT /users/profile", protect(server.HandleUpdateProfile()))
	mux.HandleFunc("GET /users/ranking", protect(server.HandleRanking()))
	mux.HandleFunc("PUT /users/score", protect(server.HandleUpdateScore()))

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, ts *httptest.Server, method, path, token string, body interface{}) (*http.Response, map[string]json.RawMessage) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequest(method, ts.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	fields := map[string]json.RawMessage{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &fields))
	}
	return resp, fields
}

func registerViaHTTP(t *testing.T, ts *httptest.Server, name, email string) *types.AuthResponse {
	t.Helper()

	resp, _ := doJSON(t, ts, http.MethodPost, "/auth/register", "", map[string]string{
		"name":     name,
		"email":    email,
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp2, err := ts.Client().Post(ts.URL+"/auth/login", "application/json",
		bytes.NewReader(mustJSON(t, map[string]string{"email": email, "password": "password123"})))
	require.NoError(t, err)
	defer resp2.Body.Close()

	var auth types.AuthResponse
	require.NoError(t, json.NewDecoder(resp2.Body).Decode(&auth))
	require.NotEmpty(t, auth.Token)
	return &auth
}

func mustJSON(t *testing.T, v interface{}) []byte {
	t.Helper()
	encoded, err := json.Marshal(v)
	require.NoError(t, err)
	return encoded
}

func createPostViaHTTP(t *testing.T, ts *httptest.Server, token, caption string) *models.Post {
	t.Helper()

	resp, fields := doJSON(t, ts, http.MethodPost, "/posts", token, map[string]string{
		"imageUrl": "https://example.com/gator.jpg",
		"caption":  caption,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var post models.Post
	require.NoError(t, json.Unmarshal(fields["post"], &post))
	return &post
}

func TestRegisterValidation(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name string
		body map[string]string
	}{
		{"missing fields", map[string]string{"email": "a@b.co"}},
		{"bad email", map[string]string{"name": "Annie", "email": "not-an-email", "password": "password123"}},
		{"short password", map[string]string{"name": "Annie", "email": "a@b.co", "password": "abc"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := doJSON(t, ts, http.MethodPost, "/auth/register", "", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestRegisterDuplicateEmailReturns400(t *testing.T) {
	ts := newTestServer(t)
	registerViaHTTP(t, ts, "Annie", "annie@example.com")

	resp, fields := doJSON(t, ts, http.MethodPost, "/auth/register", "", map[string]string{
		"name":     "Other Annie",
		"email":    "annie@example.com",
		"password": "password456",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(fields["message"]), "already registered")
}

func TestLoginWrongPasswordReturns401(t *testing.T) {
	ts := newTestServer(t)
	registerViaHTTP(t, ts, "Annie", "annie@example.com")

	resp, _ := doJSON(t, ts, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    "annie@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := doJSON(t, ts, http.MethodGet, "/posts", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	auth := registerViaHTTP(t, ts, "Annie", "annie@example.com")
	resp, _ = doJSON(t, ts, http.MethodGet, "/posts", auth.Token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCreateAndDeletePostFlow(t *testing.T) {
	ts := newTestServer(t)
	owner := registerViaHTTP(t, ts, "Annie", "annie@example.com")
	stranger := registerViaHTTP(t, ts, "Bob", "bob@example.com")

	post := createPostViaHTTP(t, ts, owner.Token, "first gator")
	assert.Equal(t, "first gator", post.Caption)
	assert.Equal(t, "Annie", post.AuthorName)

	// A non-owner cannot delete and gets a 404, not a 403.
	resp, _ := doJSON(t, ts, http.MethodDelete, "/posts/"+post.ID.String(), stranger.Token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, fields := doJSON(t, ts, http.MethodDelete, "/posts/"+post.ID.String(), owner.Token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `"Post deleted successfully"`, string(fields["message"]))

	resp, _ = doJSON(t, ts, http.MethodDelete, "/posts/"+post.ID.String(), owner.Token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func multipartBody(t *testing.T, fields map[string]string, fileName, contentType string, fileSize int) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	if fileName != "" {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, fileName))
		header.Set("Content-Type", contentType)
		part, err := writer.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write(bytes.Repeat([]byte{0xAB}, fileSize))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func doMultipart(t *testing.T, ts *httptest.Server, token string, body *bytes.Buffer, contentType string) (*http.Response, map[string]json.RawMessage) {
	t.Helper()

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/posts", body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	fields := map[string]json.RawMessage{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &fields))
	}
	return resp, fields
}

func TestCreatePostMultipartUpload(t *testing.T) {
	ts := newTestServer(t)
	auth := registerViaHTTP(t, ts, "Annie", "annie@example.com")

	t.Run("image file accepted", func(t *testing.T) {
		body, contentType := multipartBody(t, map[string]string{"caption": "from my phone"},
			"gator.jpg", "image/jpeg", 1024)
		resp, fields := doMultipart(t, ts, auth.Token, body, contentType)
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var post models.Post
		require.NoError(t, json.Unmarshal(fields["post"], &post))
		assert.Equal(t, "from my phone", post.Caption)
		assert.Equal(t, "https://cdn.example.com/uploaded.jpg", post.ImageURL)
	})

	t.Run("oversize file rejected", func(t *testing.T) {
		body, contentType := multipartBody(t, nil, "huge.jpg", "image/jpeg", upload.MaxImageBytes+10)
		resp, fields := doMultipart(t, ts, auth.Token, body, contentType)
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Contains(t, string(fields["message"]), "5 MB")
	})

	t.Run("non-image file rejected", func(t *testing.T) {
		body, contentType := multipartBody(t, nil, "notes.txt", "text/plain", 64)
		resp, fields := doMultipart(t, ts, auth.Token, body, contentType)
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Contains(t, string(fields["message"]), "only images")
	})

	t.Run("file and url together rejected", func(t *testing.T) {
		body, contentType := multipartBody(t, map[string]string{"imageUrl": "https://example.com/gator.jpg"},
			"gator.jpg", "image/jpeg", 1024)
		resp, _ := doMultipart(t, ts, auth.Token, body, contentType)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("url in form accepted without file", func(t *testing.T) {
		body, contentType := multipartBody(t, map[string]string{
			"imageUrl": "https://example.com/gator.jpg",
			"caption":  "linked",
		}, "", "", 0)
		resp, fields := doMultipart(t, ts, auth.Token, body, contentType)
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var post models.Post
		require.NoError(t, json.Unmarshal(fields["post"], &post))
		assert.Equal(t, "https://example.com/gator.jpg", post.ImageURL)
	})

	t.Run("neither file nor url rejected", func(t *testing.T) {
		body, contentType := multipartBody(t, map[string]string{"caption": "empty handed"}, "", "", 0)
		resp, _ := doMultipart(t, ts, auth.Token, body, contentType)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestCreatePostWithoutImageReturns400(t *testing.T) {
	ts := newTestServer(t)
	auth := registerViaHTTP(t, ts, "Annie", "annie@example.com")

	resp, _ := doJSON(t, ts, http.MethodPost, "/posts", auth.Token, map[string]string{
		"caption": "no image here",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLikeToggleOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	owner := registerViaHTTP(t, ts, "Annie", "annie@example.com")
	liker := registerViaHTTP(t, ts, "Bob", "bob@example.com")
	post := createPostViaHTTP(t, ts, owner.Token, "like me")

	resp, fields := doJSON(t, ts, http.MethodPost, fmt.Sprintf("/posts/%s/like", post.ID), liker.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, "true", string(fields["liked"]))
	assert.JSONEq(t, "1", string(fields["likes"]))

	resp, fields = doJSON(t, ts, http.MethodPost, fmt.Sprintf("/posts/%s/like", post.ID), liker.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, "false", string(fields["liked"]))
	assert.JSONEq(t, "0", string(fields["likes"]))
}

func TestCommentTrimmedAndValidated(t *testing.T) {
	ts := newTestServer(t)
	owner := registerViaHTTP(t, ts, "Annie", "annie@example.com")
	post := createPostViaHTTP(t, ts, owner.Token, "talk to me")

	resp, _ := doJSON(t, ts, http.MethodPost, fmt.Sprintf("/posts/%s/comment", post.ID), owner.Token,
		map[string]string{"text": "   "})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, fields := doJSON(t, ts, http.MethodPost, fmt.Sprintf("/posts/%s/comment", post.ID), owner.Token,
		map[string]string{"text": "  nice gator  "})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var comments []models.Comment
	require.NoError(t, json.Unmarshal(fields["comments"], &comments))
	require.Len(t, comments, 1)
	assert.Equal(t, "nice gator", comments[0].Text)
}

func TestReactionReplacedOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	owner := registerViaHTTP(t, ts, "Annie", "annie@example.com")
	post := createPostViaHTTP(t, ts, owner.Token, "react to me")

	for _, emoji := range []string{"🔥", "🐊"} {
		resp, fields := doJSON(t, ts, http.MethodPost, fmt.Sprintf("/posts/%s/react", post.ID), owner.Token,
			map[string]string{"emoji": emoji})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var reactions []models.Reaction
		require.NoError(t, json.Unmarshal(fields["reactions"], &reactions))
		require.Len(t, reactions, 1)
		assert.Equal(t, emoji, reactions[0].Emoji)
	}
}

func TestInvalidPostIDReturns400(t *testing.T) {
	ts := newTestServer(t)
	auth := registerViaHTTP(t, ts, "Annie", "annie@example.com")

	resp, _ := doJSON(t, ts, http.MethodPost, "/posts/not-a-uuid/like", auth.Token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestProfileAndRanking(t *testing.T) {
	ts := newTestServer(t)
	annie := registerViaHTTP(t, ts, "Annie", "annie@example.com")
	bob := registerViaHTTP(t, ts, "Bob", "bob@example.com")

	resp, _ := doJSON(t, ts, http.MethodPut, "/users/score", annie.Token, map[string]int{"score": 50})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = doJSON(t, ts, http.MethodPut, "/users/score", bob.Token, map[string]int{"score": 80})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/users/ranking", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+annie.Token)
	rankResp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer rankResp.Body.Close()

	var ranking []models.RankedUser
	require.NoError(t, json.NewDecoder(rankResp.Body).Decode(&ranking))
	require.Len(t, ranking, 2)
	assert.Equal(t, "Bob", ranking[0].Name)
	assert.Equal(t, 80, ranking[0].Score)
	assert.Equal(t, "Annie", ranking[1].Name)

	// Profile reflects the overwritten score.
	resp, fields := doJSON(t, ts, http.MethodGet, "/users/profile", annie.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, "50", string(fields["score"]))
}

func TestUpdateProfileRequiresName(t *testing.T) {
	ts := newTestServer(t)
	auth := registerViaHTTP(t, ts, "Annie", "annie@example.com")

	resp, _ := doJSON(t, ts, http.MethodPut, "/users/profile", auth.Token, map[string]string{"name": ""})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, fields := doJSON(t, ts, http.MethodPut, "/users/profile", auth.Token, map[string]string{"name": "Swamp Queen"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `"Swamp Queen"`, string(fields["name"]))
}

func TestHealthAndRoot(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := doJSON(t, ts, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, fields := doJSON(t, ts, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `"healthy"`, string(fields["status"]))
}
