package actors

import (
	stdctx "context"
	"log/slog"
	"time"

	"gator-gram/internal/database"
	"gator-gram/internal/models"
	"gator-gram/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Message types for user operations
type (
	RegisterUserMsg struct {
		Name     string
		Email    string
		Password string
	}

	LoginMsg struct {
		Email    string
		Password string
	}

	GetProfileMsg struct {
		UserID uuid.UUID
	}

	UpdateProfileMsg struct {
		UserID uuid.UUID
		Name   string
	}

	UpdateScoreMsg struct {
		UserID uuid.UUID
		Score  int
	}

	GetRankingMsg struct{}
)

// RankingSize caps the leaderboard query.
const RankingSize = 10

// UserActor owns every mutation of the users collection. Handlers reach
// it through RequestFuture; it answers with a public user projection, a
// ranking slice, or an *utils.AppError value.
type UserActor struct {
	store   database.Store
	metrics *utils.MetricsCollector
}

func NewUserActor(store database.Store, metrics *utils.MetricsCollector) actor.Actor {
	return &UserActor{
		store:   store,
		metrics: metrics,
	}
}

func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func (a *UserActor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *RegisterUserMsg:
		startTime := time.Now()
		ctx := stdctx.Background()

		// Check if email exists first; the unique index still backs this
		// up at write time.
		if existing, _ := a.store.GetUserByEmail(ctx, msg.Email); existing != nil {
			context.Respond(utils.NewAppError(utils.ErrDuplicate, "Email already registered", nil))
			return
		}

		hashedPassword, err := hashPassword(msg.Password)
		if err != nil {
			context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to hash password", err))
			return
		}

		user := &models.User{
			ID:             uuid.New(),
			Name:           msg.Name,
			Email:          msg.Email,
			HashedPassword: hashedPassword,
			Avatar:         models.AvatarURL(msg.Name),
			Score:          0,
			CreatedAt:      time.Now(),
		}

		if err := a.store.SaveUser(ctx, user); err != nil {
			if utils.IsErrorCode(err, utils.ErrDuplicate) {
				context.Respond(err)
				return
			}
			slog.Error("failed to save user", "error", err)
			context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to save user", err))
			return
		}

		a.metrics.AddOperationLatency("register_user", time.Since(startTime))
		context.Respond(user.Public())

	case *LoginMsg:
		startTime := time.Now()
		ctx := stdctx.Background()

		user, err := a.store.GetUserByEmail(ctx, msg.Email)
		if err != nil {
			// Same answer whether the user is missing or the password is
			// wrong.
			context.Respond(utils.NewCredentialsError())
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(msg.Password)); err != nil {
			context.Respond(utils.NewCredentialsError())
			return
		}

		a.metrics.AddOperationLatency("login", time.Since(startTime))
		context.Respond(user.Public())

	case *GetProfileMsg:
		ctx := stdctx.Background()

		user, err := a.store.GetUser(ctx, msg.UserID)
		if err != nil {
			context.Respond(asAppError(err, "Failed to fetch user"))
			return
		}
		context.Respond(user.Public())

	case *UpdateProfileMsg:
		ctx := stdctx.Background()

		// A new name regenerates the derived avatar.
		user, err := a.store.UpdateUserProfile(ctx, msg.UserID, msg.Name, models.AvatarURL(msg.Name))
		if err != nil {
			context.Respond(asAppError(err, "Failed to update profile"))
			return
		}
		context.Respond(user.Public())

	case *UpdateScoreMsg:
		ctx := stdctx.Background()

		user, err := a.store.UpdateUserScore(ctx, msg.UserID, msg.Score)
		if err != nil {
			context.Respond(asAppError(err, "Failed to update score"))
			return
		}
		context.Respond(user.Public())

	case *GetRankingMsg:
		startTime := time.Now()
		ctx := stdctx.Background()

		ranking, err := a.store.GetTopUsers(ctx, RankingSize)
		if err != nil {
			context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to fetch ranking", err))
			return
		}
		if ranking == nil {
			ranking = []*models.RankedUser{}
		}

		a.metrics.AddOperationLatency("get_ranking", time.Since(startTime))
		context.Respond(ranking)
	}
}

// asAppError passes AppError values through untouched and wraps anything
// else as a database fault.
func asAppError(err error, message string) *utils.AppError {
	if appErr, ok := err.(*utils.AppError); ok {
		return appErr
	}
	return utils.NewAppError(utils.ErrDatabase, message, err)
}
