package actors

import (
	"testing"
	"time"

	"gator-gram/internal/database/databasetest"
	"gator-gram/internal/models"
	"gator-gram/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func spawnUserActor(t *testing.T) (*actor.ActorSystem, *actor.PID) {
	t.Helper()

	system := actor.NewActorSystem()
	props := actor.PropsFromProducer(func() actor.Actor {
		return NewUserActor(databasetest.NewMemoryStore(), utils.NewMetricsCollector())
	})
	return system, system.Root.Spawn(props)
}

func ask(t *testing.T, system *actor.ActorSystem, pid *actor.PID, msg interface{}) interface{} {
	t.Helper()

	future := system.Root.RequestFuture(pid, msg, 5*time.Second)
	result, err := future.Result()
	require.NoError(t, err)
	return result
}

func registerUser(t *testing.T, system *actor.ActorSystem, pid *actor.PID, name, email string) *models.PublicUser {
	t.Helper()

	result := ask(t, system, pid, &RegisterUserMsg{
		Name:     name,
		Email:    email,
		Password: "password123",
	})
	user, ok := result.(*models.PublicUser)
	require.True(t, ok, "expected public user, got %T: %v", result, result)
	return user
}

func TestRegisterAndLogin(t *testing.T) {
	system, pid := spawnUserActor(t)

	user := registerUser(t, system, pid, "Alligator Annie", "annie@example.com")
	assert.Equal(t, "Alligator Annie", user.Name)
	assert.Equal(t, "annie@example.com", user.Email)
	assert.Equal(t, 0, user.Score)
	assert.Contains(t, user.Avatar, "ui-avatars.com")

	result := ask(t, system, pid, &LoginMsg{Email: "annie@example.com", Password: "password123"})
	loggedIn, ok := result.(*models.PublicUser)
	require.True(t, ok, "expected public user, got %T", result)
	assert.Equal(t, user.ID, loggedIn.ID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	system, pid := spawnUserActor(t)

	registerUser(t, system, pid, "Alligator Annie", "annie@example.com")

	result := ask(t, system, pid, &RegisterUserMsg{
		Name:     "Another Annie",
		Email:    "annie@example.com",
		Password: "password456",
	})
	appErr, ok := result.(*utils.AppError)
	require.True(t, ok, "expected AppError, got %T", result)
	assert.Equal(t, utils.ErrDuplicate, appErr.Code)
}

func TestLoginInvalidCredentials(t *testing.T) {
	system, pid := spawnUserActor(t)

	registerUser(t, system, pid, "Alligator Annie", "annie@example.com")

	// Wrong password and unknown email must be indistinguishable.
	wrongPassword := ask(t, system, pid, &LoginMsg{Email: "annie@example.com", Password: "nope-nope"})
	unknownEmail := ask(t, system, pid, &LoginMsg{Email: "ghost@example.com", Password: "password123"})

	for _, result := range []interface{}{wrongPassword, unknownEmail} {
		appErr, ok := result.(*utils.AppError)
		require.True(t, ok, "expected AppError, got %T", result)
		assert.Equal(t, utils.ErrInvalidCredentials, appErr.Code)
		assert.Equal(t, "Invalid credentials", appErr.Message)
	}
}

func TestUpdateProfileRegeneratesAvatar(t *testing.T) {
	system, pid := spawnUserActor(t)

	user := registerUser(t, system, pid, "Alligator Annie", "annie@example.com")
	originalAvatar := user.Avatar

	result := ask(t, system, pid, &UpdateProfileMsg{UserID: user.ID, Name: "Swamp Queen"})
	updated, ok := result.(*models.PublicUser)
	require.True(t, ok, "expected public user, got %T", result)

	assert.Equal(t, "Swamp Queen", updated.Name)
	assert.NotEqual(t, originalAvatar, updated.Avatar)
	assert.Contains(t, updated.Avatar, "Swamp+Queen")
}

func TestScoreAndRanking(t *testing.T) {
	system, pid := spawnUserActor(t)

	annie := registerUser(t, system, pid, "Annie", "annie@example.com")
	bob := registerUser(t, system, pid, "Bob", "bob@example.com")

	ask(t, system, pid, &UpdateScoreMsg{UserID: annie.ID, Score: 50})
	ask(t, system, pid, &UpdateScoreMsg{UserID: bob.ID, Score: 80})

	result := ask(t, system, pid, &GetRankingMsg{})
	ranking, ok := result.([]*models.RankedUser)
	require.True(t, ok, "expected ranking, got %T", result)

	require.Len(t, ranking, 2)
	assert.Equal(t, "Bob", ranking[0].Name)
	assert.Equal(t, 80, ranking[0].Score)
	assert.Equal(t, "Annie", ranking[1].Name)
	assert.Equal(t, 50, ranking[1].Score)

	// Scores are non-increasing.
	for i := 1; i < len(ranking); i++ {
		assert.GreaterOrEqual(t, ranking[i-1].Score, ranking[i].Score)
	}
}

func TestRankingCappedAtTen(t *testing.T) {
	system, pid := spawnUserActor(t)

	for i := 0; i < 15; i++ {
		user := registerUser(t, system, pid, "User", string(rune('a'+i))+"@example.com")
		ask(t, system, pid, &UpdateScoreMsg{UserID: user.ID, Score: i})
	}

	result := ask(t, system, pid, &GetRankingMsg{})
	ranking, ok := result.([]*models.RankedUser)
	require.True(t, ok, "expected ranking, got %T", result)
	assert.Len(t, ranking, RankingSize)
	assert.Equal(t, 14, ranking[0].Score)
}
