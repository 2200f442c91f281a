package waitlist

import (
	"context"
	"testing"

	"github.com/akeren/launchlist/internal/log"
	"github.com/akeren/launchlist/internal/models"
	"github.com/akeren/launchlist/pkg/constants"
	apperrors "github.com/akeren/launchlist/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestService(t *testing.T) (*MockWaitlistRepository, WaitlistService) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	mockRepo := NewMockWaitlistRepository(ctrl)
	logger := log.NewLoggerWithJSONOutput()
	service := NewWaitlistService(logger, mockRepo)
	return mockRepo, service
}

func echoEntry(_ context.Context, entry *models.WaitlistEntry) (*models.WaitlistEntry, error) {
	entry.ID = 1
	return entry, nil
}

func TestJoinWaitlist_Success(t *testing.T) {
	mockRepo, service := newTestService(t)

	var stored *models.WaitlistEntry
	mockRepo.EXPECT().
		CreateEntry(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, entry *models.WaitlistEntry) (*models.WaitlistEntry, error) {
			stored = entry
			return echoEntry(ctx, entry)
		})

	req := &JoinWaitlistRequest{Name: "Alice", Email: "alice@example.com"}
	result, err := service.JoinWaitlist(context.Background(), req, "203.0.113.7")

	require.NoError(t, err)
	assert.Equal(t, &JoinWaitlistResponse{Name: "Alice", Email: "alice@example.com"}, result)

	require.NotNil(t, stored)
	assert.Equal(t, "Alice", stored.Name)
	assert.Equal(t, "alice@example.com", stored.Email)
	assert.Equal(t, "203.0.113.7", stored.IPAddress)
	assert.Equal(t, constants.WaitlistProjectName, stored.ProjectName)
}

func TestJoinWaitlist_EmptyIPStoredAsUnknown(t *testing.T) {
	mockRepo, service := newTestService(t)

	mockRepo.EXPECT().
		CreateEntry(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, entry *models.WaitlistEntry) (*models.WaitlistEntry, error) {
			assert.Equal(t, constants.UnknownIPAddress, entry.IPAddress)
			return echoEntry(ctx, entry)
		})

	_, err := service.JoinWaitlist(context.Background(), &JoinWaitlistRequest{Name: "Bob", Email: "bob@example.com"}, "")
	require.NoError(t, err)
}

func TestJoinWaitlist_NameStoredInNFC(t *testing.T) {
	mockRepo, service := newTestService(t)

	decomposed := "Jose\u0301"
	composed := "Jos\u00e9"

	mockRepo.EXPECT().
		CreateEntry(gomock.Any(), gomock.Any()).
		DoAndReturn(echoEntry)

	result, err := service.JoinWaitlist(context.Background(), &JoinWaitlistRequest{Name: decomposed, Email: "jose@example.com"}, "")

	require.NoError(t, err)
	assert.Equal(t, composed, result.Name)
}

func TestJoinWaitlist_MissingFields(t *testing.T) {
	cases := map[string]*JoinWaitlistRequest{
		"missing name":               {Email: "alice@example.com"},
		"missing email":              {Name: "Alice"},
		"both missing":               {},
		"missing name and bad email": {Email: "foo"},
	}

	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, service := newTestService(t)

			result, err := service.JoinWaitlist(context.Background(), req, "")

			assert.Nil(t, result)
			require.Error(t, err)
			assert.Equal(t, apperrors.ErrorTypeInvalidRequest, apperrors.GetErrorType(err))
			assert.Equal(t, MsgNameAndEmailRequired, apperrors.GetHumanReadableMessage(err))
		})
	}
}

func TestJoinWaitlist_InvalidEmail(t *testing.T) {
	invalid := []string{
		"foo", "foo@bar", "@bar.com", "foo@.com@x", "a b@c.de", "foo@bar.", "foo@@bar.com",
		"a\tb@c.de", "a\vb@c.de", "a\u00a0b@c.de", "a\u1680b@c.de", "a\u2000b@c.de",
		"a\u200ab@c.de", "a\u2028b@c.de", "a\u2029b@c.de", "a\u202fb@c.de",
		"a\u205fb@c.de", "a\u3000b@c.de", "\ufeffa@c.de", "a@c.d\u00a0e",
	}

	for _, email := range invalid {
		t.Run(email, func(t *testing.T) {
			_, service := newTestService(t)

			result, err := service.JoinWaitlist(context.Background(), &JoinWaitlistRequest{Name: "Alice", Email: email}, "")

			assert.Nil(t, result)
			require.Error(t, err)
			assert.Equal(t, apperrors.ErrorTypeInvalidRequest, apperrors.GetErrorType(err))
			assert.Equal(t, MsgInvalidEmailFormat, apperrors.GetHumanReadableMessage(err))
		})
	}
}

func TestJoinWaitlist_NilRequest(t *testing.T) {
	_, service := newTestService(t)

	result, err := service.JoinWaitlist(context.Background(), nil, "")

	assert.Nil(t, result)
	assert.Equal(t, apperrors.ErrorTypeInvalidRequest, apperrors.GetErrorType(err))
}

func TestJoinWaitlist_RepositoryError(t *testing.T) {
	mockRepo, service := newTestService(t)

	mockRepo.EXPECT().
		CreateEntry(gomock.Any(), gomock.Any()).
		Return(nil, apperrors.NewDatabaseError("database error", nil))

	result, err := service.JoinWaitlist(context.Background(), &JoinWaitlistRequest{Name: "Alice", Email: "alice@example.com"}, "")

	assert.Nil(t, result)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeDatabaseError, apperrors.GetErrorType(err))
}

func TestJoinWaitlist_SamePayloadTwiceWritesTwice(t *testing.T) {
	mockRepo, service := newTestService(t)

	mockRepo.EXPECT().
		CreateEntry(gomock.Any(), gomock.Any()).
		DoAndReturn(echoEntry).
		Times(2)

	req := &JoinWaitlistRequest{Name: "Alice", Email: "alice@example.com"}
	_, err := service.JoinWaitlist(context.Background(), req, "")
	require.NoError(t, err)
	_, err = service.JoinWaitlist(context.Background(), req, "")
	require.NoError(t, err)
}

func TestCountEntries(t *testing.T) {
	mockRepo, service := newTestService(t)

	mockRepo.EXPECT().CountEntries(gomock.Any(), constants.WaitlistProjectName).Return(int64(3), nil)

	count, err := service.CountEntries(context.Background(), constants.WaitlistProjectName)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestCountEntries_RequiresProject(t *testing.T) {
	_, service := newTestService(t)

	_, err := service.CountEntries(context.Background(), "")
	assert.Equal(t, apperrors.ErrorTypeInvalidRequest, apperrors.GetErrorType(err))
}
