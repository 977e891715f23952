package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"postfeed/pkg/logger"
	"postfeed/pkg/queue"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(ctx context.Context, to, subject, body string) error {
	return m.Called(to, subject, body).Error(0)
}

func TestHandle_Sends(t *testing.T) {
	sender := new(MockSender)
	uc := NewDeliveryUseCase(sender, nil, logger.New())

	sender.On("Send", "alice@example.com", "Password Reset", "link").Return(nil)

	err := uc.Handle(context.Background(), queue.EmailTask{
		Type:    queue.EmailRoutingKey,
		To:      "alice@example.com",
		Subject: "Password Reset",
		Body:    "link",
	})
	require.NoError(t, err)
	sender.AssertExpectations(t)
}

func TestHandle_DefaultResetSubject(t *testing.T) {
	sender := new(MockSender)
	uc := NewDeliveryUseCase(sender, nil, logger.New())

	sender.On("Send", "alice@example.com", "Password Reset", "link").Return(nil)

	require.NoError(t, uc.Handle(context.Background(), queue.EmailTask{Type: queue.EmailRoutingKey, To: "alice@example.com", Body: "link"}))
	sender.AssertExpectations(t)
}

func TestHandle_SendFailureIsReturned(t *testing.T) {
	sender := new(MockSender)
	uc := NewDeliveryUseCase(sender, nil, logger.New())

	sender.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("smtp down"))

	err := uc.Handle(context.Background(), queue.EmailTask{To: "alice@example.com", Subject: "hi"})
	assert.Error(t, err)
}

func TestHandle_NoRecipientIsDropped(t *testing.T) {
	sender := new(MockSender)
	uc := NewDeliveryUseCase(sender, nil, logger.New())

	assert.NoError(t, uc.Handle(context.Background(), queue.EmailTask{To: "  "}))
	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandle_ThrottledUntilContextDone(t *testing.T) {
	sender := new(MockSender)
	limiter := rate.NewLimiter(rate.Every(time.Hour), 1)
	require.True(t, limiter.Allow())
	uc := NewDeliveryUseCase(sender, limiter, logger.New())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := uc.Handle(ctx, queue.EmailTask{To: "alice@example.com", Subject: "hi"})
	assert.Error(t, err)
	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}
