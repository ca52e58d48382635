package rabbitmq

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	amqp "github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockChannel struct {
	mock.Mock
}

func (m *mockChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	return m.Called(name, kind, durable, autoDelete, internal, noWait, args).Error(0)
}

func (m *mockChannel) Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	return m.Called(exchange, key, mandatory, immediate, msg).Error(0)
}

func (m *mockChannel) Close() error {
	return m.Called().Error(0)
}

func TestNewClient_DeclaresExchange(t *testing.T) {
	ch := new(mockChannel)
	ch.On("ExchangeDeclare", DefaultExchange, amqp.ExchangeTopic, true, false, false, false, amqp.Table(nil)).Return(nil).Once()

	c, err := newClient(ch, Config{})
	require.NoError(t, err)
	assert.Equal(t, DefaultExchange, c.exchange)
	ch.AssertExpectations(t)
}

func TestNewClient_DeclareError(t *testing.T) {
	ch := new(mockChannel)
	ch.On("ExchangeDeclare", "catalog", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("access refused")).Once()

	_, err := newClient(ch, Config{Exchange: "catalog"})
	assert.Error(t, err)
}

func TestClient_Publish(t *testing.T) {
	ch := new(mockChannel)
	ch.On("ExchangeDeclare", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	ch.On("Publish", DefaultExchange, "product.created", false, false, mock.MatchedBy(func(msg amqp.Publishing) bool {
		_, err := uuid.Parse(msg.MessageId)
		return err == nil &&
			msg.ContentType == "application/json" &&
			msg.DeliveryMode == amqp.Persistent &&
			msg.AppId == "salt-be" &&
			string(msg.Body) == `{"id":"1"}`
	})).Return(nil).Once()

	c, err := newClient(ch, Config{AppID: "salt-be"})
	require.NoError(t, err)
	require.NoError(t, c.Publish(context.Background(), "product.created", []byte(`{"id":"1"}`)))
	ch.AssertExpectations(t)
}

func TestClient_Publish_Errors(t *testing.T) {
	ch := new(mockChannel)
	ch.On("ExchangeDeclare", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	ch.On("Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(amqp.ErrClosed).Once()

	c, err := newClient(ch, Config{})
	require.NoError(t, err)

	err = c.Publish(context.Background(), "product.deleted", nil)
	assert.ErrorIs(t, err, amqp.ErrClosed)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, c.Publish(ctx, "product.deleted", nil), context.Canceled)
}

func TestClient_Close(t *testing.T) {
	ch := new(mockChannel)
	ch.On("Close").Return(nil).Once()

	c := &Client{channel: ch}
	assert.NoError(t, c.Close())
	ch.AssertExpectations(t)
}
