package telegram

import (
	"context"
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockBot struct{ mock.Mock }

func (m *MockBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	args := m.Called(c)
	return tgbotapi.Message{}, args.Error(0)
}

func TestStaffNotifier_NotifyStaff(t *testing.T) {
	t.Run("should post the text to the staff chat", func(t *testing.T) {
		bot := &MockBot{}
		bot.On("Send", mock.MatchedBy(func(c tgbotapi.Chattable) bool {
			msg, ok := c.(tgbotapi.MessageConfig)
			return ok && msg.ChatID == -100123 && msg.Text == "🚚 Ruta 1 iniciada" && msg.DisableWebPagePreview
		})).Return(nil).Once()

		err := (&StaffNotifier{bot: bot, chatID: -100123}).NotifyStaff(t.Context(), "🚚 Ruta 1 iniciada")

		require.NoError(t, err)
		bot.AssertExpectations(t)
	})

	t.Run("should wrap send failures", func(t *testing.T) {
		bot := &MockBot{}
		bot.On("Send", mock.Anything).Return(errors.New("Forbidden: bot was kicked")).Once()

		err := (&StaffNotifier{bot: bot, chatID: 1}).NotifyStaff(t.Context(), "hola")

		assert.ErrorContains(t, err, "telegram send")
	})

	t.Run("should not send once the context is done", func(t *testing.T) {
		bot := &MockBot{}
		ctx, cancel := context.WithCancel(t.Context())
		cancel()

		err := (&StaffNotifier{bot: bot, chatID: 1}).NotifyStaff(ctx, "hola")

		assert.ErrorIs(t, err, context.Canceled)
		bot.AssertNotCalled(t, "Send", mock.Anything)
	})
}
