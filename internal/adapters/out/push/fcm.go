// Package push sends mobile notifications through Firebase Cloud Messaging.
package push

import (
	"context"
	"fmt"
	"strings"

	"lastmile/internal/core/domain/model/event"
	"lastmile/internal/core/ports"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/errorutils"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

type messagingClient interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// FCMSender implements ports.PushSender.
type FCMSender struct {
	client messagingClient
}

// NewFCMSender initialises the Firebase Admin SDK from a service-account file.
func NewFCMSender(ctx context.Context, credentialsFile string) (*FCMSender, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("initialising firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("initialising firebase messaging client: %w", err)
	}
	return &FCMSender{client: client}, nil
}

// Send delivers p to one device. Tokens FCM reports as unregistered, unknown
// or bound to another sender come back as ports.ErrDeviceTokenIsGone. An
// INVALID_ARGUMENT may blame the message rather than the token, so it never
// prunes.
func (s *FCMSender) Send(ctx context.Context, deviceToken string, p event.Push, data map[string]string) error {
	_, err := s.client.Send(ctx, buildMessage(deviceToken, p, data))
	if err == nil {
		return nil
	}
	if messaging.IsUnregistered(err) || messaging.IsSenderIDMismatch(err) || errorutils.IsNotFound(err) {
		return fmt.Errorf("%w: %v", ports.ErrDeviceTokenIsGone, err)
	}
	return fmt.Errorf("sending FCM message: %w", err)
}

func buildMessage(deviceToken string, p event.Push, data map[string]string) *messaging.Message {
	msg := &messaging.Message{
		Token: deviceToken,
		Data:  data,
		Notification: &messaging.Notification{
			Title: p.Title,
			Body:  p.Body,
		},
		Android: &messaging.AndroidConfig{
			Priority: "high",
		},
	}
	// FCM rejects web links that are not absolute HTTPS URLs.
	if strings.HasPrefix(p.Link, "https://") {
		msg.Webpush = &messaging.WebpushConfig{
			FCMOptions: &messaging.WebpushFCMOptions{Link: p.Link},
		}
	}
	return msg
}
