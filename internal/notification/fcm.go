package notification

import (
	"context"
	"fmt"
	"log"

	"firebase.google.com/go/v4/messaging"
)

// Messenger is the part of *messaging.Client the FCM channel needs.
type Messenger interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// FCMChannel pushes changes to every device subscribed to one FCM topic.
type FCMChannel struct {
	client Messenger
	topic  string
}

func NewFCMChannel(client Messenger, topic string) *FCMChannel {
	return &FCMChannel{client: client, topic: topic}
}

func (f *FCMChannel) Name() string { return "fcm" }

// Send publishes the change as a topic message
func (f *FCMChannel) Send(ctx context.Context, change Change) error {
	if f.client == nil {
		return fmt.Errorf("FCM client not initialized")
	}

	message := &messaging.Message{
		Topic: f.topic,
		Notification: &messaging.Notification{
			Title: change.Subject(),
			Body:  change.Body(),
		},
		Data: map[string]string{
			"request_id": change.RequestID,
			"action":     change.Action,
			"event_id":   change.EventID,
		},
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID:    "calendar_changes",
				DefaultSound: true,
			},
		},
		Webpush: &messaging.WebpushConfig{
			Notification: &messaging.WebpushNotification{
				Title: change.Subject(),
				Body:  change.Body(),
				Icon:  "/icon-192x192.png",
			},
		},
	}

	response, err := f.client.Send(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send topic message: %w", err)
	}

	log.Printf("✅ FCM topic message sent: %s\n", response)
	return nil
}
