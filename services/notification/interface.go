package notification

import (
	"context"
	"fmt"

	"carenest/models"

	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
)

// Dispatcher delivers one notification. Implementations may fail; callers
// treat delivery as best effort.
type Dispatcher interface {
	Notify(ctx context.Context, n models.Notification) error
}

// Publisher hands a notification off for asynchronous delivery. Publish must
// never block the caller.
type Publisher interface {
	Publish(n models.Notification)
}

// UserLookup resolves the push token of a recipient.
type UserLookup interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// messageSender is the subset of the FCM client used here.
type messageSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// FCMDispatcher is the production implementation backed by Firebase Cloud Messaging.
type FCMDispatcher struct {
	users  UserLookup
	client messageSender
	logger *zap.Logger
}

func NewFCMDispatcher(users UserLookup, client *messaging.Client, logger *zap.Logger) (*FCMDispatcher, error) {
	if users == nil || client == nil {
		return nil, fmt.Errorf("notification dispatcher initialization error: user lookup or fcm client is nil")
	}
	return &FCMDispatcher{users: users, client: client, logger: logger}, nil
}

// Notify looks up the recipient's FCM token and sends a push.
func (d *FCMDispatcher) Notify(ctx context.Context, n models.Notification) error {
	u, err := d.users.GetByID(ctx, n.RecipientID)
	if err != nil {
		return fmt.Errorf("Notify: could not find user %s: %w", n.RecipientID, err)
	}
	if u.FCMToken == "" {
		return fmt.Errorf("Notify: user %s has no FCM token", n.RecipientID)
	}

	data := make(map[string]string, len(n.Data)+2)
	for k, v := range n.Data {
		data[k] = v
	}
	data["type"] = n.Type
	if _, ok := data["role"]; !ok {
		data["role"] = string(u.Role)
	}

	msg := &messaging.Message{
		Token: u.FCMToken,
		Notification: &messaging.Notification{
			Title: n.Title,
			Body:  n.Body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: "high_priority",
				Sound:     "default",
			},
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority":  "10",
				"apns-push-type": "alert",
			},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Sound: "default",
				},
			},
		},
	}

	id, err := d.client.Send(ctx, msg)
	if err != nil {
		return fmt.Errorf("Notify: failed to send FCM message: %w", err)
	}
	d.logger.Debug("push sent", zap.String("recipient", n.RecipientID), zap.String("type", n.Type), zap.String("messageId", id))
	return nil
}
