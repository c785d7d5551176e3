package notification

import (
	"context"
	"regexp"

	"carenest/models"

	"go.uber.org/zap"
)

// SMSSender delivers a text message to a phone number.
type SMSSender interface {
	SendSMS(ctx context.Context, phone, message string) error
}

// LogSMSSender writes outgoing messages to the log. It stands in for an SMS
// gateway integration. With Redact set, digit runs (codes) and all but the last
// digits of the phone number are masked before anything is logged.
type LogSMSSender struct {
	Logger *zap.Logger
	Redact bool
}

var codePattern = regexp.MustCompile(`\d{4,}`)

func (s LogSMSSender) SendSMS(ctx context.Context, phone, message string) error {
	if s.Redact {
		s.Logger.Info("sms sent",
			zap.String("phone", maskPhone(phone)),
			zap.String("message", codePattern.ReplaceAllString(message, "******")))
		return nil
	}
	s.Logger.Sugar().Debugf("Sending SMS to %s: %s", phone, message)
	return nil
}

func maskPhone(phone string) string {
	if len(phone) <= 3 {
		return "***"
	}
	return "***" + phone[len(phone)-3:]
}

// LogDispatcher logs notifications instead of pushing them. It is used when no
// FCM credentials are configured.
type LogDispatcher struct {
	Logger *zap.Logger
}

func (d LogDispatcher) Notify(ctx context.Context, n models.Notification) error {
	d.Logger.Info("notification",
		zap.String("recipient", n.RecipientID), zap.String("type", n.Type),
		zap.String("title", n.Title), zap.String("body", n.Body))
	return nil
}
