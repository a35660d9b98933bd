// Package notify stands in for outbound SMS, WhatsApp and email delivery.
// Nothing is sent; every message is written to the log and reported as
// logged.
package notify

import (
	"context"

	"github.com/Domenick1991/parcelbooking/internal/domain"
	"github.com/sirupsen/logrus"
)

type LogSender struct {
	log logrus.FieldLogger
}

func NewLogSender(log logrus.FieldLogger) *LogSender {
	return &LogSender{log: log}
}

// Send records msg and returns the status to store on its MessageLog.
func (s *LogSender) Send(_ context.Context, msg domain.MessageLog) (string, error) {
	s.log.WithFields(logrus.Fields{
		"channel":      msg.Channel,
		"recipient":    msg.Recipient,
		"template_key": msg.TemplateKey,
	}).Info("notification logged, delivery not configured")
	return domain.MessageLogStatusLogged, nil
}
