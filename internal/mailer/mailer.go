package mailer

import (
	"context"

	"github.com/sirupsen/logrus"
)

// ResetMailer はパスワードリセットURLの送付先。
// 本番はメール送信、開発はログ出力に差し替える。
type ResetMailer interface {
	SendPasswordReset(ctx context.Context, to string, resetURL string) error
}

// LogMailer は開発用。メールを送らずリセットURLをログに出すだけ。
type LogMailer struct {
	log *logrus.Logger
}

func NewLogMailer(log *logrus.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) SendPasswordReset(ctx context.Context, to string, resetURL string) error {
	m.log.WithFields(logrus.Fields{
		"to":        to,
		"reset_url": resetURL,
	}).Info("password reset URL (dev)")
	return nil
}
