package cron

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// QRTokenSweeper removes QR tokens that expired without being redeemed.
type QRTokenSweeper interface {
	ClearExpiredQRTokens(ctx context.Context, now time.Time) (int64, error)
}

// StartQRSweeper clears expired QR tokens every 15 minutes. Stop the returned
// scheduler on shutdown.
func StartQRSweeper(repo QRTokenSweeper, logger *zap.Logger) (*cron.Cron, error) {
	c := cron.New()
	if _, err := c.AddFunc("*/15 * * * *", func() { sweepQRTokens(context.Background(), repo, logger) }); err != nil {
		return nil, err
	}
	c.Start()
	logger.Info("qr token sweeper scheduled")
	return c, nil
}

func sweepQRTokens(ctx context.Context, repo QRTokenSweeper, logger *zap.Logger) {
	n, err := repo.ClearExpiredQRTokens(ctx, time.Now().UTC())
	if err != nil {
		logger.Error("qr token sweep failed", zap.Error(err))
		return
	}
	if n > 0 {
		logger.Info("cleared expired qr tokens", zap.Int64("count", n))
	}
}
