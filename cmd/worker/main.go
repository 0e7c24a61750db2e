package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/muhammadheryan/contact-manager/cmd/config"
	"github.com/muhammadheryan/contact-manager/model"
	"github.com/muhammadheryan/contact-manager/thirdparty/rabbitmq"
	"github.com/muhammadheryan/contact-manager/utils/logger"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	if err := logger.Init(cfg.Environment, cfg.LogLevel); err != nil {
		panic(err)
	}
	defer logger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumer, err := rabbitmq.NewConsumer(cfg.RabbitMQ.Host, cfg.RabbitMQ.Port, cfg.RabbitMQ.User, cfg.RabbitMQ.Password)
	if err != nil {
		logger.Fatal("err connect rabbitmq", zap.Error(err))
	}
	defer consumer.Close()

	done, err := consumer.Start(ctx, logContactEvent)
	if err != nil {
		logger.Fatal("err start consumer", zap.Error(err))
	}

	logger.Info("Worker consuming contact events", zap.String("host", cfg.RabbitMQ.Host))
	<-done
	logger.Info("Worker stopped")
}

// logContactEvent is the notification hook for contact changes, e.g. a new
// form submission.
func logContactEvent(ctx context.Context, ev model.ContactEvent) error {
	logger.Info("Contact event",
		zap.String("type", string(ev.Type)),
		zap.String("contact_id", ev.ContactID),
		zap.String("name", ev.Name),
		zap.String("email", ev.Email),
		zap.Time("occurred_at", ev.OccurredAt),
	)
	return nil
}
