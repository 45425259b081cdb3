package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/vibast-solutions/ms-go-invoicing/app/events"
)

var consumeCmd = &cobra.Command{
	Use:   "consume",
	Short: "Consume payment status events",
	Long:  "Read payment status changes from Kafka and issue invoices for completed payments.",
	Run:   runConsume,
}

func init() {
	rootCmd.AddCommand(consumeCmd)
}

func runConsume(_ *cobra.Command, _ []string) {
	cfg, svc, cleanup := mustCreateServices()
	defer cleanup()

	consumer := events.NewConsumer(cfg.Kafka, svc.invoice)
	defer func() {
		if err := consumer.Close(); err != nil {
			logrus.WithError(err).Warn("Failed to close kafka reader")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logrus.WithField("topic", cfg.Kafka.Topic).WithField("group_id", cfg.Kafka.GroupID).Info("Starting payment status consumer")
	if err := consumer.Run(ctx); err != nil {
		logrus.WithError(err).Error("Payment status consumer failed")
	}
}
