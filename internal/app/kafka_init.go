package app

import (
	log "github.com/sirupsen/logrus"

	"github.com/victorcov/order-worker/internal/messaging/kafka"
)

// initKafkaProducer инициализирует producer для публикации терминальных отказов.
func initKafkaProducer(brokers []string, logger *log.Entry) (*kafka.Producer, error) {
	producer, err := kafka.NewProducer(brokers)
	if err != nil {
		logger.WithError(err).Error("failed to create kafka producer")
		return nil, err
	}

	logger.WithField("brokers", brokers).Info("kafka producer initialized")
	return producer, nil
}

// closeKafkaProducer закрывает producer если он не nil.
func closeKafkaProducer(producer *kafka.Producer, logger *log.Entry) {
	if producer == nil {
		return
	}

	if err := producer.Close(); err != nil {
		logger.WithError(err).Warn("failed to close kafka producer")
	} else {
		logger.Info("kafka producer closed")
	}
}
