package services

import (
	"context"
	"encoding/json"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/panelmurah/ptero-store/internal/configs"
	"github.com/panelmurah/ptero-store/internal/views"
	kafkautils "github.com/panelmurah/ptero-store/pkg/kafka"
	"go.uber.org/zap"
)

// KafkaNotifier publishes lifecycle events to the event topic so downstream
// consumers (billing exports, support tooling) can react to sales.
type KafkaNotifier struct {
	logger   *zap.Logger
	producer *kafka.Producer
	topic    string
}

// NewKafkaNotifier creates the event topic and an idempotent producer.
func NewKafkaNotifier(logger *zap.Logger, ctx context.Context, cnf *configs.Config) (*KafkaNotifier, error) {
	topicConfig := kafkautils.KafkaConfig{
		BootstrapServers: cnf.KafkaBrokers,
		Topics: []kafkautils.TopicConfig{
			{
				Topic:             cnf.KafkaEventTopic,
				NumPartitions:     int(cnf.KafkaPartition),
				ReplicationFactor: 1,
				Config: map[string]string{
					"cleanup.policy": "delete",
				},
			},
		},
	}
	if err := kafkautils.InitKafkaTopics(logger, ctx, topicConfig); err != nil {
		return nil, err
	}

	p, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers":  cnf.KafkaBrokers,
		"acks":               "all",
		"enable.idempotence": "true",
		"retries":            "1",
	})
	if err != nil {
		return nil, err
	}
	logger.Info("kafka producer created successfully", zap.String("brokers", cnf.KafkaBrokers))
	go handleDeliveryReports(logger, p) // Async error handling
	return &KafkaNotifier{
		logger:   logger,
		producer: p,
		topic:    cnf.KafkaEventTopic,
	}, nil
}

// Notify produces the event asynchronously. Errors only reach the delivery
// report loop; they never propagate to the order lifecycle.
func (k *KafkaNotifier) Notify(_ context.Context, event views.Event) {
	msgBytes, err := json.Marshal(event)
	if err != nil {
		k.logger.Error("failed to marshal event", zap.Error(err))
		return
	}

	err = k.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{
			Topic:     &k.topic,
			Partition: kafka.PartitionAny,
		},
		Key:   []byte(event.Kind), // per-kind ordering is enough for consumers
		Value: msgBytes,
	}, nil)
	if err != nil {
		k.logger.Error("failed to produce event", zap.String("kind", string(event.Kind)), zap.Error(err))
	}
}

func (k *KafkaNotifier) Close() {
	k.producer.Close()
}

func handleDeliveryReports(logger *zap.Logger, p *kafka.Producer) {
	for e := range p.Events() {
		switch ev := e.(type) {
		case *kafka.Message:
			if ev.TopicPartition.Error != nil {
				logger.Error("failed to publish event", zap.Error(ev.TopicPartition.Error))
			}
		}
	}
}
