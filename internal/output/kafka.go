package output

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/chrisdamba/foodrollup/internal/models"
)

// KafkaOutput publishes envelopes through a synchronous sarama producer, keyed by scope
// so one scope's reports stay on one partition.
type KafkaOutput struct {
	producer sarama.SyncProducer
	logger   *zap.Logger
}

func newSaramaConfig(cfg models.KafkaConfig) *sarama.Config {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Retry.Max = 5
	saramaConfig.Producer.Retry.Backoff = 100 * time.Millisecond
	saramaConfig.Producer.Return.Successes = true // required by SyncProducer
	saramaConfig.Net.DialTimeout = 30 * time.Second
	saramaConfig.Net.ReadTimeout = 30 * time.Second
	saramaConfig.Net.WriteTimeout = 30 * time.Second

	if cfg.SessionTimeoutMs > 0 {
		saramaConfig.Consumer.Group.Session.Timeout = time.Duration(cfg.SessionTimeoutMs) * time.Millisecond
	} else {
		saramaConfig.Consumer.Group.Session.Timeout = 45 * time.Second
	}
	return saramaConfig
}

func brokers(list string) []string {
	var out []string
	for _, b := range strings.Split(list, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

func NewKafkaOutput(cfg models.KafkaConfig, logger *zap.Logger) (*KafkaOutput, error) {
	brokerList := brokers(cfg.BrokerList)
	if len(brokerList) == 0 {
		return nil, fmt.Errorf("kafka output needs at least one broker")
	}
	producer, err := sarama.NewSyncProducer(brokerList, newSaramaConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to create Sarama producer: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info("sarama producer created", zap.Strings("brokers", brokerList))
	return NewKafkaOutputWithProducer(producer, logger), nil
}

func NewKafkaOutputWithProducer(producer sarama.SyncProducer, logger *zap.Logger) *KafkaOutput {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KafkaOutput{producer: producer, logger: logger}
}

func (k *KafkaOutput) WriteMessage(topic string, msg []byte) error {
	if k.producer == nil {
		return fmt.Errorf("sarama producer is not initialized")
	}

	message := &sarama.ProducerMessage{
		Topic: topic,
		Value: sarama.ByteEncoder(msg),
	}
	var head struct {
		Scope string `json:"scope"`
	}
	if err := json.Unmarshal(msg, &head); err == nil && head.Scope != "" {
		message.Key = sarama.StringEncoder(head.Scope)
	}

	partition, offset, err := k.producer.SendMessage(message)
	if err != nil {
		k.logger.Error("failed to send report", zap.String("topic", topic), zap.Error(err))
		return err
	}
	k.logger.Debug("report sent", zap.String("topic", topic), zap.Int32("partition", partition), zap.Int64("offset", offset))
	return nil
}

func (k *KafkaOutput) Close() error {
	if k.producer != nil {
		return k.producer.Close()
	}
	return nil
}
