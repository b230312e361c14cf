package queue

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/sirupsen/logrus"
)

var DefaultTaskTopic = "relstage.tasks"

var _ TaskQueue = (*KafkaTaskQueue)(nil)

// KafkaTaskQueue publishes task announcements keyed by task id.
type KafkaTaskQueue struct {
	producer *kafka.Producer
	topic    string
}

func NewKafkaTaskQueue(brokers, topic string) (*KafkaTaskQueue, error) {
	producer, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": brokers,
		"acks":              "all",
	})
	if err != nil {
		return nil, err
	}

	if topic == "" {
		topic = DefaultTaskTopic
	}

	return &KafkaTaskQueue{producer: producer, topic: topic}, nil
}

// PublishTask blocks until the broker acknowledges the message or ctx ends.
func (k *KafkaTaskQueue) PublishTask(ctx context.Context, announcement *TaskAnnouncement) error {
	value, err := json.Marshal(announcement)
	if err != nil {
		return err
	}

	delivery := make(chan kafka.Event, 1)
	err = k.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &k.topic, Partition: kafka.PartitionAny},
		Key:            []byte(strconv.Itoa(announcement.TaskID)),
		Value:          value,
	}, delivery)
	if err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case e := <-delivery:
		if m, ok := e.(*kafka.Message); ok && m.TopicPartition.Error != nil {
			return m.TopicPartition.Error
		}
		logrus.Debugf("task %d announced on %s", announcement.TaskID, k.topic)
		return nil
	}
}

func (k *KafkaTaskQueue) Close() error {
	k.producer.Flush(5000)
	k.producer.Close()
	return nil
}
