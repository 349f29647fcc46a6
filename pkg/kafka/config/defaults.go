package kafka_config

import "time"

const (
	DefaultKafkaBrokers = "localhost:9092"
	DefaultKafkaEnabled = false

	DefaultProducerMaxAttempts  = 3
	DefaultProducerBatchTimeout = 10 * time.Millisecond
	DefaultProducerRequireAcks  = -1 // Require all replicas
	DefaultProducerCompression  = "snappy"
	DefaultProducerAsync        = false
)
