package utils

import (
	amqp "github.com/rabbitmq/amqp091-go"
)

func DeclareQueue(name string, ch *amqp.Channel) (queue amqp.Queue, err error) {
	queue, err = ch.QueueDeclare(
		name,  // name
		false, // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return
	}
	// One unacknowledged job per consumer at a time
	err = ch.Qos(1, 0, false)
	return
}

// NackOnError requeues d after a processing failure.
func NackOnError(d amqp.Delivery, err error) {
	WarnLog("queue", "could not process message %d: %v", d.DeliveryTag, err)
	// Message will be re-added to the queue
	if err = d.Nack(false, true); err != nil {
		WarnLog("queue", "could not NACK message %d: %v", d.DeliveryTag, err)
	}
}
