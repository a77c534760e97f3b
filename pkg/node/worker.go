package node

import (
	"context"
	"time"

	"github.com/lioia/corpus-pagerank/pkg/utils"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"
	protobuf "google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

const protobufContentType = "application/x-protobuf"

// ErrQueueClosed is returned when the broker closes a delivery channel.
var ErrQueueClosed = xerrors.New("queue delivery channel closed")

// Channel is the subset of *amqp.Channel used by Worker and Dispatcher.
type Channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Cancel(consumer string, noWait bool) error
}

// Worker consumes ranking jobs from WorkQueue and publishes one Response per
// job to the job's ReplyTo queue, or ResultQueue when unset. Jobs that cannot
// be computed still get a Response, with Error set.
type Worker struct {
	Channel     Channel
	WorkQueue   string
	ResultQueue string
	Limits      Limits
	Logger      *logrus.Entry
}

// Run handles jobs until ctx is done or the delivery channel closes.
func (w *Worker) Run(ctx context.Context) error {
	if w.Logger == nil {
		w.Logger = utils.DiscardLogger()
	}
	msgs, err := w.Channel.Consume(
		w.WorkQueue, // queue
		"",          // consumer
		false,       // auto-ack
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		return xerrors.Errorf("could not register a consumer for %s: %w", w.WorkQueue, err)
	}
	utils.NodeLog("worker", "Registered consumer for queue %s", w.WorkQueue)
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return ErrQueueClosed
			}
			w.handle(ctx, d)
		}
	}
}

func (w *Worker) handle(ctx context.Context, d amqp.Delivery) {
	res := w.process(d)
	s, err := res.Struct()
	if err != nil {
		utils.NackOnError(d, err)
		return
	}
	data, err := protobuf.Marshal(s)
	if err != nil {
		utils.NackOnError(d, err)
		return
	}
	key := w.ResultQueue
	if d.ReplyTo != "" {
		key = d.ReplyTo
	}
	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	err = w.Channel.PublishWithContext(pubCtx,
		"",    // exchange
		key,   // routing key
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			DeliveryMode:  amqp.Persistent,
			ContentType:   protobufContentType,
			CorrelationId: res.ID,
			Body:          data,
		})
	if err != nil {
		utils.NackOnError(d, err)
		return
	}
	if err := d.Ack(false); err != nil {
		utils.WarnLog("worker", "could not ACK job %s: %v", res.ID, err)
	}
}

func (w *Worker) process(d amqp.Delivery) *Response {
	var in structpb.Struct
	if err := protobuf.Unmarshal(d.Body, &in); err != nil {
		return &Response{ID: d.CorrelationId, Error: xerrors.Errorf("decode job: %v: %w", err, ErrBadRequest).Error()}
	}
	req, err := RequestFromStruct(&in)
	if err != nil {
		return &Response{ID: d.CorrelationId, Error: err.Error()}
	}
	if req.ID == "" {
		req.ID = d.CorrelationId
	}
	utils.NodeLog("worker", "Computing job %s", req.ID)
	res, err := Compute(req, w.Limits, w.Logger)
	if err != nil {
		w.Logger.WithError(err).WithField("id", req.ID).Warn("job failed")
		return &Response{ID: req.ID, Method: req.Method, Error: err.Error()}
	}
	utils.NodeLog("worker", "Completed job %s", req.ID)
	return res
}
