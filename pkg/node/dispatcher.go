package node

import (
	"context"
	"sync"

	"github.com/lioia/corpus-pagerank/pkg/utils"
	gonanoid "github.com/matoous/go-nanoid/v2"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"
	protobuf "google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// Dispatcher submits ranking jobs to WorkQueue and collects their responses
// from a private reply queue, declared exclusive and auto-delete on first use.
// Only this dispatcher's jobs reply there, so responses to unknown jobs are
// stale and get dropped.
type Dispatcher struct {
	Channel   Channel
	WorkQueue string
	Logger    *logrus.Entry

	mu         sync.Mutex
	replyQueue string
}

// ReplyQueue returns the name of the dispatcher's reply queue.
func (d *Dispatcher) ReplyQueue() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.replyQueue != "" {
		return d.replyQueue, nil
	}
	q, err := d.Channel.QueueDeclare(
		"",    // name
		false, // durable
		true,  // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return "", xerrors.Errorf("declare reply queue: %w", err)
	}
	d.replyQueue = q.Name
	return d.replyQueue, nil
}

// Publish sends req to the work queue and returns its job ID, generated when
// req.ID is empty.
func (d *Dispatcher) Publish(ctx context.Context, req Request) (string, error) {
	if req.ID == "" {
		id, err := gonanoid.New()
		if err != nil {
			return "", err
		}
		req.ID = id
	}
	replyTo, err := d.ReplyQueue()
	if err != nil {
		return "", err
	}
	s, err := req.Struct()
	if err != nil {
		return "", xerrors.Errorf("encode job: %w", err)
	}
	data, err := protobuf.Marshal(s)
	if err != nil {
		return "", xerrors.Errorf("encode job: %w", err)
	}
	err = d.Channel.PublishWithContext(ctx,
		"",          // exchange
		d.WorkQueue, // routing key
		false,       // mandatory
		false,       // immediate
		amqp.Publishing{
			DeliveryMode:  amqp.Persistent,
			ContentType:   protobufContentType,
			CorrelationId: req.ID,
			ReplyTo:       replyTo,
			Body:          data,
		})
	if err != nil {
		return "", xerrors.Errorf("publish job %s: %w", req.ID, err)
	}
	utils.NodeLog("dispatcher", "Published job %s", req.ID)
	return req.ID, nil
}

// Collect waits for the responses of ids. On cancellation it returns the
// responses gathered so far together with the context error.
func (d *Dispatcher) Collect(ctx context.Context, ids ...string) (map[string]*Response, error) {
	logger := d.Logger
	if logger == nil {
		logger = utils.DiscardLogger()
	}
	pending := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		pending[id] = struct{}{}
	}
	results := make(map[string]*Response, len(ids))
	if len(pending) == 0 {
		return results, nil
	}

	replyTo, err := d.ReplyQueue()
	if err != nil {
		return nil, err
	}
	tag, err := gonanoid.New()
	if err != nil {
		return nil, err
	}
	tag = "dispatcher-" + tag
	msgs, err := d.Channel.Consume(
		replyTo, // queue
		tag,     // consumer
		false,   // auto-ack
		false,   // exclusive
		false,   // no-local
		false,   // no-wait
		nil,     // args
	)
	if err != nil {
		return nil, xerrors.Errorf("could not register a consumer for %s: %w", replyTo, err)
	}
	defer func() {
		if err := d.Channel.Cancel(tag, false); err != nil {
			logger.WithError(err).Warn("could not cancel result consumer")
		}
	}()

	for len(pending) > 0 {
		select {
		case <-ctx.Done():
			return results, ctx.Err()
		case msg, ok := <-msgs:
			if !ok {
				return results, ErrQueueClosed
			}
			var s structpb.Struct
			if err := protobuf.Unmarshal(msg.Body, &s); err != nil {
				logger.WithError(err).Warn("dropping undecodable result")
				_ = msg.Reject(false)
				continue
			}
			res, err := ResponseFromStruct(&s)
			if err != nil {
				logger.WithError(err).Warn("dropping malformed result")
				_ = msg.Reject(false)
				continue
			}
			if err := msg.Ack(false); err != nil {
				utils.WarnLog("dispatcher", "could not ACK result %s: %v", res.ID, err)
			}
			if _, ok := pending[res.ID]; !ok {
				logger.WithField("id", res.ID).Warn("dropping result of unknown job")
				continue
			}
			delete(pending, res.ID)
			results[res.ID] = res
		}
	}
	return results, nil
}

// Rank publishes req and waits for its response. A job that failed on the
// worker is returned as an error.
func (d *Dispatcher) Rank(ctx context.Context, req Request) (*Response, error) {
	id, err := d.Publish(ctx, req)
	if err != nil {
		return nil, err
	}
	results, err := d.Collect(ctx, id)
	if err != nil {
		return nil, err
	}
	res := results[id]
	if res.Error != "" {
		return res, xerrors.Errorf("job %s: %s", id, res.Error)
	}
	return res, nil
}
