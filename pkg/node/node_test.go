package node

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/require"
	"golang.org/x/xerrors"
	"google.golang.org/protobuf/types/known/structpb"
)

var threePages = map[string][]string{
	"1.html": {"2.html"},
	"2.html": {"1.html", "3.html"},
	"3.html": {"2.html"},
}

func ptr[T any](v T) *T { return &v }

func TestRequestStruct(t *testing.T) {
	req := Request{
		ID:        "job",
		Method:    "sample",
		Damping:   ptr(0.9),
		Samples:   ptr(200),
		Tolerance: ptr(0.01),
		MaxSweeps: ptr(50),
		Seed:      1<<62 + 1,
		Runs:      3,
		Links:     threePages,
	}
	s, err := req.Struct()
	require.NoError(t, err)
	decoded, err := RequestFromStruct(s)
	require.NoError(t, err)
	require.Equal(t, req, decoded)

	// unset parameters stay unset
	s, err = Request{Links: threePages}.Struct()
	require.NoError(t, err)
	decoded, err = RequestFromStruct(s)
	require.NoError(t, err)
	require.Nil(t, decoded.Damping)
	require.Nil(t, decoded.Samples)
	require.Nil(t, decoded.Tolerance)
	require.Nil(t, decoded.MaxSweeps)
}

func TestResponseStruct(t *testing.T) {
	res := &Response{
		ID:      "job",
		Method:  "iterate",
		Ranks:   map[string]float64{"a": 0.25, "b": 0.75},
		Steps:   12,
		Elapsed: 3 * time.Millisecond,
	}
	s, err := res.Struct()
	require.NoError(t, err)
	decoded, err := ResponseFromStruct(s)
	require.NoError(t, err)
	require.Equal(t, res, decoded)
}

func TestRequestFromStructRejectsWrongTypes(t *testing.T) {
	for name, m := range map[string]map[string]interface{}{
		"link type":        {"links": map[string]interface{}{"a": []interface{}{1.0}}},
		"damping type":     {"damping": "high"},
		"fractional count": {"samples": 0.5},
		"fractional runs":  {"runs": 2.5},
		"seed text":        {"seed": "lucky"},
		"inexact seed":     {"seed": float64(1 << 60)},
	} {
		s, err := structpb.NewStruct(m)
		require.NoError(t, err)
		_, err = RequestFromStruct(s)
		require.True(t, xerrors.Is(err, ErrBadRequest), "%s: %v", name, err)
	}

	_, err := RequestFromStruct(nil)
	require.True(t, xerrors.Is(err, ErrBadRequest))
}

func TestRequestOptions(t *testing.T) {
	opts := Request{Seed: 5}.Options()
	require.Equal(t, 0.85, opts.Damping)
	require.Equal(t, 10000, opts.Samples)
	require.Equal(t, int64(5), opts.Seed)

	opts = Request{Damping: ptr(0.0), Samples: ptr(0)}.Options()
	require.Equal(t, 0.0, opts.Damping)
	require.Equal(t, 0, opts.Samples)
}

func TestCompute(t *testing.T) {
	res, err := Compute(Request{Links: threePages}, Limits{}, nil)
	require.NoError(t, err)
	require.NotEmpty(t, res.ID)
	require.Equal(t, "iterate", res.Method)
	require.Greater(t, res.Ranks["2.html"], res.Ranks["1.html"])
	require.Greater(t, res.Steps, 0)

	res, err = Compute(Request{ID: "runs", Method: "sample", Samples: ptr(1000), Runs: 3, Links: threePages}, Limits{}, nil)
	require.NoError(t, err)
	require.Equal(t, "runs", res.ID)
	require.Equal(t, 3, res.Runs)
	require.Equal(t, 1000, res.Steps)
}

func TestComputeRejectsBadRequests(t *testing.T) {
	for name, req := range map[string]Request{
		"empty":          {},
		"self link":      {Links: map[string][]string{"a": {"a"}}},
		"unknown":        {Links: map[string][]string{"a": {"b"}}},
		"method":         {Method: "matrix", Links: threePages},
		"damping":        {Damping: ptr(1.5), Links: threePages},
		"zero damping":   {Damping: ptr(0.0), Links: threePages},
		"zero tolerance": {Tolerance: ptr(0.0), Links: threePages},
		"zero samples":   {Method: "sample", Samples: ptr(0), Links: threePages},
		"zero sweeps":    {MaxSweeps: ptr(0), Links: threePages},
		"runs":           {Runs: -1, Links: threePages},
	} {
		_, err := Compute(req, Limits{}, nil)
		require.True(t, xerrors.Is(err, ErrBadRequest), "%s: %v", name, err)
	}
}

func TestComputeEnforcesLimits(t *testing.T) {
	limits := Limits{MaxSamples: 100, MaxRuns: 2, MaxSweeps: 10}
	for name, req := range map[string]Request{
		"samples": {Method: "sample", Samples: ptr(101), Links: threePages},
		"runs":    {Method: "sample", Samples: ptr(10), Runs: 3, Links: threePages},
		"sweeps":  {MaxSweeps: ptr(11), Links: threePages},
	} {
		_, err := Compute(req, limits, nil)
		require.True(t, xerrors.Is(err, ErrBadRequest), "%s: %v", name, err)
	}

	// defaults requested by a client still have to fit
	_, err := Compute(Request{Method: "sample", Links: threePages}, limits, nil)
	require.True(t, xerrors.Is(err, ErrBadRequest))

	_, err = Compute(Request{Method: "sample", Samples: ptr(100), Runs: 2, MaxSweeps: ptr(10), Links: threePages}, limits, nil)
	require.NoError(t, err)

	_, err = Compute(Request{Method: "sample", Samples: ptr(10_000_001), Links: threePages}, Limits{}, nil)
	require.True(t, xerrors.Is(err, ErrBadRequest))
}

// broker is an in-memory stand-in for an AMQP channel.
type broker struct {
	mu      sync.Mutex
	queues  map[string]chan amqp.Delivery
	tag     uint64
	settled map[uint64]string
	private int
}

func newBroker() *broker {
	return &broker{queues: make(map[string]chan amqp.Delivery), settled: make(map[uint64]string)}
}

func (b *broker) queue(name string) chan amqp.Delivery {
	b.mu.Lock()
	defer b.mu.Unlock()
	q, ok := b.queues[name]
	if !ok {
		q = make(chan amqp.Delivery, 16)
		b.queues[name] = q
	}
	return q
}

func (b *broker) QueueDeclare(name string, _, _, _, _ bool, _ amqp.Table) (amqp.Queue, error) {
	if name == "" {
		b.mu.Lock()
		b.private++
		name = fmt.Sprintf("amq.gen-%d", b.private)
		b.mu.Unlock()
	}
	b.queue(name)
	return amqp.Queue{Name: name}, nil
}

func (b *broker) Consume(queue, _ string, _, _, _, _ bool, _ amqp.Table) (<-chan amqp.Delivery, error) {
	return b.queue(queue), nil
}

func (b *broker) PublishWithContext(_ context.Context, _, key string, _, _ bool, msg amqp.Publishing) error {
	b.mu.Lock()
	b.tag++
	tag := b.tag
	b.mu.Unlock()
	b.queue(key) <- amqp.Delivery{
		Acknowledger:  b,
		DeliveryTag:   tag,
		ContentType:   msg.ContentType,
		CorrelationId: msg.CorrelationId,
		ReplyTo:       msg.ReplyTo,
		Body:          msg.Body,
	}
	return nil
}

func (b *broker) Cancel(string, bool) error { return nil }

func (b *broker) settle(tag uint64, how string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.settled[tag] = how
	return nil
}

func (b *broker) Ack(tag uint64, _ bool) error          { return b.settle(tag, "ack") }
func (b *broker) Nack(tag uint64, _ bool, _ bool) error { return b.settle(tag, "nack") }
func (b *broker) Reject(tag uint64, _ bool) error       { return b.settle(tag, "reject") }

func (b *broker) count(how string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, v := range b.settled {
		if v == how {
			n++
		}
	}
	return n
}
