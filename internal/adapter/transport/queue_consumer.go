package transport

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/MayureshM/rpp-workorder/internal/domain/entities"
)

// Handler processes one decoded event. seen is the batch-scoped duplicate
// suppression map; the consumer owns its lifetime, one map per batch.
type Handler interface {
	Handle(ctx context.Context, ev entities.Event, seen map[string]struct{}) error
}

// SQSAPI is the slice of the SQS client the consumers use.
type SQSAPI interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
	ChangeMessageVisibility(ctx context.Context, params *sqs.ChangeMessageVisibilityInput, optFns ...func(*sqs.Options)) (*sqs.ChangeMessageVisibilityOutput, error)
}

// queueRecord is the envelope both queues carry: the original stream record
// data, base64 encoded, plus the reason it was queued.
type queueRecord struct {
	Kinesis struct {
		Data string `json:"data"`
	} `json:"kinesis"`
	Reason string `json:"reason,omitempty"`
}

func newQueueRecord(data []byte, reason string) queueRecord {
	var rec queueRecord
	rec.Kinesis.Data = base64.StdEncoding.EncodeToString(data)
	rec.Reason = reason
	return rec
}

// Publisher sends queue records to one queue (retry or dead-letter).
type Publisher struct {
	client   SQSAPI
	queueURL string
	log      *zap.Logger
}

func NewPublisher(client SQSAPI, queueURL string, log *zap.Logger) *Publisher {
	return &Publisher{client: client, queueURL: queueURL, log: log}
}

func (p *Publisher) Send(ctx context.Context, rec queueRecord) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal queue record: %w", err)
	}
	_, err = p.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(p.queueURL),
		MessageBody: aws.String(string(body)),
	})
	if err != nil {
		return fmt.Errorf("send to %s: %w", p.queueURL, err)
	}
	return nil
}

const (
	receiveBatchSize  = 10
	receiveWaitTime   = 20 * time.Second
	defaultRetryDelay = 30 * time.Second
)

// QueueConsumer drains the retry queue: records that hit store throttling on
// the stream path land here and are reprocessed with a delay between
// attempts. Throttled again means the message stays on the queue with a
// pushed-out visibility timeout; unrecoverable failures go to dead-letter.
type QueueConsumer struct {
	client     SQSAPI
	handler    Handler
	deadLetter *Publisher
	queueURL   string
	retryDelay time.Duration
	log        *zap.Logger
}

func NewQueueConsumer(client SQSAPI, handler Handler, deadLetter *Publisher, queueURL string, log *zap.Logger) *QueueConsumer {
	return &QueueConsumer{
		client:     client,
		handler:    handler,
		deadLetter: deadLetter,
		queueURL:   queueURL,
		retryDelay: defaultRetryDelay,
		log:        log,
	}
}

// Run long-polls until the context is cancelled.
func (c *QueueConsumer) Run(ctx context.Context) error {
	c.log.Info("retry queue consumer started", zap.String("queue_url", c.queueURL))
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		out, err := c.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:            aws.String(c.queueURL),
			MaxNumberOfMessages: receiveBatchSize,
			WaitTimeSeconds:     int32(receiveWaitTime / time.Second),
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.log.Error("receive failed", zap.Error(err))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(time.Second):
			}
			continue
		}
		if len(out.Messages) == 0 {
			continue
		}

		batchID := uuid.NewString()
		seen := make(map[string]struct{})
		for _, msg := range out.Messages {
			c.processMessage(ctx, batchID, seen, aws.ToString(msg.Body), aws.ToString(msg.ReceiptHandle))
		}
	}
}

func (c *QueueConsumer) processMessage(ctx context.Context, batchID string, seen map[string]struct{}, body, receiptHandle string) {
	var rec queueRecord
	if err := json.Unmarshal([]byte(body), &rec); err != nil {
		c.log.Warn("malformed queue message, dropping",
			zap.String("batch_id", batchID), zap.Error(err))
		c.delete(ctx, receiptHandle)
		return
	}
	data, err := base64.StdEncoding.DecodeString(rec.Kinesis.Data)
	if err != nil {
		c.log.Warn("invalid base64 payload, dropping",
			zap.String("batch_id", batchID), zap.Error(err))
		c.delete(ctx, receiptHandle)
		return
	}

	ev, err := DecodeRecord(data)
	if err != nil {
		c.log.Warn("undecodable queue record, dropping",
			zap.String("batch_id", batchID), zap.Error(err))
		c.delete(ctx, receiptHandle)
		return
	}

	err = c.handler.Handle(ctx, ev, seen)
	switch {
	case err == nil:
		c.delete(ctx, receiptHandle)
	case errors.Is(err, entities.ErrStoreThrottled):
		c.log.Warn("store still throttled, delaying redelivery",
			zap.String("batch_id", batchID), zap.Error(err))
		if _, verr := c.client.ChangeMessageVisibility(ctx, &sqs.ChangeMessageVisibilityInput{
			QueueUrl:          aws.String(c.queueURL),
			ReceiptHandle:     aws.String(receiptHandle),
			VisibilityTimeout: int32(c.retryDelay / time.Second),
		}); verr != nil {
			c.log.Error("visibility change failed", zap.Error(verr))
		}
	default:
		c.log.Error("unrecoverable failure, dead-lettering",
			zap.String("batch_id", batchID), zap.Error(err))
		if derr := c.deadLetter.Send(ctx, newQueueRecord(data, err.Error())); derr != nil {
			c.log.Error("dead-letter send failed", zap.Error(derr))
			return
		}
		c.delete(ctx, receiptHandle)
	}
}

func (c *QueueConsumer) delete(ctx context.Context, receiptHandle string) {
	if _, err := c.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(c.queueURL),
		ReceiptHandle: aws.String(receiptHandle),
	}); err != nil {
		c.log.Error("delete message failed", zap.Error(err))
	}
}
