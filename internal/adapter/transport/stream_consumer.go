package transport

import (
	"context"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/kinesis"
	"github.com/aws/aws-sdk-go-v2/service/kinesis/types"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/MayureshM/rpp-workorder/internal/domain/entities"
)

// KinesisAPI is the slice of the Kinesis client the stream consumer uses.
type KinesisAPI interface {
	ListShards(ctx context.Context, params *kinesis.ListShardsInput, optFns ...func(*kinesis.Options)) (*kinesis.ListShardsOutput, error)
	GetShardIterator(ctx context.Context, params *kinesis.GetShardIteratorInput, optFns ...func(*kinesis.Options)) (*kinesis.GetShardIteratorOutput, error)
	GetRecords(ctx context.Context, params *kinesis.GetRecordsInput, optFns ...func(*kinesis.Options)) (*kinesis.GetRecordsOutput, error)
}

const (
	getRecordsLimit    = 100
	shardPollInterval  = time.Second
	consumeMaxBackoff  = 30 * time.Second
	consumeBaseBackoff = time.Second
)

// StreamConsumer polls the change-capture stream and feeds each batch of
// records through the handler. Events that hit store throttling are pushed to
// the retry queue; events that fail for unknown reasons are dead-lettered.
// The consumer itself never stops on a bad record.
type StreamConsumer struct {
	client     KinesisAPI
	handler    Handler
	retry      *Publisher
	deadLetter *Publisher
	streamName string
	log        *zap.Logger
}

func NewStreamConsumer(client KinesisAPI, handler Handler, retry, deadLetter *Publisher, streamName string, log *zap.Logger) *StreamConsumer {
	return &StreamConsumer{
		client:     client,
		handler:    handler,
		retry:      retry,
		deadLetter: deadLetter,
		streamName: streamName,
		log:        log,
	}
}

// Run consumes every shard of the stream until the context is cancelled,
// with exponential backoff on transient stream errors.
func (c *StreamConsumer) Run(ctx context.Context) error {
	c.log.Info("stream consumer started", zap.String("stream", c.streamName))

	backoff := consumeBaseBackoff
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if err := c.consumeShards(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.log.Error("stream consume failed",
				zap.Error(err), zap.Duration("backoff", backoff))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(backoff):
			}
			backoff *= 2
			if backoff > consumeMaxBackoff {
				backoff = consumeMaxBackoff
			}
			continue
		}
		backoff = consumeBaseBackoff
	}
}

func (c *StreamConsumer) consumeShards(ctx context.Context) error {
	shards, err := c.client.ListShards(ctx, &kinesis.ListShardsInput{
		StreamName: aws.String(c.streamName),
	})
	if err != nil {
		return err
	}

	for _, shard := range shards.Shards {
		if err := c.consumeShard(ctx, aws.ToString(shard.ShardId)); err != nil {
			return err
		}
	}
	return nil
}

func (c *StreamConsumer) consumeShard(ctx context.Context, shardID string) error {
	iter, err := c.client.GetShardIterator(ctx, &kinesis.GetShardIteratorInput{
		StreamName:        aws.String(c.streamName),
		ShardId:           aws.String(shardID),
		ShardIteratorType: types.ShardIteratorTypeLatest,
	})
	if err != nil {
		return err
	}

	next := iter.ShardIterator
	for next != nil {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		out, err := c.client.GetRecords(ctx, &kinesis.GetRecordsInput{
			ShardIterator: next,
			Limit:         aws.Int32(getRecordsLimit),
		})
		if err != nil {
			return err
		}

		if len(out.Records) > 0 {
			c.processBatch(ctx, out.Records)
		} else {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(shardPollInterval):
			}
		}
		next = out.NextShardIterator
	}
	return nil
}

// processBatch runs one received batch through the handler with a fresh
// duplicate-suppression map scoped to the batch.
func (c *StreamConsumer) processBatch(ctx context.Context, records []types.Record) {
	batchID := uuid.NewString()
	seen := make(map[string]struct{})

	for _, record := range records {
		ev, err := DecodeRecord(record.Data)
		if err != nil {
			c.log.Warn("undecodable stream record, skipping",
				zap.String("batch_id", batchID), zap.Error(err))
			continue
		}

		err = c.handler.Handle(ctx, ev, seen)
		switch {
		case err == nil:
		case errors.Is(err, entities.ErrStoreThrottled):
			c.log.Warn("store throttled, queueing for retry",
				zap.String("batch_id", batchID), zap.Error(err))
			if qerr := c.retry.Send(ctx, newQueueRecord(record.Data, err.Error())); qerr != nil {
				c.log.Error("retry queue send failed", zap.Error(qerr))
			}
		default:
			c.log.Error("unrecoverable failure, dead-lettering",
				zap.String("batch_id", batchID), zap.Error(err))
			if derr := c.deadLetter.Send(ctx, newQueueRecord(record.Data, err.Error())); derr != nil {
				c.log.Error("dead-letter send failed", zap.Error(derr))
			}
		}
	}
}
