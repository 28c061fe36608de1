package events

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"github.com/oakpoint-health/clinic-core/pkg/logging"
)

type sqsSender interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// SQSPublisher forwards outbox entries to the downstream fan-out queue.
type SQSPublisher struct {
	client   sqsSender
	queueURL string
	logger   *logging.Logger
}

// NewSQSPublisher creates a publisher for the given queue URL.
func NewSQSPublisher(client sqsSender, queueURL string, logger *logging.Logger) *SQSPublisher {
	if logger == nil {
		logger = logging.Default()
	}
	return &SQSPublisher{
		client:   client,
		queueURL: queueURL,
		logger:   logger.WithComponent("events"),
	}
}

// Handle implements DeliveryHandler. The envelope is sent as the message
// body with the type and org carried as attributes for consumer filtering.
func (p *SQSPublisher) Handle(ctx context.Context, entry OutboxEntry) error {
	_, err := p.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(p.queueURL),
		MessageBody: aws.String(string(entry.Payload)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"event_type": {
				DataType:    aws.String("String"),
				StringValue: aws.String(entry.Type),
			},
			"org_id": {
				DataType:    aws.String("String"),
				StringValue: aws.String(entry.OrgID),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("events: failed to publish %s: %w", entry.Type, err)
	}
	p.logger.Debug("event published", "event_id", entry.ID, "type", entry.Type)
	return nil
}
