package events

import (
	"context"
	"fmt"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// SNSPublisher fans order events out to an SNS topic.
type SNSPublisher struct {
	client   *sns.Client
	topicArn string
}

func NewSNSPublisher(cfg sdkaws.Config, topicArn string) *SNSPublisher {
	return &SNSPublisher{client: sns.NewFromConfig(cfg), topicArn: topicArn}
}

// Publish sends a raw message to the configured topic.
func (p *SNSPublisher) Publish(ctx context.Context, message []byte) error {
	if p.topicArn == "" {
		return fmt.Errorf("empty topicArn")
	}
	msg := string(message)
	input := &sns.PublishInput{
		TopicArn: &p.topicArn,
		Message:  &msg,
	}
	if _, err := p.client.Publish(ctx, input); err != nil {
		return fmt.Errorf("sns publish failed for topic %s: %w", p.topicArn, err)
	}
	return nil
}
