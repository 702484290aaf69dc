package queue

import (
	"context"
	"fmt"

	"cloud.google.com/go/pubsub"
	"go.uber.org/zap"
)

// PubSubProvider publishes notifications to a Google Cloud Pub/Sub topic.
// Authentication uses Application Default Credentials.
type PubSubProvider struct {
	client *pubsub.Client
	topic  *pubsub.Topic
	logger *zap.Logger
}

// NewPubSubProvider creates a client and verifies the topic exists, failing
// fast on misconfiguration.
func NewPubSubProvider(ctx context.Context, projectID, topicID string, logger *zap.Logger) (*PubSubProvider, error) {
	client, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("create pubsub client: %w", err)
	}
	topic := client.Topic(topicID)
	exists, err := topic.Exists(ctx)
	if err != nil {
		if closeErr := client.Close(); closeErr != nil {
			logger.Warn("failed to close pubsub client", zap.Error(closeErr))
		}
		return nil, fmt.Errorf("check pubsub topic %q: %w", topicID, err)
	}
	if !exists {
		if closeErr := client.Close(); closeErr != nil {
			logger.Warn("failed to close pubsub client", zap.Error(closeErr))
		}
		return nil, fmt.Errorf("pubsub topic %q does not exist in project %q", topicID, projectID)
	}
	return &PubSubProvider{
		client: client,
		topic:  topic,
		logger: logger,
	}, nil
}

// Publish sends the document ID. The send is asynchronous; the Pub/Sub client
// batches and retries in the background.
func (p *PubSubProvider) Publish(ctx context.Context, documentID string) error {
	result := p.topic.Publish(ctx, &pubsub.Message{Data: []byte(documentID)})
	// Fire and forget: the embedding worker tolerates redelivery, so we do
	// not block ingestion on broker acknowledgement.
	_ = result
	return nil
}

// Close stops the topic publisher and closes the client.
func (p *PubSubProvider) Close() error {
	p.topic.Stop()
	if err := p.client.Close(); err != nil {
		return fmt.Errorf("close pubsub client: %w", err)
	}
	return nil
}
