// Package publish hands compiled plans to the execution engine over Redis.
package publish

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const planKeyPrefix = "drip:plan:" // latest plan per campaign: drip:plan:{campaign_id}

// ErrNoPlan is returned by Fetch when a campaign has never been delivered.
var ErrNoPlan = errors.New("no plan delivered for campaign")

// Envelope is the pub/sub message announcing a new plan.
type Envelope struct {
	CampaignID string          `json:"campaign_id"`
	Plan       json.RawMessage `json:"plan"`
}

// RedisSink stores the latest plan of each campaign and announces it on a
// pub/sub channel.
type RedisSink struct {
	client  *redis.Client
	channel string
}

func NewRedisSink(client *redis.Client, channel string) *RedisSink {
	return &RedisSink{client: client, channel: channel}
}

// Dial connects to addr and checks the connection.
func Dial(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", addr, err)
	}
	return client, nil
}

func (s *RedisSink) Channel() string { return s.channel }

// Deliver replaces the campaign's stored plan and publishes it in one
// pipeline round trip.
func (s *RedisSink) Deliver(ctx context.Context, campaignID string, plan []byte) error {
	msg, err := json.Marshal(Envelope{CampaignID: campaignID, Plan: plan})
	if err != nil {
		return fmt.Errorf("encoding plan envelope: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, planKey(campaignID), plan, 0)
	pipe.Publish(ctx, s.channel, msg)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delivering plan for %s: %w", campaignID, err)
	}
	return nil
}

// Fetch returns the last plan delivered for a campaign.
func (s *RedisSink) Fetch(ctx context.Context, campaignID string) ([]byte, error) {
	data, err := s.client.Get(ctx, planKey(campaignID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", ErrNoPlan, campaignID)
	}
	if err != nil {
		return nil, fmt.Errorf("fetching plan for %s: %w", campaignID, err)
	}
	return data, nil
}

func planKey(campaignID string) string {
	return planKeyPrefix + campaignID
}
