//go:build !gcloud

package config

import "errors"

func (c *PubSubConfig) Validate() error {
	if c.NatsURL == "" {
		return errors.New("NATS_URL is required for event publishing")
	}
	return nil
}
