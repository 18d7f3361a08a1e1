// Package sms generates verification codes and hands them to a Sender.
// The default sender only logs; the interface is the seam for a real
// gateway client.
package sms

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/rs/zerolog/log"
)

// Code returns a six-digit verification code.
func Code() string {
	return fmt.Sprintf("%06d", 100000+rand.Intn(900000))
}

type Sender interface {
	Send(ctx context.Context, to, body string) error
}

// LogSender is the development sender: it writes the message to the log
// instead of a gateway.
type LogSender struct{}

func (LogSender) Send(_ context.Context, to, body string) error {
	log.Info().Str("module", "sms").Str("to", to).Str("body", body).Msg("sms (not delivered, log sender)")
	return nil
}
