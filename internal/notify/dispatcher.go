package notify

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"jobradar/pipeline-service/internal/credstore"
	"jobradar/pipeline-service/internal/model"
)

// Dispatcher fans one alert out to every enabled channel. Channels fail
// independently: a bad webhook on one never blocks delivery on the others.
type Dispatcher struct {
	creds   credstore.Store
	senders map[string]Sender
	log     *zap.Logger
}

// NewDispatcher builds a Dispatcher over the given senders.
func NewDispatcher(creds credstore.Store, senders []Sender, log *zap.Logger) *Dispatcher {
	byName := make(map[string]Sender, len(senders))
	for _, s := range senders {
		byName[s.Name()] = s
	}
	return &Dispatcher{creds: creds, senders: byName, log: log.Named("notify")}
}

// SendAlert delivers rec on each enabled channel and returns the per-channel
// outcomes. A channel with no stored credential is skipped, not failed. The
// returned error is non-nil only on total failure: every channel that was
// actually attempted failed. Partial failure is best-effort success; callers
// inspect the outcomes, not the error.
func (d *Dispatcher) SendAlert(ctx context.Context, rec *model.Record, enabledChannels []string) ([]model.ChannelOutcome, error) {
	outcomes := make([]model.ChannelOutcome, 0, len(enabledChannels))
	attempted, failed := 0, 0

	for _, name := range enabledChannels {
		outcome := d.sendOne(ctx, name, rec)
		outcomes = append(outcomes, outcome)
		if outcome.Skipped {
			continue
		}
		attempted++
		if !outcome.OK {
			failed++
		}
	}

	if attempted > 0 && failed == attempted {
		var parts []string
		for _, o := range outcomes {
			if !o.OK && !o.Skipped {
				parts = append(parts, fmt.Sprintf("%s: %s", o.Channel, o.Error))
			}
		}
		return outcomes, fmt.Errorf("all %d channel(s) failed: %s", failed, strings.Join(parts, "; "))
	}
	return outcomes, nil
}

func (d *Dispatcher) sendOne(ctx context.Context, name string, rec *model.Record) model.ChannelOutcome {
	sender, ok := d.senders[name]
	if !ok {
		d.log.Warn("unknown channel", zap.String("channel", name))
		return model.ChannelOutcome{Channel: name, Skipped: true, Error: "unknown channel"}
	}

	cred, found, err := d.creds.Get(ctx, sender.CredentialKey())
	if err != nil {
		d.log.Error("credential lookup failed",
			zap.String("channel", name), zap.Error(err))
		return model.ChannelOutcome{Channel: name, Error: err.Error()}
	}
	if !found || cred == "" {
		d.log.Debug("channel not configured, skipping", zap.String("channel", name))
		return model.ChannelOutcome{Channel: name, Skipped: true, Error: credstore.ErrNotConfigured.Error()}
	}

	if err := sender.Send(ctx, cred, rec); err != nil {
		d.log.Error("channel send failed",
			zap.String("channel", name),
			zap.String("identityHash", rec.IdentityHash),
			zap.Error(err))
		return model.ChannelOutcome{Channel: name, Error: err.Error()}
	}

	d.log.Info("alert delivered",
		zap.String("channel", name),
		zap.String("identityHash", rec.IdentityHash))
	return model.ChannelOutcome{Channel: name, OK: true}
}
