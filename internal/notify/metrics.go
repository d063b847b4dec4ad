package notify

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// InstrumentedNotifier counts delivery outcomes of the wrapped Notifier.
type InstrumentedNotifier struct {
	next     Notifier
	attempts *prometheus.CounterVec
}

var _ Notifier = (*InstrumentedNotifier)(nil)

// NewInstrumentedNotifier wraps next and registers its counter with reg.
func NewInstrumentedNotifier(next Notifier, reg prometheus.Registerer) (*InstrumentedNotifier, error) {
	attempts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "school",
		Subsystem: "notify",
		Name:      "verification_emails_total",
		Help:      "Verification email delivery attempts by outcome.",
	}, []string{"outcome"})

	if err := reg.Register(attempts); err != nil {
		var already prometheus.AlreadyRegisteredError
		if !errors.As(err, &already) {
			return nil, err
		}
		attempts = already.ExistingCollector.(*prometheus.CounterVec)
	}

	return &InstrumentedNotifier{next: next, attempts: attempts}, nil
}

// SendAccountVerificationEmail implements Notifier.
func (n *InstrumentedNotifier) SendAccountVerificationEmail(ctx context.Context, msg VerificationEmail) error {
	err := n.next.SendAccountVerificationEmail(ctx, msg)
	if err != nil {
		n.attempts.WithLabelValues("failed").Inc()
		return err
	}
	n.attempts.WithLabelValues("sent").Inc()
	return nil
}
