// Package payment drives the teacher listing-fee payment. There is no
// push channel from the gateway, so completion is detected by explicit
// status checks: an automatic one when the app regains focus and a manual
// one behind a button.
package payment

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"yuvsiksha-client/internal/api"
	"yuvsiksha-client/models"
	"yuvsiksha-client/monitoring"
)

type State string

const (
	StateProcessing  State = "processing"
	StateInterrupted State = "interrupted"
	StateVerifying   State = "verifying"
	StateSuccess     State = "success"
	StateError       State = "error"
)

type Trigger int

const (
	TriggerAutomatic Trigger = iota
	TriggerManual
)

// gateway is the slice of the API client the flow needs.
type gateway interface {
	VerifyPayment(ctx context.Context, orderID string) (*api.VerifyResult, error)
	UpdateListingStatus(ctx context.Context, isListed bool) error
}

// Opener shows the payment page in an external browser view and returns
// once control comes back to the app, whatever the payment outcome.
type Opener interface {
	Open(ctx context.Context, url string) error
}

// Alerter receives the user-facing messages of manual checks.
type Alerter interface {
	Alert(title, message string)
}

// Flow is the payment confirmation state machine:
// processing -> interrupted -> (verifying) -> success | error.
type Flow struct {
	mu    sync.Mutex
	state State

	order  models.PaymentOrder
	gw     gateway
	opener Opener
	alert  Alerter
	logger *zap.Logger

	opened   bool // browser view shown at least once
	checking bool // a status check is in flight
}

// NewFlow builds the machine for one order. A missing orderId or
// paymentSessionId is a fatal precondition failure: the flow starts in the
// error state and never issues a request.
func NewFlow(order models.PaymentOrder, gw gateway, opener Opener, alert Alerter, logger *zap.Logger) *Flow {
	f := &Flow{
		state:  StateProcessing,
		order:  order,
		gw:     gw,
		opener: opener,
		alert:  alert,
		logger: logger,
	}

	if order.OrderID == "" || order.PaymentSessionID == "" {
		logger.Error("Payment order is incomplete",
			zap.Bool("has_order_id", order.OrderID != ""),
			zap.Bool("has_session_id", order.PaymentSessionID != ""),
		)
		f.setStateLocked(StateError)
	}

	return f
}

func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// setStateLocked records a transition. Callers hold f.mu (or own the
// value exclusively, as in NewFlow).
func (f *Flow) setStateLocked(to State) {
	if f.state == to {
		return
	}
	monitoring.TrackPaymentTransition(string(f.state), string(to))
	f.logger.Info("Payment state changed",
		zap.String("order_id", f.order.OrderID),
		zap.String("from", string(f.state)),
		zap.String("to", string(to)),
	)
	f.state = to
}

// paymentURL prefers the backend-provided link over the session checkout.
func (f *Flow) paymentURL() string {
	if f.order.PaymentLink != "" {
		return f.order.PaymentLink
	}
	return fmt.Sprintf("https://payments.cashfree.com/order/#%s", f.order.PaymentSessionID)
}

// OpenPaymentPage shows the payment page once. Re-entry while a view was
// already opened is a no-op. When the browser hands control back the flow
// moves to interrupted unconditionally: the outcome is unknowable without
// a status check.
func (f *Flow) OpenPaymentPage(ctx context.Context) error {
	f.mu.Lock()
	if f.state != StateProcessing || f.opened {
		f.mu.Unlock()
		return nil
	}
	f.opened = true
	url := f.paymentURL()
	f.mu.Unlock()

	err := f.opener.Open(ctx, url)

	f.mu.Lock()
	defer f.mu.Unlock()

	if err != nil {
		// The browser never appeared, so the next attempt must not hit
		// the re-entry guard.
		f.opened = false
		f.logger.Warn("Payment page open failed", zap.Error(err))
		return err
	}

	if f.state == StateProcessing {
		f.setStateLocked(StateInterrupted)
	}
	return nil
}

// AppForegrounded is the automatic trigger: the host regained focus. It
// checks silently, and only if the browser view was opened at least once.
func (f *Flow) AppForegrounded(ctx context.Context) {
	f.mu.Lock()
	if !f.opened {
		f.mu.Unlock()
		return
	}
	// Regaining focus means the browser handed control back, even if the
	// return redirect never arrived.
	if f.state == StateProcessing {
		f.setStateLocked(StateInterrupted)
	}
	f.mu.Unlock()

	f.check(ctx, TriggerAutomatic)
}

// CheckNow is the manual trigger: it surfaces pending and failure
// outcomes to the user.
func (f *Flow) CheckNow(ctx context.Context) {
	f.check(ctx, TriggerManual)
}

func (f *Flow) check(ctx context.Context, trigger Trigger) {
	f.mu.Lock()
	if f.checking || f.state != StateInterrupted {
		f.mu.Unlock()
		return
	}
	f.checking = true
	f.setStateLocked(StateVerifying)
	f.mu.Unlock()

	res, err := f.gw.VerifyPayment(ctx, f.order.OrderID)

	// The checking flag keeps this path serialized, so the gateway and
	// alert calls below run without holding f.mu: an Alerter may read
	// flow state while handling the message.
	if err != nil {
		f.settle(StateInterrupted)

		var apiErr *api.APIError
		if errors.As(err, &apiErr) {
			f.logger.Warn("Payment verification rejected",
				zap.String("order_id", f.order.OrderID),
				zap.Error(err),
			)
			if trigger == TriggerManual {
				f.alert.Alert("Payment Failed", failureMessage(apiErr.Message))
			}
			return
		}

		f.logger.Warn("Payment verification unreachable",
			zap.String("order_id", f.order.OrderID),
			zap.Error(err),
		)
		if trigger == TriggerManual {
			f.alert.Alert("Connection Problem", "Could not check the payment status. Please check your internet connection and try again.")
		}
		return
	}

	switch res.Status {
	case models.GatewayStatusPaid:
		// Best effort: a failed listing update must not hold back the
		// user-visible success.
		if err := f.gw.UpdateListingStatus(ctx, true); err != nil {
			f.logger.Warn("Listing status update failed after payment",
				zap.String("order_id", f.order.OrderID),
				zap.Error(err),
			)
		}
		f.settle(StateSuccess)

	case models.GatewayStatusPending, models.GatewayStatusActive:
		f.settle(StateInterrupted)
		if trigger == TriggerManual {
			f.alert.Alert("Payment Pending", "Your payment has not been confirmed yet. If you completed it, please check again in a moment.")
		}

	default:
		f.settle(StateInterrupted)
		if trigger == TriggerManual {
			f.alert.Alert("Payment Failed", failureMessage(res.Message))
		}
	}
}

// settle finishes an in-flight check: it records the outcome state and
// drops the guard flag in one critical section.
func (f *Flow) settle(to State) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checking = false
	f.setStateLocked(to)
}

func failureMessage(serverMessage string) string {
	if serverMessage != "" {
		return serverMessage
	}
	return "The payment could not be verified. Please try again or contact support."
}
