package payment

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"yuvsiksha-client/internal/api"
	"yuvsiksha-client/models"
)

type fakeGateway struct {
	mu sync.Mutex

	verifyStatus  string
	verifyMessage string
	verifyErr     error
	verifyCalls   int
	verifyStarted chan struct{} // closed-once signal, optional
	verifyRelease chan struct{} // blocks the check, optional

	listingErr   error
	listingCalls int
}

func (g *fakeGateway) VerifyPayment(ctx context.Context, orderID string) (*api.VerifyResult, error) {
	g.mu.Lock()
	g.verifyCalls++
	started := g.verifyStarted
	release := g.verifyRelease
	g.mu.Unlock()

	if started != nil {
		close(started)
		g.mu.Lock()
		g.verifyStarted = nil
		g.mu.Unlock()
	}
	if release != nil {
		<-release
	}

	if g.verifyErr != nil {
		return nil, g.verifyErr
	}
	return &api.VerifyResult{Status: g.verifyStatus, Message: g.verifyMessage}, nil
}

func (g *fakeGateway) UpdateListingStatus(ctx context.Context, isListed bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.listingCalls++
	return g.listingErr
}

func (g *fakeGateway) calls() (verify, listing int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.verifyCalls, g.listingCalls
}

type fakeOpener struct {
	calls int
	urls  []string
	err   error
}

func (o *fakeOpener) Open(ctx context.Context, url string) error {
	o.calls++
	o.urls = append(o.urls, url)
	return o.err
}

type fakeAlerter struct {
	mu     sync.Mutex
	alerts []string
}

func (a *fakeAlerter) Alert(title, message string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.alerts = append(a.alerts, title+": "+message)
}

func (a *fakeAlerter) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.alerts)
}

func validOrder() models.PaymentOrder {
	return models.PaymentOrder{
		OrderID:          "order-9",
		PaymentSessionID: "sess-9",
		PaymentLink:      "https://pay.example/order-9",
	}
}

func newTestFlow(order models.PaymentOrder, gw *fakeGateway) (*Flow, *fakeOpener, *fakeAlerter) {
	opener := &fakeOpener{}
	alerter := &fakeAlerter{}
	return NewFlow(order, gw, opener, alerter, zap.NewNop()), opener, alerter
}

// reachInterrupted opens the payment page; the fake opener returns at
// once, which counts as the browser handing control back.
func reachInterrupted(t *testing.T, f *Flow) {
	t.Helper()
	require.NoError(t, f.OpenPaymentPage(context.Background()))
	require.Equal(t, StateInterrupted, f.State())
}

func TestFlow_MissingSessionIDFailsBeforeAnyCall(t *testing.T) {
	gw := &fakeGateway{verifyStatus: models.GatewayStatusPaid}
	flow, opener, _ := newTestFlow(models.PaymentOrder{OrderID: "order-9"}, gw)

	assert.Equal(t, StateError, flow.State())

	// Everything is a no-op in the error state.
	require.NoError(t, flow.OpenPaymentPage(context.Background()))
	flow.CheckNow(context.Background())
	flow.AppForegrounded(context.Background())

	verify, listing := gw.calls()
	assert.Zero(t, verify)
	assert.Zero(t, listing)
	assert.Zero(t, opener.calls)
}

func TestFlow_MissingOrderIDFailsBeforeAnyCall(t *testing.T) {
	gw := &fakeGateway{}
	flow, _, _ := newTestFlow(models.PaymentOrder{PaymentSessionID: "sess-9"}, gw)

	assert.Equal(t, StateError, flow.State())
}

func TestFlow_PaidTransitionsToSuccess(t *testing.T) {
	gw := &fakeGateway{verifyStatus: models.GatewayStatusPaid}
	flow, opener, _ := newTestFlow(validOrder(), gw)

	reachInterrupted(t, flow)
	assert.Equal(t, []string{"https://pay.example/order-9"}, opener.urls)

	flow.CheckNow(context.Background())

	assert.Equal(t, StateSuccess, flow.State())
	verify, listing := gw.calls()
	assert.Equal(t, 1, verify)
	assert.Equal(t, 1, listing)
}

func TestFlow_PaidSucceedsEvenIfListingUpdateFails(t *testing.T) {
	gw := &fakeGateway{
		verifyStatus: models.GatewayStatusPaid,
		listingErr:   errors.New("listing service down"),
	}
	flow, _, alerter := newTestFlow(validOrder(), gw)

	reachInterrupted(t, flow)
	flow.CheckNow(context.Background())

	assert.Equal(t, StateSuccess, flow.State())
	assert.Zero(t, alerter.count(), "a swallowed listing failure must stay invisible")
}

func TestFlow_AutomaticPendingCheckIsSilent(t *testing.T) {
	gw := &fakeGateway{verifyStatus: models.GatewayStatusPending}
	flow, _, alerter := newTestFlow(validOrder(), gw)

	reachInterrupted(t, flow)
	flow.AppForegrounded(context.Background())

	assert.Equal(t, StateInterrupted, flow.State())
	assert.Zero(t, alerter.count())
}

func TestFlow_ManualPendingCheckAlerts(t *testing.T) {
	gw := &fakeGateway{verifyStatus: models.GatewayStatusActive}
	flow, _, alerter := newTestFlow(validOrder(), gw)

	reachInterrupted(t, flow)
	flow.CheckNow(context.Background())

	assert.Equal(t, StateInterrupted, flow.State())
	require.Equal(t, 1, alerter.count())
	assert.Contains(t, alerter.alerts[0], "Payment Pending")
}

func TestFlow_ManualFailureAlertsWithServerMessage(t *testing.T) {
	gw := &fakeGateway{verifyStatus: "EXPIRED", verifyMessage: "Order expired"}
	flow, _, alerter := newTestFlow(validOrder(), gw)

	reachInterrupted(t, flow)
	flow.CheckNow(context.Background())

	assert.Equal(t, StateInterrupted, flow.State())
	require.Equal(t, 1, alerter.count())
	assert.Contains(t, alerter.alerts[0], "Order expired")
}

func TestFlow_ManualFailureFallsBackToGenericMessage(t *testing.T) {
	gw := &fakeGateway{verifyStatus: "FAILED"}
	flow, _, alerter := newTestFlow(validOrder(), gw)

	reachInterrupted(t, flow)
	flow.CheckNow(context.Background())

	require.Equal(t, 1, alerter.count())
	assert.Contains(t, alerter.alerts[0], "could not be verified")
}

func TestFlow_NetworkErrorSilentWhenAutomatic(t *testing.T) {
	gw := &fakeGateway{verifyErr: errors.New("connection refused")}
	flow, _, alerter := newTestFlow(validOrder(), gw)

	reachInterrupted(t, flow)
	flow.AppForegrounded(context.Background())

	assert.Equal(t, StateInterrupted, flow.State())
	assert.Zero(t, alerter.count())
}

func TestFlow_NetworkErrorAlertsWhenManual(t *testing.T) {
	gw := &fakeGateway{verifyErr: errors.New("connection refused")}
	flow, _, alerter := newTestFlow(validOrder(), gw)

	reachInterrupted(t, flow)
	flow.CheckNow(context.Background())

	assert.Equal(t, StateInterrupted, flow.State())
	require.Equal(t, 1, alerter.count())
	assert.Contains(t, alerter.alerts[0], "Connection Problem")
}

func TestFlow_BackendRejectionAlertsWithMessage(t *testing.T) {
	gw := &fakeGateway{verifyErr: &api.APIError{StatusCode: 404, Message: "Order not found"}}
	flow, _, alerter := newTestFlow(validOrder(), gw)

	reachInterrupted(t, flow)
	flow.CheckNow(context.Background())

	assert.Equal(t, StateInterrupted, flow.State())
	require.Equal(t, 1, alerter.count())
	assert.Contains(t, alerter.alerts[0], "Order not found")
}

// stateReadingAlerter inspects the flow while handling an alert, the way
// a UI layer re-renders from the state that produced the message.
type stateReadingAlerter struct {
	flow *Flow
	seen []State
}

func (a *stateReadingAlerter) Alert(title, message string) {
	a.seen = append(a.seen, a.flow.State())
}

func TestFlow_AlerterMayReadStateDuringAlert(t *testing.T) {
	gw := &fakeGateway{verifyStatus: models.GatewayStatusPending}
	alerter := &stateReadingAlerter{}
	flow := NewFlow(validOrder(), gw, &fakeOpener{}, alerter, zap.NewNop())
	alerter.flow = flow

	reachInterrupted(t, flow)

	done := make(chan struct{})
	go func() {
		flow.CheckNow(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("manual check never finished")
	}

	assert.Equal(t, []State{StateInterrupted}, alerter.seen)
}

func TestFlow_FailedBrowserLaunchAllowsRetry(t *testing.T) {
	gw := &fakeGateway{verifyStatus: models.GatewayStatusPaid}
	flow, opener, _ := newTestFlow(validOrder(), gw)

	opener.err = errors.New("no browser available")
	err := flow.OpenPaymentPage(context.Background())
	require.Error(t, err)

	// The page was never shown: the flow is still waiting to open it.
	assert.Equal(t, StateProcessing, flow.State())
	flow.AppForegrounded(context.Background())
	verify, _ := gw.calls()
	assert.Zero(t, verify)

	opener.err = nil
	require.NoError(t, flow.OpenPaymentPage(context.Background()))

	assert.Equal(t, 2, opener.calls)
	assert.Equal(t, StateInterrupted, flow.State())
}

func TestFlow_OpenPaymentPageGuardsReentry(t *testing.T) {
	gw := &fakeGateway{}
	flow, opener, _ := newTestFlow(validOrder(), gw)

	require.NoError(t, flow.OpenPaymentPage(context.Background()))
	require.NoError(t, flow.OpenPaymentPage(context.Background()))

	assert.Equal(t, 1, opener.calls)
}

func TestFlow_AutomaticCheckOnlyAfterBrowserOpened(t *testing.T) {
	gw := &fakeGateway{verifyStatus: models.GatewayStatusPaid}
	flow, _, _ := newTestFlow(validOrder(), gw)

	flow.AppForegrounded(context.Background())

	verify, _ := gw.calls()
	assert.Zero(t, verify)
	assert.Equal(t, StateProcessing, flow.State())
}

func TestFlow_ConcurrentChecksDoNotOverlap(t *testing.T) {
	gw := &fakeGateway{
		verifyStatus:  models.GatewayStatusPending,
		verifyStarted: make(chan struct{}),
		verifyRelease: make(chan struct{}),
	}
	flow, _, alerter := newTestFlow(validOrder(), gw)
	reachInterrupted(t, flow)

	started := gw.verifyStarted
	done := make(chan struct{})
	go func() {
		flow.CheckNow(context.Background())
		close(done)
	}()

	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("manual check never reached the gateway")
	}

	// The automatic trigger races the in-flight manual check and must be
	// dropped by the guard flag.
	flow.AppForegrounded(context.Background())

	close(gw.verifyRelease)
	<-done

	verify, _ := gw.calls()
	assert.Equal(t, 1, verify)
	require.Equal(t, 1, alerter.count())
}

func TestFlow_SuccessIsTerminal(t *testing.T) {
	gw := &fakeGateway{verifyStatus: models.GatewayStatusPaid}
	flow, _, _ := newTestFlow(validOrder(), gw)

	reachInterrupted(t, flow)
	flow.CheckNow(context.Background())
	require.Equal(t, StateSuccess, flow.State())

	flow.CheckNow(context.Background())
	flow.AppForegrounded(context.Background())

	verify, _ := gw.calls()
	assert.Equal(t, 1, verify)
	assert.Equal(t, StateSuccess, flow.State())
}

func TestFlow_FallbackCheckoutURLFromSessionID(t *testing.T) {
	gw := &fakeGateway{}
	order := validOrder()
	order.PaymentLink = ""
	flow, opener, _ := newTestFlow(order, gw)

	require.NoError(t, flow.OpenPaymentPage(context.Background()))

	require.Len(t, opener.urls, 1)
	assert.Contains(t, opener.urls[0], "sess-9")
}
