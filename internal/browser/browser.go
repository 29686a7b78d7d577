// Package browser shows the payment page in the system browser and waits
// for the gateway to redirect back to a loopback listener. Returning from
// Open is the moment control comes back to the app.
package browser

import (
	"context"
	"fmt"
	"net/http"
	"os/exec"
	"runtime"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"yuvsiksha-client/utils"
)

const returnPage = `<!DOCTYPE html>
<html>
<body>
<p>Payment window closed. You can return to the Yuvsiksha app.</p>
</body>
</html>`

type Listener struct {
	addr   string
	logger *zap.Logger
	launch func(url string) error
}

func NewListener(addr string, logger *zap.Logger) *Listener {
	return &Listener{addr: addr, logger: logger, launch: openSystemBrowser}
}

// ReturnURL is where the gateway should redirect after checkout.
func (l *Listener) ReturnURL() string {
	return fmt.Sprintf("http://%s/payment/return", l.addr)
}

// Open launches url in the system browser and blocks until the return
// redirect hits the loopback listener or ctx ends. Abandoned payments
// come back through ctx; the caller treats both the same way.
func (l *Listener) Open(ctx context.Context, url string) error {
	attempt, err := utils.GenerateCode(4)
	if err != nil {
		return fmt.Errorf("browser: generate attempt code: %w", err)
	}

	returned := make(chan struct{})

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.GET("/payment/return", func(c echo.Context) error {
		l.logger.Info("Payment return redirect received",
			zap.String("attempt", attempt),
			zap.String("order_status", c.QueryParam("status")),
		)
		select {
		case <-returned:
		default:
			close(returned)
		}
		return c.HTML(http.StatusOK, returnPage)
	})

	go func() {
		if err := e.Start(l.addr); err != nil && err != http.ErrServerClosed {
			l.logger.Warn("Return listener stopped", zap.Error(err))
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			l.logger.Warn("Return listener shutdown failed", zap.Error(err))
		}
	}()

	if err := l.launch(url); err != nil {
		return fmt.Errorf("browser: open %s: %w", url, err)
	}

	l.logger.Info("Payment page opened",
		zap.String("attempt", attempt),
		zap.String("return_url", l.ReturnURL()),
	)

	select {
	case <-returned:
		return nil
	case <-ctx.Done():
		return nil
	}
}

func openSystemBrowser(url string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	default:
		return exec.Command("xdg-open", url).Start()
	}
}
