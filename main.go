package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"yuvsiksha-client/config"
	"yuvsiksha-client/internal/api"
	"yuvsiksha-client/internal/app"
	"yuvsiksha-client/internal/booking"
	"yuvsiksha-client/internal/browser"
	"yuvsiksha-client/internal/payment"
	"yuvsiksha-client/internal/session"
	"yuvsiksha-client/models"
	"yuvsiksha-client/monitoring"
	"yuvsiksha-client/utils"
)

func main() {
	cfg := config.LoadConfig()

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	// Redis keeps the session across runs; without it the session lives
	// only for this invocation.
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		var err error
		redisClient, err = utils.NewRedisClient(cfg.RedisURL)
		if err != nil {
			logger.Fatal("Redis connection failed", zap.Error(err))
		}
		defer redisClient.Close()
	}

	if cfg.EnableMetrics {
		var checks []monitoring.HealthCheck
		if redisClient != nil {
			checks = append(checks, func() error { return utils.RedisHealthCheck(redisClient) })
		}
		go monitoring.Serve(":"+cfg.MetricsPort, logger, checks...)
	}

	store := session.NewStore(redisClient, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := store.Restore(ctx); err != nil {
		logger.Debug("No stored session", zap.Error(err))
	}

	client := api.New(cfg.APIBaseURL, cfg.RequestTimeout, store, logger)

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "login":
		err = runLogin(ctx, store, os.Args[2:])
	case "book":
		err = runBook(ctx, client, logger, os.Args[2:])
	case "list-fee":
		err = runListingFee(ctx, cfg, client, store, logger, os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		logger.Fatal("Command failed", zap.Error(err))
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: yuvsiksha <command> [flags]

commands:
  login      store the session used by the other commands
  book       book a class with a teacher
  list-fee   pay the one-time teacher listing fee`)
}

func runLogin(ctx context.Context, store *session.Store, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	token := fs.String("token", "", "backend auth token")
	userID := fs.String("user-id", "", "user id")
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "email address")
	phone := fs.String("phone", "", "phone number")
	role := fs.String("role", "student", "student or teacher")
	fs.Parse(args)

	if *token == "" || *userID == "" {
		return fmt.Errorf("login: -token and -user-id are required")
	}

	err := store.Set(ctx, session.Session{
		User: models.User{
			ID:    *userID,
			Name:  models.FlexString(*name),
			Email: *email,
			Phone: *phone,
			Role:  *role,
		},
		Token: *token,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Logged in as %s (%s)\n", *name, *role)
	return nil
}

func runBook(ctx context.Context, client *api.Client, logger *zap.Logger, args []string) error {
	fs := flag.NewFlagSet("book", flag.ExitOnError)
	teacherID := fs.String("teacher", "", "teacher id")
	subject := fs.String("subject", "", "subject to book")
	dateStr := fs.String("date", "", "class date (YYYY-MM-DD)")
	slotsCSV := fs.String("slots", "", "comma-separated slot strings")
	notes := fs.String("notes", "", "notes for the teacher")
	fs.Parse(args)

	if *teacherID == "" {
		return fmt.Errorf("book: -teacher is required")
	}

	teacher, err := client.Teacher(ctx, *teacherID)
	if err != nil {
		return err
	}

	flow := booking.NewFlow(client, teacher, logger)

	fmt.Printf("Teacher: %s (%s/hour)\n", teacher.Name, teacher.Profile.HourlyRate)

	if *dateStr == "" {
		now := time.Now()
		fmt.Println("Bookable dates this month:")
		for _, d := range flow.Selection().SelectableDates(now.Year(), now.Month()) {
			fmt.Printf("  %s (%s)\n", booking.DateKey(d), d.Weekday())
		}
		return nil
	}

	date, err := time.ParseInLocation("2006-01-02", *dateStr, time.Local)
	if err != nil {
		return fmt.Errorf("book: parse date: %w", err)
	}

	if *subject != "" {
		if err := flow.Selection().ChooseSubject(*subject); err != nil {
			return err
		}
	}

	slots, err := flow.SelectDate(ctx, date)
	if err != nil {
		return err
	}

	if *slotsCSV == "" {
		fmt.Printf("Available slots on %s:\n", booking.DateKey(date))
		for _, slot := range slots {
			fmt.Printf("  %s\n", slot)
		}
		return nil
	}

	for _, slot := range strings.Split(*slotsCSV, ",") {
		if err := flow.ToggleSlot(strings.TrimSpace(slot)); err != nil {
			return err
		}
	}

	fmt.Printf("Total: %s\n", flow.Selection().TotalAmount())

	created, err := flow.Submit(ctx, *notes)
	if err != nil {
		return err
	}

	fmt.Printf("Booking %s created, status: %s\n", created.ID, created.Status)
	return nil
}

// cliAlerter renders payment flow alerts on the terminal.
type cliAlerter struct{}

func (cliAlerter) Alert(title, message string) {
	fmt.Printf("\n[%s] %s\n", title, message)
}

func runListingFee(ctx context.Context, cfg *config.Config, client *api.Client, store *session.Store, logger *zap.Logger, args []string) error {
	fs := flag.NewFlagSet("list-fee", flag.ExitOnError)
	wait := fs.Duration("wait", 10*time.Minute, "how long to wait for the payment page")
	fs.Parse(args)

	sess, ok := store.Current()
	if !ok {
		return fmt.Errorf("list-fee: log in first")
	}
	if sess.User.Role != "teacher" {
		return fmt.Errorf("list-fee: only teachers pay the listing fee")
	}

	order, err := client.CreateListingOrder(ctx, api.ListingOrderRequest{
		Amount:        cfg.ListingFee,
		CustomerID:    sess.User.ID,
		CustomerName:  sess.User.Name.String(),
		CustomerEmail: sess.User.Email,
		CustomerPhone: sess.User.Phone,
		Purpose:       "teacher_listing",
	})
	if err != nil {
		return err
	}

	opener := browser.NewListener(cfg.ReturnListenerAddr, logger)
	flow := payment.NewFlow(*order, client, opener, cliAlerter{}, logger)
	if flow.State() == payment.StateError {
		return fmt.Errorf("list-fee: backend returned an incomplete payment order")
	}

	fmt.Printf("Listing fee: %s %s, order %s\n", cfg.ListingFee, cfg.ListingCurrency, order.OrderID)
	fmt.Println("Opening the payment page in your browser...")

	openCtx, cancel := context.WithTimeout(ctx, *wait)
	defer cancel()
	if err := flow.OpenPaymentPage(openCtx); err != nil {
		return err
	}

	// Control is back: run the silent check first, like a foregrounded app.
	flow.AppForegrounded(ctx)

	reader := bufio.NewReader(os.Stdin)
	for flow.State() == payment.StateInterrupted {
		fmt.Print("Press Enter to check the payment status, or q to quit: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			break
		}
		if strings.TrimSpace(line) == "q" {
			break
		}
		flow.CheckNow(ctx)
	}

	if flow.State() == payment.StateSuccess {
		fmt.Println("Payment confirmed. Your profile is now listed.")
		return nil
	}

	fmt.Println("Payment not confirmed. Run list-fee again to retry.")
	return nil
}
