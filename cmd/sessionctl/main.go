// sessionctl joins a live expense session from the terminal and prints the
// evolving split as other participants edit. It is the reference consumer
// of the session client: REST snapshot, websocket channel, reducer and
// calculators all run exactly as an app frontend would drive them.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/mmynk/billsync/internal/auth"
	"github.com/mmynk/billsync/internal/calculator"
	"github.com/mmynk/billsync/internal/config"
	"github.com/mmynk/billsync/internal/models"
	"github.com/mmynk/billsync/internal/rest"
	"github.com/mmynk/billsync/internal/session"
	"github.com/mmynk/billsync/internal/usercache"
	"github.com/mmynk/billsync/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	logging.Setup()

	var (
		expenseID = flag.String("expense", "", "expense id to join")
		userID    = flag.String("user", "", "user id to act as (dev identity)")
		token     = flag.String("token", "", "identity JWT (overrides -user)")
		list      = flag.Bool("list", false, "list expenses and exit")

		addItem    = flag.String("add", "", "add an item after joining, as name:price")
		selectItem = flag.String("select", "", "select an item for the acting user after joining")
		deselect   = flag.String("deselect", "", "deselect an item for the acting user after joining")
		rename     = flag.String("rename", "", "rename the expense after joining")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	identity, err := buildIdentity(*token, *userID)
	if err != nil {
		slog.Error("Failed to build identity", "error", err)
		os.Exit(1)
	}

	api := rest.NewClient(cfg.API.BaseURL, cfg.API.Timeout, identity)

	if *list {
		listExpenses(api)
		return
	}
	if *expenseID == "" {
		fmt.Fprintln(os.Stderr, "usage: sessionctl -expense <id> [-user <id> | -token <jwt>]")
		os.Exit(2)
	}

	users := usercache.New(usercache.DefaultCapacity, api)
	sess := session.New(session.SettingsFromConfig(cfg), api, identity, users)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := sess.PingPreflight(ctx); err != nil {
		slog.Error("Session endpoint unreachable", "error", err)
		os.Exit(1)
	}
	if err := sess.Connect(ctx, *expenseID); err != nil {
		slog.Error("Failed to join session", "expense_id", *expenseID, "error", err)
		os.Exit(1)
	}

	snapshots, cancel := sess.Holder().Subscribe()
	defer cancel()

	applyMutations(sess, identity.UserID(), *addItem, *selectItem, *deselect, *rename)

	slog.Info("Watching session", "expense_id", *expenseID, "user_id", identity.UserID())
	for {
		select {
		case <-ctx.Done():
			sess.Disconnect()
			return
		case expense, ok := <-snapshots:
			if !ok {
				return
			}
			if expense == nil {
				fmt.Println("-- session closed --")
				continue
			}
			printSplit(expense, identity.UserID())
		}
	}
}

// applyMutations fires the requested one-shot edits. Commands are
// fire-and-forget: their effect shows up on the snapshot stream once the
// backend fans the change back.
func applyMutations(sess *session.Session, userID, addItem, selectItem, deselect, rename string) {
	if addItem != "" {
		name, priceText, ok := strings.Cut(addItem, ":")
		if !ok {
			slog.Error("Invalid -add value, want name:price", "value", addItem)
			os.Exit(2)
		}
		price, err := strconv.ParseFloat(priceText, 64)
		if err != nil {
			slog.Error("Invalid -add price", "value", priceText, "error", err)
			os.Exit(2)
		}
		sess.AddItem(name, price, false)
	}
	if selectItem != "" {
		sess.UpdateSingleItemSelected(selectItem, userID, true)
	}
	if deselect != "" {
		sess.UpdateSingleItemSelected(deselect, userID, false)
	}
	if rename != "" {
		sess.UpdateExpenseName(rename)
	}
}

func buildIdentity(token, userID string) (auth.Provider, error) {
	if token != "" {
		return auth.NewTokenProvider(token)
	}
	if userID == "" {
		return nil, auth.ErrMissingToken
	}
	return &auth.StaticProvider{UserToken: userID, User: userID}, nil
}

func listExpenses(api *rest.Client) {
	expenses := api.GetAllExpenses(context.Background())
	if len(expenses) == 0 {
		fmt.Println("no expenses")
		return
	}
	for _, expense := range expenses {
		fmt.Printf("%s  %-24s total=%8.2f  settled=%3.0f%%\n",
			expense.ID, expense.Name, expense.GroupTotal(), calculator.RunningTotal(&expense))
	}
}

// printSplit renders one snapshot: the viewer's balance plus everyone's
// personal total.
func printSplit(expense *models.Expense, viewerID string) {
	fmt.Printf("\n== %s  (total %.2f, settled %.0f%%) ==\n",
		expense.Name, expense.GroupTotal(), calculator.RunningTotal(expense))

	for _, user := range expense.Users {
		personal := calculator.PersonalExpense(user.ID, expense)
		marker := " "
		if user.ID == viewerID {
			marker = "*"
		}
		fmt.Printf(" %s %-20s %8.2f\n", marker, user.FullName(), personal.Total())
	}

	if expense.Groupable() {
		breakdown := calculator.PersonBreakdown(expense, viewerID)
		for userID, amount := range breakdown {
			name := userID
			if user, ok := expense.FindUser(userID); ok {
				name = user.FullName()
			}
			fmt.Printf("   owes %-17s %8.2f\n", name, amount)
		}
		return
	}

	balance := calculator.Balance(expense, viewerID)
	if balance.Meaningful {
		switch {
		case balance.Amount > 0:
			fmt.Printf("   you are owed %.2f\n", balance.Amount)
		case balance.Amount < 0:
			fmt.Printf("   you owe %s %.2f\n", balance.PayerName, -balance.Amount)
		default:
			fmt.Println("   settled up")
		}
	}
}
