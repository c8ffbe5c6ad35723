// Package cli is the line-oriented front end used when no interactive
// terminal is available. It reads one command per line and prints plain
// text, which also makes sessions scriptable.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"backstep/internal/domain"
	"backstep/internal/session"
)

const helpText = `commands:
  n, next [count]        advance one bar (or count bars)
  p, prev                step the view back one bar
  buy <qty>              market buy, fills on the next bar
  sell <qty>             market sell, fills on the next bar
  buy <qty> limit <px>   limit order
  sell <qty> stop <px>   stop order
  cancel                 cancel all open orders
  acct                   print the account snapshot
  orders                 print the order blotter
  bar                    print the current bar
  help                   this text
  q, quit                exit`

// REPL runs commands from in against a session, writing output to out.
type REPL struct {
	sess   *session.Session
	symbol string
	log    *slog.Logger
	out    io.Writer
}

// New creates a REPL over an existing session.
func New(sess *session.Session, symbol string, logger *slog.Logger, out io.Writer) *REPL {
	if logger == nil {
		logger = slog.Default()
	}
	return &REPL{
		sess:   sess,
		symbol: symbol,
		log:    logger.With("component", "cli"),
		out:    out,
	}
}

// Run reads commands until quit or EOF.
func (r *REPL) Run(in io.Reader) error {
	r.printBar()
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprintf(r.out, "%s [%d/%d]> ", r.symbol, r.sess.Index()+1, r.sess.Len())
		if !scanner.Scan() {
			fmt.Fprintln(r.out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if done := r.dispatch(line); done {
			return nil
		}
	}
}

// dispatch executes one command line and reports whether the REPL should exit.
func (r *REPL) dispatch(line string) bool {
	fields := strings.Fields(strings.ToLower(line))
	switch fields[0] {
	case "q", "quit", "exit":
		return true

	case "n", "next":
		count := 1
		if len(fields) > 1 {
			if c, err := strconv.Atoi(fields[1]); err == nil && c > 0 {
				count = c
			}
		}
		for i := 0; i < count; i++ {
			if !r.sess.Next() {
				fmt.Fprintln(r.out, "end of series")
				break
			}
		}
		r.printBar()

	case "p", "prev":
		if !r.sess.Prev() {
			fmt.Fprintln(r.out, "at first bar")
		}
		r.printBar()

	case "buy", "sell":
		if err := r.placeOrder(fields); err != nil {
			fmt.Fprintln(r.out, "error:", err)
		}

	case "cancel":
		r.sess.CancelAll()
		fmt.Fprintln(r.out, "open orders canceled")

	case "acct", "account":
		r.printAccount()

	case "orders":
		r.printOrders()

	case "bar":
		r.printBar()

	case "help", "?":
		fmt.Fprintln(r.out, helpText)

	default:
		fmt.Fprintf(r.out, "unknown command %q (try help)\n", fields[0])
	}
	return false
}

func (r *REPL) placeOrder(fields []string) error {
	if len(fields) < 2 {
		return fmt.Errorf("usage: buy|sell <qty> [limit|stop <price>]")
	}
	side := domain.SideBuy
	if fields[0] == "sell" {
		side = domain.SideSell
	}
	qty, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return fmt.Errorf("bad quantity %q", fields[1])
	}

	var o *domain.Order
	switch {
	case len(fields) == 2:
		o, err = r.sess.PlaceMarket(side, qty)
	case len(fields) == 4 && fields[2] == "limit":
		var px float64
		if px, err = strconv.ParseFloat(fields[3], 64); err != nil {
			return fmt.Errorf("bad price %q", fields[3])
		}
		o, err = r.sess.PlaceLimit(side, qty, px)
	case len(fields) == 4 && fields[2] == "stop":
		var px float64
		if px, err = strconv.ParseFloat(fields[3], 64); err != nil {
			return fmt.Errorf("bad price %q", fields[3])
		}
		o, err = r.sess.PlaceStop(side, qty, px)
	default:
		return fmt.Errorf("usage: buy|sell <qty> [limit|stop <price>]")
	}
	if err != nil {
		return err
	}
	r.log.Info("order placed", "id", o.ID, "side", o.Side, "type", o.Type, "qty", o.Qty)
	fmt.Fprintf(r.out, "placed %s %s %g\n", o.Side, o.Type, o.Qty)
	return nil
}

func (r *REPL) printBar() {
	b := r.sess.Bar()
	fmt.Fprintf(r.out, "%s  O %.2f  H %.2f  L %.2f  C %.2f  V %d\n",
		b.Timestamp.Format("2006-01-02"), b.Open, b.High, b.Low, b.Close, b.Volume)
}

func (r *REPL) printAccount() {
	a := r.sess.Account()
	pos := "flat"
	if !a.Position.Flat() {
		pos = fmt.Sprintf("%g @ %.2f", a.Position.Qty, a.Position.AvgPrice)
	}
	fmt.Fprintf(r.out, "cash %.2f  position %s  equity %.2f  realized %+.2f  max-equity %.2f  drawdown %.2f\n",
		a.Cash, pos, a.Equity, a.RealizedPnL, a.MaxEquity, a.Drawdown)
}

func (r *REPL) printOrders() {
	orders := r.sess.Orders()
	if len(orders) == 0 {
		fmt.Fprintln(r.out, "(no orders)")
		return
	}
	for _, o := range orders {
		px := o.LimitPrice
		if o.Type == domain.OrderTypeStop {
			px = o.StopPrice
		}
		fmt.Fprintf(r.out, "%-4s %-6s qty %-8g px %-8.2f fill %-8.2f %s\n",
			o.Side, o.Type, o.Qty, px, o.AvgFillPrice, o.Status)
	}
}
