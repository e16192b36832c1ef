// Command shopctl is a terminal storefront. It browses the catalog, keeps a
// cart and a signed-in session in a local file, and places orders.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"text/tabwriter"

	"woodcraft/internal/cart"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const usage = `usage: shopctl [flags] <command> [args]

commands:
  products [keyword]          list the catalog
  add <id> [qty]              add a product to the cart
  remove <id>                 remove a product from the cart
  set <id> <qty>              change a quantity, 0 removes
  cart                        show the cart
  clear                       empty the cart
  login <email> <password>    sign in
  logout                      sign out
  checkout [address]          place an order for the cart

flags:
`

var errUsage = errors.New("invalid usage")

func main() {
	flags := pflag.NewFlagSet("shopctl", pflag.ExitOnError)
	flags.String("api", "http://localhost:5001", "storefront API base URL")
	flags.String("state", defaultStatePath(), "file holding the cart and session")
	flags.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flags.PrintDefaults()
	}
	_ = flags.Parse(os.Args[1:])

	v := viper.New()
	v.SetEnvPrefix("shopctl")
	v.AutomaticEnv()
	_ = v.BindPFlags(flags)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sh := &shell{
		api:     newAPIClient(v.GetString("api")),
		storage: cart.NewFileStorage(v.GetString("state")),
		out:     os.Stdout,
	}
	if err := sh.run(ctx, flags.Args()); err != nil {
		if errors.Is(err, errUsage) {
			flags.Usage()
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "shopctl:", err)
		os.Exit(1)
	}
}

func defaultStatePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".shopctl.json"
	}
	return filepath.Join(dir, "woodcraft", "shopctl.json")
}

type shell struct {
	api     *apiClient
	storage cart.Storage
	out     io.Writer
}

func (s *shell) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	c, err := cart.Load(s.storage)
	if err != nil {
		return err
	}
	session := cart.NewSession(s.storage)

	cmd, args := args[0], args[1:]
	switch {
	case cmd == "products" && len(args) <= 1:
		keyword := ""
		if len(args) == 1 {
			keyword = args[0]
		}
		return s.products(ctx, keyword)
	case cmd == "add" && (len(args) == 1 || len(args) == 2):
		qty := 1
		if len(args) == 2 {
			if qty, err = strconv.Atoi(args[1]); err != nil {
				return fmt.Errorf("quantity %q: %w", args[1], errUsage)
			}
		}
		return s.add(ctx, c, args[0], qty)
	case cmd == "remove" && len(args) == 1:
		return c.Remove(args[0])
	case cmd == "set" && len(args) == 2:
		qty, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("quantity %q: %w", args[1], errUsage)
		}
		return c.UpdateQuantity(args[0], qty)
	case cmd == "cart" && len(args) == 0:
		return s.printCart(c)
	case cmd == "clear" && len(args) == 0:
		return c.Clear()
	case cmd == "login" && len(args) == 2:
		info, err := s.api.login(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		if err := session.Save(*info); err != nil {
			return err
		}
		fmt.Fprintf(s.out, "signed in as %s\n", info.Name)
		return nil
	case cmd == "logout" && len(args) == 0:
		return session.Clear()
	case cmd == "checkout" && len(args) <= 1:
		address := ""
		if len(args) == 1 {
			address = args[0]
		}
		return s.checkout(ctx, c, session, address)
	}
	return errUsage
}

func (s *shell) products(ctx context.Context, keyword string) error {
	list, err := s.api.listProducts(ctx, keyword)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tPRICE\tSTOCK\tRATING")
	for _, p := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%.1f (%d)\n",
			p.ID, p.Name, p.Category, p.Price.StringFixed(2), p.CountInStock, p.Rating, p.NumReviews)
	}
	return w.Flush()
}

func (s *shell) add(ctx context.Context, c *cart.Cart, id string, qty int) error {
	if qty <= 0 {
		return cart.ErrInvalidQuantity
	}
	p, err := s.api.getProduct(ctx, id)
	if err != nil {
		return err
	}
	entry := cart.Entry{ID: p.ID, Name: p.Name, Price: p.Price, Images: p.Images}
	if err := c.Add(entry, qty); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "added %d x %s\n", qty, p.Name)
	return nil
}

func (s *shell) printCart(c *cart.Cart) error {
	items := c.Items()
	if len(items) == 0 {
		fmt.Fprintln(s.out, "cart is empty")
		return nil
	}
	w := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tQTY\tPRICE")
	for _, e := range items {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", e.ID, e.Name, e.Quantity, e.Price.StringFixed(2))
	}
	fmt.Fprintf(w, "\t%d items\t\t%s\n", c.Count(), c.Total().StringFixed(2))
	return w.Flush()
}

func (s *shell) checkout(ctx context.Context, c *cart.Cart, session *cart.Session, address string) error {
	info, err := session.Load()
	if err != nil {
		return err
	}
	if info == nil || info.Token == "" {
		return errors.New("not signed in, run: shopctl login <email> <password>")
	}
	items := c.Items()
	if len(items) == 0 {
		return errors.New("cart is empty")
	}

	lines := make([]orderLine, 0, len(items))
	for _, e := range items {
		lines = append(lines, orderLine{ID: e.ID, Quantity: e.Quantity})
	}
	s.api.token = info.Token
	order, err := s.api.placeOrder(ctx, lines, address)
	if err != nil {
		return err
	}
	if err := c.Clear(); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "order %s placed, total %s\n", order.ID, order.TotalPrice.StringFixed(2))
	return nil
}
