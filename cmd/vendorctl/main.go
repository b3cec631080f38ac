// Command vendorctl is the storefront client for vendor owners: sign in,
// follow the approval of a vendor application, work through orders, and
// manage products and notifications.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/vendordesk/app/services"
	"github.com/shashiranjanraj/vendordesk/internal/kernel"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{boot: bootKernel}
	if err := a.execute(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, errorView(err))
		stop()
		os.Exit(1)
	}
}

func bootKernel(ctx context.Context, baseURL string) (*kernel.Kernel, error) {
	return kernel.New(ctx, kernel.Options{BaseURL: baseURL})
}

// app carries the flags shared by every command and the kernel, booted on
// first use so `--help` needs no session storage.
type app struct {
	apiURL  string
	jsonOut bool

	boot func(ctx context.Context, baseURL string) (*kernel.Kernel, error)
	k    *kernel.Kernel
	out  io.Writer
}

func (a *app) execute(ctx context.Context, args []string, out io.Writer) error {
	defer a.close()
	a.out = out

	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(out)
	return root.ExecuteContext(ctx)
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "vendorctl",
		Short:         "Storefront client for vendor owners",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&a.apiURL, "api", "", "API base URL (default API_BASE_URL)")
	root.PersistentFlags().BoolVar(&a.jsonOut, "json", false, "print raw JSON instead of tables")

	// Auth
	root.AddCommand(a.loginCmd())
	root.AddCommand(a.logoutCmd())
	root.AddCommand(a.whoamiCmd())
	root.AddCommand(a.registerCmd())
	root.AddCommand(a.verifyOTPCmd())
	root.AddCommand(a.resendOTPCmd())
	root.AddCommand(a.passwordCmd())

	// Storefront
	root.AddCommand(a.vendorCmd())
	root.AddCommand(a.dashboardCmd())
	root.AddCommand(a.ordersCmd())
	root.AddCommand(a.productsCmd())
	root.AddCommand(a.catalogCmd())
	root.AddCommand(a.notificationsCmd())
	return root
}

func (a *app) kernel(ctx context.Context) (*kernel.Kernel, error) {
	if a.k != nil {
		return a.k, nil
	}
	k, err := a.boot(ctx, a.apiURL)
	if err != nil {
		return nil, err
	}
	a.k = k
	return k, nil
}

func (a *app) close() {
	if a.k != nil {
		a.k.Close()
		a.k = nil
	}
}

// run boots the kernel and runs fn with it. A token the server no longer
// accepts is reported; the stored session stays until `vendorctl logout`.
func (a *app) run(fn func(ctx context.Context, k *kernel.Kernel) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		k, err := a.kernel(ctx)
		if err != nil {
			return err
		}
		err = fn(ctx, k)
		if kernel.IsSessionExpired(err) {
			return errors.New("your session has expired, run `vendorctl login`")
		}
		if errors.Is(err, services.ErrNotAuthenticated) {
			return errors.New("not logged in, run `vendorctl login`")
		}
		return err
	}
}

// print writes the JSON form of v with --json and text otherwise.
func (a *app) print(v any, text string) error {
	if a.jsonOut {
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	_, err := fmt.Fprintln(a.out, text)
	return err
}

func (a *app) say(format string, args ...any) {
	if a.jsonOut {
		return
	}
	fmt.Fprintf(a.out, format+"\n", args...)
}
