package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"syscall"
	"text/tabwriter"

	"golang.org/x/term"

	"github.com/noah-isme/tuition-center-api/internal/models"
	"github.com/noah-isme/tuition-center-api/internal/service"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type superuserManager interface {
	CreateSuperuser(ctx context.Context, email, fullName, password string) (*models.User, error)
	ResetPassword(ctx context.Context, email, password string) error
}

type promotionReporter interface {
	Report(ctx context.Context) (*service.PromotionReport, error)
}

type commandLine struct {
	db        *sql.DB
	users     superuserManager
	promotion promotionReporter
	out       io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS]                   - run a migration command: up, up-by-one, up-to VERSION, down, down-to VERSION, redo, reset, status, version")
	fmt.Fprintln(cli.out, "  createsuperuser -email EMAIL -name NAME  - create an administrator; the password is prompted")
	fmt.Fprintln(cli.out, "  resetpassword -email EMAIL               - reset a user's password; the password is prompted")
	fmt.Fprintln(cli.out, "  promote-students                         - print active students per class")
}

func (cli *commandLine) run(ctx context.Context, args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	switch args[1] {
	case "migrate":
		return cli.migrate(ctx, args[2:])
	case "createsuperuser":
		fs := cli.flagSet("createsuperuser")
		email := fs.String("email", "", "The administrator's email.")
		name := fs.String("name", "", "The administrator's full name.")
		if err := fs.Parse(args[2:]); err != nil {
			return err
		}
		if strings.TrimSpace(*email) == "" || strings.TrimSpace(*name) == "" {
			fs.Usage()
			return errHelp
		}
		pwd, err := cli.promptNewPassword()
		if err != nil {
			return err
		}
		user, err := cli.users.CreateSuperuser(ctx, *email, *name, pwd)
		if err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "superuser %s created\n", user.Email)
		return nil
	case "resetpassword":
		fs := cli.flagSet("resetpassword")
		email := fs.String("email", "", "The user's email. The password will be prompted next.")
		if err := fs.Parse(args[2:]); err != nil {
			return err
		}
		if strings.TrimSpace(*email) == "" {
			fs.Usage()
			return errHelp
		}
		pwd, err := cli.promptNewPassword()
		if err != nil {
			return err
		}
		if err := cli.users.ResetPassword(ctx, *email, pwd); err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "password updated for %s\n", *email)
		return nil
	case "promote-students":
		return cli.runPromotionReport(ctx)
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cli.out)
	return fs
}

func (cli *commandLine) promptNewPassword() (string, error) {
	fmt.Fprint(cli.out, "Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Fprintln(cli.out)
	if err != nil {
		return "", err
	}
	if len(pwd) == 0 {
		return "", errHelp
	}
	fmt.Fprint(cli.out, "Confirm password:")
	confirm, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Fprintln(cli.out)
	if err != nil {
		return "", err
	}
	if string(confirm) != string(pwd) {
		return "", errors.New("passwords do not match")
	}
	return string(pwd), nil
}

func (cli *commandLine) runPromotionReport(ctx context.Context) error {
	report, err := cli.promotion.Report(ctx)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CLASS\tNAME\tACTIVE\tCAPACITY")
	for _, class := range report.Classes {
		capacity := "-"
		if class.Capacity > 0 {
			capacity = fmt.Sprint(class.Capacity)
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", class.ClassCode, class.Name, class.ActiveStudents, capacity)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "%d active students examined\n", report.Examined)
	if len(report.OverCapacity) > 0 {
		fmt.Fprintf(cli.out, "over capacity: %s\n", strings.Join(report.OverCapacity, ", "))
	}
	return nil
}
