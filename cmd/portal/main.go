package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/joho/godotenv"

	"github.com/wintercup/portal/internal/domain"
	"github.com/wintercup/portal/internal/infra"
	"github.com/wintercup/portal/internal/portal"
	"github.com/wintercup/portal/internal/session"
	"github.com/wintercup/portal/internal/submission"
)

const usage = `usage: portal <command> [args]

commands:
  login [roblox-id name [display-name]]   sign in (demo account when no args)
  logout                                  sign out
  whoami                                  show the current identity
  tournaments                             list tournaments
  servers                                 list VIP servers
  reports                                 list my reports
  create-tournament name game url [max-players [prize-robux [start-date]]]
  create-server game url                  share a VIP server
  report player type description...       report a player (types: cheating, toxicity, teaming, spam, other, positive)
  theme [light|dark]                      show or set the theme
`

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	if err := run(cfg, logger, os.Args[1:], os.Stdout); err != nil {
		var appErr *domain.AppError
		if !errors.As(err, &appErr) {
			logger.Error("portal failed", "error", err)
		}
		os.Exit(1)
	}
}

func run(cfg *infra.Config, logger *slog.Logger, args []string, out io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(out, usage)
		return nil
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	notifier := domain.NotifierFunc(func(n domain.Notice) {
		if n.Message == "" {
			fmt.Fprintf(out, "[%s] %s\n", n.Level, n.Title)
			return
		}
		fmt.Fprintf(out, "[%s] %s: %s\n", n.Level, n.Title, n.Message)
	})

	p, err := portal.New(ctx, cfg, notifier, logger)
	if err != nil {
		return err
	}
	defer p.Close()

	if _, err := p.Session.RestoreFromPersistence(ctx); err != nil {
		return err
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "login":
		return login(ctx, p, rest)
	case "logout":
		return p.Logout(ctx)
	case "whoami":
		return whoami(p, out)
	case "tournaments":
		if err := p.Tournaments.Load(ctx); err != nil {
			return err
		}
		printTournaments(out, p.Tournaments.Items())
	case "servers":
		if err := p.VipServers.Load(ctx); err != nil {
			return err
		}
		printVipServers(out, p.VipServers.Items())
	case "reports":
		if err := p.MyReports.Load(ctx); err != nil {
			return err
		}
		printReports(out, p.MyReports.Items())
	case "create-tournament":
		return createTournament(ctx, p, rest)
	case "create-server":
		if len(rest) != 2 {
			return fmt.Errorf("create-server needs game and url")
		}
		p.VipServerForm.SetDraft(submission.VipServerDraft{GameName: rest[0], ServerURL: rest[1]})
		_, err := p.VipServerForm.Submit(ctx)
		return err
	case "report":
		if len(rest) < 3 {
			return fmt.Errorf("report needs player, type and description")
		}
		p.ReportForm.SetDraft(submission.ReportDraft{
			ReportedPlayer: rest[0],
			Type:           domain.ReportType(rest[1]),
			Description:    strings.Join(rest[2:], " "),
		})
		_, err := p.ReportForm.Submit(ctx)
		return err
	case "theme":
		if len(rest) == 0 {
			fmt.Fprintln(out, p.Session.Theme())
			return nil
		}
		return p.Session.SetTheme(ctx, session.Theme(rest[0]))
	default:
		fmt.Fprint(out, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
	return nil
}

func login(ctx context.Context, p *portal.Portal, args []string) error {
	cred := session.DemoCredential()
	if len(args) > 0 {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("parse roblox id: %w", err)
		}
		if len(args) < 2 {
			return fmt.Errorf("login needs a name with the roblox id")
		}
		cred = session.RobloxCredential{ID: id, Name: args[1]}
		if len(args) > 2 {
			cred.DisplayName = strings.Join(args[2:], " ")
		}
	}
	_, err := p.Login(ctx, cred)
	return err
}

func whoami(p *portal.Portal, out io.Writer) error {
	id, ok := p.Session.Identity()
	if !ok {
		fmt.Fprintln(out, "not signed in")
		return nil
	}
	fmt.Fprintf(out, "%s (@%s) id=%d rating=%d wins=%d losses=%d win-rate=%d%%\n",
		id.DisplayName(), id.Username, id.ID, id.Rating, id.Wins, id.Losses, id.WinRate())
	return nil
}

func createTournament(ctx context.Context, p *portal.Portal, args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("create-tournament needs name, game and url")
	}
	d := submission.DefaultTournamentDraft()
	d.Name, d.Game, d.ServerURL = args[0], args[1], args[2]
	if len(args) > 3 {
		n, err := strconv.Atoi(args[3])
		if err != nil {
			return fmt.Errorf("parse max players: %w", err)
		}
		d.MaxPlayers = n
	}
	if len(args) > 4 {
		n, err := strconv.ParseInt(args[4], 10, 64)
		if err != nil {
			return fmt.Errorf("parse prize: %w", err)
		}
		d.PrizeRobux = n
	}
	if len(args) > 5 {
		d.StartDate = args[5]
	}
	p.TournamentForm.SetDraft(d)
	_, err := p.TournamentForm.Submit(ctx)
	return err
}

func printTournaments(out io.Writer, items []domain.Tournament) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tGAME\tPLAYERS\tPRIZE\tSTATUS")
	for _, t := range items {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d/%d\t%d R$\t%s\n", t.ID, t.Name, t.Game, t.Players, t.MaxPlayers, t.Prize, t.Status)
	}
	w.Flush()
}

func printVipServers(out io.Writer, items []domain.VipServer) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tGAME\tONLINE\tBY\tURL")
	for _, v := range items {
		fmt.Fprintf(w, "%d\t%s\t%d/%d\t%s\t%s\n", v.ID, v.GameName, v.OnlinePlayers, v.MaxPlayers, v.CreatorName, v.ServerURL)
	}
	w.Flush()
}

func printReports(out io.Writer, items []domain.ReportRecord) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPLAYER\tTYPE\tSTATUS\tCREATED")
	for _, r := range items {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", r.ID, r.ReportedPlayer, r.Type, r.Status, r.CreatedAt.Format("2006-01-02 15:04"))
	}
	w.Flush()
}
