package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/AlecAivazis/survey/v2"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/joho/godotenv"
	qrcode "github.com/skip2/go-qrcode"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/xeptore/tidewave/auth"
	"github.com/xeptore/tidewave/config"
	"github.com/xeptore/tidewave/constant"
	"github.com/xeptore/tidewave/log"
	"github.com/xeptore/tidewave/redact"
	"github.com/xeptore/tidewave/tidal"
)

func main() {
	logger := log.NewDefault()

	//nolint:exhaustruct
	app := &cli.Command{
		Name:    "tidewave",
		Version: constant.Version,
		Metadata: map[string]any{
			"compiled_at": constant.CompileTime,
		},
		Suggest:                    true,
		Usage:                      "TIDAL web API client",
		EnableShellCompletion:      true,
		ShellCompletionCommandName: "shell-completion",
		AllowExtFlags:              false,
		Flags: []cli.Flag{
			//nolint:exhaustruct
			&cli.StringFlag{
				Name:     "config",
				Usage:    "Config file path",
				Required: false,
			},
		},
		Commands: []*cli.Command{
			//nolint:exhaustruct
			{
				Name:  "login",
				Usage: "Login to TIDAL",
				Flags: []cli.Flag{
					//nolint:exhaustruct
					&cli.BoolFlag{
						Name:  "pkce",
						Usage: "Use the browser PKCE flow instead of the device-code flow",
					},
				},
				Action: login,
			},
			//nolint:exhaustruct
			{
				Name:   "whoami",
				Usage:  "Show the logged-in user",
				Action: whoami,
			},
			//nolint:exhaustruct
			{
				Name:      "search",
				Usage:     "Search the catalogue",
				ArgsUsage: "<query>",
				Flags: []cli.Flag{
					//nolint:exhaustruct
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum results per kind",
						Value: 10,
					},
				},
				Action: search,
			},
			//nolint:exhaustruct
			{
				Name:      "url",
				Usage:     "Resolve a direct stream URL for a track",
				ArgsUsage: "<track-id | share-link>",
				Action:    trackURL,
			},
			//nolint:exhaustruct
			{
				Name:   "favorites",
				Usage:  "List the logged-in user's favorites",
				Action: favorites,
			},
		},
	}

	if err := app.Run(context.Background(), os.Args); nil != err {
		if errors.Is(err, context.Canceled) {
			logger.Trace().Msg("Application was canceled")
			os.Exit(1)
		}

		var exitCode exitCodeError
		if errors.As(err, &exitCode) {
			os.Exit(int(exitCode))
		}

		logger.Error().Err(err).Msg("Application exited with error")
		os.Exit(10)
	}
}

type exitCodeError int

func (e exitCodeError) Error() string {
	return "error with exit code: " + strconv.Itoa(int(e))
}

func newClient(cmd *cli.Command) (*tidal.Client, error) {
	logger := log.NewDefault()

	if err := godotenv.Load(); nil != err {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load .env file: %v", err)
		}
		logger.Debug().Msg(".env file was not found")
	} else {
		logger.Debug().Msg(".env file was loaded")
	}

	conf, err := config.Load(cmd.String("config"))
	if nil != err {
		return nil, fmt.Errorf("load config: %v", err)
	}

	logger = log.FromConfig(conf.Log)
	logger.Debug().Dict("config", conf.ToDict()).Msg("Config loaded")

	if err := os.MkdirAll(conf.Tidal.CredsDir, 0o0700); nil != err {
		return nil, fmt.Errorf("create creds dir: %v", err)
	}

	client, err := tidal.NewClient(logger, conf.Tidal, auth.NewFileStore(conf.Tidal.CredsDir))
	if nil != err {
		return nil, fmt.Errorf("create tidal client: %v", err)
	}

	return client, nil
}

func login(ctx context.Context, cmd *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := newClient(cmd)
	if nil != err {
		return err
	}

	if cmd.Bool("pkce") {
		return loginPKCE(ctx, client)
	}

	return loginDevice(ctx, client)
}

func loginDevice(ctx context.Context, client *tidal.Client) error {
	link, done, err := client.InitiateLoginFlow(ctx)
	if nil != err {
		return fmt.Errorf("initiate login flow: %w", err)
	}

	qr, err := qrcode.New(link.URL, qrcode.Medium)
	if nil != err {
		return fmt.Errorf("render login QR code: %v", err)
	}

	fmt.Println(qr.ToSmallString(false))
	fmt.Printf("Visit %s and enter code %s within %s\n", link.URL, link.UserCode, link.ExpiresIn)

	res := <-done
	if err := res.Err(); nil != err {
		if errors.Is(err, auth.ErrLoginLinkExpired) {
			fmt.Println("The login link expired before the authorization completed. Try again.")
			return exitCodeError(2)
		}

		return fmt.Errorf("complete login flow: %w", err)
	}

	if err := client.ConnectSession(ctx); nil != err {
		return fmt.Errorf("connect session: %w", err)
	}

	fmt.Printf("Logged in. Session country: %s\n", client.CountryCode())

	return nil
}

func loginPKCE(ctx context.Context, client *tidal.Client) error {
	loginURL, challenge, err := client.PKCELoginURL()
	if nil != err {
		return fmt.Errorf("build PKCE login URL: %w", err)
	}

	fmt.Println("Open the following URL in your browser and log in.")
	fmt.Println("You will land on an 'Oops' page; copy its full URL.")
	fmt.Println()
	fmt.Println(loginURL)
	fmt.Println()

	var redirectURL string
	prompt := &survey.Input{Message: "Paste the 'Oops' page URL:"} //nolint:exhaustruct
	if err := survey.AskOne(prompt, &redirectURL, survey.WithValidator(survey.Required)); nil != err {
		return fmt.Errorf("read redirect URL: %w", err)
	}

	if err := client.CompletePKCELogin(ctx, challenge, strings.TrimSpace(redirectURL)); nil != err {
		return fmt.Errorf("complete PKCE login: %w", err)
	}

	fmt.Printf("Logged in. Session country: %s\n", client.CountryCode())

	return nil
}

func whoami(ctx context.Context, cmd *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := newClient(cmd)
	if nil != err {
		return err
	}

	if err := client.ConnectSession(ctx); nil != err {
		if errors.Is(err, tidal.ErrLoginRequired) || errors.Is(err, tidal.ErrUnauthorized) {
			fmt.Println("Not logged in. Run `tidewave login` first.")
			return exitCodeError(2)
		}

		return fmt.Errorf("connect session: %w", err)
	}

	user, err := client.CurrentUser(ctx)
	if nil != err {
		return fmt.Errorf("get current user: %w", err)
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendRows([]table.Row{
		{"User ID", user.ID},
		{"Name", user.DisplayName()},
		{"Email", user.Email},
		{"Country", client.CountryCode()},
		{"Session", redact.String(client.SessionID())},
	})
	t.Render()

	return nil
}

func search(ctx context.Context, cmd *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	query := strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))
	if query == "" {
		return errors.New("search query is required")
	}

	client, err := newClient(cmd)
	if nil != err {
		return err
	}

	if err := client.ConnectSession(ctx); nil != err {
		return fmt.Errorf("connect session: %w", err)
	}

	results, err := client.Search(ctx, query, nil, cmd.Int("limit"), 0)
	if nil != err {
		return fmt.Errorf("search: %w", err)
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Kind", "ID", "Title", "Artist"})
	for _, a := range results.Artists {
		t.AppendRow(table.Row{"artist", a.ID, a.Name, ""})
	}
	for _, a := range results.Albums {
		t.AppendRow(table.Row{"album", a.ID, a.Title, artistName(a.LeadArtist())})
	}
	for _, tr := range results.Tracks {
		t.AppendRow(table.Row{"track", tr.ID, tr.Title, artistName(tr.LeadArtist())})
	}
	for _, v := range results.Videos {
		t.AppendRow(table.Row{"video", v.ID, v.Title, ""})
	}
	for _, p := range results.Playlists {
		t.AppendRow(table.Row{"playlist", p.UUID, p.Title, ""})
	}
	t.Render()

	if hit := results.TopHit; hit != nil {
		fmt.Printf("Top hit kind: %s\n", hit.Type)
	}

	return nil
}

func artistName(a *tidal.Artist) string {
	if a == nil {
		return ""
	}

	return a.Name
}

func trackURL(ctx context.Context, cmd *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	arg := cmd.Args().First()
	id, err := strconv.ParseInt(arg, 10, 64)
	if nil != err {
		link, linkErr := tidal.ParseLink(arg)
		if nil != linkErr {
			return fmt.Errorf("argument is neither a track id nor a share link: %v", linkErr)
		}
		if link.Kind != tidal.LinkKindTrack {
			return fmt.Errorf("link points at a %s, not a track", link.Kind)
		}

		id, err = strconv.ParseInt(link.ID, 10, 64)
		if nil != err {
			return fmt.Errorf("track id must be numeric: %v", err)
		}
	}

	client, err := newClient(cmd)
	if nil != err {
		return err
	}

	if err := client.ConnectSession(ctx); nil != err {
		return fmt.Errorf("connect session: %w", err)
	}

	streamURL, err := client.TrackURL(ctx, id)
	if nil != err {
		return fmt.Errorf("resolve track URL: %w", err)
	}

	fmt.Println(streamURL)

	return nil
}

func favorites(ctx context.Context, cmd *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := newClient(cmd)
	if nil != err {
		return err
	}

	if err := client.ConnectSession(ctx); nil != err {
		return fmt.Errorf("connect session: %w", err)
	}

	var (
		artists   []tidal.Artist
		albums    []tidal.Album
		tracks    []tidal.Track
		videos    []tidal.Video
		playlists []tidal.Playlist
	)

	wg, wgctx := errgroup.WithContext(ctx)
	wg.Go(func() (err error) { artists, err = client.FavoriteArtists(wgctx); return err })
	wg.Go(func() (err error) { albums, err = client.FavoriteAlbums(wgctx); return err })
	wg.Go(func() (err error) { tracks, err = client.FavoriteTracks(wgctx); return err })
	wg.Go(func() (err error) { videos, err = client.FavoriteVideos(wgctx); return err })
	wg.Go(func() (err error) { playlists, err = client.FavoritePlaylists(wgctx); return err })
	if err := wg.Wait(); nil != err {
		return fmt.Errorf("list favorites: %w", err)
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Kind", "ID", "Title"})
	for _, a := range artists {
		t.AppendRow(table.Row{"artist", a.ID, a.Name})
	}
	for _, a := range albums {
		t.AppendRow(table.Row{"album", a.ID, a.Title})
	}
	for _, tr := range tracks {
		t.AppendRow(table.Row{"track", tr.ID, tr.Title})
	}
	for _, v := range videos {
		t.AppendRow(table.Row{"video", v.ID, v.Title})
	}
	for _, p := range playlists {
		t.AppendRow(table.Row{"playlist", p.UUID, p.Title})
	}
	t.Render()

	return nil
}
