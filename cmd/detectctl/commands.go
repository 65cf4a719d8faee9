package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/dmitrymomot/detectkit"
	"github.com/dmitrymomot/detectkit/pkg/async"
	"github.com/dmitrymomot/detectkit/pkg/dashboard"
	"github.com/dmitrymomot/detectkit/pkg/detector"
	"github.com/dmitrymomot/detectkit/pkg/file"
)

var errMissingArgument = errors.New("missing argument")

type app struct {
	client *detectkit.Client
	stdout io.Writer
	stderr io.Writer
}

type command struct {
	summary string
	// session provisions the session before run.
	session bool
	run     func(ctx context.Context, a *app, args []string) error
}

var commands = map[string]command{
	"detect-url":     {summary: "detect images by URL", session: true, run: detectURL},
	"detect-file":    {summary: "detect local files or s3:// objects", session: true, run: detectFile},
	"feedback":       {summary: "rate a result as correct or wrong", session: true, run: feedback},
	"requests":       {summary: "list past requests", session: true, run: listRequests},
	"usage":          {summary: "show API key usage", session: true, run: apiUsage},
	"api-token":      {summary: "issue or rotate the API token", session: true, run: apiToken},
	"delete-account": {summary: "delete the account and local session", run: deleteAccount},
	"sign-out":       {summary: "forget the local session", run: signOut},
	"status":         {summary: "show session mode and anonymous quota", run: status},
	"share":          {summary: "print a share link, optionally write a QR code", run: shareResult},
	"health":         {summary: "probe the storage backend", run: health},
}

func (a *app) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	return fs
}

func visitorFlag(fs *flag.FlagSet) *string {
	return fs.String("visitor", os.Getenv("DETECT_VISITOR_ID"), "anonymous visitor id (random when empty)")
}

func visitorOrRandom(id string) string {
	if id = strings.TrimSpace(id); id != "" {
		return id
	}
	return uuid.NewString()
}

func detectURL(ctx context.Context, a *app, args []string) error {
	fs := a.flags("detect-url")
	visitor := visitorFlag(fs)
	concurrency := fs.Int("concurrency", 4, "parallel submissions")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("%w: url", errMissingArgument)
	}
	vid := visitorOrRandom(*visitor)

	outcomes := async.Map(ctx, fs.Args(), *concurrency, func(ctx context.Context, u string) (detector.Result, error) {
		return a.client.Detector.SubmitByURL(ctx, u, vid)
	})
	return a.printOutcomes(outcomes)
}

func detectFile(ctx context.Context, a *app, args []string) error {
	fs := a.flags("detect-file")
	visitor := visitorFlag(fs)
	concurrency := fs.Int("concurrency", 2, "parallel submissions")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("%w: file", errMissingArgument)
	}
	vid := visitorOrRandom(*visitor)

	outcomes := async.Map(ctx, fs.Args(), *concurrency, func(ctx context.Context, ref string) (detector.Result, error) {
		blob, err := a.client.Files.Open(ctx, ref)
		if err != nil {
			return detector.Result{}, err
		}
		if err := file.ValidateImage(blob, 0); err != nil {
			return detector.Result{}, err
		}
		return a.client.Detector.SubmitByBinary(ctx, blob.Data, blob.Name, vid)
	})
	return a.printOutcomes(outcomes)
}

// printOutcomes writes one line per input and fails when any input failed.
func (a *app) printOutcomes(outcomes []async.Outcome[string, detector.Result]) error {
	failed := 0
	for _, o := range outcomes {
		switch {
		case detector.IsQuotaExceeded(o.Err):
			failed++
			fmt.Fprintf(a.stdout, "%s\tquota exceeded\n", o.Input)
		case o.Err != nil:
			failed++
			fmt.Fprintf(a.stdout, "%s\terror\t%v\n", o.Input, o.Err)
		default:
			fmt.Fprintf(a.stdout, "%s\t%s\t%s\t%s\n", o.Input, o.Value.Verdict, o.Value.ID, a.link(o.Value.ID))
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d submissions failed", failed, len(outcomes))
	}
	return nil
}

func (a *app) link(resultID string) string {
	link, err := a.client.Share.Link(resultID)
	if err != nil {
		return "-"
	}
	return link
}

func feedback(ctx context.Context, a *app, args []string) error {
	fs := a.flags("feedback")
	correct := fs.Bool("correct", true, "whether the verdict was right")
	comment := fs.String("comment", "", "free-form comment")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: result id", errMissingArgument)
	}
	if err := a.client.Detector.SubmitFeedback(ctx, fs.Arg(0), *correct, *comment); err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, "feedback sent")
	return nil
}

func listRequests(ctx context.Context, a *app, args []string) error {
	fs := a.flags("requests")
	offset := fs.Int("offset", 0, "skip this many requests")
	limit := fs.Int("limit", 10, "page size")
	if err := fs.Parse(args); err != nil {
		return err
	}
	results, err := a.client.Dashboard.ListRequests(ctx, *offset, *limit)
	if err != nil {
		return err
	}
	for _, r := range results {
		fmt.Fprintf(a.stdout, "%s\t%s\t%s\n", r.ID, r.Verdict, r.PreviewURL)
	}
	return nil
}

func apiUsage(ctx context.Context, a *app, _ []string) error {
	key, err := a.client.Dashboard.APIUsage(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "name\t%s\n", key.Name)
	fmt.Fprintf(a.stdout, "daily\t%d/%d (%.1f%%)\n", key.Usage.Daily, key.Limits.Daily, key.UsagePercent())
	fmt.Fprintf(a.stdout, "per second\t%d\n", key.Limits.Secondly)
	if t, ok := key.Expires(); ok {
		fmt.Fprintf(a.stdout, "expires\t%s\n", t.Format("2006-01-02"))
	}
	return nil
}

func apiToken(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: issue or rotate", errMissingArgument)
	}
	var (
		token dashboard.APIToken
		err   error
	)
	switch args[0] {
	case "issue":
		token, err = a.client.Dashboard.IssueAPIToken(ctx)
	case "rotate":
		token, err = a.client.Dashboard.RotateAPIToken(ctx)
	default:
		return fmt.Errorf("unknown api-token action %q", args[0])
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, token.Key)
	return nil
}

func deleteAccount(ctx context.Context, a *app, _ []string) error {
	if err := a.client.Dashboard.DeleteAccount(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, "account deleted")
	return nil
}

func signOut(ctx context.Context, a *app, _ []string) error {
	if err := a.client.Session.SignOut(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, "signed out")
	return nil
}

func status(ctx context.Context, a *app, _ []string) error {
	mode, err := a.client.Session.Mode(ctx)
	if err != nil {
		return err
	}
	count, err := a.client.Session.UsageCount(ctx)
	if err != nil {
		return err
	}
	remaining, err := a.client.Quota.Remaining(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.stdout, "mode\t%s\n", mode)
	fmt.Fprintf(a.stdout, "anonymous requests\t%d/%d\n", count, a.client.Quota.Limit())
	if remaining < 0 {
		fmt.Fprintln(a.stdout, "remaining\tunlimited")
	} else {
		fmt.Fprintf(a.stdout, "remaining\t%d\n", remaining)
	}
	return nil
}

func shareResult(_ context.Context, a *app, args []string) error {
	fs := a.flags("share")
	qrPath := fs.String("qr", "", "write a PNG QR code of the link to this path")
	size := fs.Int("size", 256, "QR code size in pixels")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: result id", errMissingArgument)
	}
	id := fs.Arg(0)

	link, err := a.client.Share.Link(id)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, link)

	if *qrPath == "" {
		return nil
	}
	png, err := a.client.Share.QRCode(id, *size)
	if err != nil {
		return err
	}
	return os.WriteFile(*qrPath, png, 0o644)
}

func health(ctx context.Context, a *app, _ []string) error {
	if err := a.client.Healthcheck(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, "ok")
	return nil
}
