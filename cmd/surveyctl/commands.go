package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/goliatone/go-surveyform/internal/web"
	"github.com/goliatone/go-surveyform/pkg/client"
	"github.com/goliatone/go-surveyform/pkg/contract"
	"github.com/goliatone/go-surveyform/pkg/draft"
	"github.com/goliatone/go-surveyform/pkg/form"
	"github.com/goliatone/go-surveyform/pkg/notify"
	"github.com/goliatone/go-surveyform/pkg/preview"
	"github.com/goliatone/go-surveyform/pkg/render"
	"github.com/goliatone/go-surveyform/pkg/renderers/text"
	"github.com/goliatone/go-surveyform/pkg/renderers/tui"
	"github.com/goliatone/go-surveyform/pkg/submission"
	"github.com/goliatone/go-surveyform/pkg/validation"
)

// errFailed reports a failure that was already printed.
var errFailed = errors.New("failed")

func newFlagSet(a *app, name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	return fs
}

func parseID(args []string) (int64, error) {
	if len(args) != 1 {
		return 0, errUsage
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid survey id %q", args[0])
	}
	return id, nil
}

func runList(ctx context.Context, a *app, args []string) error {
	if len(args) != 0 {
		return errUsage
	}
	svc, err := a.service()
	if err != nil {
		return err
	}
	surveys, err := svc.List(ctx)
	if err != nil {
		return errors.New(failure(err, web.MessageListFailed))
	}
	if len(surveys) == 0 {
		fmt.Fprintln(a.stdout, web.MessageNoSurveys)
		return nil
	}
	tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tSTATUS")
	for _, s := range surveys {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", s.ID, s.Title, s.Status)
	}
	return tw.Flush()
}

func runShow(ctx context.Context, a *app, args []string) error {
	id, err := parseID(args)
	if err != nil {
		return err
	}
	svc, err := a.service()
	if err != nil {
		return err
	}
	s, err := svc.Get(ctx, id)
	if err != nil {
		return errors.New(failure(err, web.MessageFetchFailed))
	}
	printSurvey(a.stdout, s)
	return nil
}

func printSurvey(w io.Writer, s client.Survey) {
	fmt.Fprintf(w, "%s\n", s.Title)
	fmt.Fprintf(w, "Status: %s\n", s.Status)
	formURL := s.FormURL
	if formURL == "" {
		formURL = "-"
	}
	fmt.Fprintf(w, "Form URL: %s\n", formURL)
	fmt.Fprintf(w, "Recipient Email: %s\n", s.RecipientEmail)
	for i, q := range s.Questions {
		fmt.Fprintf(w, "%d. %s\n", i+1, q.Text)
		for _, opt := range q.Options {
			fmt.Fprintf(w, "   ( ) %s\n", opt)
		}
	}
}

func runApprove(ctx context.Context, a *app, args []string) error {
	id, err := parseID(args)
	if err != nil {
		return err
	}
	svc, err := a.service()
	if err != nil {
		return err
	}
	result, err := svc.Approve(ctx, id)
	if err != nil {
		return errors.New(failure(err, web.MessageApproveFailed))
	}
	fmt.Fprintln(a.stdout, web.ApprovedMessage(result))
	if s, err := svc.Get(ctx, id); err == nil && s.FormURL != "" {
		fmt.Fprintf(a.stdout, "Form URL: %s\n", s.FormURL)
	}
	return nil
}

func runDelete(ctx context.Context, a *app, args []string) error {
	id, err := parseID(args)
	if err != nil {
		return err
	}
	svc, err := a.service()
	if err != nil {
		return err
	}
	if err := svc.Delete(ctx, id); err != nil {
		return errors.New(failure(err, web.MessageDeleteFailed))
	}
	fmt.Fprintln(a.stdout, web.MessageDeleted)
	return nil
}

func failure(err error, fallback string) string {
	if msg, ok := client.DetailMessage(err); ok {
		return msg
	}
	return fmt.Sprintf("%s: %v", fallback, err)
}

func runCreate(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "create")
	draftPath := fs.String("draft", "", "YAML or JSON draft document; interactive when empty")
	showPreview := fs.Bool("preview", false, "print the preview before creating")
	dryRun := fs.Bool("dry-run", false, "validate and preview without creating")
	savePath := fs.String("save", "", "write the interactive draft here when the session ends without creating")
	if err := fs.Parse(args); err != nil || fs.NArg() != 0 {
		return errUsage
	}

	textPreview, err := text.New()
	if err != nil {
		return err
	}
	svc, err := a.service()
	if err != nil {
		return err
	}
	sink := notify.Multi(printSink{w: a.stdout}, notify.LogSink{Logger: a.logger})

	if *draftPath == "" {
		session := tui.New(
			tui.WithPromptDriver(tui.NewSurveyDriver(tui.WithOutput(a.stdout))),
			tui.WithPreviewRenderer(textPreview),
		)
		f := form.New(submission.New(svc, notify.Multi(session, notify.LogSink{Logger: a.logger})), form.WithLogger(a.logger))
		outcome, err := session.Run(ctx, f)
		if err != nil && *savePath != "" {
			if saveErr := draft.SaveDocument(*savePath, f.Snapshot().Draft); saveErr != nil {
				return errors.Join(err, saveErr)
			}
			fmt.Fprintf(a.stderr, "Draft saved to %s\n", *savePath)
		}
		if errors.Is(err, tui.ErrAborted) {
			fmt.Fprintln(a.stderr, "Aborted.")
			return errFailed
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "Survey %d: %s\n", outcome.Survey.ID, outcome.Redirect)
		return nil
	}

	d, err := loadDraft(*draftPath)
	if err != nil {
		return err
	}
	if *showPreview || *dryRun {
		if err := printPreview(ctx, a.stdout, textPreview, d); err != nil {
			return err
		}
	}
	f := form.New(submission.New(svc, sink), form.WithDraft(d), form.WithLogger(a.logger))
	if *dryRun {
		if errs := f.Validate(); len(errs) > 0 {
			printIssues(a.stderr, validation.Summarize(errs))
			return errFailed
		}
		fmt.Fprintln(a.stdout, "Draft is valid.")
		return nil
	}

	outcome, err := f.Submit(ctx)
	switch {
	case errors.Is(err, form.ErrInvalid):
		printIssues(a.stderr, validation.Summarize(f.Snapshot().Errors))
		return errFailed
	case err != nil:
		state := f.Snapshot()
		printIssues(a.stderr, validation.Summarize(state.Errors))
		for _, msg := range state.FormErrors {
			fmt.Fprintf(a.stderr, "  %s\n", msg)
		}
		return errFailed
	}
	fmt.Fprintf(a.stdout, "Survey %d: %s\n", outcome.Survey.ID, outcome.Redirect)
	return nil
}

func loadDraft(path string) (draft.Draft, error) {
	doc, err := draft.LoadDocument(path)
	if err != nil {
		return draft.Draft{}, err
	}
	return doc.Apply(draft.New(), nil)
}

func printPreview(ctx context.Context, w io.Writer, r render.Renderer, d draft.Draft) error {
	out, err := r.Render(ctx, preview.Build(d), render.RenderOptions{})
	if err != nil {
		return err
	}
	fmt.Fprintln(w, strings.TrimRight(string(out), "\n"))
	return nil
}

func printIssues(w io.Writer, result validation.Result) {
	for _, issue := range result.Issues {
		if issue.Path == "" {
			fmt.Fprintf(w, "  %s\n", issue.Message)
			continue
		}
		fmt.Fprintf(w, "  %s: %s\n", issue.Path, issue.Message)
	}
}

// printSink writes notifications as single lines.
type printSink struct {
	w io.Writer
}

func (p printSink) Notify(kind notify.Kind, message string) {
	prefix := tui.DefaultTheme.SuccessPrefix
	if kind == notify.Danger {
		prefix = tui.DefaultTheme.ErrorPrefix
	}
	fmt.Fprintln(p.w, prefix+message)
}

func runValidate(_ context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "validate")
	asJSON := fs.Bool("json", false, "print the result as JSON")
	if err := fs.Parse(args); err != nil || fs.NArg() != 1 {
		return errUsage
	}
	d, err := loadDraft(fs.Arg(0))
	if err != nil {
		return err
	}
	result := validation.Check(d)
	if *asJSON {
		enc := json.NewEncoder(a.stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return err
		}
	} else if result.Valid {
		fmt.Fprintln(a.stdout, "Draft is valid.")
	} else {
		fmt.Fprintf(a.stdout, "%d problem(s):\n", len(result.Issues))
		printIssues(a.stdout, result)
	}
	if !result.Valid {
		return errFailed
	}
	return nil
}

func runContract(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "contract")
	check := fs.String("check", "", "draft document to check against the create request schema")
	if err := fs.Parse(args); err != nil || fs.NArg() != 0 {
		return errUsage
	}
	ct, err := contract.Default()
	if err != nil {
		return err
	}
	if *check == "" {
		fmt.Fprintln(a.stdout, ct.Title())
		tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
		for _, op := range ct.Operations() {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", op.Method, op.Path, op.ID, op.Summary)
		}
		return tw.Flush()
	}

	d, err := loadDraft(*check)
	if err != nil {
		return err
	}
	req := submission.Build(d)
	if req.Multipart {
		fmt.Fprintln(a.stdout, "Draft uploads a questions file; the multipart body is checked by the backend.")
		return nil
	}
	body, err := json.Marshal(req.Survey)
	if err != nil {
		return err
	}
	err = ct.ValidateCreate(ctx, body)
	var contractErr *contract.ContractError
	if errors.As(err, &contractErr) {
		for _, issue := range contractErr.Issues {
			location := issue.Path()
			if location == "" {
				location = "(body)"
			}
			fmt.Fprintf(a.stderr, "%s: %s -> %s\n", *check, location, issue.Message)
		}
		return errFailed
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, "Draft matches the create request schema.")
	return nil
}

func runServe(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "serve")
	addr := fs.String("addr", a.cfg.Server.Addr, "listen address")
	if err := fs.Parse(args); err != nil || fs.NArg() != 0 {
		return errUsage
	}
	svc, err := a.service()
	if err != nil {
		return err
	}
	selector, err := web.NewManifestSelector(web.DefaultManifest())
	if err != nil {
		return err
	}
	banner := notify.NewBanner(notify.WithTTL(a.cfg.Notify.TTL))
	srv, err := web.New(svc,
		web.WithLogger(a.logger),
		web.WithBanner(banner),
		web.WithTheme(selector, a.cfg.Theme.Name, a.cfg.Theme.Variant),
		web.WithCORSOrigins(a.cfg.Server.CORSOrigins...),
		web.WithRequestTimeout(a.cfg.API.Timeout*2),
	)
	if err != nil {
		return err
	}
	return srv.ListenAndServe(ctx, *addr)
}
