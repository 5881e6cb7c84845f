package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/specterops/xf/internal/collector"
	"github.com/specterops/xf/internal/config"
	"github.com/specterops/xf/internal/credentials"
	"github.com/specterops/xf/internal/entry"
	"github.com/specterops/xf/internal/filter"
	"github.com/specterops/xf/internal/format"
	"github.com/specterops/xf/internal/ldap"
	"github.com/specterops/xf/internal/listing"
	"github.com/specterops/xf/internal/logger"
	"github.com/specterops/xf/internal/rules"
	"github.com/specterops/xf/internal/security"
	"github.com/specterops/xf/internal/sid"
	"github.com/specterops/xf/internal/smb"
	"github.com/specterops/xf/internal/sorting"
	"github.com/specterops/xf/internal/status"
	"github.com/specterops/xf/internal/style"
	"github.com/specterops/xf/internal/utils"
)

// app carries what every command needs once flags and the config file are
// merged.
type app struct {
	log      *logger.Logger
	file     *config.File
	colors   *style.Colorizer
	out      *bufio.Writer
	creds    *credentials.Credentials
	info     security.SecurityInformation
	resolver *sid.Resolver
	// share is set once an SMB source is open, for SHARE.* rule fields.
	share string
}

func defaultConfigHint() string {
	if p := config.DefaultPath(); p != "" {
		return p
	}
	return "none"
}

// newApp builds the app or exits. Errors before the logger exists go to
// stderr through a default logger.
func newApp(cmd *cobra.Command) *app {
	file, fileErr := config.LoadFile(afero.NewOsFs(), configPath)
	if file == nil {
		file = &config.File{}
	}

	var colorsOff *bool
	switch {
	case cmd.Flags().Changed("no-colors"):
		colorsOff = &noColors
	case file.NoColors != nil:
		colorsOff = file.NoColors
	}
	cfg := config.NewConfig(debug, colorsOff)
	log := logger.NewLogger(cfg, logfile)

	a := &app{
		log:  log,
		file: file,
		out:  bufio.NewWriter(os.Stdout),
	}
	if fileErr != nil {
		a.fail(fileErr)
	}
	if err := a.applyFile(cmd.Flags().Changed); err != nil {
		a.fail(err)
	}

	a.colors = style.NewColorizer(os.Stdout, cfg.NoColors()).WithDefaults().WithConfig(file.Groups)

	info, err := security.ParseInformation(infoSpec)
	if err != nil {
		a.fail(err)
	}
	a.info = info

	creds, err := credentials.NewCredentials(authDomain, authUser, authPassword, authHashes)
	if err != nil {
		a.fail(err)
	}
	a.creds = creds
	if !creds.IsAnonymous() {
		log.Debug(fmt.Sprintf("Using %s", creds))
	}

	a.resolver = sid.NewResolver(sid.DefaultTTL, log, a.directory()...)
	return a
}

// applyFile copies config file values into flags the user did not set.
func (a *app) applyFile(changed func(string) bool) error {
	f := a.file
	if f.Format != "" && !changed("format") {
		m, err := format.ParseMode(f.Format)
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		outputMode = m
	}
	if f.Sort != "" && !changed("sort") {
		k, err := sorting.ParseKey(f.Sort)
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		sortKey = k
	}
	if f.DirsFirst != nil && !changed("dirs-first") {
		dirsFirst = *f.DirsFirst
	}
	if f.Hidden && !changed("hidden") {
		showHidden = true
	}
	if f.Threads > 0 && !changed("threads") {
		threads = f.Threads
	}
	return nil
}

// directory returns the LDAP lookup for domain SIDs when a DC is given.
// A DC that cannot be reached only costs the names it would have resolved.
func (a *app) directory() []sid.Lookup {
	if authDCIP == "" {
		return nil
	}
	opts := ldap.OptionsFromCredentials(a.creds, authDCIP, useLDAPS)
	opts.Timeout = a.timeout()
	client, err := ldap.NewClient(opts)
	if err != nil {
		a.log.Warning(fmt.Sprintf("LDAP disabled: %v", err))
		return nil
	}
	if err := client.Connect(); err != nil {
		a.log.Warning(fmt.Sprintf("LDAP disabled: %v", err))
		return nil
	}
	a.log.Debug(fmt.Sprintf("Resolving domain SIDs via LDAP on %s", authDCIP))
	return []sid.Lookup{client}
}

func (a *app) timeout() time.Duration {
	return time.Duration(timeout * float64(time.Second))
}

func (a *app) smbOptions() entry.SMBOptions {
	return entry.SMBOptions{
		Credentials: a.creds,
		Port:        port,
		Timeout:     a.timeout(),
		Nameserver:  nameserver,
	}
}

// openSource opens path as an SMB share when it looks like one, and as a
// local directory otherwise.
func (a *app) openSource(ctx context.Context, path string) (entry.Source, error) {
	if !smb.IsTarget(path) {
		a.share = ""
		src, err := entry.NewLocalSource(afero.NewOsFs(), path)
		if err != nil {
			return nil, err
		}
		return src, nil
	}

	target, err := smb.ParseTarget(path)
	if err != nil {
		return nil, err
	}
	a.log.Debug(fmt.Sprintf("Connecting to %s as %s", target, a.creds))
	src, err := entry.OpenSMB(ctx, target, a.smbOptions(), a.log)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", target, err)
	}
	a.share = target.Share
	return src, nil
}

func (a *app) filter() (filter.Filter, error) {
	filters := []filter.Filter{filter.Default()}
	if showHidden {
		filters[0] = filter.All
	}
	if onlyDirs {
		filters = append(filters, filter.Directory)
	}
	if len(extensions) > 0 {
		filters = append(filters, filter.Extensions(extensions...))
	}
	if sizeExpr != "" {
		f, err := filter.Size(sizeExpr)
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)
	}
	return filter.And(filters...), nil
}

// rules parses --rules-file, --rule-string and the config file rules. With
// none given every entry is shown and explored.
func (a *app) rules() (*rules.Evaluator, error) {
	parser := rules.NewParser()
	var parsed []rules.Rule
	var errs []error

	fsys := afero.NewOsFs()
	for _, path := range rulesFiles {
		r, e := parser.ParseFile(fsys, path)
		parsed = append(parsed, r...)
		errs = append(errs, e...)
	}
	r, e := parser.ParseStrings(append(ruleStrings, a.file.Rules...))
	parsed = append(parsed, r...)
	errs = append(errs, e...)

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	if len(parsed) == 0 {
		return nil, nil
	}
	a.log.Debug(fmt.Sprintf("Loaded %d rules", len(parsed)))
	return rules.NewEvaluator(parsed).WithShare(a.share), nil
}

func (a *app) lister(src entry.Source) (*listing.Lister, error) {
	f, err := a.filter()
	if err != nil {
		return nil, err
	}
	ev, err := a.rules()
	if err != nil {
		return nil, err
	}
	return &listing.Lister{
		Source: src,
		Filter: f,
		Sort: sorting.Options{
			Key:         sortKey,
			Reverse:     reverse,
			DirsFirst:   dirsFirst,
			HiddenFirst: hiddenFirst,
		}.Build(),
		Rules: ev,
		Log:   a.log,
	}, nil
}

func (a *app) names() format.Names {
	return a.resolver
}

// collect fetches the descriptors of entries. Failures stay on the entries.
func (a *app) collect(ctx context.Context, src entry.Source, entries []*entry.Entry) {
	start := time.Now()
	c := collector.New(src, a.info, threads, a.log)

	var tracker *status.ProgressTracker
	if progress && format.TerminalWidth(os.Stderr) > 0 {
		tracker = status.NewProgressTracker(os.Stderr, c, len(entries))
		tracker.Start()
	}
	err := c.Collect(ctx, entries)
	if tracker != nil {
		tracker.Stop()
	}
	if err != nil {
		a.log.Warning(fmt.Sprintf("Descriptor collection stopped: %v", err))
	}
	counts := c.Counts()
	a.log.Debug(fmt.Sprintf("Fetched %d descriptors (%d failed) for %d files and %d directories in %s",
		counts.Fetched, counts.Failed, counts.Files, counts.Directories, utils.DeltaTime(time.Since(start))))
}

func (a *app) close() {
	a.out.Flush()
	if a.resolver != nil {
		a.resolver.Close()
	}
	a.log.Close()
}

// fail logs err and exits. SMB errors are reported by category.
func (a *app) fail(err error) {
	a.log.Error(describeError(err))
	a.close()
	os.Exit(1)
}

// describeError appends the SMB error class when one is known.
func describeError(err error) string {
	msg := err.Error()
	if c := smb.ClassifyError(err); c.Category != smb.ErrorCategoryUnknown {
		msg = fmt.Sprintf("%s (%s: %s)", msg, c.Category, c.Message)
	}
	return msg
}
