// xf - a directory lister that reads and explains Windows security
// descriptors, locally and on SMB shares.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/thediveo/enumflag/v2"

	"github.com/specterops/xf/internal/collector"
	"github.com/specterops/xf/internal/entry"
	"github.com/specterops/xf/internal/format"
	"github.com/specterops/xf/internal/sorting"
	"github.com/specterops/xf/internal/utils"
)

// Version information
const Version = "0.3.0"

// CLI flags
var (
	// Output options
	debug      bool
	noColors   bool
	logfile    string
	configPath string

	// Listing
	outputMode  = format.ModeGrid
	pretty      bool
	long        bool
	showHidden  bool
	sortKey     = sorting.KeyNatural
	reverse     bool
	dirsFirst   bool
	hiddenFirst bool
	extensions  []string
	sizeExpr    string
	onlyDirs    bool
	depth       int
	noIgnore    bool

	// Rules
	rulesFiles  []string
	ruleStrings []string

	// Security descriptors
	withACL  bool
	infoSpec string
	threads  int
	progress bool

	// SMB and authentication
	authDomain   string
	authUser     string
	authPassword string
	authHashes   string
	authDCIP     string
	useLDAPS     bool
	nameserver   string
	port         int
	timeout      float64
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "xf [path]",
		Short: "xf - list directories and explain who can access them",
		Long: `xf lists a local directory or an SMB share (\\host\share\path) as a grid,
a list or a tree, and reads the security descriptor of every entry it shows
when asked to.`,
		Args:          cobra.MaximumNArgs(1),
		Run:           runList,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// -h lists hidden files, so help only has a long form
	rootCmd.PersistentFlags().Bool("help", false, "Help for xf")

	// Output options
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Debug mode")
	rootCmd.PersistentFlags().BoolVar(&noColors, "no-colors", false, "Disable ANSI escape codes")
	rootCmd.PersistentFlags().StringVar(&logfile, "logfile", "", "Log file to write to")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: "+defaultConfigHint()+")")

	// Listing
	rootCmd.Flags().VarP(enumflag.New(&outputMode, "format", format.ModeNames, enumflag.EnumCaseInsensitive),
		"format", "f", "Output format: grid, list, tree or json")
	rootCmd.Flags().BoolVarP(&pretty, "pretty", "p", false, "One entry per line with perms, size and date")
	rootCmd.Flags().BoolVarP(&long, "long", "l", false, "Prefix tree lines with perms, size and date")
	rootCmd.PersistentFlags().BoolVarP(&showHidden, "hidden", "h", false, "Show hidden entries")
	rootCmd.Flags().VarP(enumflag.New(&sortKey, "sort", sorting.KeyNames, enumflag.EnumCaseInsensitive),
		"sort", "s", "Sort by natural, name, extension, date, time, datetime, size or none")
	rootCmd.Flags().BoolVarP(&reverse, "reverse", "r", false, "Reverse the sort order")
	rootCmd.Flags().BoolVar(&dirsFirst, "dirs-first", true, "List directories before files")
	rootCmd.Flags().BoolVar(&hiddenFirst, "hidden-first", false, "List hidden entries before the others")
	rootCmd.Flags().StringSliceVarP(&extensions, "ext", "e", nil, "Only show files with these extensions")
	rootCmd.Flags().StringVar(&sizeExpr, "size", "", "Only show files matching a size such as +1M or -500K")
	rootCmd.Flags().BoolVar(&onlyDirs, "only-dirs", false, "Only show directories")
	rootCmd.Flags().IntVar(&depth, "depth", 0, "Maximum tree depth (0 = unlimited)")
	rootCmd.Flags().BoolVar(&noIgnore, "no-ignore", false, "Do not honour .gitignore files in tree output")

	// Rules
	rootCmd.PersistentFlags().StringArrayVar(&rulesFiles, "rules-file", nil, "Path to file containing rules")
	rootCmd.PersistentFlags().StringArrayVar(&ruleStrings, "rule-string", nil, "Rule string (can be specified multiple times)")

	// Security descriptors
	rootCmd.Flags().BoolVarP(&withACL, "acl", "a", false, "Read the security descriptor of every entry")
	rootCmd.PersistentFlags().StringVar(&infoSpec, "info", "owner,group,dacl", "Descriptor parts to query: owner, group, dacl, sacl, label")
	rootCmd.PersistentFlags().IntVar(&threads, "threads", collector.DefaultThreads, "Number of descriptor queries in flight")
	rootCmd.PersistentFlags().BoolVar(&progress, "progress", false, "Show a progress line on stderr while descriptors are fetched")

	// SMB and authentication
	rootCmd.PersistentFlags().StringVarP(&authDomain, "domain", "d", "", "Windows domain to authenticate to")
	rootCmd.PersistentFlags().StringVarP(&authUser, "user", "u", "", "Username (DOMAIN\\user and user@domain accepted)")
	rootCmd.PersistentFlags().StringVar(&authPassword, "password", "", "Password of the account")
	rootCmd.PersistentFlags().StringVar(&authHashes, "hashes", "", "LM:NT hashes for pass-the-hash")
	rootCmd.PersistentFlags().StringVar(&authDCIP, "dc-ip", "", "Domain controller used to resolve domain SIDs over LDAP")
	rootCmd.PersistentFlags().BoolVar(&useLDAPS, "ldaps", false, "Use LDAPS instead of LDAP")
	rootCmd.PersistentFlags().StringVarP(&nameserver, "nameserver", "n", "", "Nameserver for DNS queries")
	rootCmd.PersistentFlags().IntVar(&port, "port", 445, "SMB port")
	rootCmd.PersistentFlags().Float64VarP(&timeout, "timeout", "t", 5, "Timeout in seconds for network operations")

	rootCmd.AddCommand(newACLCommand(), newSharesCommand())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runList(cmd *cobra.Command, args []string) {
	a := newApp(cmd)
	defer a.close()

	path := "."
	if len(args) > 0 {
		path = args[0]
	}

	if err := a.list(cmd.Context(), path); err != nil {
		a.fail(err)
	}
}

func (a *app) list(ctx context.Context, path string) error {
	src, err := a.openSource(ctx, path)
	if err != nil {
		return err
	}
	defer src.Close()

	lister, err := a.lister(src)
	if err != nil {
		return err
	}
	root, err := lister.Root()
	if err != nil {
		return err
	}

	mode := outputMode
	if pretty {
		mode = format.ModeList
	}
	names := a.names()
	start := time.Now()

	if mode == format.ModeTree {
		lister.Ignore = !noIgnore
		lister.MaxDepth = depth
		tree, counts := lister.Walk(root)
		a.log.Debug(fmt.Sprintf("Walked %d files and %d directories (%d errors) in %s",
			counts.Files, counts.Directories, counts.Errors, utils.DeltaTime(time.Since(start))))
		if withACL {
			a.collect(ctx, src, tree.Entries())
		}
		return format.Tree(a.out, a.colors, tree, format.Header(src.Label()), format.TreeOptions{
			Long:  long,
			ACL:   withACL,
			Names: names,
		})
	}

	entries := []*entry.Entry{root}
	if root.IsDir() {
		if entries, err = lister.List(root, 0, nil); err != nil {
			return err
		}
	}
	if withACL {
		a.collect(ctx, src, entries)
	}

	switch mode {
	case format.ModeList:
		return format.List(a.out, a.colors, entries, format.ListOptions{ACL: withACL, Names: names})
	case format.ModeJSON:
		return format.JSON(a.out, entries, names)
	default:
		return format.Grid(a.out, a.colors, entries, format.TerminalWidth(os.Stdout))
	}
}
