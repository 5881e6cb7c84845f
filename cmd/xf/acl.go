package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/specterops/xf/internal/entry"
	"github.com/specterops/xf/internal/format"
	"github.com/specterops/xf/internal/security"
	"github.com/specterops/xf/internal/sorting"
	"github.com/specterops/xf/internal/targets"
)

var (
	aclSDDL       bool
	aclPrincipals []string
	aclChildren   bool
)

func newACLCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "acl [path...]",
		Short: "Decode the security descriptor of each path",
		Long: `acl prints the owner, group, control flags and every ACE of each path,
followed by the effective access of each principal. Paths may be local or
SMB targets.`,
		Run: runACL,
	}
	cmd.Flags().BoolVar(&aclSDDL, "sddl", false, "Print one SDDL line per path")
	cmd.Flags().StringArrayVar(&aclPrincipals, "principal", nil, "Evaluate effective access for this SID (can be specified multiple times)")
	cmd.Flags().BoolVarP(&aclChildren, "children", "c", false, "Also report the children of directories")
	return cmd
}

func runACL(cmd *cobra.Command, args []string) {
	a := newApp(cmd)
	defer a.close()

	if len(args) == 0 {
		args = []string{"."}
	}

	opts := format.ACLOptions{SDDL: aclSDDL, Names: a.names()}
	for _, s := range aclPrincipals {
		p, err := security.ParseSIDString(s)
		if err != nil {
			a.fail(fmt.Errorf("--principal %q: %w", s, err))
		}
		opts.Principals = append(opts.Principals, p)
	}

	for i, path := range args {
		if i > 0 && !aclSDDL {
			fmt.Fprintln(a.out)
		}
		if err := a.acl(cmd.Context(), path, opts); err != nil {
			a.fail(err)
		}
	}
}

func (a *app) acl(ctx context.Context, path string, opts format.ACLOptions) error {
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

	entries := []*entry.Entry{root}
	if aclChildren && root.IsDir() {
		children, err := lister.List(root, 0, nil)
		if err != nil {
			return err
		}
		entries = append(entries, children...)
	}

	a.collect(ctx, src, entries)
	return format.ACL(a.out, a.colors, entries, opts)
}

var targetsFile string

func newSharesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shares [host...]",
		Short: "List the shares of SMB servers",
		Long: `shares connects to each host and lists its shares. Administrative shares
ending in $ are only shown with --hidden.`,
		Run: runShares,
	}
	cmd.Flags().StringVar(&targetsFile, "targets-file", "", "Path to file containing a line by line list of hosts")
	return cmd
}

func runShares(cmd *cobra.Command, args []string) {
	a := newApp(cmd)
	defer a.close()

	hosts, err := targets.LoadTargets(afero.NewOsFs(), targets.Options{
		TargetsFile: targetsFile,
		Targets:     args,
	}, a.log)
	if err != nil {
		a.fail(err)
	}
	if len(hosts) == 0 {
		a.fail(errors.New("no hosts given"))
	}

	if a.listShares(cmd.Context(), hosts) == len(hosts) {
		a.close()
		os.Exit(1)
	}
}

// listShares lists every host and returns how many failed. One unreachable
// host does not stop the others.
func (a *app) listShares(ctx context.Context, hosts []targets.Target) (failed int) {
	for _, host := range hosts {
		if err := a.shares(ctx, host.Value); err != nil {
			a.log.Error(describeError(err))
			failed++
		}
	}
	return failed
}

func (a *app) shares(ctx context.Context, host string) error {
	session, err := entry.Dial(ctx, host, a.smbOptions(), a.log)
	if err != nil {
		return fmt.Errorf("%s: %w", host, err)
	}
	defer session.Close()

	names, err := session.ListShares()
	if err != nil {
		return fmt.Errorf("%s: %w", host, err)
	}
	slices.SortFunc(names, sorting.NaturalCompare)

	for _, name := range names {
		admin := strings.HasSuffix(name, "$")
		if admin && !showHidden {
			continue
		}
		unc := `\\` + host + `\` + name
		if admin {
			unc = a.colors.Dim(unc)
		}
		fmt.Fprintln(a.out, unc)
	}
	return nil
}
