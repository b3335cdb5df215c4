// Package main provides the deriveaddrs CLI tool for listing the addresses of
// an xpub or zpub.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/complex-gh/deriveaddrs"
	"github.com/complex-gh/deriveaddrs/hdpub"
	"github.com/complex-gh/deriveaddrs/slip132"
	"github.com/mattn/go-isatty"
	mcobra "github.com/muesli/mango-cobra"
	"github.com/muesli/roff"
	"github.com/muesli/termenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const (
	maxWidth = 72

	// accountDepth is the depth of m/84'/0'/<account>'.
	accountDepth = 3
)

var (
	baseStyle  = lipgloss.NewStyle().Margin(0, 0, 1, 2) //nolint:mnd
	red        = lipgloss.Color(completeColor("#FF4444", "196", "9"))
	errorStyle = baseStyle.
			Foreground(red).
			Background(lipgloss.AdaptiveColor{Light: completeColor("#FFEBEB", "255", "7"), Dark: completeColor("#2B1A1A", "235", "8")}).
			Padding(1, 2) //nolint:mnd

	external     bool
	internal     bool
	count        int
	account      uint32
	showXpub     bool
	showMempool  bool
	explorerBase string
	debug        bool

	rootCmd = &cobra.Command{
		Use:   "deriveaddrs <extended-pub-key>",
		Short: "Derive native segwit addresses from an xpub or zpub",
		Long: `Derive native segwit (bc1q…) addresses from an account-level xpub or zpub.

Addresses are listed with their BIP84 derivation path m/84'/0'/<account>'/<role>/<index>.
Use --external for receive addresses (role 0) and --internal for change
addresses (role 1). When neither is given, receive addresses are shown.

The key can also be piped on stdin, or passed as "-".`,
		Example: `  deriveaddrs zpub6rFR7y4Q2AijBEqTUquhVz398htDFrtymD9xYYfG1m4wAcvPhXNfE3EfH1r1ADqtfSdVCToUG868RvUUkgDKf31mGDtKsAYz2oz2AGutZYs
  deriveaddrs <zpub> --count 20 --internal
  deriveaddrs <xpub> -e -i -n 10 --show-xpub --show-mempool
  deriveaddrs <zpub> --account 1
  cat zpub.txt | deriveaddrs`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			configureLogging(debug)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// If no arguments provided and stdin is not a pipe, show help
			if len(args) == 0 && !stdinIsPipe() {
				return cmd.Help()
			}

			var arg string
			if len(args) > 0 {
				arg = args[0]
			}
			key, err := readExtendedKey(arg, cmd.InOrStdin())
			if err != nil {
				return formatError(err)
			}

			if err := deriveAddressesToOutput(cmd.Context(), cmd.OutOrStdout(), key); err != nil {
				return formatError(err)
			}
			return nil
		},
	}

	convertCmd = &cobra.Command{
		Use:   "convert <extended-pub-key> [target]",
		Short: "Rewrite an extended public key with another prefix",
		Long: `Rewrite an extended public key with another SLIP-132 prefix.

Only the version bytes change; the key, chain code and metadata stay the
same. The target defaults to xpub. Run "deriveaddrs tags" for the list of
prefixes.`,
		Example: `  deriveaddrs convert <zpub>
  deriveaddrs convert <xpub> zpub`,
		Args:         cobra.RangeArgs(1, 2), //nolint:mnd
		SilenceUsage: true,
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) != 1 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			return tagNames(), cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := slip132.XPub
			if len(args) > 1 {
				target = slip132.Tag(strings.TrimSpace(args[1]))
			}

			converted, err := slip132.Retarget(args[0], target)
			if err != nil {
				return formatError(fmt.Errorf("could not convert key: %w", err))
			}

			log.WithField("target", target).Debug("converted extended key")
			fmt.Fprintln(cmd.OutOrStdout(), converted)
			return nil
		},
	}

	tagsCmd = &cobra.Command{
		Use:          "tags",
		Short:        "List known extended public key prefixes",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rows := make([][]string, 0, len(slip132.Tags()))
			for _, tag := range slip132.Tags() {
				v, err := slip132.Lookup(tag)
				if err != nil {
					return err //nolint:wrapcheck
				}
				rows = append(rows, []string{string(tag), v.String()})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Prefix", "Version"}, rows, nil))
			return nil
		},
	}

	manCmd = &cobra.Command{
		Use:          "man",
		Args:         cobra.NoArgs,
		Short:        "generate man pages",
		Hidden:       true,
		SilenceUsage: true,
		RunE: func(*cobra.Command, []string) error {
			manPage, err := mcobra.NewManPage(1, rootCmd)
			if err != nil {
				//nolint: wrapcheck
				return err
			}
			manPage = manPage.WithSection("Copyright", "(C) 2025-2026 complex.\n"+
				"Released under MIT license.")
			fmt.Println(manPage.Build(roff.NewDocument()))
			return nil
		},
	}

	// completionCmd generates shell completion scripts for bash, zsh, fish, and powershell.
	completionCmd = &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion script",
		Long: `Generate shell completion script for deriveaddrs.

To load completions:

Bash:
  $ source <(deriveaddrs completion bash)

Zsh:
  $ deriveaddrs completion zsh > "${fpath[1]}/_deriveaddrs"

Fish:
  $ deriveaddrs completion fish | source

PowerShell:
  PS> deriveaddrs completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		SilenceUsage:          true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return rootCmd.GenBashCompletion(out)
			case "zsh":
				return rootCmd.GenZshCompletion(out)
			case "fish":
				return rootCmd.GenFishCompletion(out, true)
			case "powershell":
				return rootCmd.GenPowerShellCompletionWithDesc(out)
			default:
				return fmt.Errorf("unknown shell: %s", args[0])
			}
		},
	}
)

func init() {
	rootCmd.Flags().BoolVarP(&external, "external", "e", false, "Derive external addresses (chain=0)")
	rootCmd.Flags().BoolVarP(&internal, "internal", "i", false, "Derive internal addresses (chain=1)")
	rootCmd.Flags().IntVarP(&count, "count", "n", 5, "Number of addresses to derive") //nolint:mnd
	rootCmd.Flags().Uint32VarP(&account, "account", "a", 0, "Account index shown in derivation paths")
	rootCmd.Flags().BoolVarP(&showXpub, "show-xpub", "x", false, "Show parent xpub/zpub")
	rootCmd.Flags().BoolVarP(&showMempool, "show-mempool", "m", false, "Show mempool.space links")
	rootCmd.Flags().StringVar(&explorerBase, "explorer-url", deriveaddrs.DefaultExplorerURL, "Explorer URL prefix used with --show-mempool")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Log debug information to stderr")
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(tagsCmd)
	rootCmd.AddCommand(manCmd)
	rootCmd.AddCommand(completionCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func configureLogging(debug bool) {
	log.SetOutput(os.Stderr)
	log.SetFormatter(&log.TextFormatter{DisableTimestamp: true})
	if debug {
		log.SetLevel(log.DebugLevel)
		return
	}
	log.SetLevel(log.WarnLevel)
}

func stdinIsPipe() bool {
	fi, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeNamedPipe) != 0
}

// readExtendedKey returns arg, or the first line of stdin when arg is empty or "-".
func readExtendedKey(arg string, stdin io.Reader) (string, error) {
	if arg != "" && arg != "-" {
		return strings.TrimSpace(arg), nil
	}

	bts, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("could not read key from stdin: %w", err)
	}
	key := strings.TrimSpace(string(bts))
	if i := strings.IndexAny(key, "\r\n"); i >= 0 {
		key = key[:i]
	}
	if key == "" {
		return "", fmt.Errorf("no extended public key on stdin")
	}
	return key, nil
}

// selectedRoles applies the default of receive addresses only.
func selectedRoles(external, internal bool) []hdpub.Role {
	var roles []hdpub.Role
	if external {
		roles = append(roles, hdpub.External)
	}
	if internal {
		roles = append(roles, hdpub.Internal)
	}
	if len(roles) == 0 {
		// same as if they specified --external
		roles = append(roles, hdpub.External)
	}
	return roles
}

func deriveAddressesToOutput(ctx context.Context, w io.Writer, key string) error {
	req := deriveaddrs.Request{
		ExtendedKey:  key,
		Roles:        selectedRoles(external, internal),
		Count:        count,
		Account:      account,
		ParentKeys:   showXpub,
		Explorer:     showMempool,
		ExplorerBase: explorerBase,
	}

	log.WithFields(log.Fields{
		"roles":   req.Roles,
		"count":   req.Count,
		"account": req.Account,
	}).Debug("deriving addresses")

	res, err := deriveaddrs.NewOrchestrator(nil).Run(ctx, req)
	if err != nil {
		return err //nolint:wrapcheck
	}

	if res.Depth != accountDepth {
		log.Warnf("extended key depth is %d, paths assume an account-level key (depth %d)", res.Depth, accountDepth)
	}

	links := isatty.IsTerminal(os.Stdout.Fd())

	if res.ParentKeys != nil {
		fmt.Fprintln(w, renderParentKeys(res.ParentKeys))
		fmt.Fprintln(w)
	}

	for _, role := range res.Roles {
		fmt.Fprintf(w, "%s addresses:\n", roleTitle(role))
		fmt.Fprintln(w, renderAddresses(res.Addresses[role], showMempool, links))
		fmt.Fprintln(w)
	}

	return nil
}

func roleTitle(role hdpub.Role) string {
	if role == hdpub.External {
		return "External"
	}
	return "Internal"
}

func tagNames() []string {
	tags := slip132.Tags()
	names := make([]string, 0, len(tags))
	for _, tag := range tags {
		names = append(names, string(tag))
	}
	return names
}

func getWidth(maxw int) int {
	w, _, err := term.GetSize(int(os.Stdout.Fd())) //nolint: gosec
	if err != nil || w > maxw {
		return maxWidth
	}
	return w
}

func renderBlock(w io.Writer, s lipgloss.Style, width int, str string) {
	_, _ = io.WriteString(w, s.Width(width).Render(str))
	_, _ = io.WriteString(w, "\n")
}

// formatError shows err in a styled block when stdout is a terminal and
// returns it so the command exits with a non-zero code.
func formatError(err error) error {
	if isatty.IsTerminal(os.Stdout.Fd()) {
		b := strings.Builder{}
		w := getWidth(maxWidth)

		b.WriteRune('\n')
		renderBlock(&b, errorStyle, w, "Error: "+err.Error())
		b.WriteRune('\n')

		fmt.Print(b.String())
	}
	return err
}

func completeColor(truecolor, ansi256, ansi string) string {
	//nolint: exhaustive
	switch lipgloss.ColorProfile() {
	case termenv.TrueColor:
		return truecolor
	case termenv.ANSI256:
		return ansi256
	}
	return ansi
}
