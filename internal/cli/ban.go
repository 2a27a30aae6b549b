package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/tbourn/campus-hub/internal/domain"
	"github.com/tbourn/campus-hub/internal/services"
)

// banService opens the store and returns the ban service over it. The caller
// must invoke the returned close func.
func banService(opts *RootOptions) (*services.BanService, func(), error) {
	db, err := openDB(opts.Config)
	if err != nil {
		return nil, nil, err
	}
	svc := services.NewBanService(db, opts.Config.BanCacheSize, opts.Config.BanCacheTTL)
	return svc, func() { closeDB(db) }, nil
}

// NewBanCommand creates the ban command group.
func NewBanCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ban",
		Short: "Manage ip and device session bans",
	}
	cmd.AddCommand(newBanAddCommand(rootOpts))
	cmd.AddCommand(newBanListCommand(rootOpts))
	cmd.AddCommand(newBanLiftCommand(rootOpts))
	return cmd
}

func newBanAddCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		in  services.BanInput
		dur time.Duration
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Ban an ip or device session",
		Example: `  campushub ban add --ip 203.0.113.7 --reason spam --for 72h
  campushub ban add --session sess_k3j9x2a7qm --reason harassment`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, done, err := banService(rootOpts)
			if err != nil {
				return err
			}
			defer done()

			if dur > 0 {
				until := time.Now().UTC().Add(dur)
				in.ExpiresAt = &until
			}
			ban, err := svc.Create(cmd.Context(), in)
			if err != nil {
				return err
			}
			return writeBans(cmd.OutOrStdout(), rootOpts.Format, []domain.Ban{*ban})
		},
	}
	cmd.Flags().StringVar(&in.IP, "ip", "", "client ip to ban")
	cmd.Flags().StringVar(&in.SessionID, "session", "", "device session id to ban")
	cmd.Flags().StringVar(&in.Reason, "reason", "", "reason recorded with the ban (required)")
	cmd.Flags().StringVar(&in.BannedBy, "by", "cli", "operator recorded with the ban")
	cmd.Flags().DurationVar(&dur, "for", 0, "ban duration; 0 bans indefinitely")
	return cmd
}

func newBanListCommand(rootOpts *RootOptions) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List bans",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, done, err := banService(rootOpts)
			if err != nil {
				return err
			}
			defer done()

			bans, err := svc.List(cmd.Context(), !all)
			if err != nil {
				return err
			}
			return writeBans(cmd.OutOrStdout(), rootOpts.Format, bans)
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "include lifted and expired bans")
	return cmd
}

func newBanLiftCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "lift <ban-id>",
		Short: "Lift a ban",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, done, err := banService(rootOpts)
			if err != nil {
				return err
			}
			defer done()

			if err := svc.Lift(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "lifted %s\n", args[0])
			return nil
		},
	}
}

func writeBans(w io.Writer, format string, bans []domain.Ban) error {
	if format == "json" {
		if bans == nil {
			bans = []domain.Ban{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(bans)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tIP\tSESSION\tREASON\tBY\tEXPIRES\tACTIVE")
	for _, b := range bans {
		expires := "never"
		if b.ExpiresAt != nil {
			expires = b.ExpiresAt.UTC().Format(time.RFC3339)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%t\n",
			b.ID, dash(b.IP), dash(b.SessionID), b.Reason, b.BannedBy, expires, b.IsActive)
	}
	return tw.Flush()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
