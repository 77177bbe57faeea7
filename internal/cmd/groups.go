package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arubanetworks/central-cli/internal/actions"
	"github.com/arubanetworks/central-cli/internal/api"
	"github.com/arubanetworks/central-cli/internal/iocontext"
	"github.com/arubanetworks/central-cli/internal/outfmt"
	"github.com/arubanetworks/central-cli/internal/validation"
)

// newGroupsCmd returns the groups command with subcommands
func newGroupsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "groups",
		Aliases: []string{"group", "gr"},
		Short:   "Manage Central configuration groups",
		Long:    "List, inspect, create, clone, update, and delete Aruba Central configuration groups.",
	}

	cmd.AddCommand(newGroupsListCmd())
	cmd.AddCommand(newGroupsModeCmd())
	cmd.AddCommand(newGroupsCloneCmd())
	cmd.AddCommand(newGroupsCreateCmd())
	cmd.AddCommand(newGroupsUpdateCmd())
	cmd.AddCommand(newGroupsDeleteCmd())

	return cmd
}

// resultError converts a fatal dispatch result into an error for RunE.
// Results with a status code carry it into the structured error so the
// exit code mapping sees the real HTTP classification.
func resultError(res actions.Result) error {
	msg := fmt.Sprintf("%v", res.Msg)
	if len(res.Raw) > 0 {
		msg = strings.TrimSpace(string(res.Raw))
	}
	if res.Code != 0 {
		se := api.NewStructuredError(api.ErrorCodeFromStatus(res.Code), msg)
		se.Context = map[string]any{"status_code": res.Code}
		return se
	}
	return errors.New(msg)
}

// renderResult prints a dispatch result. Fatal outcomes become errors;
// success and no-op outcomes print and exit zero, matching the declarative
// contract where 304/400/404 mean "nothing to change".
func renderResult(cmd *cobra.Command, res actions.Result, successText string) error {
	if res.Outcome == api.OutcomeFatal {
		return resultError(res)
	}
	if isJSON(cmd) {
		return printJSON(cmd, res)
	}
	if res.Outcome == api.OutcomeNoOp {
		printIfNotQuiet(cmd, "No change (HTTP %d): %v\n", res.Code, res.Msg)
		return nil
	}
	if successText != "" {
		printIfNotQuiet(cmd, "%s\n", successText)
	}
	return nil
}

func newGroupsListCmd() *cobra.Command {
	var (
		limit  int
		offset int
		all    bool
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List configuration groups",
		Example: strings.TrimSpace(`
  # First page of group names
  central groups list

  # Page through with explicit window
  central groups list --limit 50 --offset 100

  # Every group, following pagination
  central groups list --all

  # Names only, for scripting
  central groups list --all --json --jq '.groups[]'
`),
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			client, err := getClient()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			if all {
				names, err := allGroupNames(ctx, client)
				if err != nil {
					return err
				}
				if isJSON(cmd) {
					return printJSON(cmd, map[string]any{
						"groups": names,
						"total":  len(names),
					})
				}
				w := newTabWriterFromCmd(cmd)
				_, _ = fmt.Fprintln(w, "NAME")
				for _, name := range names {
					_, _ = fmt.Fprintln(w, name)
				}
				_ = w.Flush()
				printIfNotQuiet(cmd, "\nTotal: %d\n", len(names))
				return nil
			}

			req := actions.NewRequest(actions.GetGroups)
			req.Limit = limit
			req.Offset = offset
			res := actions.Run(ctx, client, req)
			if res.Outcome == api.OutcomeFatal {
				return resultError(res)
			}
			if isJSON(cmd) {
				return printJSON(cmd, res)
			}

			var page api.GroupsPage
			if err := (&api.Response{StatusCode: res.Code, Body: res.Raw}).Decode(&page); err != nil {
				return err
			}
			w := newTabWriterFromCmd(cmd)
			_, _ = fmt.Fprintln(w, "NAME")
			for _, name := range page.Names() {
				_, _ = fmt.Fprintln(w, name)
			}
			_ = w.Flush()
			printIfNotQuiet(cmd, "\nShowing %d of %d\n", len(page.Names()), page.Total)
			return nil
		}),
	}

	cmd.Flags().IntVar(&limit, "limit", actions.DefaultLimit, "Maximum groups per page")
	cmd.Flags().IntVar(&offset, "offset", actions.DefaultOffset, "Pagination offset")
	cmd.Flags().BoolVar(&all, "all", false, "Fetch every page")
	flagAlias(cmd.Flags(), "limit", "lim")
	flagAlias(cmd.Flags(), "offset", "off")

	return cmd
}

func newGroupsModeCmd() *cobra.Command {
	var fuzzyNames bool

	cmd := &cobra.Command{
		Use:     "mode <group>...",
		Aliases: []string{"template-info"},
		Short:   "Show whether groups are template or UI managed",
		Example: strings.TrimSpace(`
  # Configuration mode of two groups
  central groups mode branch-east branch-west

  # Resolve approximate names against the live listing
  central groups mode brnch-east --fuzzy
`),
		Args: cobra.MinimumNArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			client, err := getClient()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			names := args
			if fuzzyNames {
				resolved := make([]string, 0, len(names))
				for _, name := range names {
					match, err := resolveGroupName(ctx, client, name)
					if err != nil {
						return err
					}
					resolved = append(resolved, match)
				}
				names = resolved
			}

			// Past the per-call cap, batch template_info requests instead
			// of failing the whole invocation.
			if len(names) > api.MaxModeBatch {
				modes, err := client.Groups().ListAllModes(ctx, names)
				if err != nil {
					return err
				}
				return printModes(cmd, modes)
			}

			req := actions.NewRequest(actions.GetGroupMode)
			req.GroupList = names
			res := actions.Run(ctx, client, req)
			if res.Outcome == api.OutcomeFatal {
				return resultError(res)
			}
			if isJSON(cmd) {
				return printJSON(cmd, res)
			}
			if res.Outcome == api.OutcomeNoOp {
				printIfNotQuiet(cmd, "No data (HTTP %d): %v\n", res.Code, res.Msg)
				return nil
			}

			var page api.GroupModesPage
			if err := (&api.Response{StatusCode: res.Code, Body: res.Raw}).Decode(&page); err != nil {
				return err
			}
			return printModes(cmd, page.Data)
		}),
	}

	cmd.Flags().BoolVar(&fuzzyNames, "fuzzy", false, "Fuzzy-resolve group names against the live listing")
	flagAlias(cmd.Flags(), "fuzzy", "fz")

	return cmd
}

func printModes(cmd *cobra.Command, modes []api.GroupMode) error {
	if isJSON(cmd) {
		return printJSON(cmd, map[string]any{"data": modes})
	}
	ioStreams := iocontext.GetIO(cmd.Context())
	f := outfmt.NewFormatter(cmd.Context(), ioStreams.Out, ioStreams.ErrOut)
	if len(modes) == 0 {
		f.Empty("No groups found.")
		return nil
	}
	f.StartTable([]string{"GROUP", "MODE", "WIRED", "WIRELESS"})
	for _, m := range modes {
		f.Row(m.Group, m.Mode(), fmt.Sprintf("%t", m.TemplateDetails.Wired), fmt.Sprintf("%t", m.TemplateDetails.Wireless))
	}
	return f.EndTable()
}

func newGroupsCloneCmd() *cobra.Command {
	var from string

	cmd := &cobra.Command{
		Use:   "clone <group>",
		Short: "Create a group by cloning an existing one",
		Example: strings.TrimSpace(`
  # Copy branch-template's configuration into a new group
  central groups clone branch-west-2 --from branch-template
`),
		Args: cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if err := validation.ValidateGroupName(name); err != nil {
				return err
			}
			client, err := getClient()
			if err != nil {
				return err
			}

			req := actions.NewRequest(actions.Clone)
			req.GroupName = name
			req.CloneFromGroup = from
			res := actions.Run(cmd.Context(), client, req)
			return renderResult(cmd, res, fmt.Sprintf("Cloned %s into %s", from, name))
		}),
	}

	cmd.Flags().StringVar(&from, "from", "", "Source group to clone (required)")
	_ = cmd.MarkFlagRequired("from")
	flagAlias(cmd.Flags(), "from", "src")

	return cmd
}

func newGroupsCreateCmd() *cobra.Command {
	var (
		wiredTemplate    bool
		wirelessTemplate bool
		architecture     string
		deviceTypes      []string
		apRole           string
		gwRole           string
		switchTypes      []string
		monitorOnly      []string
		newCentral       bool
	)

	cmd := &cobra.Command{
		Use:     "create <group>",
		Aliases: []string{"new"},
		Short:   "Create a configuration group",
		Long: strings.TrimSpace(`
Create a new configuration group. Groups are template-managed per
connectivity class: pass --wired-template and/or --wireless-template to
select template mode, omit both for a UI group.
`),
		Example: strings.TrimSpace(`
  # UI group for Instant APs and gateways
  central groups create branch-east --architecture Instant --device-types AccessPoints,Gateways

  # Wired template group for CX switches, monitor-only
  central groups create campus-core --wired-template --device-types Switches --switch-types AOS_CX --monitor-only AOS_CX
`),
		Args: cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if err := validation.ValidateGroupName(name); err != nil {
				return err
			}

			attrs, err := buildGroupAttributes(cmd, groupAttributeInputs{
				wiredTemplate:    wiredTemplate,
				wirelessTemplate: wirelessTemplate,
				architecture:     architecture,
				deviceTypes:      deviceTypes,
				apRole:           apRole,
				gwRole:           gwRole,
				switchTypes:      switchTypes,
				monitorOnly:      monitorOnly,
				newCentral:       newCentral,
			})
			if err != nil {
				return err
			}

			client, err := getClient()
			if err != nil {
				return err
			}

			req := actions.NewRequest(actions.Create)
			req.GroupName = name
			req.GroupAttributes = attrs
			res := actions.Run(cmd.Context(), client, req)
			return renderResult(cmd, res, fmt.Sprintf("Created group %s", name))
		}),
	}

	cmd.Flags().BoolVar(&wiredTemplate, "wired-template", false, "Template-manage wired devices")
	cmd.Flags().BoolVar(&wirelessTemplate, "wireless-template", false, "Template-manage wireless devices")
	cmd.Flags().StringVar(&architecture, "architecture", "", "Group architecture: Instant|AOS10|SD_WAN_Gateway")
	cmd.Flags().StringSliceVar(&deviceTypes, "device-types", nil, "Allowed device types (comma-separated)")
	cmd.Flags().StringVar(&apRole, "ap-role", "", "AP network role: Standard|Microbranch")
	cmd.Flags().StringVar(&gwRole, "gw-role", "", "Gateway network role: BranchGateway|VPNConcentrator|WLANGateway")
	cmd.Flags().StringSliceVar(&switchTypes, "switch-types", nil, "Allowed switch types: AOS_S|AOS_CX")
	cmd.Flags().StringSliceVar(&monitorOnly, "monitor-only", nil, "Monitor-only switch types: AOS_S|AOS_CX")
	cmd.Flags().BoolVar(&newCentral, "new-central", false, "Create as a New Central group")
	flagAlias(cmd.Flags(), "architecture", "arch")
	flagAlias(cmd.Flags(), "device-types", "dt")
	flagAlias(cmd.Flags(), "switch-types", "st")
	flagAlias(cmd.Flags(), "monitor-only", "mo")

	return cmd
}

func newGroupsUpdateCmd() *cobra.Command {
	var (
		password         string
		wiredTemplate    bool
		wirelessTemplate bool
	)

	cmd := &cobra.Command{
		Use:   "update <group>",
		Short: "Update a configuration group",
		Long:  "Update an existing UI group, most commonly to set the group password.",
		Example: strings.TrimSpace(`
  # Set the group password used for device onboarding
  central groups update branch-east --password admin1234
`),
		Args: cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if err := validation.ValidateGroupName(name); err != nil {
				return err
			}

			attrs := &api.GroupAttributes{GroupPassword: password}
			if flagOrAliasChanged(cmd, "wired-template") || flagOrAliasChanged(cmd, "wireless-template") {
				attrs.TemplateInfo = &api.TemplateInfo{
					Wired:    wiredTemplate,
					Wireless: wirelessTemplate,
				}
			}

			client, err := getClient()
			if err != nil {
				return err
			}

			req := actions.NewRequest(actions.Update)
			req.GroupName = name
			req.GroupAttributes = attrs
			res := actions.Run(cmd.Context(), client, req)
			return renderResult(cmd, res, fmt.Sprintf("Updated group %s", name))
		}),
	}

	cmd.Flags().StringVar(&password, "password", "", "Group password")
	cmd.Flags().BoolVar(&wiredTemplate, "wired-template", false, "Template-manage wired devices")
	cmd.Flags().BoolVar(&wirelessTemplate, "wireless-template", false, "Template-manage wireless devices")
	flagAlias(cmd.Flags(), "password", "pw")

	return cmd
}

func newGroupsDeleteCmd() *cobra.Command {
	var (
		force      bool
		fuzzyNames bool
	)

	cmd := &cobra.Command{
		Use:     "delete <group>",
		Aliases: []string{"rm"},
		Short:   "Delete a configuration group",
		Example: strings.TrimSpace(`
  # Delete with confirmation prompt
  central groups delete branch-east

  # Skip the prompt in scripts
  central groups delete branch-east --yes
`),
		Args: cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if err := validation.ValidateGroupName(name); err != nil {
				return err
			}

			client, err := getClient()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			if fuzzyNames {
				match, err := resolveGroupName(ctx, client, name)
				if err != nil {
					return err
				}
				name = match
			}

			ok, err := confirmAction(cmd, confirmOptions{
				Prompt:              fmt.Sprintf("Delete group %q? This removes its configuration. [y/N] ", name),
				CancelMessage:       "Cancelled.",
				Force:               force,
				RequireForceForJSON: true,
			})
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}

			req := actions.NewRequest(actions.Delete)
			req.GroupName = name
			res := actions.Run(ctx, client, req)
			return renderResult(cmd, res, fmt.Sprintf("Deleted group %s", name))
		}),
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation prompt")
	cmd.Flags().BoolVar(&fuzzyNames, "fuzzy", false, "Fuzzy-resolve the group name against the live listing")
	flagAlias(cmd.Flags(), "fuzzy", "fz")

	return cmd
}

type groupAttributeInputs struct {
	wiredTemplate    bool
	wirelessTemplate bool
	architecture     string
	deviceTypes      []string
	apRole           string
	gwRole           string
	switchTypes      []string
	monitorOnly      []string
	newCentral       bool
}

// buildGroupAttributes validates the flag inputs against the accepted
// value sets and assembles the typed attributes. Unset flags stay nil so
// the request body never carries explicit nulls.
func buildGroupAttributes(cmd *cobra.Command, in groupAttributeInputs) (*api.GroupAttributes, error) {
	attrs := &api.GroupAttributes{
		TemplateInfo: &api.TemplateInfo{
			Wired:    in.wiredTemplate,
			Wireless: in.wirelessTemplate,
		},
	}

	if in.architecture != "" {
		arch, err := normalizeEnum("architecture", in.architecture, architectureValues())
		if err != nil {
			return nil, err
		}
		attrs.Architecture = api.Architecture(arch)
	}

	for _, dt := range in.deviceTypes {
		value, err := normalizeEnum("device-types", dt, deviceTypeValues())
		if err != nil {
			return nil, err
		}
		attrs.DeviceTypes = append(attrs.DeviceTypes, api.DeviceType(value))
	}

	if in.apRole != "" {
		role, err := normalizeEnum("ap-role", in.apRole, []string{string(api.APRoleStandard), string(api.APRoleMicrobranch)})
		if err != nil {
			return nil, err
		}
		attrs.APRole = api.APRole(role)
	}

	if in.gwRole != "" {
		role, err := normalizeEnum("gw-role", in.gwRole, []string{string(api.GatewayRoleBranch), string(api.GatewayRoleVPNConcentrator), string(api.GatewayRoleWLAN)})
		if err != nil {
			return nil, err
		}
		attrs.GatewayRole = api.GatewayRole(role)
	}

	for _, st := range in.switchTypes {
		value, err := normalizeEnum("switch-types", st, switchTypeValues())
		if err != nil {
			return nil, err
		}
		attrs.SwitchTypes = append(attrs.SwitchTypes, api.SwitchType(value))
	}

	for _, mo := range in.monitorOnly {
		value, err := normalizeEnum("monitor-only", mo, switchTypeValues())
		if err != nil {
			return nil, err
		}
		attrs.MonitorMode = append(attrs.MonitorMode, api.SwitchType(value))
	}

	if flagOrAliasChanged(cmd, "new-central") {
		attrs.NewCentral = &in.newCentral
	}

	return attrs, nil
}

func architectureValues() []string {
	out := make([]string, 0, len(api.Architectures))
	for _, a := range api.Architectures {
		out = append(out, string(a))
	}
	return out
}

func deviceTypeValues() []string {
	out := make([]string, 0, len(api.DeviceTypes))
	for _, d := range api.DeviceTypes {
		out = append(out, string(d))
	}
	return out
}

func switchTypeValues() []string {
	return []string{string(api.SwitchTypeAOSS), string(api.SwitchTypeAOSCX)}
}

// normalizeEnum validates a flag value against a list of accepted values.
// Matching is case-insensitive; the canonical casing is returned.
func normalizeEnum(flagName, input string, valid []string) (string, error) {
	trimmed := strings.TrimSpace(input)
	for _, v := range valid {
		if strings.EqualFold(trimmed, v) {
			return v, nil
		}
	}
	return "", fmt.Errorf("invalid --%s value %q (expected one of: %s)", flagName, input, strings.Join(valid, ", "))
}
