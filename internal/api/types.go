package api

// Architecture is the group architecture mode.
type Architecture string

const (
	ArchitectureInstant      Architecture = "Instant"
	ArchitectureAOS10        Architecture = "AOS10"
	ArchitectureSDWANGateway Architecture = "SD_WAN_Gateway"
)

// Architectures lists the accepted architecture values.
var Architectures = []Architecture{
	ArchitectureInstant,
	ArchitectureAOS10,
	ArchitectureSDWANGateway,
}

// DeviceType is a device class a group may manage.
type DeviceType string

const (
	DeviceTypeGateways     DeviceType = "Gateways"
	DeviceTypeAccessPoints DeviceType = "AccessPoints"
	DeviceTypeSwitches     DeviceType = "Switches"
	DeviceTypeSDWANGateway DeviceType = "SD_WAN_Gateway"
)

// DeviceTypes lists the accepted device type values.
var DeviceTypes = []DeviceType{
	DeviceTypeGateways,
	DeviceTypeAccessPoints,
	DeviceTypeSwitches,
	DeviceTypeSDWANGateway,
}

// APRole is the network role for access points in a group.
type APRole string

const (
	APRoleStandard    APRole = "Standard"
	APRoleMicrobranch APRole = "Microbranch"
)

// GatewayRole is the network role for gateways in a group.
type GatewayRole string

const (
	GatewayRoleBranch          GatewayRole = "BranchGateway"
	GatewayRoleVPNConcentrator GatewayRole = "VPNConcentrator"
	GatewayRoleWLAN            GatewayRole = "WLANGateway"
)

// SwitchType identifies a switch operating system family. The same values
// select both the allowed switch types and the monitor-only mode of a group.
type SwitchType string

const (
	SwitchTypeAOSS  SwitchType = "AOS_S"
	SwitchTypeAOSCX SwitchType = "AOS_CX"
)

// TemplateInfo selects template-based configuration per connectivity class.
// A group is a "template group" for wired or wireless devices when the
// matching field is true, and a "UI group" otherwise.
type TemplateInfo struct {
	Wired    bool `json:"wired" yaml:"wired"`
	Wireless bool `json:"wireless" yaml:"wireless"`
}

// GroupAttributes describes a group's configuration shape. Nil fields are
// omitted from request payloads; they are never sent as explicit nulls.
//
// GroupPassword applies to update only: the v2 update endpoint accepts the
// attributes verbatim while v3 create remaps them into the external
// PascalCase schema (see createGroupBody).
type GroupAttributes struct {
	TemplateInfo  *TemplateInfo `json:"template_info,omitempty" yaml:"template_info"`
	Architecture  Architecture  `json:"architecture,omitempty" yaml:"architecture"`
	DeviceTypes   []DeviceType  `json:"device_type,omitempty" yaml:"device_type"`
	APRole        APRole        `json:"ap_role,omitempty" yaml:"ap_role"`
	GatewayRole   GatewayRole   `json:"gw_role,omitempty" yaml:"gw_role"`
	SwitchTypes   []SwitchType  `json:"switch_type,omitempty" yaml:"switch_type"`
	MonitorMode   []SwitchType  `json:"monitor_mode,omitempty" yaml:"monitor_mode"`
	NewCentral    *bool         `json:"new_central,omitempty" yaml:"new_central"`
	GroupPassword string        `json:"group_password,omitempty" yaml:"group_password"`
}

// Empty reports whether no attribute field is set.
func (a *GroupAttributes) Empty() bool {
	if a == nil {
		return true
	}
	return a.TemplateInfo == nil &&
		a.Architecture == "" &&
		len(a.DeviceTypes) == 0 &&
		a.APRole == "" &&
		a.GatewayRole == "" &&
		len(a.SwitchTypes) == 0 &&
		len(a.MonitorMode) == 0 &&
		a.NewCentral == nil &&
		a.GroupPassword == ""
}

// GroupsPage is one page of the groups listing. The upstream API wraps
// each group name in a single-element array.
type GroupsPage struct {
	Data  [][]string `json:"data"`
	Total int        `json:"total"`
}

// Names flattens the page into a list of group names.
func (p GroupsPage) Names() []string {
	names := make([]string, 0, len(p.Data))
	for _, row := range p.Data {
		if len(row) > 0 {
			names = append(names, row[0])
		}
	}
	return names
}

// GroupMode is one group's configuration mode as reported by template_info.
type GroupMode struct {
	Group           string          `json:"group"`
	TemplateDetails TemplateDetails `json:"template_details"`
}

// TemplateDetails mirrors the external schema's capitalized keys.
type TemplateDetails struct {
	Wired    bool `json:"Wired"`
	Wireless bool `json:"Wireless"`
}

// Mode renders the group's mode the way the Central UI names it:
// "template" when any connectivity class is template-managed, else "UI".
func (m GroupMode) Mode() string {
	if m.TemplateDetails.Wired || m.TemplateDetails.Wireless {
		return "template"
	}
	return "UI"
}

// GroupModesPage is the template_info response envelope.
type GroupModesPage struct {
	Data []GroupMode `json:"data"`
}
