package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// MaxModeBatch is the upstream cap on group names per template_info call.
const MaxModeBatch = 20

// modeBatchConcurrency bounds parallel template_info calls in ListAllModes.
const modeBatchConcurrency = 4

// GroupsService exposes the group configuration operations.
type GroupsService struct{ *Client }

// Groups returns the groups service accessor.
func (c *Client) Groups() GroupsService {
	return GroupsService{c}
}

// List retrieves one page of group names.
func (s GroupsService) List(ctx context.Context, limit, offset int) (*Response, error) {
	return listGroups(ctx, s, limit, offset)
}

func listGroups(ctx context.Context, r Requester, limit, offset int) (*Response, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))
	return r.exchange(ctx, http.MethodGet, withQuery(r.configPath("v2", "/groups"), params), nil)
}

// TemplateInfo retrieves the configuration mode of up to MaxModeBatch groups.
func (s GroupsService) TemplateInfo(ctx context.Context, names []string) (*Response, error) {
	return groupTemplateInfo(ctx, s, names)
}

func groupTemplateInfo(ctx context.Context, r Requester, names []string) (*Response, error) {
	params := url.Values{}
	params.Set("groups", JoinNames(names))
	return r.exchange(ctx, http.MethodGet, withQuery(r.configPath("v2", "/groups/template_info"), params), nil)
}

// Clone creates a new group by copying an existing group's configuration.
func (s GroupsService) Clone(ctx context.Context, group, cloneFrom string) (*Response, error) {
	return cloneGroup(ctx, s, group, cloneFrom)
}

func cloneGroup(ctx context.Context, r Requester, group, cloneFrom string) (*Response, error) {
	body := map[string]any{
		"group":       group,
		"clone_group": cloneFrom,
	}
	return r.exchange(ctx, http.MethodPost, r.configPath("v2", "/groups/clone"), body)
}

// Create creates a new template or UI group from the given attributes.
func (s GroupsService) Create(ctx context.Context, group string, attrs *GroupAttributes) (*Response, error) {
	return createGroup(ctx, s, group, attrs)
}

func createGroup(ctx context.Context, r Requester, group string, attrs *GroupAttributes) (*Response, error) {
	return r.exchange(ctx, http.MethodPost, r.configPath("v3", "/groups"), createGroupBody(group, attrs))
}

// createGroupBody remaps attributes into the external v3 schema. The
// "MonitorOnly:" key carries a trailing colon: that is the key the live
// API accepts, so it is reproduced here as-is. Unset fields become nulls
// which RemoveNulls strips before serialization.
func createGroupBody(group string, attrs *GroupAttributes) any {
	template := map[string]any{
		"Wired":    false,
		"Wireless": false,
	}
	if attrs.TemplateInfo != nil {
		template["Wired"] = attrs.TemplateInfo.Wired
		template["Wireless"] = attrs.TemplateInfo.Wireless
	}

	properties := map[string]any{
		"AllowedDevTypes":    deviceTypeStrings(attrs.DeviceTypes),
		"Architecture":       stringOrNil(string(attrs.Architecture)),
		"ApNetworkRole":      stringOrNil(string(attrs.APRole)),
		"GwNetworkRole":      stringOrNil(string(attrs.GatewayRole)),
		"AllowedSwitchTypes": switchTypeStrings(attrs.SwitchTypes),
		"MonitorOnly:":       switchTypeStrings(attrs.MonitorMode),
		"NewCentral":         boolOrNil(attrs.NewCentral),
	}

	body := map[string]any{
		"group": group,
		"group_attributes": map[string]any{
			"template_info":    template,
			"group_properties": properties,
		},
	}
	return RemoveNulls(body)
}

func stringOrNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func boolOrNil(b *bool) any {
	if b == nil {
		return nil
	}
	return *b
}

func deviceTypeStrings(types []DeviceType) any {
	if len(types) == 0 {
		return nil
	}
	out := make([]any, 0, len(types))
	for _, t := range types {
		out = append(out, string(t))
	}
	return out
}

func switchTypeStrings(types []SwitchType) any {
	if len(types) == 0 {
		return nil
	}
	out := make([]any, 0, len(types))
	for _, t := range types {
		out = append(out, string(t))
	}
	return out
}

// Update updates an existing UI group. Unlike create, the v2 update
// endpoint accepts the attributes verbatim; it is primarily used to set
// the group password.
func (s GroupsService) Update(ctx context.Context, group string, attrs *GroupAttributes) (*Response, error) {
	return updateGroup(ctx, s, group, attrs)
}

func updateGroup(ctx context.Context, r Requester, group string, attrs *GroupAttributes) (*Response, error) {
	return r.exchange(ctx, http.MethodPatch, r.configPath("v2", "/groups/"+group), attrs)
}

// Delete deletes an existing group.
func (s GroupsService) Delete(ctx context.Context, group string) (*Response, error) {
	return deleteGroup(ctx, s, group)
}

func deleteGroup(ctx context.Context, r Requester, group string) (*Response, error) {
	return r.exchange(ctx, http.MethodDelete, r.configPath("v1", "/groups/"+group), nil)
}

// ListNames fetches one page of group names as a typed result. Non-2xx
// statuses are returned as *APIError.
func (s GroupsService) ListNames(ctx context.Context, limit, offset int) ([]string, int, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))

	var page GroupsPage
	if err := s.do(ctx, http.MethodGet, withQuery(s.configPath("v2", "/groups"), params), nil, &page); err != nil {
		return nil, 0, err
	}
	return page.Names(), page.Total, nil
}

// ListAllModes fetches the configuration mode for an arbitrary number of
// groups by batching template_info calls in chunks of MaxModeBatch,
// bounded to modeBatchConcurrency parallel requests. Results preserve the
// order of the input names.
func (s GroupsService) ListAllModes(ctx context.Context, names []string) ([]GroupMode, error) {
	if len(names) == 0 {
		return nil, nil
	}

	var chunks [][]string
	for start := 0; start < len(names); start += MaxModeBatch {
		end := start + MaxModeBatch
		if end > len(names) {
			end = len(names)
		}
		chunks = append(chunks, names[start:end])
	}

	results := make([][]GroupMode, len(chunks))
	sem := semaphore.NewWeighted(modeBatchConcurrency)
	g, ctx := errgroup.WithContext(ctx)

	for i, chunk := range chunks {
		i, chunk := i, chunk
		g.Go(func() error {
			if err := sem.Acquire(ctx, 1); err != nil {
				return err
			}
			defer sem.Release(1)

			resp, err := s.TemplateInfo(ctx, chunk)
			if err != nil {
				return err
			}
			if err := resp.Err(); err != nil {
				return err
			}
			var page GroupModesPage
			if err := resp.Decode(&page); err != nil {
				return err
			}
			results[i] = page.Data
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var modes []GroupMode
	for _, batch := range results {
		modes = append(modes, batch...)
	}
	return modes, nil
}
