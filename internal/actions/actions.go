// Package actions dispatches declarative group operations against the
// Central configuration API and normalizes every response into a single
// changed/unchanged/failed result record. It is the layer task files and
// the groups commands share: one action in, one classified result out,
// with all failures returned as data rather than panics.
package actions

import (
	"context"
	"fmt"
	"strings"

	"github.com/arubanetworks/central-cli/internal/api"
)

// Action identifies one of the supported group operations.
type Action string

const (
	GetGroups    Action = "get_groups"
	GetGroupMode Action = "get_group_mode"
	Clone        Action = "clone"
	Create       Action = "create"
	Update       Action = "update"
	Delete       Action = "delete"
)

// Actions lists all supported actions in documentation order.
var Actions = []Action{GetGroups, GetGroupMode, Clone, Create, Update, Delete}

// ParseAction normalizes and validates an action string.
func ParseAction(s string) (Action, error) {
	a := Action(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := handlers[a]; !ok {
		return "", fmt.Errorf("unsupported action %q (expected one of: %s)", s, actionList())
	}
	return a, nil
}

func actionList() string {
	names := make([]string, 0, len(Actions))
	for _, a := range Actions {
		names = append(names, string(a))
	}
	return strings.Join(names, ", ")
}

// Mutates reports whether a successful run of this action changes platform
// state. The two read actions never report changed=true.
func (a Action) Mutates() bool {
	return a != GetGroups && a != GetGroupMode
}

// Defaults for the paging parameters of get_groups.
const (
	DefaultLimit  = 20
	DefaultOffset = 0
)

// Request is the validated input for one dispatch. Exactly the fields the
// action requires must be set; each handler re-checks its own fields and
// fails fast with a canned message before any network call.
type Request struct {
	Action          Action
	GroupName       string
	GroupList       []string
	GroupAttributes *api.GroupAttributes
	CloneFromGroup  string
	Limit           int
	Offset          int
}

// NewRequest returns a Request for the action with paging defaults applied.
func NewRequest(action Action) Request {
	return Request{
		Action: action,
		Limit:  DefaultLimit,
		Offset: DefaultOffset,
	}
}

// Result is the uniform outcome of one dispatch.
//
// Changed is true only when a mutating action succeeded. Code is the HTTP
// status (400 for local validation failures, 0 when no response exists).
// Msg is the response body parsed as JSON when possible, the raw string
// otherwise, or a canned validation message.
type Result struct {
	Changed bool        `json:"changed"`
	Code    int         `json:"response_code"`
	Msg     any         `json:"msg"`
	Outcome api.Outcome `json:"-"`
	Raw     []byte      `json:"-"`
}

// Canned messages for missing required fields. The code is always 400,
// which lands these in the no-op bucket: the caller is told nothing
// changed rather than being aborted.
const (
	msgMissingGroupList    = "List of groups not present"
	msgMissingCloneParams  = "Group name or clone-from-group parameters not present"
	msgMissingCreateParams = "Group name or Group attributes not present"
	msgMissingDeleteName   = "Group name to be deleted not present"
)

// validationCode is the fixed status for local validation failures.
const validationCode = 400

type handler func(ctx context.Context, client *api.Client, req Request) Result

var handlers = map[Action]handler{
	GetGroups:    runGetGroups,
	GetGroupMode: runGetGroupMode,
	Clone:        runClone,
	Create:       runCreate,
	Update:       runUpdate,
	Delete:       runDelete,
}

// Run dispatches the request to its handler. An action outside the
// supported set is a configuration error and fails before any request is
// constructed.
func Run(ctx context.Context, client *api.Client, req Request) Result {
	h, ok := handlers[req.Action]
	if !ok {
		return Result{
			Code:    0,
			Msg:     fmt.Sprintf("unsupported action %q (expected one of: %s)", string(req.Action), actionList()),
			Outcome: api.OutcomeFatal,
		}
	}
	return h(ctx, client, req)
}

func runGetGroups(ctx context.Context, client *api.Client, req Request) Result {
	limit := req.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	offset := req.Offset
	if offset < 0 {
		offset = DefaultOffset
	}
	resp, err := client.Groups().List(ctx, limit, offset)
	return finish(req, resp, err)
}

func runGetGroupMode(ctx context.Context, client *api.Client, req Request) Result {
	if len(req.GroupList) == 0 {
		return validationFailure(msgMissingGroupList)
	}
	if len(req.GroupList) > api.MaxModeBatch {
		return validationFailure(fmt.Sprintf("List of groups exceeds the maximum of %d names", api.MaxModeBatch))
	}
	resp, err := client.Groups().TemplateInfo(ctx, req.GroupList)
	return finish(req, resp, err)
}

func runClone(ctx context.Context, client *api.Client, req Request) Result {
	if req.GroupName == "" || req.CloneFromGroup == "" {
		return validationFailure(msgMissingCloneParams)
	}
	resp, err := client.Groups().Clone(ctx, req.GroupName, req.CloneFromGroup)
	return finish(req, resp, err)
}

func runCreate(ctx context.Context, client *api.Client, req Request) Result {
	if req.GroupName == "" || req.GroupAttributes.Empty() {
		return validationFailure(msgMissingCreateParams)
	}
	resp, err := client.Groups().Create(ctx, req.GroupName, req.GroupAttributes)
	return finish(req, resp, err)
}

func runUpdate(ctx context.Context, client *api.Client, req Request) Result {
	if req.GroupName == "" || req.GroupAttributes.Empty() {
		return validationFailure(msgMissingCreateParams)
	}
	resp, err := client.Groups().Update(ctx, req.GroupName, req.GroupAttributes)
	return finish(req, resp, err)
}

func runDelete(ctx context.Context, client *api.Client, req Request) Result {
	if req.GroupName == "" {
		return validationFailure(msgMissingDeleteName)
	}
	resp, err := client.Groups().Delete(ctx, req.GroupName)
	return finish(req, resp, err)
}

func validationFailure(msg string) Result {
	return Result{
		Code:    validationCode,
		Msg:     msg,
		Outcome: api.Classify(validationCode),
	}
}

// finish classifies the exchange outcome. Transport-level errors have no
// status code and are always fatal; everything else is bucketed purely by
// status.
func finish(req Request, resp *api.Response, err error) Result {
	if err != nil {
		return Result{
			Code:    0,
			Msg:     err.Error(),
			Outcome: api.OutcomeFatal,
		}
	}
	outcome := api.Classify(resp.StatusCode)
	return Result{
		Changed: outcome == api.OutcomeSuccess && req.Action.Mutates(),
		Code:    resp.StatusCode,
		Msg:     resp.JSON(),
		Outcome: outcome,
		Raw:     resp.Body,
	}
}
