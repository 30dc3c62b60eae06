package service

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clipforge/clipforge/internal/infra/remoteclient"
	"github.com/clipforge/clipforge/internal/modules/model"
	"github.com/clipforge/clipforge/internal/pkg/catalog"
	"github.com/clipforge/clipforge/internal/pkg/pathref"
	"github.com/clipforge/clipforge/internal/pkg/synth"
)

// ToolOutcome is the result of executing one tool call. A failed tool run is
// a normal outcome with Success false; errors are reserved for infrastructure
// faults the caller cannot attribute to the call itself.
type ToolOutcome struct {
	Success bool   `json:"success"`
	Message string `json:"message"`

	// Output references the produced artifact, in canonical sandbox-relative
	// form. Nil for read-only tools and failures.
	Output *pathref.Reference `json:"output,omitempty"`
	// OutputURL is a fetchable, cache-busted URL for the artifact when the
	// backend serves one.
	OutputURL string `json:"output_url,omitempty"`

	Info    *model.MediaInfo             `json:"info,omitempty"`
	Listing *remoteclient.SandboxListing `json:"listing,omitempty"`
}

func failedOutcome(format string, args ...any) *ToolOutcome {
	return &ToolOutcome{Success: false, Message: fmt.Sprintf(format, args...)}
}

// EditBackend executes tool calls against a project's sandbox.
type EditBackend interface {
	Invoke(ctx context.Context, projectID uuid.UUID, call catalog.ToolCall) (*ToolOutcome, error)
}

// validateCall checks the call against its catalog spec. A nil return means
// the call is executable.
func validateCall(call catalog.ToolCall) (catalog.ToolSpec, *ToolOutcome) {
	spec, ok := catalog.Get(call.Name)
	if !ok {
		return catalog.ToolSpec{}, failedOutcome("unknown tool %q", call.Name)
	}
	if errs := catalog.Validate(spec, call.Args); len(errs) > 0 {
		return catalog.ToolSpec{}, failedOutcome("invalid arguments for %s: %s", call.Name, errs[0].Error())
	}
	return spec, nil
}

// ---------------------------------------------------------------------------
// Local backend
// ---------------------------------------------------------------------------

// mediaRunner is the slice of mediaexec.Runner the local backend uses.
type mediaRunner interface {
	Run(ctx context.Context, args []string) error
	Probe(ctx context.Context, path string) (*model.MediaInfo, error)
}

type localBackend struct {
	resolver *pathref.Resolver
	runner   mediaRunner
	log      *zap.Logger
}

// NewLocalBackend executes tools with the local ffmpeg install against the
// on-disk sandbox.
func NewLocalBackend(resolver *pathref.Resolver, runner mediaRunner, log *zap.Logger) EditBackend {
	return &localBackend{resolver: resolver, runner: runner, log: log}
}

func (b *localBackend) Invoke(ctx context.Context, projectID uuid.UUID, call catalog.ToolCall) (*ToolOutcome, error) {
	if _, fail := validateCall(call); fail != nil {
		return fail, nil
	}

	switch call.Name {
	case catalog.ToolProbe:
		return b.probe(ctx, projectID, call)
	case catalog.ToolListSandbox:
		return b.listSandbox(projectID)
	}

	in, fail, err := b.gatherInputs(ctx, projectID, call)
	if err != nil {
		return nil, err
	}
	if fail != nil {
		return fail, nil
	}

	outDir := b.resolver.AreaDir(projectID, pathref.AreaOutput)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output area: %w", err)
	}

	plan, err := synth.Synthesize(call.Name, call.Args, in, outDir, nil)
	if err != nil {
		return failedOutcome("%s: %v", call.Name, err), nil
	}
	defer plan.Manifest.Close()

	if err := b.runner.Run(ctx, plan.Args); err != nil {
		b.log.Warn("local tool run failed",
			zap.String("tool", call.Name),
			zap.Error(err))
		return failedOutcome("%s failed: %v", call.Name, err), nil
	}

	outRef := pathref.Parse(pathref.AreaOutput + "/" + plan.OutputName)
	return &ToolOutcome{
		Success: true,
		Message: fmt.Sprintf("%s produced %s", call.Name, outRef.String()),
		Output:  &outRef,
	}, nil
}

// gatherInputs resolves the call's file arguments to local paths and probes
// metadata for the tools that need it.
func (b *localBackend) gatherInputs(ctx context.Context, projectID uuid.UUID, call catalog.ToolCall) (synth.Inputs, *ToolOutcome, error) {
	var in synth.Inputs

	if call.Name == catalog.ToolConcat {
		for _, f := range catalog.ArgStrings(call.Args, "input_files") {
			p, err := b.resolver.Local(projectID, pathref.Parse(f))
			if err != nil {
				return in, failedOutcome("concat: cannot resolve %q: %v", f, err), nil
			}
			in.List = append(in.List, p)
		}
		return in, nil, nil
	}

	args := catalog.PathArgs(call.Name)
	for i, argName := range args {
		raw := catalog.ArgString(call.Args, argName, "")
		if raw == "" {
			continue
		}
		p, err := b.resolver.Local(projectID, pathref.Parse(raw))
		if err != nil {
			return in, failedOutcome("%s: cannot resolve %q: %v", call.Name, raw, err), nil
		}
		if i == 0 {
			in.Primary = p
		} else {
			in.Secondary = p
		}
	}

	switch call.Name {
	case catalog.ToolZoomPan, catalog.ToolTransition:
		info, err := b.runner.Probe(ctx, in.Primary)
		if err != nil {
			return in, failedOutcome("%s: probe %s: %v", call.Name, in.Primary, err), nil
		}
		in.Info = info
	}
	return in, nil, nil
}

func (b *localBackend) probe(ctx context.Context, projectID uuid.UUID, call catalog.ToolCall) (*ToolOutcome, error) {
	raw := catalog.ArgString(call.Args, "input_file", "")
	p, err := b.resolver.Local(projectID, pathref.Parse(raw))
	if err != nil {
		return failedOutcome("probe: cannot resolve %q: %v", raw, err), nil
	}
	info, err := b.runner.Probe(ctx, p)
	if err != nil {
		return failedOutcome("probe %s: %v", raw, err), nil
	}
	return &ToolOutcome{
		Success: true,
		Message: fmt.Sprintf("%.2fs %dx%d %s", info.Duration, info.Width, info.Height, info.Codec),
		Info:    info,
	}, nil
}

func (b *localBackend) listSandbox(projectID uuid.UUID) (*ToolOutcome, error) {
	listing := &remoteclient.SandboxListing{}
	var err error
	if listing.Input, err = listDir(b.resolver.AreaDir(projectID, pathref.AreaInput)); err != nil {
		return nil, err
	}
	if listing.Output, err = listDir(b.resolver.AreaDir(projectID, pathref.AreaOutput)); err != nil {
		return nil, err
	}
	return &ToolOutcome{
		Success: true,
		Message: fmt.Sprintf("%d input files, %d output files", len(listing.Input), len(listing.Output)),
		Listing: listing,
	}, nil
}

func listDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// ---------------------------------------------------------------------------
// Remote backend
// ---------------------------------------------------------------------------

// remoteInvoker is the slice of remoteclient.Client the remote backend uses.
type remoteInvoker interface {
	InvokeTool(ctx context.Context, projectID uuid.UUID, tool string, args map[string]any) (*remoteclient.InvokeResult, error)
	MediaInfo(ctx context.Context, projectID uuid.UUID, remotePath string) (*model.MediaInfo, error)
	ListFiles(ctx context.Context, projectID uuid.UUID) (*remoteclient.SandboxListing, error)
}

type remoteBackend struct {
	client   remoteInvoker
	resolver *pathref.Resolver
	log      *zap.Logger
}

// NewRemoteBackend executes tools on the sandbox runner service.
func NewRemoteBackend(client remoteInvoker, resolver *pathref.Resolver, log *zap.Logger) EditBackend {
	return &remoteBackend{client: client, resolver: resolver, log: log}
}

func (b *remoteBackend) Invoke(ctx context.Context, projectID uuid.UUID, call catalog.ToolCall) (*ToolOutcome, error) {
	if _, fail := validateCall(call); fail != nil {
		return fail, nil
	}

	switch call.Name {
	case catalog.ToolProbe:
		return b.probe(ctx, projectID, call)
	case catalog.ToolListSandbox:
		listing, err := b.client.ListFiles(ctx, projectID)
		if err != nil {
			return nil, err
		}
		return &ToolOutcome{
			Success: true,
			Message: fmt.Sprintf("%d input files, %d output files", len(listing.Input), len(listing.Output)),
			Listing: listing,
		}, nil
	}

	args, fail := b.remoteArgs(call)
	if fail != nil {
		return fail, nil
	}

	res, err := b.client.InvokeTool(ctx, projectID, call.Name, args)
	if err != nil {
		return nil, err
	}
	outcome := &ToolOutcome{Success: res.Success, Message: res.Message}
	if res.Success && res.OutputPath != "" {
		ref := pathref.Parse(res.OutputPath)
		outcome.Output = &ref
	}
	if res.Success && outcome.Output == nil && res.OutputURL != "" {
		// Some runner responses carry only the URL; its /output/ segment
		// still names the artifact, in sandbox-relative form.
		if u := pathref.Parse(res.OutputURL); u.Area != "" && u.Name != "" {
			ref := pathref.Parse(u.Area + "/" + u.Name)
			outcome.Output = &ref
		}
	}
	if res.Success && res.OutputURL != "" {
		// Bust URL-keyed caches so fresh artifacts are always refetched.
		outcome.OutputURL = pathref.CacheBust(res.OutputURL)
	}
	return outcome, nil
}

// remoteArgs rewrites the call's file arguments into the sandbox-relative
// form the runner expects.
func (b *remoteBackend) remoteArgs(call catalog.ToolCall) (map[string]any, *ToolOutcome) {
	args := make(map[string]any, len(call.Args))
	for k, v := range call.Args {
		args[k] = v
	}

	if call.Name == catalog.ToolConcat {
		var files []string
		for _, f := range catalog.ArgStrings(call.Args, "input_files") {
			rp, err := b.resolver.Remote(pathref.Parse(f))
			if err != nil {
				return nil, failedOutcome("concat: cannot resolve %q: %v", f, err)
			}
			files = append(files, rp)
		}
		args["input_files"] = files
		return args, nil
	}

	for _, argName := range catalog.PathArgs(call.Name) {
		raw := catalog.ArgString(call.Args, argName, "")
		if raw == "" {
			continue
		}
		rp, err := b.resolver.Remote(pathref.Parse(raw))
		if err != nil {
			return nil, failedOutcome("%s: cannot resolve %q: %v", call.Name, raw, err)
		}
		args[argName] = rp
	}
	return args, nil
}

func (b *remoteBackend) probe(ctx context.Context, projectID uuid.UUID, call catalog.ToolCall) (*ToolOutcome, error) {
	raw := catalog.ArgString(call.Args, "input_file", "")
	rp, err := b.resolver.Remote(pathref.Parse(raw))
	if err != nil {
		return failedOutcome("probe: cannot resolve %q: %v", raw, err), nil
	}
	info, err := b.client.MediaInfo(ctx, projectID, rp)
	if err != nil {
		return nil, err
	}
	return &ToolOutcome{
		Success: true,
		Message: fmt.Sprintf("%.2fs %dx%d %s", info.Duration, info.Width, info.Height, info.Codec),
		Info:    info,
	}, nil
}
