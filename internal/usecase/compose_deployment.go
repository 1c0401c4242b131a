package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"os"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/trebuchet-org/zkdeploy/internal/domain"
	"github.com/trebuchet-org/zkdeploy/internal/domain/config"
	"github.com/trebuchet-org/zkdeploy/internal/domain/models"
	"gopkg.in/yaml.v3"
)

// ComposeDeployment deploys a group of contracts from a YAML plan, in
// dependency order, one DeployContract run per step.
type ComposeDeployment struct {
	config   *config.RuntimeConfig
	deployer *DeployContract
	repo     DeploymentRepository
	progress ProgressSink
	log      *slog.Logger
}

// NewComposeDeployment creates a new ComposeDeployment use case
func NewComposeDeployment(
	cfg *config.RuntimeConfig,
	deployer *DeployContract,
	repo DeploymentRepository,
	progress ProgressSink,
	log *slog.Logger,
) *ComposeDeployment {
	return &ComposeDeployment{
		config:   cfg,
		deployer: deployer,
		repo:     repo,
		progress: progress,
		log:      log,
	}
}

// ComposeParams contains parameters for a compose run
type ComposeParams struct {
	PlanPath string
	Resume   bool // skip steps already recorded for this group and network
	NoSave   bool
}

// ComposeResult contains the result of a compose run
type ComposeResult struct {
	Plan       *ExecutionPlan
	Network    string
	Steps      []*StepResult
	FailedStep *StepResult
	Success    bool
}

// StepResult contains the result of executing a single step
type StepResult struct {
	Step    *ExecutionStep
	Result  *models.DeploymentResult
	Address string
	Skipped bool
	Error   error
}

// Run parses the plan and executes it. A failed step stops the run; the
// returned result lists what has already been deployed.
func (uc *ComposeDeployment) Run(ctx context.Context, params ComposeParams) (*ComposeResult, error) {
	plan, err := LoadComposePlan(params.PlanPath)
	if err != nil {
		return nil, err
	}

	network := plan.Network
	if network == "" {
		network = uc.config.NetworkName
	}
	if network == "" {
		return nil, fmt.Errorf("no network given: set 'network' in %s or pass --network", params.PlanPath)
	}

	uc.progress.OnProgress(ctx, ProgressEvent{
		Stage:    StagePlanCreated,
		Message:  fmt.Sprintf("Deploying group %s (%d steps) to %s", plan.Group, len(plan.Steps), network),
		Metadata: plan,
	})

	result := &ComposeResult{Plan: plan, Network: network, Success: true}
	addresses := make(map[string]string, len(plan.Steps))

	for i, step := range plan.Steps {
		if params.Resume {
			existing, err := uc.recorded(ctx, plan.Group, step.Name, network)
			if err != nil {
				return nil, err
			}
			if existing != nil {
				addresses[step.Name] = existing.Address
				result.Steps = append(result.Steps, &StepResult{Step: step, Address: existing.Address, Skipped: true})
				uc.progress.OnProgress(ctx, ProgressEvent{
					Stage:   StageStepSkipped,
					Message: fmt.Sprintf("[%d/%d] %s already deployed at %s", i+1, len(plan.Steps), step.Name, existing.Address),
				})
				continue
			}
		}

		uc.progress.OnProgress(ctx, ProgressEvent{
			Stage:   StageStepStarting,
			Message: fmt.Sprintf("[%d/%d] %s (%s)", i+1, len(plan.Steps), step.Name, step.Contract),
		})

		stepResult := uc.executeStep(ctx, plan.Group, network, step, addresses, params)
		result.Steps = append(result.Steps, stepResult)
		if stepResult.Error != nil {
			result.FailedStep = stepResult
			result.Success = false
			uc.log.Error("compose step failed", "group", plan.Group, "step", step.Name, "error", stepResult.Error)
			break
		}
		addresses[step.Name] = stepResult.Address

		uc.progress.OnProgress(ctx, ProgressEvent{
			Stage:    StageStepCompleted,
			Message:  fmt.Sprintf("%s deployed to: %s", step.Contract, stepResult.Address),
			Metadata: stepResult,
		})
	}

	return result, nil
}

func (uc *ComposeDeployment) recorded(ctx context.Context, group, step, network string) (*models.Deployment, error) {
	existing, err := uc.repo.ListDeployments(ctx, domain.DeploymentFilter{
		Network: network,
		Group:   group,
		Step:    step,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read registry: %w", err)
	}
	if len(existing) == 0 {
		return nil, nil
	}
	return lo.MaxBy(existing, func(a, b *models.Deployment) bool {
		return a.CreatedAt.After(b.CreatedAt)
	}), nil
}

func (uc *ComposeDeployment) executeStep(
	ctx context.Context,
	group, network string,
	step *ExecutionStep,
	addresses map[string]string,
	params ComposeParams,
) *StepResult {
	args, err := substituteReferences(step.Args, addresses)
	if err != nil {
		return &StepResult{Step: step, Error: fmt.Errorf("step '%s': %w", step.Name, err)}
	}

	req := models.NewDeploymentRequest(step.Contract, network, args, step.Signer)
	deployed, err := uc.deployer.Run(ctx, req)
	if err != nil {
		return &StepResult{Step: step, Error: fmt.Errorf("step '%s': %w", step.Name, err)}
	}

	stepResult := &StepResult{Step: step, Result: deployed, Address: deployed.ContractAddress.Hex()}
	if params.NoSave {
		return stepResult
	}

	record := models.NewDeploymentRecord(deployed, time.Now())
	record.Group = group
	record.Step = step.Name
	if err := uc.repo.SaveDeployment(ctx, record); err != nil {
		// The contract exists on-chain; a registry failure must not hide that.
		uc.progress.Error(fmt.Sprintf("failed to record step %s: %v", step.Name, err))
		uc.log.Warn("failed to save deployment", "step", step.Name, "error", err)
	}
	return stepResult
}

var referencePattern = regexp.MustCompile(`^\$\{([A-Za-z0-9_-]+)\.address\}$`)

// substituteReferences replaces "${step.address}" strings, at any nesting
// depth, with the address of an already deployed step.
func substituteReferences(args []any, addresses map[string]string) ([]any, error) {
	out := make([]any, len(args))
	for i, arg := range args {
		switch v := arg.(type) {
		case string:
			m := referencePattern.FindStringSubmatch(v)
			if m == nil {
				out[i] = v
				continue
			}
			addr, ok := addresses[m[1]]
			if !ok {
				return nil, fmt.Errorf("reference %s to a step that has not been deployed", v)
			}
			out[i] = addr
		case []any:
			nested, err := substituteReferences(v, addresses)
			if err != nil {
				return nil, err
			}
			out[i] = nested
		default:
			out[i] = v
		}
	}
	return out, nil
}

// Compose plan types

// ComposeConfig is the YAML plan file
type ComposeConfig struct {
	Group   string                 `yaml:"group"`
	Network string                 `yaml:"network,omitempty"`
	Steps   map[string]*StepConfig `yaml:"steps"`
}

// StepConfig is one contract deployment in a plan
type StepConfig struct {
	Contract string   `yaml:"contract"`
	Args     []any    `yaml:"args,omitempty"`
	Deps     []string `yaml:"deps,omitempty"`
	Signer   string   `yaml:"signer,omitempty"`
}

// UnmarshalYAML decodes args node by node so integers wider than 64 bits
// keep their exact value.
func (s *StepConfig) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		Contract string    `yaml:"contract"`
		Args     yaml.Node `yaml:"args,omitempty"`
		Deps     []string  `yaml:"deps,omitempty"`
		Signer   string    `yaml:"signer,omitempty"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	*s = StepConfig{Contract: raw.Contract, Deps: raw.Deps, Signer: raw.Signer}

	if raw.Args.Kind == 0 || raw.Args.ShortTag() == "!!null" {
		return nil
	}
	if raw.Args.Kind != yaml.SequenceNode {
		return fmt.Errorf("line %d: args must be a list", raw.Args.Line)
	}
	args, err := decodePlanArg(&raw.Args)
	if err != nil {
		return err
	}
	s.Args = args.([]any)
	return nil
}

// ExecutionPlan is the linearised plan
type ExecutionPlan struct {
	Group   string
	Network string
	Steps   []*ExecutionStep
}

// ExecutionStep is a single step in execution order
type ExecutionStep struct {
	Name         string
	Contract     string
	Args         []any
	Signer       string
	Dependencies []string
}

// LoadComposePlan reads, validates and orders a plan file
func LoadComposePlan(path string) (*ExecutionPlan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan: %w", err)
	}
	return ParseComposePlan(data)
}

// ParseComposePlan parses YAML plan data into an execution plan
func ParseComposePlan(data []byte) (*ExecutionPlan, error) {
	var cfg ComposeConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid plan: %w", err)
	}

	steps, err := NewDependencyGraph(&cfg).TopologicalSort()
	if err != nil {
		return nil, err
	}
	return &ExecutionPlan{Group: cfg.Group, Network: cfg.Network, Steps: steps}, nil
}

// decodePlanArg turns a YAML node into the shapes constructor argument
// conversion understands. Integers become int64, or *big.Int when they do
// not fit.
func decodePlanArg(node *yaml.Node) (any, error) {
	switch node.Kind {
	case yaml.AliasNode:
		return decodePlanArg(node.Alias)
	case yaml.SequenceNode:
		out := make([]any, len(node.Content))
		for i, item := range node.Content {
			v, err := decodePlanArg(item)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case yaml.ScalarNode:
		tag := node.ShortTag()
		if tag == "!!null" {
			return nil, nil
		}
		// Integer literals past 64 bits resolve as !!float.
		if (tag == "!!int" || tag == "!!float") && node.Style&(yaml.SingleQuotedStyle|yaml.DoubleQuotedStyle) == 0 {
			if n, ok := new(big.Int).SetString(strings.ReplaceAll(node.Value, "_", ""), 0); ok {
				if n.IsInt64() {
					return n.Int64(), nil
				}
				return n, nil
			}
		}
	}

	var v any
	if err := node.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// Validate checks the plan for missing fields and bad references
func (cfg *ComposeConfig) Validate() error {
	if cfg.Group == "" {
		return fmt.Errorf("group name is required")
	}
	if len(cfg.Steps) == 0 {
		return fmt.Errorf("at least one step is required")
	}

	names := lo.Keys(cfg.Steps)
	sort.Strings(names)
	for _, name := range names {
		step := cfg.Steps[name]
		if step == nil || step.Contract == "" {
			return fmt.Errorf("step '%s' must specify a contract", name)
		}
		for _, dep := range step.Deps {
			if dep == name {
				return fmt.Errorf("step '%s' cannot depend on itself", name)
			}
			if _, exists := cfg.Steps[dep]; !exists {
				return fmt.Errorf("step '%s' depends on non-existent step '%s'", name, dep)
			}
		}
		for _, ref := range collectReferences(step.Args) {
			if !lo.Contains(step.Deps, ref) {
				return fmt.Errorf("step '%s' references %s but does not list it in deps", name, ref)
			}
		}
	}
	return nil
}

func collectReferences(args []any) []string {
	var refs []string
	for _, arg := range args {
		switch v := arg.(type) {
		case string:
			if m := referencePattern.FindStringSubmatch(v); m != nil {
				refs = append(refs, m[1])
			}
		case []any:
			refs = append(refs, collectReferences(v)...)
		}
	}
	return lo.Uniq(refs)
}

// DependencyGraph is a directed acyclic graph of plan steps
type DependencyGraph struct {
	nodes map[string]*StepConfig
	edges map[string][]string // dependency -> dependents
}

// NewDependencyGraph builds the graph for a validated plan
func NewDependencyGraph(cfg *ComposeConfig) *DependencyGraph {
	graph := &DependencyGraph{
		nodes: cfg.Steps,
		edges: make(map[string][]string),
	}
	for name, step := range cfg.Steps {
		for _, dep := range step.Deps {
			if _, exists := cfg.Steps[dep]; !exists {
				continue
			}
			graph.edges[dep] = append(graph.edges[dep], name)
		}
	}
	return graph
}

// TopologicalSort returns steps in execution order, ties broken by name,
// or an error if there is a cycle.
func (g *DependencyGraph) TopologicalSort() ([]*ExecutionStep, error) {
	inDegree := make(map[string]int, len(g.nodes))
	for name, step := range g.nodes {
		inDegree[name] += 0
		for _, dep := range step.Deps {
			if _, exists := g.nodes[dep]; !exists {
				return nil, fmt.Errorf("step '%s' depends on non-existent step '%s'", name, dep)
			}
			inDegree[name]++
		}
	}

	queue := lo.Filter(lo.Keys(inDegree), func(name string, _ int) bool {
		return inDegree[name] == 0
	})
	sort.Strings(queue)

	result := make([]*ExecutionStep, 0, len(g.nodes))
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		step := g.nodes[current]
		result = append(result, &ExecutionStep{
			Name:         current,
			Contract:     step.Contract,
			Args:         step.Args,
			Signer:       step.Signer,
			Dependencies: step.Deps,
		})

		for _, dependent := range g.edges[current] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				queue = append(queue, dependent)
			}
		}
		sort.Strings(queue)
	}

	if len(result) != len(g.nodes) {
		cycle := lo.Filter(lo.Keys(inDegree), func(name string, _ int) bool {
			return inDegree[name] > 0
		})
		sort.Strings(cycle)
		return nil, fmt.Errorf("circular dependency detected involving steps: %v", cycle)
	}
	return result, nil
}
