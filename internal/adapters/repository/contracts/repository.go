package contracts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/sahilm/fuzzy"
	"github.com/samber/lo"
	"github.com/trebuchet-org/zkdeploy/internal/domain"
	"github.com/trebuchet-org/zkdeploy/internal/domain/config"
	"github.com/trebuchet-org/zkdeploy/internal/domain/models"
	"github.com/trebuchet-org/zkdeploy/internal/usecase"
)

const maxSuggestions = 3

var linkPlaceholder = regexp.MustCompile(`__\$[0-9a-fA-F]{34}\$__|__[A-Za-z0-9_:./$]{36}__`)

// Repository indexes compiled contract artifacts produced by Hardhat
// (including the zkSync plugin) or Foundry.
type Repository struct {
	projectRoot   string
	artifactDirs  []string
	contracts     map[string]*entry   // key: "path:contractName"
	contractNames map[string][]*entry // key: contract name
	log           *slog.Logger
	mu            sync.RWMutex
	indexed       bool
}

type entry struct {
	artifact *models.Artifact
	unlinked []string
}

// NewRepository creates a new artifact repository
func NewRepository(cfg *config.RuntimeConfig, log *slog.Logger) *Repository {
	dirs := cfg.Deploy.ArtifactDirs
	if len(dirs) == 0 {
		dirs = config.DefaultArtifactDirs
	}
	return &Repository{
		projectRoot:   cfg.ProjectRoot,
		artifactDirs:  dirs,
		contracts:     make(map[string]*entry),
		contractNames: make(map[string][]*entry),
		log:           log,
	}
}

// Index walks the artifact directories once. Earlier directories win when
// the same contract appears in several of them.
func (r *Repository) Index() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexed {
		return nil
	}

	r.contracts = make(map[string]*entry)
	r.contractNames = make(map[string][]*entry)

	for _, dir := range r.artifactDirs {
		root := dir
		if !filepath.IsAbs(root) {
			root = filepath.Join(r.projectRoot, dir)
		}
		if _, err := os.Stat(root); errors.Is(err, fs.ErrNotExist) {
			continue
		}

		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if d.Name() == "build-info" {
					return filepath.SkipDir
				}
				return nil
			}
			if filepath.Ext(path) != ".json" || strings.HasSuffix(path, ".dbg.json") {
				return nil
			}
			return r.processArtifact(path)
		})
		if err != nil {
			return fmt.Errorf("failed to index %s: %w", dir, err)
		}
	}

	r.indexed = true
	return nil
}

// artifactFile covers both layouts: Hardhat stores bytecode as a hex
// string, Foundry as {"object": "0x..."}.
type artifactFile struct {
	Format       string          `json:"_format"`
	ContractName string          `json:"contractName"`
	SourceName   string          `json:"sourceName"`
	ABI          json.RawMessage `json:"abi"`
	Bytecode     json.RawMessage `json:"bytecode"`
	Metadata     json.RawMessage `json:"metadata"`
}

type foundryMetadata struct {
	Settings struct {
		CompilationTarget map[string]string `json:"compilationTarget"`
	} `json:"settings"`
}

func (r *Repository) processArtifact(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var file artifactFile
	if err := json.Unmarshal(data, &file); err != nil || len(file.ABI) == 0 || len(file.Bytecode) == 0 {
		// Not an artifact (e.g. cache files)
		return nil
	}

	format := models.ArtifactFormatHardhat
	var bytecode string
	if err := json.Unmarshal(file.Bytecode, &bytecode); err != nil {
		var obj struct {
			Object string `json:"object"`
		}
		if err := json.Unmarshal(file.Bytecode, &obj); err != nil {
			return nil
		}
		bytecode = obj.Object
		format = models.ArtifactFormatFoundry
	}

	name, source := file.ContractName, file.SourceName
	if format == models.ArtifactFormatFoundry {
		name, source = foundryTarget(path, file.Metadata)
	}
	if name == "" {
		return nil
	}

	parsedABI, err := abi.JSON(bytes.NewReader(file.ABI))
	if err != nil {
		r.log.Debug("skipping artifact with invalid ABI", "path", path, "error", err)
		return nil
	}

	relPath, _ := filepath.Rel(r.projectRoot, path)
	e := &entry{
		artifact: &models.Artifact{
			Name:         name,
			SourcePath:   source,
			ArtifactPath: relPath,
			Format:       format,
			ABI:          parsedABI,
		},
	}

	if placeholders := linkPlaceholder.FindAllString(bytecode, -1); len(placeholders) > 0 {
		e.unlinked = lo.Uniq(placeholders)
	} else if bytecode != "" && bytecode != "0x" {
		code, err := hexutil.Decode(ensure0x(bytecode))
		if err != nil {
			r.log.Debug("skipping artifact with invalid bytecode", "path", path, "error", err)
			return nil
		}
		e.artifact.Bytecode = code
	}

	key := e.artifact.FullyQualifiedName()
	if _, exists := r.contracts[key]; exists {
		return nil
	}
	r.log.Debug("indexed artifact", "key", key, "format", format, "path", relPath)
	r.contracts[key] = e
	r.contractNames[name] = append(r.contractNames[name], e)
	return nil
}

// foundryTarget reads the compilation target from metadata, falling back
// to the out/<File.sol>/<Name>.json layout.
func foundryTarget(path string, raw json.RawMessage) (name, source string) {
	if len(raw) > 0 {
		var meta foundryMetadata
		// metadata is an object in recent forge versions and a JSON string in older ones
		if err := json.Unmarshal(raw, &meta); err != nil {
			var s string
			if json.Unmarshal(raw, &s) == nil {
				_ = json.Unmarshal([]byte(s), &meta)
			}
		}
		for src, contract := range meta.Settings.CompilationTarget {
			return contract, src
		}
	}
	return strings.TrimSuffix(filepath.Base(path), ".json"), filepath.Base(filepath.Dir(path))
}

func ensure0x(s string) string {
	if strings.HasPrefix(s, "0x") {
		return s
	}
	return "0x" + s
}

// FindArtifact resolves "Name" or "path/File.sol:Name"
func (r *Repository) FindArtifact(ctx context.Context, identifier string) (*models.Artifact, error) {
	if err := r.Index(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var found *entry
	if strings.Contains(identifier, ":") {
		e, ok := r.contracts[identifier]
		if !ok {
			return nil, r.notFound(identifier)
		}
		found = e
	} else {
		matches := r.contractNames[identifier]
		switch len(matches) {
		case 0:
			return nil, r.notFound(identifier)
		case 1:
			found = matches[0]
		default:
			candidates := lo.Map(matches, func(e *entry, _ int) string { return e.artifact.FullyQualifiedName() })
			sort.Strings(candidates)
			return nil, fmt.Errorf("%w %q, use one of: %s", domain.ErrAmbiguousContract, identifier, strings.Join(candidates, ", "))
		}
	}

	if len(found.unlinked) > 0 {
		return nil, fmt.Errorf("%w: %s needs %s", domain.ErrUnlinkedLibraries, identifier, strings.Join(found.unlinked, ", "))
	}
	return found.artifact, nil
}

func (r *Repository) notFound(identifier string) error {
	names := lo.Keys(r.contractNames)
	sort.Strings(names)

	target := identifier
	if i := strings.LastIndex(identifier, ":"); i >= 0 {
		target = identifier[i+1:]
	}
	matches := fuzzy.Find(target, names)
	if len(matches) == 0 {
		return fmt.Errorf("%w: %s (searched %s)", domain.ErrContractNotFound, identifier, strings.Join(r.artifactDirs, ", "))
	}
	suggestions := lo.Map(matches, func(m fuzzy.Match, _ int) string { return m.Str })
	if len(suggestions) > maxSuggestions {
		suggestions = suggestions[:maxSuggestions]
	}
	return fmt.Errorf("%w: %s (did you mean %s?)", domain.ErrContractNotFound, identifier, strings.Join(suggestions, ", "))
}

// ListArtifacts returns all deployable artifacts sorted by qualified name
func (r *Repository) ListArtifacts(ctx context.Context) ([]*models.Artifact, error) {
	if err := r.Index(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	artifacts := make([]*models.Artifact, 0, len(r.contracts))
	for _, e := range r.contracts {
		if len(e.unlinked) == 0 && len(e.artifact.Bytecode) > 0 {
			artifacts = append(artifacts, e.artifact)
		}
	}
	sort.Slice(artifacts, func(i, j int) bool {
		return artifacts[i].FullyQualifiedName() < artifacts[j].FullyQualifiedName()
	})
	return artifacts, nil
}

var _ usecase.ArtifactRepository = (*Repository)(nil)
