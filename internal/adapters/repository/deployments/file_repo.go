package deployments

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/trebuchet-org/zkdeploy/internal/domain"
	"github.com/trebuchet-org/zkdeploy/internal/domain/config"
	"github.com/trebuchet-org/zkdeploy/internal/domain/models"
	"github.com/trebuchet-org/zkdeploy/internal/usecase"
)

const DeploymentsFile = "deployments.json"

// FileRepository stores confirmed deployments in <data dir>/deployments.json
type FileRepository struct {
	dataDir     string
	mu          sync.RWMutex
	deployments map[string]*models.Deployment
	byAddress   map[uint64]map[string]string
}

// NewFileRepository loads the registry from the configured data directory.
// The directory is created on first save.
func NewFileRepository(cfg *config.RuntimeConfig) (*FileRepository, error) {
	return NewFileRepositoryAt(cfg.DataDir)
}

// NewFileRepositoryAt loads the registry from dataDir
func NewFileRepositoryAt(dataDir string) (*FileRepository, error) {
	r := &FileRepository{
		dataDir:     dataDir,
		deployments: make(map[string]*models.Deployment),
	}
	if err := r.load(); err != nil {
		return nil, fmt.Errorf("failed to load registry: %w", err)
	}
	return r, nil
}

func (r *FileRepository) path() string {
	return filepath.Join(r.dataDir, DeploymentsFile)
}

func (r *FileRepository) load() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := os.ReadFile(r.path())
	if err != nil {
		if os.IsNotExist(err) {
			r.rebuildLookups()
			return nil
		}
		return err
	}
	if err := json.Unmarshal(data, &r.deployments); err != nil {
		return fmt.Errorf("invalid %s: %w", DeploymentsFile, err)
	}
	if r.deployments == nil {
		r.deployments = make(map[string]*models.Deployment)
	}
	r.rebuildLookups()
	return nil
}

// save writes the registry through a temp file and rename
func (r *FileRepository) save() error {
	if err := os.MkdirAll(r.dataDir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", r.dataDir, err)
	}

	data, err := json.MarshalIndent(r.deployments, "", "  ")
	if err != nil {
		return err
	}

	tmpPath := r.path() + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmpPath, r.path())
}

func (r *FileRepository) rebuildLookups() {
	r.byAddress = make(map[uint64]map[string]string)
	for id, dep := range r.deployments {
		if r.byAddress[dep.ChainID] == nil {
			r.byAddress[dep.ChainID] = make(map[string]string)
		}
		r.byAddress[dep.ChainID][strings.ToLower(dep.Address)] = id
	}
}

// SaveDeployment adds or replaces a record and persists the registry
func (r *FileRepository) SaveDeployment(ctx context.Context, deployment *models.Deployment) error {
	if deployment.ID == "" {
		return fmt.Errorf("deployment has no ID")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if deployment.CreatedAt.IsZero() {
		deployment.CreatedAt = time.Now()
	}
	previous, existed := r.deployments[deployment.ID]
	r.deployments[deployment.ID] = deployment
	r.rebuildLookups()

	if err := r.save(); err != nil {
		if existed {
			r.deployments[deployment.ID] = previous
		} else {
			delete(r.deployments, deployment.ID)
		}
		r.rebuildLookups()
		return fmt.Errorf("failed to save deployments: %w", err)
	}
	return nil
}

// GetDeployment retrieves a deployment by ID
func (r *FileRepository) GetDeployment(ctx context.Context, id string) (*models.Deployment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	dep, ok := r.deployments[id]
	if !ok {
		return nil, fmt.Errorf("deployment %s: %w", id, domain.ErrNotFound)
	}
	return dep, nil
}

// GetDeploymentByAddress retrieves a deployment by chain ID and address
func (r *FileRepository) GetDeploymentByAddress(ctx context.Context, chainID uint64, address string) (*models.Deployment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byAddress[chainID][strings.ToLower(address)]
	if !ok {
		return nil, fmt.Errorf("deployment at %s on chain %d: %w", address, chainID, domain.ErrNotFound)
	}
	return r.deployments[id], nil
}

// ListDeployments returns deployments matching the filter, oldest first
func (r *FileRepository) ListDeployments(ctx context.Context, filter domain.DeploymentFilter) ([]*models.Deployment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*models.Deployment
	for _, dep := range r.deployments {
		if filter.Matches(dep) {
			result = append(result, dep)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

var (
	_ usecase.DeploymentRepository = (*FileRepository)(nil)
	_ usecase.DeploymentLookup     = (*FileRepository)(nil)
)
