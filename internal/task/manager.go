// ==============================
// File: internal/task/manager.go
// ==============================
package task

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Manager loads and parses Task definitions.
type Manager struct {
	logger *zap.Logger
}

// TaskConfig represents the structure of tasks YAML file.
type TaskConfig struct {
	Tasks []struct {
		TaskName    string `yaml:"task_name"`
		Operation   string `yaml:"operation"`
		Actor       string `yaml:"actor"`
		Deposit     uint64 `yaml:"deposit"`
		Name        string `yaml:"name"`
		Symbol      string `yaml:"symbol"`
		MetadataURI string `yaml:"metadata_uri"`
		Payment     uint64 `yaml:"payment"`
		TokenID     uint64 `yaml:"token_id"`
		AmountIn    uint64 `yaml:"amount_in"`
		MinOut      uint64 `yaml:"min_out"`
		Referrer    string `yaml:"referrer"`
	} `yaml:"tasks"`
}

// NewManager constructs a Manager with the given logger.
func NewManager(logger *zap.Logger) *Manager {
	return &Manager{logger: logger}
}

func parseOperation(s string) (OperationType, error) {
	op := OperationType(s)
	switch op {
	case OperationCreate, OperationBuy, OperationSell, OperationBurn:
		return op, nil
	default:
		return "", fmt.Errorf("unsupported operation: %q", s)
	}
}

// LoadTasksYAML reads tasks from YAML file.
func (m *Manager) LoadTasksYAML(path string) ([]*Task, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tasks file: %w", err)
	}

	var cfg TaskConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse tasks YAML: %w", err)
	}

	tasks := make([]*Task, 0, len(cfg.Tasks))
	for i, raw := range cfg.Tasks {
		op, err := parseOperation(raw.Operation)
		if err != nil {
			return nil, fmt.Errorf("task %d (%s): %w", i, raw.TaskName, err)
		}
		if raw.Actor == "" {
			return nil, fmt.Errorf("task %d (%s): actor is required", i, raw.TaskName)
		}
		tasks = append(tasks, &Task{
			TaskName:    raw.TaskName,
			Operation:   op,
			Actor:       raw.Actor,
			Deposit:     raw.Deposit,
			Name:        raw.Name,
			Symbol:      raw.Symbol,
			MetadataURI: raw.MetadataURI,
			Payment:     raw.Payment,
			TokenID:     raw.TokenID,
			AmountIn:    raw.AmountIn,
			MinOut:      raw.MinOut,
			Referrer:    raw.Referrer,
		})
	}

	m.logger.Info("Tasks loaded", zap.Int("count", len(tasks)), zap.String("path", path))
	return tasks, nil
}
