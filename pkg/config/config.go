// Package config loads experiment definitions from YAML files and
// turns them into agent specs and a house generator.
package config

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"housesim/pkg/experiment"
	"housesim/pkg/market"
	"housesim/pkg/policy"
	"housesim/pkg/providers"
)

type ExperimentConfig struct {
	Name        string          `yaml:"name"`
	Experiments int             `yaml:"experiments"`
	MaxRounds   int             `yaml:"max_rounds"`
	Seed        uint64          `yaml:"seed"`
	Workers     int             `yaml:"workers"`
	Generator   GeneratorConfig `yaml:"generator"`
	Agents      []AgentConfig   `yaml:"agents"`
}

type GeneratorConfig struct {
	Type   string `yaml:"type"` // uniform, normal, bimodal
	Houses int    `yaml:"houses"`

	// uniform
	MinQuality float64 `yaml:"min_quality"`
	MaxQuality float64 `yaml:"max_quality"`

	// normal and bimodal
	Mean     float64 `yaml:"mean"`
	Stddev   float64 `yaml:"stddev"`
	LowMean  float64 `yaml:"low_mean"`
	HighMean float64 `yaml:"high_mean"`
	HighProb float64 `yaml:"high_prob"`
}

type AgentConfig struct {
	Name   string `yaml:"name"`
	Policy string `yaml:"policy"` // greedy, threshold, optimal_stopping, llm
	Count  int    `yaml:"count"`

	// threshold
	Threshold float64 `yaml:"threshold"`

	// optimal_stopping
	ExplorationRatio float64 `yaml:"exploration_ratio"`

	// llm
	Provider string `yaml:"provider"` // openai, gemini
	Model    string `yaml:"model"`
}

// LoadConfig reads an experiment definition from a YAML file.
func LoadConfig(path string) (*ExperimentConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg ExperimentConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}

// BuildGenerator constructs the house generator the config describes.
func (c *ExperimentConfig) BuildGenerator() (market.Generator, error) {
	g := c.Generator
	if g.Houses <= 0 {
		return nil, fmt.Errorf("generator needs a positive house count, got %d", g.Houses)
	}
	switch g.Type {
	case "", "uniform":
		minQ, maxQ := g.MinQuality, g.MaxQuality
		if minQ == 0 && maxQ == 0 {
			minQ, maxQ = 1.0, 10.0
		}
		if maxQ < minQ {
			return nil, fmt.Errorf("generator max_quality %.2f below min_quality %.2f", maxQ, minQ)
		}
		return market.Uniform(g.Houses, minQ, maxQ), nil
	case "normal":
		return market.Normal(g.Houses, g.Mean, g.Stddev), nil
	case "bimodal":
		return market.Bimodal(g.Houses, g.LowMean, g.HighMean, g.Stddev, g.HighProb), nil
	default:
		return nil, fmt.Errorf("unknown generator type %q", g.Type)
	}
}

// BuildAgentSpecs constructs the agent groups the config describes.
// LLM-backed groups get a provider client built here; ctx covers
// client construction only, not the decisions made later.
func (c *ExperimentConfig) BuildAgentSpecs(ctx context.Context) ([]experiment.AgentSpec, error) {
	specs := make([]experiment.AgentSpec, 0, len(c.Agents))
	for _, a := range c.Agents {
		name := a.Name
		if name == "" {
			name = a.Policy
		}

		factory, err := c.buildFactory(ctx, a)
		if err != nil {
			return nil, fmt.Errorf("agent group %q: %w", name, err)
		}
		specs = append(specs, experiment.AgentSpec{
			Name:  name,
			New:   factory,
			Count: a.Count,
		})
	}
	return specs, nil
}

func (c *ExperimentConfig) buildFactory(ctx context.Context, a AgentConfig) (func() policy.Policy, error) {
	switch a.Policy {
	case "greedy":
		return func() policy.Policy { return policy.NewGreedy() }, nil
	case "threshold":
		threshold := a.Threshold
		return func() policy.Policy { return policy.NewThreshold(threshold) }, nil
	case "optimal_stopping":
		ratio := a.ExplorationRatio
		return func() policy.Policy { return policy.NewOptimalStopping(ratio) }, nil
	case "llm":
		client, err := buildCompleter(ctx, a.Provider)
		if err != nil {
			return nil, err
		}
		model := a.Model
		if model == "" {
			return nil, fmt.Errorf("llm policy needs a model")
		}
		return func() policy.Policy { return policy.NewLLM(client, model) }, nil
	default:
		return nil, fmt.Errorf("unknown policy %q", a.Policy)
	}
}

func buildCompleter(ctx context.Context, provider string) (providers.Completer, error) {
	switch provider {
	case "", "openai":
		return providers.OpenAI(), nil
	case "gemini":
		return providers.Gemini(ctx)
	default:
		return nil, fmt.Errorf("unknown provider %q", provider)
	}
}
